package eval

import (
	"hxinfer/internal/types"
)

// Scope is a stack of frames of local bindings. A nil *Scope is empty and
// ignores Define.
type Scope struct {
	frames []map[string]types.Holder
}

func NewScope() *Scope {
	return &Scope{}
}

func (s *Scope) Push() {
	if s == nil {
		return
	}
	s.frames = append(s.frames, nil)
}

func (s *Scope) Pop() {
	if s == nil || len(s.frames) == 0 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Define binds name in the innermost frame, opening one when needed.
func (s *Scope) Define(name string, h types.Holder) {
	if s == nil || name == "" {
		return
	}
	if len(s.frames) == 0 {
		s.frames = append(s.frames, nil)
	}
	top := len(s.frames) - 1
	if s.frames[top] == nil {
		s.frames[top] = make(map[string]types.Holder)
	}
	s.frames[top][name] = h
}

// Lookup searches frames innermost first.
func (s *Scope) Lookup(name string) (types.Holder, bool) {
	if s == nil {
		return types.UnknownHolder(), false
	}
	for i := len(s.frames) - 1; i >= 0; i-- {
		if h, ok := s.frames[i][name]; ok {
			return h, true
		}
	}
	return types.UnknownHolder(), false
}

func (s *Scope) Depth() int {
	if s == nil {
		return 0
	}
	return len(s.frames)
}
