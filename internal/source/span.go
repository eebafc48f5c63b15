package source

import (
	"fmt"
)

// Span is a half-open byte range inside one file.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
// Spans from different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Contains reports whether off lies inside the span. An empty span
// contains its own start offset.
func (s Span) Contains(off uint32) bool {
	if s.Empty() {
		return off == s.Start
	}
	return off >= s.Start && off < s.End
}

// Within reports whether s is nested in outer.
func (s Span) Within(outer Span) bool {
	return s.File == outer.File && s.Start >= outer.Start && s.End <= outer.End
}
