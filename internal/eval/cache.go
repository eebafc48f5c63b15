package eval

import (
	"sync"
	"sync/atomic"

	"hxinfer/internal/ast"
	"hxinfer/internal/types"
)

// Cache memoizes inferred member types per declaration. It is owned by the
// caller: whoever edits declarations must Invalidate them.
type Cache struct {
	mu     sync.RWMutex
	decls  map[ast.DeclID]map[ast.MemberID]types.Holder
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCache() *Cache {
	return &Cache{decls: make(map[ast.DeclID]map[ast.MemberID]types.Holder)}
}

func (c *Cache) get(decl ast.DeclID, member ast.MemberID) (types.Holder, bool) {
	if c == nil {
		return types.UnknownHolder(), false
	}
	c.mu.RLock()
	h, ok := c.decls[decl][member]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return h, ok
}

func (c *Cache) put(decl ast.DeclID, member ast.MemberID, h types.Holder) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	byMember := c.decls[decl]
	if byMember == nil {
		byMember = make(map[ast.MemberID]types.Holder)
		c.decls[decl] = byMember
	}
	byMember[member] = h
}

// Invalidate drops the cached members of the given declarations.
func (c *Cache) Invalidate(decls ...ast.DeclID) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range decls {
		delete(c.decls, d)
	}
}

// Reset drops everything.
func (c *Cache) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.decls = make(map[ast.DeclID]map[ast.MemberID]types.Holder)
	c.mu.Unlock()
}

// Len counts cached members.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, m := range c.decls {
		n += len(m)
	}
	return n
}

// Stats returns lookup hits and misses since creation.
func (c *Cache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}
