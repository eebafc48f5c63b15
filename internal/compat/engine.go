package compat

import (
	"hxinfer/internal/ast"
	"hxinfer/internal/types"
)

// MemberTyper types a member as seen on owner, owner's bindings applied.
// The evaluator implements it to infer untagged fields from initializers;
// TagTyper is the tag-only fallback.
type MemberTyper interface {
	MemberType(member ast.MemberID, owner types.Type) types.Holder
}

// TagTyper types members from their written tags.
type TagTyper struct{ Model *types.Model }

func (t TagTyper) MemberType(member ast.MemberID, owner types.Type) types.Holder {
	return types.Hold(MemberOn(t.Model, t.Model.MemberTag(member), member, owner))
}

// MemberOn substitutes the generic parameters of member's declaration with
// owner's specifics, walking up to the declaring super type when needed.
func MemberOn(m *types.Model, t types.Type, member ast.MemberID, owner types.Type) types.Type {
	mm := m.Tab.Member(member)
	if mm == nil {
		return t
	}
	if owner.Decl() != mm.Decl {
		if sup, ok := m.AsSuper(owner, mm.Decl); ok {
			owner = sup
		}
	}
	return types.Substitute(t, m.BindingsOf(owner))
}

// MissingMember: a required member absent from a structural source.
type MissingMember struct {
	Name string
}

// WrongTypeMember: a member present on both sides whose types disagree.
type WrongTypeMember struct {
	Name     string
	FromText string
	ToText   string
	FromNode ast.NodeID
}

// Context collects structural mismatches of one top-level check. Scope is
// the declaration whose body is being checked; inside an enum abstract it
// admits underlying values.
type Context struct {
	Scope     ast.DeclID
	Missing   []MissingMember
	WrongType []WrongTypeMember
}

// HasMismatches reports whether any structural record was collected.
func (c *Context) HasMismatches() bool {
	return c != nil && (len(c.Missing) > 0 || len(c.WrongType) > 0)
}

func (c *Context) scope() ast.DeclID {
	if c == nil {
		return ast.NoDeclID
	}
	return c.Scope
}

// Engine is stateless between queries; every CanAssign call carries its own
// visited set, so one Engine serves concurrent queries.
type Engine struct {
	model   *types.Model
	members MemberTyper
}

func New(m *types.Model, members MemberTyper) *Engine {
	if members == nil {
		members = TagTyper{Model: m}
	}
	return &Engine{model: m, members: members}
}

// WithMembers returns an engine sharing the model with another member typer.
func (e *Engine) WithMembers(members MemberTyper) *Engine {
	return New(e.model, members)
}

func (e *Engine) Model() *types.Model { return e.model }

// CanAssign reports whether a location of type to accepts a value of type
// from. The rules apply in order:
//   - Unknown on either side is accepted
//   - Dynamic on either side, or an Any target, is accepted
//   - an EnumValue target accepts any enum value
//   - typedefs and Null<T> are replaced by what they stand for
//   - two function-like types compare by signature
//   - inside an enum abstract its underlying values are accepted
//   - instances of one class compare specifics; different classes go
//     through implicit casts and the inheritance chain
//   - structures and struct-init classes compare member by member
//   - an unresolved type parameter on either side is accepted
//
// When actx is not nil it receives the structural mismatches of the
// outermost structural comparison.
func (e *Engine) CanAssign(to, from types.Holder, actx *Context) bool {
	q := e.newQuery(actx)
	return q.assign(to.Type(), from.Type())
}

// CanAssignType is CanAssign over bare types without a context.
func (e *Engine) CanAssignType(to, from types.Type) bool {
	return e.newQuery(nil).assign(to, from)
}

func (e *Engine) newQuery(actx *Context) *query {
	return &query{
		e:       e,
		m:       e.model,
		actx:    actx,
		scope:   actx.scope(),
		visited: make(map[visitKey]struct{}),
	}
}
