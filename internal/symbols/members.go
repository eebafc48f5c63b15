package symbols

import (
	"hxinfer/internal/ast"
)

// OwnMember looks a member up in decl only.
func (t *Table) OwnMember(decl ast.DeclID, name string) (ast.MemberID, bool) {
	id, ok := t.members[decl][name]
	return id, ok
}

// Supers returns the declarations named in `extends`: the superclass of a
// class or the parents of an interface. Unresolvable names are skipped.
func (t *Table) Supers(decl ast.DeclID) []ast.DeclID {
	d := t.B.Decl(decl)
	if d == nil {
		return nil
	}
	return t.resolveAll(d.Extends)
}

// Interfaces returns the declarations named in `implements`.
func (t *Table) Interfaces(decl ast.DeclID) []ast.DeclID {
	d := t.B.Decl(decl)
	if d == nil {
		return nil
	}
	return t.resolveAll(d.Implements)
}

func (t *Table) resolveAll(ids []ast.TypeID) []ast.DeclID {
	out := make([]ast.DeclID, 0, len(ids))
	for _, tid := range ids {
		te := t.B.Types.Get(tid)
		if te == nil {
			continue
		}
		if id, ok := t.LookupType(te.Name); ok {
			out = append(out, id)
		}
	}
	return out
}

// FindMember looks name up in decl and then along its super chain. The
// returned member may belong to an ancestor.
func (t *Table) FindMember(decl ast.DeclID, name string) (ast.MemberID, bool) {
	var found ast.MemberID
	t.walkHierarchy(decl, func(d ast.DeclID) bool {
		if id, ok := t.OwnMember(d, name); ok {
			found = id
			return false
		}
		return true
	})
	return found, found.IsValid()
}

// FindImplementation is FindMember for code that needs a member body: on a
// class it does not descend into implemented interfaces, whose members are
// only signatures. On interfaces and structures it equals FindMember.
func (t *Table) FindImplementation(decl ast.DeclID, name string) (ast.MemberID, bool) {
	d := t.B.Decl(decl)
	if d == nil || d.Kind != ast.DeclClass {
		return t.FindMember(decl, name)
	}
	var found ast.MemberID
	t.walkClasses(decl, func(c ast.DeclID) bool {
		if id, ok := t.OwnMember(c, name); ok {
			found = id
			return false
		}
		return true
	})
	return found, found.IsValid()
}

// walkClasses visits decl and its superclasses, nearest first.
func (t *Table) walkClasses(decl ast.DeclID, visit func(ast.DeclID) bool) {
	visited := map[ast.DeclID]struct{}{}
	for cur := decl; ; {
		if _, ok := visited[cur]; ok {
			return
		}
		visited[cur] = struct{}{}
		d := t.B.Decl(cur)
		if d == nil || d.Kind != ast.DeclClass || !visit(cur) {
			return
		}
		supers := t.Supers(cur)
		if len(supers) == 0 {
			return
		}
		cur = supers[0]
	}
}

// AllMembers returns own and inherited members; a member shadows inherited
// ones with the same name.
func (t *Table) AllMembers(decl ast.DeclID) []ast.MemberID {
	seen := make(map[string]struct{})
	var out []ast.MemberID
	t.walkHierarchy(decl, func(d ast.DeclID) bool {
		for _, m := range t.B.Decl(d).Members {
			name := t.B.Member(m).Name
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, m)
		}
		return true
	})
	return out
}

// walkHierarchy visits decl and its supers breadth-first, each declaration
// once. Abstracts only forward to their own members.
func (t *Table) walkHierarchy(decl ast.DeclID, visit func(ast.DeclID) bool) {
	visited := map[ast.DeclID]struct{}{}
	queue := []ast.DeclID{decl}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, ok := visited[cur]; ok {
			continue
		}
		visited[cur] = struct{}{}
		d := t.B.Decl(cur)
		if d == nil {
			continue
		}
		if !visit(cur) {
			return
		}
		if d.Kind == ast.DeclAbstract {
			continue
		}
		queue = append(queue, t.Supers(cur)...)
		if d.Kind == ast.DeclInterface || d.Kind == ast.DeclClass {
			queue = append(queue, t.Interfaces(cur)...)
		}
	}
}

// Constructor finds `new` in decl or an ancestor.
func (t *Table) Constructor(decl ast.DeclID) (ast.MemberID, bool) {
	return t.FindMember(decl, "new")
}

// IsSubtype reports whether sub reaches super through extends/implements.
func (t *Table) IsSubtype(sub, super ast.DeclID) bool {
	found := false
	t.walkHierarchy(sub, func(d ast.DeclID) bool {
		if d == super {
			found = true
			return false
		}
		return true
	})
	return found
}

// TypeParamNames returns the generic parameter names visible inside member:
// the declaration's followed by the member's own.
func (t *Table) TypeParamNames(member ast.MemberID) []string {
	m := t.B.Member(member)
	if m == nil {
		return nil
	}
	var out []string
	if d := t.B.Decl(m.Decl); d != nil {
		for _, tp := range d.TypeParams {
			out = append(out, tp.Name)
		}
	}
	for _, tp := range m.TypeParams {
		out = append(out, tp.Name)
	}
	return out
}

// IsEnumAbstractValue reports a `var` of an enum abstract: such values are
// constants of the abstract type itself.
func (t *Table) IsEnumAbstractValue(member ast.MemberID) bool {
	m := t.B.Member(member)
	if m == nil || m.Kind != ast.MemberField {
		return false
	}
	d := t.B.Decl(m.Decl)
	return d != nil && d.Kind == ast.DeclAbstract && d.EnumAbstract && !m.Static
}
