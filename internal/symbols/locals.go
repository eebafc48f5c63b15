package symbols

import (
	"hxinfer/internal/ast"
)

// LocalKind classifies a local binding.
type LocalKind uint8

const (
	LocalVar LocalKind = iota
	LocalParam
	LocalForKey
	LocalForValue
	LocalCapture
	LocalCatch
	LocalFunction
)

func (k LocalKind) String() string {
	switch k {
	case LocalVar:
		return "var"
	case LocalParam:
		return "param"
	case LocalForKey:
		return "for-key"
	case LocalForValue:
		return "for-value"
	case LocalCapture:
		return "capture"
	case LocalCatch:
		return "catch"
	case LocalFunction:
		return "function"
	}
	return "local?"
}

// Local is a binding found by LookupLocal. Node is the declaring node:
// Var, Param, For, Capture, Catch or Function.
type Local struct {
	Kind LocalKind
	Name string
	Node ast.NodeID
}

// LookupLocal resolves name as seen from node by walking enclosing blocks
// and binders outward, finishing with the parameters of the owning member.
func (t *Table) LookupLocal(from ast.NodeID, name string) (Local, bool) {
	nodes := t.B.Nodes
	cur := from
	for {
		parent := nodes.Parent(cur)
		if !parent.IsValid() {
			break
		}
		if l, ok := t.bindingIn(parent, cur, name); ok {
			return l, true
		}
		cur = parent
	}
	node := nodes.Get(cur)
	if node == nil {
		return Local{}, false
	}
	// корень тела: параметры метода
	if m := t.B.Member(node.Owner); m != nil {
		for _, p := range m.Params {
			if d, ok := nodes.Param(p); ok && d.Name == name {
				return Local{Kind: LocalParam, Name: name, Node: p}, true
			}
		}
	}
	return Local{}, false
}

// bindingIn checks what parent binds for its child.
func (t *Table) bindingIn(parent, child ast.NodeID, name string) (Local, bool) {
	nodes := t.B.Nodes
	switch nodes.KindOf(parent) {
	case ast.KindBlock:
		d, _ := nodes.Block(parent)
		idx := len(d.Stmts)
		for i, s := range d.Stmts {
			if s == child {
				idx = i
				break
			}
		}
		for i := idx - 1; i >= 0; i-- {
			if l, ok := declaredBy(nodes, d.Stmts[i], name); ok {
				return l, true
			}
		}
	case ast.KindFunction:
		d, _ := nodes.Function(parent)
		if child != d.Body {
			return Local{}, false
		}
		for _, p := range d.Params {
			if pd, ok := nodes.Param(p); ok && pd.Name == name {
				return Local{Kind: LocalParam, Name: name, Node: p}, true
			}
		}
		if d.Name == name {
			return Local{Kind: LocalFunction, Name: name, Node: parent}, true
		}
	case ast.KindFor:
		d, _ := nodes.For(parent)
		if child != d.Body {
			return Local{}, false
		}
		if d.Value == name {
			return Local{Kind: LocalForValue, Name: name, Node: parent}, true
		}
		if d.Key != "" && d.Key == name {
			return Local{Kind: LocalForKey, Name: name, Node: parent}, true
		}
	case ast.KindCase:
		d, _ := nodes.Case(parent)
		if child != d.Body && child != d.Guard {
			return Local{}, false
		}
		for _, c := range d.Captures {
			if cd, ok := nodes.Capture(c); ok && cd.Name == name {
				return Local{Kind: LocalCapture, Name: name, Node: c}, true
			}
		}
	case ast.KindCatch:
		d, _ := nodes.Catch(parent)
		if child == d.Body && d.Name == name {
			return Local{Kind: LocalCatch, Name: name, Node: parent}, true
		}
	}
	return Local{}, false
}

func declaredBy(nodes *ast.Nodes, stmt ast.NodeID, name string) (Local, bool) {
	switch nodes.KindOf(stmt) {
	case ast.KindVar:
		if d, _ := nodes.Var(stmt); d.Name == name {
			return Local{Kind: LocalVar, Name: name, Node: stmt}, true
		}
	case ast.KindFunction:
		if d, _ := nodes.Function(stmt); d.Name == name {
			return Local{Kind: LocalFunction, Name: name, Node: stmt}, true
		}
	case ast.KindBlock:
		// `var a = 1, b = 2` в позиции одиночной инструкции
		d, _ := nodes.Block(stmt)
		for i := len(d.Stmts) - 1; i >= 0; i-- {
			if nodes.KindOf(d.Stmts[i]) != ast.KindVar {
				return Local{}, false
			}
			if l, ok := declaredBy(nodes, d.Stmts[i], name); ok {
				return l, true
			}
		}
	}
	return Local{}, false
}

// Visible lists the names of locals visible from node, innermost first.
// Used by the repl and `infer --at`.
func (t *Table) Visible(from ast.NodeID) []Local {
	seen := map[string]struct{}{}
	var out []Local
	add := func(l Local) {
		if _, dup := seen[l.Name]; dup {
			return
		}
		seen[l.Name] = struct{}{}
		out = append(out, l)
	}
	nodes := t.B.Nodes
	cur := from
	for {
		parent := nodes.Parent(cur)
		if !parent.IsValid() {
			break
		}
		for _, name := range boundNames(nodes, parent, cur) {
			if l, ok := t.bindingIn(parent, cur, name); ok {
				add(l)
			}
		}
		cur = parent
	}
	if node := nodes.Get(cur); node != nil {
		if m := t.B.Member(node.Owner); m != nil {
			for _, p := range m.Params {
				if d, ok := nodes.Param(p); ok {
					add(Local{Kind: LocalParam, Name: d.Name, Node: p})
				}
			}
		}
	}
	return out
}

func boundNames(nodes *ast.Nodes, parent, child ast.NodeID) []string {
	var out []string
	switch nodes.KindOf(parent) {
	case ast.KindBlock:
		d, _ := nodes.Block(parent)
		for _, s := range d.Stmts {
			if s == child {
				break
			}
			if v, ok := nodes.Var(s); ok {
				out = append(out, v.Name)
			} else if f, ok := nodes.Function(s); ok && f.Name != "" {
				out = append(out, f.Name)
			}
		}
	case ast.KindFunction:
		d, _ := nodes.Function(parent)
		for _, p := range d.Params {
			if pd, ok := nodes.Param(p); ok {
				out = append(out, pd.Name)
			}
		}
	case ast.KindFor:
		d, _ := nodes.For(parent)
		out = append(out, d.Value)
		if d.Key != "" {
			out = append(out, d.Key)
		}
	case ast.KindCase:
		d, _ := nodes.Case(parent)
		for _, c := range d.Captures {
			if cd, ok := nodes.Capture(c); ok {
				out = append(out, cd.Name)
			}
		}
	case ast.KindCatch:
		d, _ := nodes.Catch(parent)
		out = append(out, d.Name)
	}
	return out
}
