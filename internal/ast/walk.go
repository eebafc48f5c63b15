package ast

// Children returns the direct child nodes of id in source order.
// Switch-case captures are reached through their pattern, not listed twice.
func (n *Nodes) Children(id NodeID) []NodeID {
	node := n.Get(id)
	if node == nil {
		return nil
	}
	var out []NodeID
	add := func(ids ...NodeID) {
		for _, c := range ids {
			if c.IsValid() {
				out = append(out, c)
			}
		}
	}
	switch node.Kind {
	case KindMember:
		d, _ := n.Member(id)
		add(d.Target)
	case KindCall:
		d, _ := n.Call(id)
		add(d.Callee)
		add(d.Args...)
	case KindIndex:
		d, _ := n.Index(id)
		add(d.Target, d.Index)
	case KindNew:
		d, _ := n.New(id)
		add(d.Args...)
	case KindArrayLit:
		d, _ := n.ArrayLit(id)
		add(d.Elems...)
	case KindMapLit:
		d, _ := n.MapLit(id)
		for i := range d.Keys {
			add(d.Keys[i], d.Values[i])
		}
	case KindObjectLit:
		d, _ := n.ObjectLit(id)
		for _, f := range d.Fields {
			add(f.Value)
		}
	case KindFunction:
		d, _ := n.Function(id)
		add(d.Params...)
		add(d.Body)
	case KindParam:
		d, _ := n.Param(id)
		add(d.Default)
	case KindBinary:
		d, _ := n.Binary(id)
		add(d.Left, d.Right)
	case KindAssign:
		d, _ := n.Assign(id)
		add(d.Target, d.Value)
	case KindUnary:
		d, _ := n.Unary(id)
		add(d.Operand)
	case KindTernary:
		d, _ := n.Ternary(id)
		add(d.Cond, d.Then, d.Else)
	case KindCast, KindTypeCheck:
		d, _ := n.Cast(id)
		add(d.Expr)
	case KindParen, KindUntyped, KindReturn, KindThrow:
		d, _ := n.Wrap(id)
		add(d.Inner)
	case KindBlock:
		d, _ := n.Block(id)
		add(d.Stmts...)
	case KindVar:
		d, _ := n.Var(id)
		add(d.Init)
	case KindIf:
		d, _ := n.If(id)
		add(d.Cond, d.Then, d.Else)
	case KindWhile:
		d, _ := n.While(id)
		add(d.Cond, d.Body)
	case KindFor:
		d, _ := n.For(id)
		add(d.Iter, d.Body)
	case KindSwitch:
		d, _ := n.Switch(id)
		add(d.Subject)
		add(d.Cases...)
		add(d.Default)
	case KindCase:
		d, _ := n.Case(id)
		add(d.Patterns...)
		add(d.Guard, d.Body)
	case KindTry:
		d, _ := n.Try(id)
		add(d.Body)
		add(d.Catches...)
	case KindCatch:
		d, _ := n.Catch(id)
		add(d.Body)
	}
	return out
}

// Link sets Parent and Owner for every node under root. root's own parent
// is left untouched.
func (n *Nodes) Link(root NodeID, owner MemberID) {
	if node := n.Get(root); node != nil {
		node.Owner = owner
	}
	n.Walk(root, func(id NodeID) bool {
		for _, c := range n.Children(id) {
			child := n.Get(c)
			child.Parent = id
			child.Owner = owner
		}
		return true
	})
}

// Walk visits root and its descendants depth-first in source order.
// Returning false from visit skips the children of that node.
func (n *Nodes) Walk(root NodeID, visit func(NodeID) bool) {
	if !root.IsValid() {
		return
	}
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(id) {
			continue
		}
		kids := n.Children(id)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
}

// Innermost returns the deepest node under root whose span contains off.
func (n *Nodes) Innermost(root NodeID, off uint32) NodeID {
	best := NoNodeID
	n.Walk(root, func(id NodeID) bool {
		node := n.Get(id)
		if !node.Span.Contains(off) {
			return false
		}
		best = id
		return true
	})
	return best
}

// Returns collects return statements that belong to the function whose
// body is root; nested function literals are skipped.
func (n *Nodes) Returns(root NodeID) []NodeID {
	var out []NodeID
	n.Walk(root, func(id NodeID) bool {
		switch n.KindOf(id) {
		case KindFunction:
			return id == root
		case KindReturn:
			out = append(out, id)
		}
		return true
	})
	return out
}

// EnclosingFunction walks parents until a function literal is found.
func (n *Nodes) EnclosingFunction(id NodeID) NodeID {
	for cur := n.parentOf(id); cur.IsValid(); cur = n.parentOf(cur) {
		if n.KindOf(cur) == KindFunction {
			return cur
		}
	}
	return NoNodeID
}

func (n *Nodes) parentOf(id NodeID) NodeID {
	if node := n.Get(id); node != nil {
		return node.Parent
	}
	return NoNodeID
}

// Parent returns the parent handle, NoNodeID at a member body root.
func (n *Nodes) Parent(id NodeID) NodeID {
	return n.parentOf(id)
}
