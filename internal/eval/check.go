package eval

import (
	"context"
	"strconv"

	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/symbols"
	"hxinfer/internal/trace"
	"hxinfer/internal/types"
)

// CheckFile walks every member of file with rep attached. It returns
// ctx.Err() when cancelled part way; diagnostics reported so far stay.
func (e *Evaluator) CheckFile(ctx context.Context, file ast.FileID, rep diag.Reporter) error {
	f := e.tab.B.File(file)
	if f == nil {
		return nil
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "check_file", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	members := 0
	for _, decl := range f.Decls {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.CheckDecl(ctx, decl, rep)
		members += len(e.tab.Decl(decl).Members)
	}
	span.WithExtra("members", strconv.Itoa(members))
	return ctx.Err()
}

// CheckDecl checks every member of decl and the interfaces it implements.
func (e *Evaluator) CheckDecl(ctx context.Context, decl ast.DeclID, rep diag.Reporter) {
	d := e.tab.Decl(decl)
	if d == nil {
		return
	}
	for _, m := range d.Members {
		if ctx.Err() != nil {
			return
		}
		e.CheckMember(ctx, m, rep)
	}
	if d.Kind == ast.DeclClass && !d.Extern {
		e.newQuery(ctx, rep).checkInterfaces(decl)
	}
}

// CheckMember walks one member reporting into rep: field initializers
// against their tags, parameter defaults, the method body and the
// override against the parent class.
func (e *Evaluator) CheckMember(ctx context.Context, member ast.MemberID, rep diag.Reporter) {
	mm := e.tab.Member(member)
	if mm == nil {
		return
	}
	q := e.newQuery(ctx, rep)
	switch mm.Kind {
	case ast.MemberField:
		q.checkField(member, mm)
	case ast.MemberMethod:
		q.checkMethod(member, mm)
	case ast.MemberEnumCtor:
		q.checkDefaults(mm.Params)
	}
	if !mm.Static && !mm.IsConstructor() && mm.Kind != ast.MemberEnumCtor {
		q.checkOverride(member, mm)
	}
}

func (q *query) checkField(member ast.MemberID, mm *ast.Member) {
	if !mm.Init.IsValid() {
		return
	}
	if !mm.Type.IsValid() || q.tab.IsEnumAbstractValue(member) {
		q.eval(mm.Init, nil)
		return
	}
	tag := types.Declared(q.m.MemberTag(member))
	init := q.evalExpecting(mm.Init, nil, tag.Type())
	q.checkAssign(tag, init, mm.Init, diag.SemaIncompatibleType, nil)
}

func (q *query) checkMethod(member ast.MemberID, mm *ast.Member) {
	q.checkDefaults(mm.Params)
	if !mm.Body.IsValid() {
		return
	}
	q.returns = append(q.returns, nil)
	q.eval(mm.Body, nil)
	q.returns = q.returns[:len(q.returns)-1]
}

func (q *query) checkDefaults(params []ast.NodeID) {
	for _, p := range params {
		d, ok := q.nodes.Param(p)
		if !ok || !d.Default.IsValid() {
			continue
		}
		if !d.Type.IsValid() {
			q.eval(d.Default, nil)
			continue
		}
		tag := types.Declared(q.fromTag(d.Type, p))
		value := q.evalExpecting(d.Default, nil, tag.Type())
		q.checkAssign(tag, value, d.Default, diag.SemaIncompatibleType, nil)
	}
}

// checkOverride compares a member with the one it shadows in the parent
// class chain.
func (q *query) checkOverride(member ast.MemberID, mm *ast.Member) {
	self := q.m.DeclaredInstance(mm.Decl)
	for _, sup := range q.tab.Supers(mm.Decl) {
		parent, ok := q.tab.FindMember(sup, mm.Name)
		if !ok {
			continue
		}
		pm := q.tab.Member(parent)
		if pm.Static {
			return
		}
		owner, ok := q.m.AsSuper(self, pm.Decl)
		if !ok {
			owner = q.m.DeclaredInstance(pm.Decl)
		}
		want := q.MemberType(parent, owner)
		have := q.MemberType(member, self)
		if !q.cmp.CanAssign(want, have, q.compatContext(mm.Body)) {
			diag.ReportError(q.rep, diag.SemaIncompatibleType, mm.NameSpan,
				"Field "+mm.Name+" overrides parent class with different or incomplete type").
				WithNote(pm.NameSpan, "parent field is "+want.Type().String()).
				Emit()
		}
		return
	}
}

// checkInterfaces reports interface fields the class does not provide.
func (q *query) checkInterfaces(decl ast.DeclID) {
	d := q.tab.Decl(decl)
	for _, iface := range q.tab.Interfaces(decl) {
		id := q.tab.Decl(iface)
		for _, m := range q.tab.AllMembers(iface) {
			im := q.tab.Member(m)
			if im.Static || im.Optional || ast.HasMeta(im.Meta, "optional") {
				continue
			}
			if _, ok := q.tab.FindImplementation(decl, im.Name); ok {
				continue
			}
			if q.tab.Info(decl).Has(symbols.FlagExtern) {
				continue
			}
			diag.ReportError(q.rep, diag.SemaMissingMember, d.NameSpan,
				"Field "+im.Name+" needed by "+id.Name+" is missing").
				Emit()
		}
	}
}
