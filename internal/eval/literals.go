package eval

import (
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"hxinfer/internal/ast"
	"hxinfer/internal/compat"
	"hxinfer/internal/diag"
	"hxinfer/internal/generics"
	"hxinfer/internal/trace"
	"hxinfer/internal/types"
)

func (q *query) literal(id ast.NodeID, _ *generics.Resolver) types.Holder {
	d, _ := q.nodes.Literal(id)
	switch d.Kind {
	case ast.LitInt:
		t := q.m.Int()
		if v, ok := parseInt(d.Text); ok {
			t = t.WithConstant(types.IntConst(v))
		}
		return types.Hold(t)
	case ast.LitFloat:
		t := q.m.Float()
		if v, err := strconv.ParseFloat(d.Text, 64); err == nil {
			t = t.WithConstant(types.FloatConst(v))
		}
		return types.Hold(t)
	case ast.LitString:
		return types.Hold(q.m.StringType().WithConstant(types.StringConst(d.Value)))
	case ast.LitBool:
		return types.Hold(q.m.Bool().WithConstant(types.BoolConst(d.Text == "true")))
	case ast.LitNull:
		return types.Hold(q.m.WrapInNull(types.Unknown()).WithConstant(types.NullConst()))
	}
	return types.UnknownHolder()
}

// parseInt reads decimal and 0x literals; a leading zero is not octal.
func parseInt(text string) (int64, bool) {
	if rest, ok := strings.CutPrefix(strings.ToLower(text), "0x"); ok {
		v, err := strconv.ParseUint(rest, 16, 64)
		return int64(int32(v)), err == nil //nolint:gosec // Int is 32-bit
	}
	v, err := strconv.ParseInt(text, 10, 64)
	return v, err == nil
}

// regex validates the pattern with the literal's flags; an invalid pattern
// is a warning, the value is still an EReg.
func (q *query) regex(id ast.NodeID, _ *generics.Resolver) types.Holder {
	d, _ := q.nodes.Regex(id)
	var opts regexp2.RegexOptions
	for _, f := range d.Flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'g', 'u':
		default:
			q.warnf(diag.SemaInvalidRegex, id, "Unknown regular expression flag %q", f)
		}
	}
	if _, err := regexp2.Compile(d.Pattern, opts); err != nil {
		q.warnf(diag.SemaInvalidRegex, id, "Invalid regular expression: %v", err)
	}
	return types.Hold(q.m.EReg())
}

// arrayLit unifies element types ignoring Void. An expected Array<T> wins
// over the inferred union, so `[]` typed Array<Foo> is Array<Foo>.
func (q *query) arrayLit(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.ArrayLit(id)
	seed := types.Unknown()
	if want, ok := q.expected(id, res); ok {
		if w := q.m.Follow(want); q.m.IsArray(w) {
			seed = w.Specific(0)
		}
	}
	elems := make([]types.Holder, len(d.Elems))
	consts := make([]types.Constant, 0, len(d.Elems))
	for i, e := range d.Elems {
		elems[i] = q.evalExpecting(e, res, seed)
		if elems[i].HasConstant() {
			consts = append(consts, elems[i].Constant())
		}
	}
	elem := seed
	if elem.IsUnknown() {
		elem = q.cmp.UnifyAll(elems, compat.RuleIgnoreVoid).Type().WithoutConstant()
	}
	t := q.m.Array(elem)
	if len(consts) == len(d.Elems) {
		t = t.WithConstant(types.ArrayConst(consts))
	}
	return types.Hold(t)
}

func (q *query) mapLit(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.MapLit(id)
	key, value := types.Unknown(), types.Unknown()
	if want, ok := q.expected(id, res); ok {
		if w := q.m.Follow(want); q.m.IsMap(w) {
			key, value = w.Specific(0), w.Specific(1)
		}
	}
	keys := make([]types.Holder, len(d.Keys))
	values := make([]types.Holder, len(d.Values))
	for i := range d.Keys {
		keys[i] = q.evalExpecting(d.Keys[i], res, key)
		if i < len(d.Values) {
			values[i] = q.evalExpecting(d.Values[i], res, value)
		}
	}
	if key.IsUnknown() {
		key = q.cmp.UnifyAll(keys, compat.RuleIgnoreVoid).Type().WithoutConstant()
	}
	if value.IsUnknown() {
		value = q.cmp.UnifyAll(values, compat.RuleIgnoreVoid).Type().WithoutConstant()
	}
	return types.Hold(q.m.Map(key, value))
}

// objectLit types an object literal as its own anonymous declaration. The
// presentation name lists the fields with their value types.
func (q *query) objectLit(id ast.NodeID, res *generics.Resolver) types.Holder {
	d, _ := q.nodes.ObjectLit(id)
	decl, ok := q.tab.ObjectDecl(id)
	if !ok {
		trace.Error(q.tracer, "eval.object", "object literal without declaration")
		return types.UnknownHolder()
	}
	var b strings.Builder
	b.WriteString("{ ")
	for i, f := range d.Fields {
		want := types.Unknown()
		if w, ok := q.expected(f.Value, res); ok {
			want = w
		}
		h := q.evalExpecting(f.Value, res, want)
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(" : ")
		b.WriteString(h.Type().String())
	}
	b.WriteString(" }")
	if len(d.Fields) == 0 {
		return types.Hold(q.m.ObjectInstance(decl, "{}"))
	}
	return types.Hold(q.m.ObjectInstance(decl, b.String()))
}
