package symbols

import (
	"strings"

	"hxinfer/internal/ast"
	"hxinfer/internal/diag"
	"hxinfer/internal/source"
)

// Flags describe declaration predicates that do not live in the syntax.
type Flags uint16

const (
	FlagPrelude Flags = 1 << iota
	FlagAnonymous
	FlagObjectLiteral
	FlagStructInit
	FlagCoreType
	FlagExtern
)

// Info carries per-declaration facts computed by Build.
type Info struct {
	Flags Flags
	// Node is the object-literal node of a FlagObjectLiteral declaration.
	Node ast.NodeID
	// Type is the structure type expression of an anonymous declaration.
	Type ast.TypeID
}

func (i Info) Has(f Flags) bool { return i.Flags&f != 0 }

type Options struct {
	Reporter diag.Reporter
	// NoPrelude skips the embedded core declarations (tests of the table itself).
	NoPrelude bool
}

// Table: неизменяемая таблица объявлений.
type Table struct {
	B *ast.Builder

	files   []ast.FileID
	prelude ast.FileID

	byName     map[string]ast.DeclID
	ctors      map[string]ast.MemberID
	members    map[ast.DeclID]map[string]ast.MemberID
	info       map[ast.DeclID]Info
	anonByType map[ast.TypeID]ast.DeclID
	anonByNode map[ast.NodeID]ast.DeclID
}

// Build parses the prelude into b and indexes the prelude together with the
// given files. Later user declarations shadow prelude ones with the same name.
func Build(fs *source.FileSet, b *ast.Builder, files []ast.FileID, opts Options) *Table {
	t := &Table{
		B:          b,
		files:      append([]ast.FileID(nil), files...),
		byName:     make(map[string]ast.DeclID),
		ctors:      make(map[string]ast.MemberID),
		members:    make(map[ast.DeclID]map[string]ast.MemberID),
		info:       make(map[ast.DeclID]Info),
		anonByType: make(map[ast.TypeID]ast.DeclID),
		anonByNode: make(map[ast.NodeID]ast.DeclID),
	}
	if !opts.NoPrelude {
		t.prelude = parsePrelude(fs, b, opts.Reporter)
		t.registerFile(t.prelude, FlagPrelude)
	}
	for _, f := range files {
		t.registerFile(f, 0)
	}
	t.buildAnonymous()
	return t
}

func (t *Table) registerFile(file ast.FileID, flags Flags) {
	f := t.B.File(file)
	if f == nil {
		return
	}
	for _, id := range f.Decls {
		d := t.B.Decl(id)
		info := Info{Flags: flags}
		if ast.HasMeta(d.Meta, "structInit") {
			info.Flags |= FlagStructInit
		}
		if ast.HasMeta(d.Meta, "coreType") {
			info.Flags |= FlagCoreType
		}
		if d.Extern {
			info.Flags |= FlagExtern
		}
		t.info[id] = info
		t.byName[d.Name] = id
		t.indexMembers(id)
		if d.Kind == ast.DeclEnum {
			for _, m := range d.Members {
				t.ctors[t.B.Member(m).Name] = m
			}
		}
	}
}

func (t *Table) indexMembers(decl ast.DeclID) {
	d := t.B.Decl(decl)
	own := make(map[string]ast.MemberID, len(d.Members))
	for _, m := range d.Members {
		name := t.B.Member(m).Name
		if _, dup := own[name]; !dup {
			own[name] = m
		}
	}
	t.members[decl] = own
}

// buildAnonymous creates declarations for structure types and object literals
// so structural comparisons always work over members.
func (t *Table) buildAnonymous() {
	types := t.B.Types
	for i := uint32(1); i <= types.Arena.Len(); i++ {
		tid := ast.TypeID(i)
		te := types.Get(tid)
		if te.Kind != ast.TypeAnon {
			continue
		}
		decl := t.B.NewDecl(ast.Decl{Kind: ast.DeclClass, Span: te.Span})
		for _, f := range te.Fields {
			kind := ast.MemberField
			if f.Method {
				kind = ast.MemberMethod
			}
			t.B.NewMember(ast.Member{
				Kind:     kind,
				Name:     f.Name,
				NameSpan: f.NameSpan,
				Span:     f.NameSpan,
				Decl:     decl,
				Final:    f.Final,
				Optional: f.Optional,
				Type:     f.Type,
			})
		}
		t.info[decl] = Info{Flags: FlagAnonymous, Type: tid}
		t.anonByType[tid] = decl
		t.indexMembers(decl)
	}

	nodes := t.B.Nodes
	for i := uint32(1); i <= nodes.Arena.Len(); i++ {
		id := ast.NodeID(i)
		obj, ok := nodes.ObjectLit(id)
		if !ok {
			continue
		}
		decl := t.B.NewDecl(ast.Decl{Kind: ast.DeclClass, Span: nodes.Get(id).Span})
		for _, f := range obj.Fields {
			t.B.NewMember(ast.Member{
				Kind:     ast.MemberField,
				Name:     f.Name,
				NameSpan: f.NameSpan,
				Span:     f.NameSpan,
				Decl:     decl,
				Init:     f.Value,
			})
		}
		t.info[decl] = Info{Flags: FlagAnonymous | FlagObjectLiteral, Node: id}
		t.anonByNode[id] = decl
		t.indexMembers(decl)
	}
}

func (t *Table) Decl(id ast.DeclID) *ast.Decl { return t.B.Decl(id) }

func (t *Table) Member(id ast.MemberID) *ast.Member { return t.B.Member(id) }

func (t *Table) Info(id ast.DeclID) Info { return t.info[id] }

// Files returns the user files, without the prelude.
func (t *Table) Files() []ast.FileID { return t.files }

func (t *Table) PreludeFile() ast.FileID { return t.prelude }

// LookupType finds a declaration by name; a dotted path resolves by its last
// segment.
func (t *Table) LookupType(name string) (ast.DeclID, bool) {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	id, ok := t.byName[name]
	return id, ok
}

// LookupEnumCtor finds an enum constructor by its unqualified name.
func (t *Table) LookupEnumCtor(name string) (ast.MemberID, bool) {
	id, ok := t.ctors[name]
	return id, ok
}

// AnonDecl returns the declaration built for a structure type expression.
func (t *Table) AnonDecl(tid ast.TypeID) (ast.DeclID, bool) {
	id, ok := t.anonByType[tid]
	return id, ok
}

// ObjectDecl returns the declaration built for an object literal.
func (t *Table) ObjectDecl(node ast.NodeID) (ast.DeclID, bool) {
	id, ok := t.anonByNode[node]
	return id, ok
}

// Global resolves names usable without qualification, such as trace.
func (t *Table) Global(name string) (ast.MemberID, bool) {
	if name != "trace" {
		return ast.NoMemberID, false
	}
	log, ok := t.byName["Log"]
	if !ok {
		return ast.NoMemberID, false
	}
	return t.OwnMember(log, "trace")
}
