package ast

import (
	"hxinfer/internal/source"
)

type Hints struct{ Decls, Members, Nodes, Types uint }

// Builder owns every arena of a syntax forest. One Builder may hold many
// files; handles are only meaningful inside the Builder that issued them.
type Builder struct {
	Files   *Arena[File]
	Decls   *Arena[Decl]
	Members *Arena[Member]
	Nodes   *Nodes
	Types   *Types
}

func NewBuilder(hints Hints) *Builder {
	if hints.Decls == 0 {
		hints.Decls = 1 << 5
	}
	if hints.Members == 0 {
		hints.Members = 1 << 7
	}
	if hints.Nodes == 0 {
		hints.Nodes = 1 << 9
	}
	if hints.Types == 0 {
		hints.Types = 1 << 7
	}
	return &Builder{
		Files:   NewArena[File](4),
		Decls:   NewArena[Decl](hints.Decls),
		Members: NewArena[Member](hints.Members),
		Nodes:   NewNodes(hints.Nodes),
		Types:   NewTypes(hints.Types),
	}
}

func (b *Builder) NewFile(src source.FileID, sp source.Span) FileID {
	return FileID(b.Files.Allocate(File{Source: src, Span: sp}))
}

func (b *Builder) File(id FileID) *File {
	return b.Files.Get(uint32(id))
}

func (b *Builder) NewDecl(d Decl) DeclID {
	return DeclID(b.Decls.Allocate(d))
}

func (b *Builder) Decl(id DeclID) *Decl {
	return b.Decls.Get(uint32(id))
}

func (b *Builder) PushDecl(file FileID, decl DeclID) {
	f := b.File(file)
	f.Decls = append(f.Decls, decl)
}

// NewMember allocates a member and appends it to its declaration.
func (b *Builder) NewMember(m Member) MemberID {
	id := MemberID(b.Members.Allocate(m))
	if d := b.Decl(m.Decl); d != nil {
		d.Members = append(d.Members, id)
	}
	return id
}

func (b *Builder) Member(id MemberID) *Member {
	return b.Members.Get(uint32(id))
}
