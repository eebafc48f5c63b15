package token

import "fmt"

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident
	Meta // @:name or @name

	IntLit
	FloatLit
	StringLit
	RegexLit // ~/pattern/flags

	KwPackage
	KwImport
	KwUsing
	KwClass
	KwInterface
	KwEnum
	KwAbstract
	KwTypedef
	KwExtends
	KwImplements
	KwVar
	KwFinal
	KwFunction
	KwNew
	KwReturn
	KwIf
	KwElse
	KwWhile
	KwDo
	KwFor
	KwIn
	KwBreak
	KwContinue
	KwSwitch
	KwCase
	KwDefault
	KwTry
	KwCatch
	KwThrow
	KwCast
	KwUntyped
	KwThis
	KwSuper
	KwNull
	KwTrue
	KwFalse
	KwStatic
	KwPublic
	KwPrivate
	KwInline
	KwOverride
	KwExtern
	KwDynamic
	KwMacro

	Plus             // +
	Minus            // -
	Star             // *
	Slash            // /
	Percent          // %
	Assign           // =
	PlusAssign       // +=
	MinusAssign      // -=
	StarAssign       // *=
	SlashAssign      // /=
	PercentAssign    // %=
	AmpAssign        // &=
	PipeAssign       // |=
	CaretAssign      // ^=
	ShlAssign        // <<=
	QuestionAssign   // ??=
	EqEq             // ==
	BangEq           // !=
	Lt               // <
	LtEq             // <=
	Gt               // >
	GtEq             // >=
	Shl              // <<
	Amp              // &
	Pipe             // |
	Caret            // ^
	Tilde            // ~
	AndAnd           // &&
	OrOr             // ||
	Bang             // !
	PlusPlus         // ++
	MinusMinus       // --
	Question         // ?
	QuestionQuestion // ??
	QuestionDot      // ?.
	Colon            // :
	Semicolon        // ;
	Comma            // ,
	Dot              // .
	DotDotDot        // ...
	Arrow            // ->
	FatArrow         // =>
	LParen           // (
	RParen           // )
	LBrace           // {
	RBrace           // }
	LBracket         // [
	RBracket         // ]

	kindCount
)

var kindNames = [...]string{
	Invalid: "Invalid", EOF: "EOF", Ident: "Ident", Meta: "Meta",
	IntLit: "IntLit", FloatLit: "FloatLit", StringLit: "StringLit", RegexLit: "RegexLit",
	KwPackage: "package", KwImport: "import", KwUsing: "using", KwClass: "class",
	KwInterface: "interface", KwEnum: "enum", KwAbstract: "abstract", KwTypedef: "typedef",
	KwExtends: "extends", KwImplements: "implements", KwVar: "var", KwFinal: "final",
	KwFunction: "function", KwNew: "new", KwReturn: "return", KwIf: "if", KwElse: "else",
	KwWhile: "while", KwDo: "do", KwFor: "for", KwIn: "in", KwBreak: "break",
	KwContinue: "continue", KwSwitch: "switch", KwCase: "case", KwDefault: "default",
	KwTry: "try", KwCatch: "catch", KwThrow: "throw", KwCast: "cast", KwUntyped: "untyped",
	KwThis: "this", KwSuper: "super", KwNull: "null", KwTrue: "true", KwFalse: "false",
	KwStatic: "static", KwPublic: "public", KwPrivate: "private", KwInline: "inline",
	KwOverride: "override", KwExtern: "extern", KwDynamic: "dynamic", KwMacro: "macro",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%", Assign: "=",
	PlusAssign: "+=", MinusAssign: "-=", StarAssign: "*=", SlashAssign: "/=",
	PercentAssign: "%=", AmpAssign: "&=", PipeAssign: "|=", CaretAssign: "^=",
	ShlAssign: "<<=", QuestionAssign: "??=", EqEq: "==", BangEq: "!=", Lt: "<", LtEq: "<=",
	Gt: ">", GtEq: ">=", Shl: "<<", Amp: "&", Pipe: "|", Caret: "^", Tilde: "~",
	AndAnd: "&&", OrOr: "||", Bang: "!", PlusPlus: "++", MinusMinus: "--",
	Question: "?", QuestionQuestion: "??", QuestionDot: "?.", Colon: ":", Semicolon: ";",
	Comma: ",", Dot: ".", DotDotDot: "...", Arrow: "->", FatArrow: "=>",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
}

func (k Kind) String() string {
	if k < kindCount && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KwPackage && k <= KwMacro
}

// IsAssignOp reports whether k is `=` or a compound assignment.
func (k Kind) IsAssignOp() bool {
	switch k {
	case Assign, PlusAssign, MinusAssign, StarAssign, SlashAssign, PercentAssign,
		AmpAssign, PipeAssign, CaretAssign, ShlAssign, QuestionAssign:
		return true
	default:
		return false
	}
}

// Modifier reports whether k is a member modifier keyword.
func (k Kind) Modifier() bool {
	switch k {
	case KwStatic, KwPublic, KwPrivate, KwInline, KwOverride, KwExtern, KwDynamic, KwMacro:
		return true
	default:
		return false
	}
}
