package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexUnterminatedBlock  Code = 1003
	LexBadNumber          Code = 1004
	LexUnterminatedRegex  Code = 1005

	// Парсерные
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynExpectSemicolon    Code = 2002
	SynExpectIdentifier   Code = 2003
	SynExpectType         Code = 2004
	SynExpectExpression   Code = 2005
	SynExpectColon        Code = 2006
	SynUnclosedParen      Code = 2007
	SynUnclosedBrace      Code = 2008
	SynUnclosedBracket    Code = 2009
	SynUnexpectedTopLevel Code = 2010
	SynForBadHeader       Code = 2011
	SynRestMustBeLast     Code = 2012

	// Семантические
	SemaInfo               Code = 3000
	SemaIncompatibleType   Code = 3001
	SemaMissingMember      Code = 3002
	SemaWrongMemberType    Code = 3003
	SemaArgumentCount      Code = 3004
	SemaArgumentType       Code = 3005
	SemaGuardNotBool       Code = 3006
	SemaConstantGuard      Code = 3007
	SemaUnreachable        Code = 3008
	SemaIndexOutOfBounds   Code = 3009
	SemaNoConstructor      Code = 3010
	SemaTypeCheckFailed    Code = 3011
	SemaReturnMismatch     Code = 3012
	SemaNotCallable        Code = 3013
	SemaInvalidRegex       Code = 3014
	SemaSuperWithoutParent Code = 3015
	SemaUnknownType        Code = 3016
	SemaImmutableAssign    Code = 3017
	SemaInternal           Code = 3099

	IOLoadFileError Code = 4001

	ProjInfo      Code = 5000
	ProjBadConfig Code = 5001
	ProjNoSources Code = 5002

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		LexInfo:                "Lexical information",
		LexUnknownChar:         "Unknown character",
		LexUnterminatedString:  "Unterminated string",
		LexUnterminatedBlock:   "Unterminated block comment",
		LexBadNumber:           "Bad number",
		LexUnterminatedRegex:   "Unterminated regular expression",
		SynInfo:                "Syntax information",
		SynUnexpectedToken:     "Unexpected token",
		SynExpectSemicolon:     "Expected semicolon",
		SynExpectIdentifier:    "Expected identifier",
		SynExpectType:          "Expected type",
		SynExpectExpression:    "Expected expression",
		SynExpectColon:         "Expected colon",
		SynUnclosedParen:       "Unclosed parenthesis",
		SynUnclosedBrace:       "Unclosed brace",
		SynUnclosedBracket:     "Unclosed bracket",
		SynUnexpectedTopLevel:  "Unexpected top-level item",
		SynForBadHeader:        "Malformed for header",
		SynRestMustBeLast:      "Rest parameter must be last",
		SemaInfo:               "Semantic information",
		SemaIncompatibleType:   "Incompatible type",
		SemaMissingMember:      "Missing structure member",
		SemaWrongMemberType:    "Structure member has wrong type",
		SemaArgumentCount:      "Wrong number of arguments",
		SemaArgumentType:       "Argument type mismatch",
		SemaGuardNotBool:       "Condition is not Bool",
		SemaConstantGuard:      "Constant condition",
		SemaUnreachable:        "Unreachable code",
		SemaIndexOutOfBounds:   "Index out of bounds",
		SemaNoConstructor:      "Class has no constructor",
		SemaTypeCheckFailed:    "Type check failed",
		SemaReturnMismatch:     "Return type mismatch",
		SemaNotCallable:        "Expression is not callable",
		SemaInvalidRegex:       "Invalid regular expression",
		SemaSuperWithoutParent: "super without parent constructor",
		SemaUnknownType:        "Unknown type",
		SemaImmutableAssign:    "Assignment to immutable value",
		SemaInternal:           "Internal inconsistency",
		IOLoadFileError:        "I/O load file error",
		ProjInfo:               "Project information",
		ProjBadConfig:          "Invalid configuration",
		ProjNoSources:          "No source files",
		ObsInfo:                "Observability information",
		ObsTimings:             "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

// Located reports whether diagnostics of this code point into a source
// file. I/O, project and observability codes carry a zero span.
func (c Code) Located() bool {
	return c >= LexInfo && c < IOLoadFileError
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
