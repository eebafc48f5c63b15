package token

var keywords = map[string]Kind{
	"package":    KwPackage,
	"import":     KwImport,
	"using":      KwUsing,
	"class":      KwClass,
	"interface":  KwInterface,
	"enum":       KwEnum,
	"abstract":   KwAbstract,
	"typedef":    KwTypedef,
	"extends":    KwExtends,
	"implements": KwImplements,
	"var":        KwVar,
	"final":      KwFinal,
	"function":   KwFunction,
	"new":        KwNew,
	"return":     KwReturn,
	"if":         KwIf,
	"else":       KwElse,
	"while":      KwWhile,
	"do":         KwDo,
	"for":        KwFor,
	"in":         KwIn,
	"break":      KwBreak,
	"continue":   KwContinue,
	"switch":     KwSwitch,
	"case":       KwCase,
	"default":    KwDefault,
	"try":        KwTry,
	"catch":      KwCatch,
	"throw":      KwThrow,
	"cast":       KwCast,
	"untyped":    KwUntyped,
	"this":       KwThis,
	"super":      KwSuper,
	"null":       KwNull,
	"true":       KwTrue,
	"false":      KwFalse,
	"static":     KwStatic,
	"public":     KwPublic,
	"private":    KwPrivate,
	"inline":     KwInline,
	"override":   KwOverride,
	"extern":     KwExtern,
	"dynamic":    KwDynamic,
	"macro":      KwMacro,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
