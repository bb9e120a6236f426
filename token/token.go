// Package token defines the lexical token kinds produced by the scanner and
// consumed by the compiler.
package token

// Kind identifies the lexical category of a Token.
type Kind int

const (
	// Single-character tokens.
	LeftParen Kind = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// One or two character tokens.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals.
	Identifier
	String
	Number

	// Keywords.
	And
	Class
	Else
	False
	For
	Fun
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	Error
	Eof
)

var names = map[Kind]string{
	LeftParen: "LeftParen", RightParen: "RightParen",
	LeftBrace: "LeftBrace", RightBrace: "RightBrace",
	Comma: "Comma", Dot: "Dot", Minus: "Minus", Plus: "Plus",
	Semicolon: "Semicolon", Slash: "Slash", Star: "Star",
	Bang: "Bang", BangEqual: "BangEqual",
	Equal: "Equal", EqualEqual: "EqualEqual",
	Greater: "Greater", GreaterEqual: "GreaterEqual",
	Less: "Less", LessEqual: "LessEqual",
	Identifier: "Identifier", String: "String", Number: "Number",
	And: "And", Class: "Class", Else: "Else", False: "False",
	For: "For", Fun: "Fun", If: "If", Nil: "Nil", Or: "Or",
	Print: "Print", Return: "Return", Super: "Super", This: "This",
	True: "True", Var: "Var", While: "While",
	Error: "Error", Eof: "Eof",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "Unknown"
}

// Keywords maps reserved identifiers to their keyword Kind.
var Keywords = map[string]Kind{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"for":    For,
	"fun":    Fun,
	"if":     If,
	"nil":    Nil,
	"or":     Or,
	"print":  Print,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
}

// Token is a single lexical token: a kind, a view into the source, and the
// 1-based source line it started on. Error tokens carry their message in
// Lexeme instead of pointing at source text.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
}
