package token

type Type string

type Token struct {
	Type    Type
	Literal string
	Line    int // 1-based
	Col     int // 1-based
}

const (
	// Special
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"

	// Layout. NEWLINE terminates a logical line; INDENT/DEDENT open and
	// close suites. None of them are emitted inside brackets.
	NEWLINE Type = "NEWLINE"
	INDENT  Type = "INDENT"
	DEDENT  Type = "DEDENT"

	// Identifiers + literals
	IDENT  Type = "IDENT"
	INT    Type = "INT"
	FLOAT  Type = "FLOAT"
	STRING Type = "STRING"

	// Keywords
	DEF      Type = "DEF"
	RETURN   Type = "RETURN"
	IF       Type = "IF"
	ELIF     Type = "ELIF"
	ELSE     Type = "ELSE"
	WHILE    Type = "WHILE"
	FOR      Type = "FOR"
	IN       Type = "IN"
	BREAK    Type = "BREAK"
	CONTINUE Type = "CONTINUE"
	PASS     Type = "PASS"
	AND      Type = "AND"
	OR       Type = "OR"
	NOT      Type = "NOT"
	TRUE     Type = "TRUE"
	FALSE    Type = "FALSE"
	NONE     Type = "NONE"

	// Operators
	ASSIGN         Type = "="
	PLUS           Type = "+"
	MINUS          Type = "-"
	STAR           Type = "*"
	SLASH          Type = "/"
	FLOORDIV       Type = "//"
	PERCENT        Type = "%"
	PLUS_ASSIGN    Type = "+="
	MINUS_ASSIGN   Type = "-="
	STAR_ASSIGN    Type = "*="
	SLASH_ASSIGN   Type = "/="
	PERCENT_ASSIGN Type = "%="

	EQ Type = "=="
	NE Type = "!="
	LT Type = "<"
	LE Type = "<="
	GT Type = ">"
	GE Type = ">="

	// Delimiters
	COMMA    Type = ","
	COLON    Type = ":"
	LPAREN   Type = "("
	RPAREN   Type = ")"
	LBRACKET Type = "["
	RBRACKET Type = "]"
	LBRACE   Type = "{"
	RBRACE   Type = "}"
)

var keywords = map[string]Type{
	"def":      DEF,
	"return":   RETURN,
	"if":       IF,
	"elif":     ELIF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"break":    BREAK,
	"continue": CONTINUE,
	"pass":     PASS,
	"and":      AND,
	"or":       OR,
	"not":      NOT,
	"True":     TRUE,
	"False":    FALSE,
	"None":     NONE,
}

func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
