package parser

// TokenType enumerates lexical categories recognised by the lexer.
type TokenType int

const (
	tokenEOF TokenType = iota
	tokenIllegal

	tokenIdentifier
	tokenNumber
	tokenString

	// Keywords
	tokenLet
	tokenIf
	tokenElse
	tokenFor
	tokenIn
	tokenWhile
	tokenBreak
	tokenContinue
	tokenReturn
	tokenImport
	tokenAs
	tokenTrue
	tokenFalse
	tokenNone
	tokenAnd
	tokenOr
	tokenNot

	// Operators and punctuation
	tokenAssign       // =
	tokenPlusAssign   // +=
	tokenMinusAssign  // -=
	tokenStarAssign   // *=
	tokenSlashAssign  // /=
	tokenEqualEqual   // ==
	tokenBangEqual    // !=
	tokenPlus         // +
	tokenMinus        // -
	tokenStar         // *
	tokenSlash        // /
	tokenLess         // <
	tokenLessEqual    // <=
	tokenGreater      // >
	tokenGreaterEqual // >=
	tokenArrow        // =>
	tokenDot          // .
	tokenDots         // ..

	tokenComma     // ,
	tokenSemicolon // ;
	tokenColon     // :
	tokenLParen    // (
	tokenRParen    // )
	tokenLBrace    // {
	tokenRBrace    // }
)

func (tt TokenType) String() string {
	switch tt {
	case tokenEOF:
		return "EOF"
	case tokenIllegal:
		return "illegal"
	case tokenIdentifier:
		return "identifier"
	case tokenNumber:
		return "number"
	case tokenString:
		return "string"
	case tokenLet:
		return "let"
	case tokenIf:
		return "if"
	case tokenElse:
		return "else"
	case tokenFor:
		return "for"
	case tokenIn:
		return "in"
	case tokenWhile:
		return "while"
	case tokenBreak:
		return "break"
	case tokenContinue:
		return "continue"
	case tokenReturn:
		return "return"
	case tokenImport:
		return "import"
	case tokenAs:
		return "as"
	case tokenTrue:
		return "true"
	case tokenFalse:
		return "false"
	case tokenNone:
		return "none"
	case tokenAnd:
		return "and"
	case tokenOr:
		return "or"
	case tokenNot:
		return "not"
	case tokenAssign:
		return "="
	case tokenPlusAssign:
		return "+="
	case tokenMinusAssign:
		return "-="
	case tokenStarAssign:
		return "*="
	case tokenSlashAssign:
		return "/="
	case tokenEqualEqual:
		return "=="
	case tokenBangEqual:
		return "!="
	case tokenPlus:
		return "+"
	case tokenMinus:
		return "-"
	case tokenStar:
		return "*"
	case tokenSlash:
		return "/"
	case tokenLess:
		return "<"
	case tokenLessEqual:
		return "<="
	case tokenGreater:
		return ">"
	case tokenGreaterEqual:
		return ">="
	case tokenArrow:
		return "=>"
	case tokenDot:
		return "."
	case tokenDots:
		return ".."
	case tokenComma:
		return ","
	case tokenSemicolon:
		return ";"
	case tokenColon:
		return ":"
	case tokenLParen:
		return "("
	case tokenRParen:
		return ")"
	case tokenLBrace:
		return "{"
	case tokenRBrace:
		return "}"
	default:
		return "unknown"
	}
}

// Token is a single lexical unit produced by the lexer.
type Token struct {
	Type   TokenType
	Lexeme string // raw lexeme for identifiers and numbers
	Value  string // decoded literal for strings
	Pos    Position
}
