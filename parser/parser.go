package parser

import (
	"fmt"
	"strconv"
)

// Parse translates source text into a Program AST.
func Parse(src string) (*Program, error) {
	p := &parser{
		lx: newLexer(src),
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseProgram()
}

type parser struct {
	lx      *lexer
	curr    Token
	peekTok Token
	hasPeek bool
}

func (p *parser) advance() error {
	if p.hasPeek {
		p.curr = p.peekTok
		p.hasPeek = false
		return nil
	}
	tok, err := p.lx.nextToken()
	if err != nil {
		return err
	}
	p.curr = tok
	return nil
}

func (p *parser) peek() (Token, error) {
	if !p.hasPeek {
		tok, err := p.lx.nextToken()
		if err != nil {
			return Token{}, err
		}
		p.peekTok = tok
		p.hasPeek = true
	}
	return p.peekTok, nil
}

func (p *parser) expect(tt TokenType) (Token, error) {
	if p.curr.Type != tt {
		return Token{}, p.errorf(p.curr.Pos, "expected %s, found %s", tt, p.curr.Type)
	}
	tok := p.curr
	if err := p.advance(); err != nil {
		return Token{}, err
	}
	return tok, nil
}

func (p *parser) parseProgram() (*Program, error) {
	stmts, err := p.parseStatements(tokenEOF)
	if err != nil {
		return nil, err
	}
	return &Program{Stmts: stmts}, nil
}

// parseStatements reads semicolon separated statements until the closing
// token, which is left in p.curr.
func (p *parser) parseStatements(closing TokenType) ([]Expr, error) {
	var stmts []Expr
	for {
		for p.curr.Type == tokenSemicolon {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		if p.curr.Type == closing || p.curr.Type == tokenEOF {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		switch p.curr.Type {
		case tokenSemicolon, closing:
		default:
			return nil, p.errorf(p.curr.Pos, "expected end of statement, found %s", p.curr.Type)
		}
	}
	return stmts, nil
}

func (p *parser) parseStatement() (Expr, error) {
	switch p.curr.Type {
	case tokenLet:
		return p.parseLet()
	case tokenImport:
		return p.parseImport()
	case tokenReturn:
		return p.parseReturn()
	case tokenBreak:
		tok, _ := p.expect(tokenBreak)
		return &BreakExpr{Posn: tok.Pos}, nil
	case tokenContinue:
		tok, _ := p.expect(tokenContinue)
		return &ContinueExpr{Posn: tok.Pos}, nil
	default:
		return p.parseExpression()
	}
}

func (p *parser) parseLet() (Expr, error) {
	letTok, err := p.expect(tokenLet)
	if err != nil {
		return nil, err
	}
	if p.curr.Type == tokenIdentifier {
		next, err := p.peek()
		if err != nil {
			return nil, err
		}
		if next.Type == tokenLParen {
			return p.parseLetClosure(letTok)
		}
	}
	pattern, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	var init Expr
	if p.curr.Type == tokenAssign {
		if err := p.advance(); err != nil {
			return nil, err
		}
		init, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	} else if pattern.Kind != PatternIdent {
		return nil, p.errorf(p.curr.Pos, "expected =, found %s", p.curr.Type)
	}
	return &LetExpr{
		Pattern: pattern,
		Init:    init,
		Posn:    letTok.Pos,
	}, nil
}

func (p *parser) parseLetClosure(letTok Token) (Expr, error) {
	nameTok, err := p.expect(tokenIdentifier)
	if err != nil {
		return nil, err
	}
	openTok, err := p.expect(tokenLParen)
	if err != nil {
		return nil, err
	}
	items, _, err := p.parseItems()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRParen); err != nil {
		return nil, err
	}
	params, err := p.itemsToParams(items)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenAssign); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &LetExpr{
		Pattern: &Pattern{Kind: PatternIdent, Name: nameTok.Lexeme, Posn: nameTok.Pos},
		Init: &ClosureExpr{
			Name:   nameTok.Lexeme,
			Params: params,
			Body:   body,
			Posn:   openTok.Pos,
		},
		Posn: letTok.Pos,
	}, nil
}

func (p *parser) parsePattern() (*Pattern, error) {
	switch p.curr.Type {
	case tokenIdentifier:
		tok, _ := p.expect(tokenIdentifier)
		if tok.Lexeme == "_" {
			return &Pattern{Kind: PatternPlaceholder, Posn: tok.Pos}, nil
		}
		return &Pattern{Kind: PatternIdent, Name: tok.Lexeme, Posn: tok.Pos}, nil
	case tokenLParen:
		openTok, _ := p.expect(tokenLParen)
		items, _, err := p.parseItems()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		out := &Pattern{Kind: PatternDestructure, Posn: openTok.Pos}
		for _, item := range items {
			sub, err := p.itemToPattern(item)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, sub)
		}
		return out, nil
	default:
		return nil, p.errorf(p.curr.Pos, "expected identifier")
	}
}

func (p *parser) itemToPattern(item Expr) (*Pattern, error) {
	switch it := item.(type) {
	case *IdentExpr:
		if it.Name == "_" {
			return &Pattern{Kind: PatternPlaceholder, Posn: it.Posn}, nil
		}
		return &Pattern{Kind: PatternIdent, Name: it.Name, Posn: it.Posn}, nil
	case *SpreadExpr:
		if it.Expr == nil {
			return &Pattern{Kind: PatternRest, Posn: it.Posn}, nil
		}
		if ident, ok := it.Expr.(*IdentExpr); ok {
			return &Pattern{Kind: PatternRest, Name: ident.Name, Posn: it.Posn}, nil
		}
		return nil, p.errorf(it.Expr.Pos(), "expected identifier")
	case *ArrayExpr:
		out := &Pattern{Kind: PatternDestructure, Posn: it.Posn}
		for _, sub := range it.Items {
			pat, err := p.itemToPattern(sub)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, pat)
		}
		return out, nil
	default:
		return nil, p.errorf(item.Pos(), "expected identifier or destructuring pattern")
	}
}

func (p *parser) parseImport() (Expr, error) {
	importTok, err := p.expect(tokenImport)
	if err != nil {
		return nil, err
	}
	source, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	imp := &ImportExpr{
		Source: source,
		Posn:   importTok.Pos,
	}
	switch p.curr.Type {
	case tokenAs:
		if err := p.advance(); err != nil {
			return nil, err
		}
		aliasTok, err := p.expect(tokenIdentifier)
		if err != nil {
			return nil, err
		}
		imp.Alias = aliasTok.Lexeme
	case tokenColon:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.curr.Type == tokenStar {
			if err := p.advance(); err != nil {
				return nil, err
			}
			imp.Wildcard = true
			return imp, nil
		}
		for {
			if p.curr.Type != tokenIdentifier {
				return nil, p.errorf(p.curr.Pos, "expected identifier")
			}
			nameTok, _ := p.expect(tokenIdentifier)
			item := ImportItem{Name: nameTok.Lexeme, Posn: nameTok.Pos}
			if p.curr.Type == tokenAs {
				if err := p.advance(); err != nil {
					return nil, err
				}
				aliasTok, err := p.expect(tokenIdentifier)
				if err != nil {
					return nil, err
				}
				item.Alias = aliasTok.Lexeme
			}
			imp.Items = append(imp.Items, item)
			if p.curr.Type != tokenComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	return imp, nil
}

func (p *parser) parseReturn() (Expr, error) {
	retTok, err := p.expect(tokenReturn)
	if err != nil {
		return nil, err
	}
	var result Expr
	switch p.curr.Type {
	case tokenSemicolon, tokenRBrace, tokenEOF:
	default:
		result, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	return &ReturnExpr{
		Result: result,
		Posn:   retTok.Pos,
	}, nil
}

func (p *parser) parseExpression() (Expr, error) {
	left, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	op, ok := assignOp(p.curr.Type)
	if !ok {
		return left, nil
	}
	ident, isIdent := left.(*IdentExpr)
	if !isIdent {
		return nil, p.errorf(left.Pos(), "cannot assign to this expression")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &AssignExpr{
		Op:   op,
		Name: ident.Name,
		Expr: value,
		Posn: ident.Posn,
	}, nil
}

func assignOp(tt TokenType) (BinaryOp, bool) {
	switch tt {
	case tokenAssign:
		return OpNone, true
	case tokenPlusAssign:
		return OpAdd, true
	case tokenMinusAssign:
		return OpSub, true
	case tokenStarAssign:
		return OpMul, true
	case tokenSlashAssign:
		return OpDiv, true
	}
	return OpNone, false
}

func (p *parser) parseLogicalOr() (Expr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == tokenOr {
		opTok, _ := p.expect(tokenOr)
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Op:    OpOr,
			Left:  left,
			Right: right,
			Posn:  opTok.Pos,
		}
	}
	return left, nil
}

func (p *parser) parseLogicalAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == tokenAnd {
		opTok, _ := p.expect(tokenAnd)
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Op:    OpAnd,
			Left:  left,
			Right: right,
			Posn:  opTok.Pos,
		}
	}
	return left, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.curr.Type != tokenNot {
		return p.parseComparison()
	}
	opTok, _ := p.expect(tokenNot)
	expr, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	return &UnaryExpr{
		Op:   OpNot,
		Expr: expr,
		Posn: opTok.Pos,
	}, nil
}

func comparisonOp(tt TokenType) (BinaryOp, bool) {
	switch tt {
	case tokenEqualEqual:
		return OpEq, true
	case tokenBangEqual:
		return OpNeq, true
	case tokenLess:
		return OpLt, true
	case tokenLessEqual:
		return OpLeq, true
	case tokenGreater:
		return OpGt, true
	case tokenGreaterEqual:
		return OpGeq, true
	case tokenIn:
		return OpIn, true
	}
	return OpNone, false
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := comparisonOp(p.curr.Type)
		if !ok {
			return left, nil
		}
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{
			Op:    op,
			Left:  left,
			Right: right,
			Posn:  opTok.Pos,
		}
	}
}

func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == tokenPlus || p.curr.Type == tokenMinus {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		op := OpAdd
		if opTok.Type == tokenMinus {
			op = OpSub
		}
		left = &BinaryExpr{
			Op:    op,
			Left:  left,
			Right: right,
			Posn:  opTok.Pos,
		}
	}
	return left, nil
}

func (p *parser) parseFactor() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.curr.Type == tokenStar || p.curr.Type == tokenSlash {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		op := OpMul
		if opTok.Type == tokenSlash {
			op = OpDiv
		}
		left = &BinaryExpr{
			Op:    op,
			Left:  left,
			Right: right,
			Posn:  opTok.Pos,
		}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.curr.Type == tokenMinus {
		opTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{
			Op:   OpNeg,
			Expr: expr,
			Posn: opTok.Pos,
		}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.curr.Type {
		case tokenLParen:
			callTok, _ := p.expect(tokenLParen)
			args, _, err := p.parseItems()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokenRParen); err != nil {
				return nil, err
			}
			expr = &CallExpr{
				Callee: expr,
				Args:   args,
				Posn:   callTok.Pos,
			}
		case tokenDot:
			dotTok, _ := p.expect(tokenDot)
			fieldTok, err := p.expect(tokenIdentifier)
			if err != nil {
				return nil, err
			}
			expr = &FieldExpr{
				Target: expr,
				Field:  fieldTok.Lexeme,
				Posn:   dotTok.Pos,
			}
		default:
			return expr, nil
		}
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	switch p.curr.Type {
	case tokenIdentifier:
		tok, _ := p.expect(tokenIdentifier)
		if p.curr.Type == tokenArrow {
			return p.finishClosure([]Param{{Kind: ParamPositional, Name: tok.Lexeme, Posn: tok.Pos}}, tok.Pos)
		}
		return &IdentExpr{
			Name: tok.Lexeme,
			Posn: tok.Pos,
		}, nil
	case tokenNumber:
		tok, _ := p.expect(tokenNumber)
		return p.numberLiteral(tok)
	case tokenString:
		tok, _ := p.expect(tokenString)
		return &StrExpr{
			Value: tok.Value,
			Posn:  tok.Pos,
		}, nil
	case tokenTrue, tokenFalse:
		tok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &BoolExpr{
			Value: tok.Type == tokenTrue,
			Posn:  tok.Pos,
		}, nil
	case tokenNone:
		tok, _ := p.expect(tokenNone)
		return &NoneExpr{Posn: tok.Pos}, nil
	case tokenLParen:
		return p.parseParenthesized()
	case tokenLBrace:
		return p.parseBlock()
	case tokenIf:
		return p.parseIf()
	case tokenWhile:
		return p.parseWhile()
	case tokenFor:
		return p.parseFor()
	case tokenEOF:
		return nil, p.errorf(p.curr.Pos, "unexpected end of input")
	default:
		return nil, p.errorf(p.curr.Pos, "unexpected token %s in expression", p.curr.Type)
	}
}

func (p *parser) numberLiteral(tok Token) (Expr, error) {
	if i, err := strconv.ParseInt(tok.Lexeme, 10, 64); err == nil {
		return &IntExpr{Value: i, Posn: tok.Pos}, nil
	}
	f, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil {
		return nil, p.errorf(tok.Pos, "invalid number literal %s", tok.Lexeme)
	}
	return &FloatExpr{Value: f, Posn: tok.Pos}, nil
}

// parseItems reads comma separated collection items up to, but not
// including, the closing parenthesis.
func (p *parser) parseItems() ([]Expr, bool, error) {
	var items []Expr
	trailingComma := false
	for p.curr.Type != tokenRParen {
		if p.curr.Type == tokenEOF {
			return nil, false, p.errorf(p.curr.Pos, "expected ), found EOF")
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, false, err
		}
		items = append(items, item)
		trailingComma = false
		if p.curr.Type != tokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, false, err
		}
		trailingComma = true
	}
	return items, trailingComma, nil
}

func (p *parser) parseItem() (Expr, error) {
	switch p.curr.Type {
	case tokenDots:
		dotsTok, _ := p.expect(tokenDots)
		if p.curr.Type == tokenComma || p.curr.Type == tokenRParen {
			return &SpreadExpr{Posn: dotsTok.Pos}, nil
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &SpreadExpr{Expr: expr, Posn: dotsTok.Pos}, nil
	case tokenIdentifier, tokenString:
		next, err := p.peek()
		if err != nil {
			return nil, err
		}
		if next.Type != tokenColon {
			break
		}
		keyTok := p.curr
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenColon); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		named := &NamedExpr{Expr: value, Posn: keyTok.Pos}
		if keyTok.Type == tokenString {
			named.Name = keyTok.Value
			named.Quoted = true
		} else {
			named.Name = keyTok.Lexeme
		}
		return named, nil
	}
	return p.parseExpression()
}

func (p *parser) parseParenthesized() (Expr, error) {
	openTok, err := p.expect(tokenLParen)
	if err != nil {
		return nil, err
	}
	// (:) is the empty dictionary.
	if p.curr.Type == tokenColon {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, err
		}
		return &DictExpr{Posn: openTok.Pos}, nil
	}
	items, trailingComma, err := p.parseItems()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRParen); err != nil {
		return nil, err
	}
	if p.curr.Type == tokenArrow {
		params, err := p.itemsToParams(items)
		if err != nil {
			return nil, err
		}
		return p.finishClosure(params, openTok.Pos)
	}
	return p.collection(items, trailingComma, openTok.Pos)
}

func (p *parser) collection(items []Expr, trailingComma bool, pos Position) (Expr, error) {
	if len(items) == 1 && !trailingComma {
		switch items[0].(type) {
		case *NamedExpr, *SpreadExpr:
		default:
			return items[0], nil
		}
	}
	named, positional := 0, 0
	for _, item := range items {
		switch it := item.(type) {
		case *NamedExpr:
			named++
		case *SpreadExpr:
			if it.Expr == nil {
				return nil, p.errorf(it.Posn, "expected expression after ..")
			}
		default:
			positional++
		}
	}
	if named > 0 && positional > 0 {
		return nil, p.errorf(pos, "cannot mix named pairs and positional items in a collection")
	}
	if named > 0 {
		return &DictExpr{Items: items, Posn: pos}, nil
	}
	return &ArrayExpr{Items: items, Posn: pos}, nil
}

func (p *parser) itemsToParams(items []Expr) ([]Param, error) {
	params := make([]Param, 0, len(items))
	for _, item := range items {
		switch it := item.(type) {
		case *IdentExpr:
			params = append(params, Param{Kind: ParamPositional, Name: it.Name, Posn: it.Posn})
		case *NamedExpr:
			if it.Quoted {
				return nil, p.errorf(it.Posn, "expected identifier")
			}
			params = append(params, Param{Kind: ParamNamed, Name: it.Name, Default: it.Expr, Posn: it.Posn})
		case *SpreadExpr:
			if it.Expr == nil {
				params = append(params, Param{Kind: ParamSink, Posn: it.Posn})
				continue
			}
			ident, ok := it.Expr.(*IdentExpr)
			if !ok {
				return nil, p.errorf(it.Expr.Pos(), "expected identifier")
			}
			params = append(params, Param{Kind: ParamSink, Name: ident.Name, Posn: it.Posn})
		default:
			return nil, p.errorf(item.Pos(), "expected identifier, named pair or argument sink")
		}
	}
	return params, nil
}

func (p *parser) finishClosure(params []Param, pos Position) (Expr, error) {
	if _, err := p.expect(tokenArrow); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ClosureExpr{
		Params: params,
		Body:   body,
		Posn:   pos,
	}, nil
}

func (p *parser) parseBlock() (*BlockExpr, error) {
	braceTok, err := p.expect(tokenLBrace)
	if err != nil {
		return nil, err
	}
	stmts, err := p.parseStatements(tokenRBrace)
	if err != nil {
		return nil, err
	}
	if p.curr.Type != tokenRBrace {
		return nil, p.errorf(p.curr.Pos, "expected } to close block")
	}
	if _, err := p.expect(tokenRBrace); err != nil {
		return nil, err
	}
	return &BlockExpr{
		Stmts: stmts,
		Posn:  braceTok.Pos,
	}, nil
}

func (p *parser) parseIf() (Expr, error) {
	ifTok, err := p.expect(tokenIf)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	out := &IfExpr{
		Cond: cond,
		Then: thenBlock,
		Posn: ifTok.Pos,
	}
	// Allow `else` on the line after the closing brace.
	if p.curr.Type == tokenSemicolon {
		next, err := p.peek()
		if err != nil {
			return nil, err
		}
		if next.Type == tokenElse {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if p.curr.Type != tokenElse {
		return out, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.curr.Type == tokenIf {
		out.Else, err = p.parseIf()
	} else {
		out.Else, err = p.parseBlock()
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parser) parseWhile() (Expr, error) {
	whTok, err := p.expect(tokenWhile)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileExpr{
		Cond: cond,
		Body: body,
		Posn: whTok.Pos,
	}, nil
}

func (p *parser) parseFor() (Expr, error) {
	forTok, err := p.expect(tokenFor)
	if err != nil {
		return nil, err
	}
	pattern, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenIn); err != nil {
		return nil, err
	}
	iter, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ForExpr{
		Pattern: pattern,
		Iter:    iter,
		Body:    body,
		Posn:    forTok.Pos,
	}, nil
}

func (p *parser) errorf(pos Position, format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	if p.curr.Type == tokenEOF {
		return newIncompleteError(pos, err)
	}
	return newError(pos, err)
}
