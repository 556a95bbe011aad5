package compiler

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	program        = statement* EOF
//	statement      = expression ";"
//	expression     = assignment
//	assignment     = equality ("=" assignment)?
//	equality       = relational (("==" | "!=") relational)*
//	relational     = additive (("<" | "<=" | ">" | ">=") additive)*
//	additive       = multiplicative (("+" | "-") multiplicative)*
//	multiplicative = unary (("*" | "/") unary)*
//	unary          = ("+" | "-") unary | primary
//	primary        = "(" expression ")" | IDENTIFIER | INTEGER
type Parser struct {
	tokens []Token
	pos    int
	vars   *SymbolTable
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens, vars: NewSymbolTable()}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		end := 0
		if n := len(p.tokens); n > 0 {
			end = p.tokens[n-1].Pos
		}
		return Token{Type: EOF, Pos: end}
	}
	return p.tokens[p.pos]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// match consumes the current token if its type is tt.
func (p *Parser) match(tt TokenType) bool {
	if p.peek().Type != tt {
		return false
	}
	p.advance()
	return true
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType, symbol string) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.errorAt(tok, symbol)
	}
	return p.advance(), nil
}

func (p *Parser) errorAt(tok Token, expected string) error {
	return &ParseError{Pos: tok.Pos, Expected: expected, Found: tok.describe()}
}

// parseProgram parses statements until EOF.
func (p *Parser) parseProgram() ([]Expr, error) {
	var stmts []Expr
	for p.peek().Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (Expr, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON, `";"`); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	return p.parseAssignment()
}

// parseAssignment handles "=", which is right-associative: the right-hand
// side recurses instead of looping.
func (p *Parser) parseAssignment() (Expr, error) {
	start := p.peek()
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	if !p.match(ASSIGN) {
		return left, nil
	}

	target, ok := left.(*VarRef)
	if !ok {
		return nil, p.errorAt(start, "variable")
	}
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &Assign{Target: target, Value: value}, nil
}

// parseEquality handles == and !=
func (p *Parser) parseEquality() (Expr, error) {
	expr, err := p.parseRelational()
	if err != nil {
		return nil, err
	}

	for {
		var op BinaryOp
		switch p.peek().Type {
		case EQUALS:
			op = OpEq
		case NOT_EQ:
			op = OpNe
		default:
			return expr, nil
		}
		p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
}

// parseRelational handles <, <=, > and >=.
// "a > b" becomes (b < a) and "a >= b" becomes (b <= a).
func (p *Parser) parseRelational() (Expr, error) {
	expr, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	for {
		tt := p.peek().Type
		if tt != LESS && tt != LESS_EQ && tt != GREATER && tt != GREATER_EQ {
			return expr, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		switch tt {
		case LESS:
			expr = &BinaryExpr{Op: OpLt, Left: expr, Right: right}
		case LESS_EQ:
			expr = &BinaryExpr{Op: OpLe, Left: expr, Right: right}
		case GREATER:
			expr = &BinaryExpr{Op: OpLt, Left: right, Right: expr}
		case GREATER_EQ:
			expr = &BinaryExpr{Op: OpLe, Left: right, Right: expr}
		}
	}
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}

	for {
		var op BinaryOp
		switch p.peek().Type {
		case PLUS:
			op = OpAdd
		case MINUS:
			op = OpSub
		default:
			return expr, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
}

// parseMultiplicative handles * and /
func (p *Parser) parseMultiplicative() (Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		var op BinaryOp
		switch p.peek().Type {
		case STAR:
			op = OpMul
		case SLASH:
			op = OpDiv
		default:
			return expr, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
}

// parseUnary handles prefix + and -. Unary minus is (0 - operand).
func (p *Parser) parseUnary() (Expr, error) {
	if p.match(PLUS) {
		return p.parseUnary()
	}
	if p.match(MINUS) {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: OpSub, Left: &Literal{Value: 0}, Right: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, `")"`); err != nil {
			return nil, err
		}
		return expr, nil

	case IDENTIFIER:
		p.advance()
		sym := p.vars.Resolve(tok.Lexeme[0])
		return &VarRef{Name: sym.Name, Offset: sym.Offset}, nil

	case INTEGER:
		p.advance()
		return &Literal{Value: tok.Value}, nil
	}
	return nil, p.errorAt(tok, "expression")
}

// Parse builds the statement list for a token stream ending in EOF.
func Parse(tokens []Token) (*Program, error) {
	p := NewParser(tokens)
	stmts, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return &Program{Stmts: stmts, Vars: p.vars}, nil
}
