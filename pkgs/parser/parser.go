// Package parser implements a pull-based recursive-descent parser:
// operator precedence, statement grouping, command detection, pipeline
// composition via left-associative parsing of `|`, and the
// IF/ELSE/WHILE/FOR structural rules.
package parser

import (
	"log/slog"
	"os"

	"github.com/mysh-lang/mysh/internal/value"
	"github.com/mysh-lang/mysh/pkgs/ast"
	"github.com/mysh-lang/mysh/pkgs/errors"
	"github.com/mysh-lang/mysh/pkgs/lexer"
)

// Resolver tells the parser whether a bareword names a registered
// built-in or an executable on PATH. The parser consults it, not the
// other way round, so the registry stays a runtime concern and the
// parser stays free of process-spawning side effects.
type Resolver interface {
	IsCommand(name string) bool
}

// Parser builds an *ast.Group (the program's root block) from source
// text, given the scope it should root new child scopes under.
type Parser struct {
	lex      *lexer.Lexer
	resolver Resolver
	cur      lexer.Token
	scope    *value.Scope // current top of the parse-time scope stack
	inArgs   bool
	log      *slog.Logger
}

// New constructs a Parser over src, rooted at rootScope.
func New(src string, rootScope *value.Scope, resolver Resolver) (*Parser, error) {
	home, _ := rootScope.Lookup("HOME")
	homePath := ""
	if home != nil {
		homePath = home.Value.String()
	}
	p := &Parser{
		lex:      lexer.New(src, homePath),
		resolver: resolver,
		scope:    rootScope,
		log:      debugLogger(),
	}
	if err := p.nextWith(true); err != nil {
		return nil, err
	}
	return p, nil
}

func debugLogger() *slog.Logger {
	if os.Getenv("MYSH_DEBUG") == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo + 1}))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Parse is the package-level entry point: parse the full input into the
// top-level block Group.
func Parse(src string, rootScope *value.Scope, resolver Resolver) (*ast.Group, error) {
	p, err := New(src, rootScope, resolver)
	if err != nil {
		return nil, err
	}
	return p.ParseProgram()
}

// ctxAt builds the lexer Context for the next pull: cmdOrEmpty tracks
// the parser's "current expression" state for the contextual `/ - *`
// delimiter rule — true at the very start of a statement or
// argument and immediately after a command name, false once a complete
// value has been parsed and we are looking for an infix operator.
func (p *Parser) ctxAt(cmdOrEmpty bool) lexer.Context {
	return lexer.Context{InArgs: p.inArgs, CurrentIsCmdOrEmpty: cmdOrEmpty}
}

func (p *Parser) nextWith(cmdOrEmpty bool) error {
	t, err := p.lex.NextToken(p.ctxAt(cmdOrEmpty))
	if err != nil {
		return err
	}
	p.cur = t
	p.log.Debug("parser: token", "type", p.cur.Type.String(), "text", p.cur.Text)
	return nil
}

// ParseProgram parses the entire input as a top-level block: a statement
// sequence terminated by End rather than `)`.
func (p *Parser) ParseProgram() (*ast.Group, error) {
	g := &ast.Group{Scope: p.scope, At: ast.Location{Line: 1, Col: 1}}
	if err := p.parseStmtList(g, lexer.TokenEnd); err != nil {
		return nil, err
	}
	g.Closed = true
	return g, nil
}

// parseStmtList fills g.Stmts until it sees `end` (TokenEnd or
// TokenRightParen), consuming `;` separators between statements.
func (p *Parser) parseStmtList(g *ast.Group, end lexer.TokenType) error {
	for {
		for p.cur.Type == lexer.TokenSemicolon {
			if err := p.nextWith(true); err != nil {
				return err
			}
		}
		if p.cur.Type == end {
			return nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return err
		}
		g.Stmts = append(g.Stmts, stmt)
		if p.cur.Type == end {
			return nil
		}
		if p.cur.Type != lexer.TokenSemicolon {
			return errors.NewEvalError(p.cur.Loc, "expected ';' or end of block, found %q", p.cur.Text)
		}
	}
}

func (p *Parser) parseStatement() (ast.Node, error) {
	return p.parseAssignOrPipe()
}

// parseAssignOrPipe handles the VeryLow-priority operators `=` and `|`,
// left-associative.
func (p *Parser) parseAssignOrPipe() (ast.Node, error) {
	lhs, err := p.parseLow()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.TokenOperator && (ast.Op(p.cur.Text) == ast.OpAssign || ast.Op(p.cur.Text) == ast.OpPipe) {
		op := ast.Op(p.cur.Text)
		loc := p.cur.Loc
		if err := p.nextWith(true); err != nil {
			return nil, err
		}
		if op == ast.OpAssign && p.statementEndsHere() {
			// `x =` with no RHS: the erase form.
			lhs = &ast.Bin{Op: op, Lhs: lhs, Rhs: &ast.Empty{At: loc}, At: loc}
			continue
		}
		rhs, err := p.parseLow()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Bin{Op: op, Lhs: lhs, Rhs: rhs, At: loc}
	}
	return lhs, nil
}

func (p *Parser) statementEndsHere() bool {
	switch p.cur.Type {
	case lexer.TokenSemicolon, lexer.TokenRightParen, lexer.TokenEnd:
		return true
	}
	return false
}

var lowOps = map[ast.Op]bool{
	ast.OpAdd: true, ast.OpSub: true, ast.OpAnd: true, ast.OpOr: true,
	ast.OpGt: true, ast.OpGe: true, ast.OpLt: true, ast.OpLe: true,
	ast.OpNeq: true, ast.OpEq: true, ast.OpRedirect: true, ast.OpAppend: true,
}

// parseLow handles the Low-priority binary operators.
func (p *Parser) parseLow() (ast.Node, error) {
	lhs, err := p.parseHigh()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.TokenOperator && lowOps[ast.Op(p.cur.Text)] {
		op := ast.Op(p.cur.Text)
		loc := p.cur.Loc
		if err := p.nextWith(false); err != nil {
			return nil, err
		}
		rhs, err := p.parseHigh()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Bin{Op: op, Lhs: lhs, Rhs: rhs, At: loc}
	}
	return lhs, nil
}

var highOps = map[ast.Op]bool{ast.OpMul: true, ast.OpDiv: true, ast.OpIntDiv: true, ast.OpMod: true}

// parseHigh handles the High-priority binary operators.
func (p *Parser) parseHigh() (ast.Node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.TokenOperator && highOps[ast.Op(p.cur.Text)] {
		op := ast.Op(p.cur.Text)
		loc := p.cur.Loc
		if err := p.nextWith(false); err != nil {
			return nil, err
		}
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = &ast.Bin{Op: op, Lhs: lhs, Rhs: rhs, At: loc}
	}
	return lhs, nil
}

func (p *Parser) parseUnary() (ast.Node, error) {
	if p.cur.Type == lexer.TokenOperator && ast.Op(p.cur.Text) == ast.OpNot {
		loc := p.cur.Loc
		if err := p.nextWith(true); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Bin{Op: ast.OpNot, Lhs: nil, Rhs: operand, At: loc}, nil
	}
	return p.parsePrimary()
}

// parsePrimary parses a literal, a parenthesized block, a control-flow
// construct, or a command invocation.
func (p *Parser) parsePrimary() (ast.Node, error) {
	switch p.cur.Type {
	case lexer.TokenLeftParen:
		return p.parseGroup()
	case lexer.TokenKeyword:
		return p.parseKeywordPrimary()
	case lexer.TokenLiteral:
		return p.parseLiteralPrimary()
	case lexer.TokenEnd, lexer.TokenSemicolon, lexer.TokenRightParen:
		return &ast.Empty{At: p.cur.Loc}, nil
	default:
		return nil, errors.NewEvalError(p.cur.Loc, "unexpected token %q", p.cur.Text)
	}
}

func (p *Parser) parseKeywordPrimary() (ast.Node, error) {
	switch p.cur.Text {
	case "BREAK", "CONTINUE":
		leaf := &ast.Leaf{Text: p.cur.Text, At: p.cur.Loc}
		if err := p.nextWith(false); err != nil {
			return nil, err
		}
		return leaf, nil
	case "IF":
		return p.parseBranch()
	case "WHILE":
		return p.parseLoop()
	case "FOR":
		return p.parseFor()
	case "QUIT":
		leaf := &ast.Leaf{Text: "QUIT", At: p.cur.Loc}
		if err := p.nextWith(false); err != nil {
			return nil, err
		}
		return leaf, nil
	default:
		return nil, errors.NewEvalError(p.cur.Loc, "unexpected keyword %q", p.cur.Text)
	}
}

// parseLiteralPrimary resolves a bareword either as the start of a
// command invocation (outside Args context, if it names a built-in or
// PATH executable) or as a plain Leaf.
func (p *Parser) parseLiteralPrimary() (ast.Node, error) {
	loc := p.cur.Loc
	text := p.cur.Text
	quoted := p.cur.Quoted

	if !p.inArgs && !quoted && p.resolver != nil && p.resolver.IsCommand(text) {
		if err := p.nextWith(true); err != nil {
			return nil, err
		}
		return p.parseCmd(text, loc)
	}

	if err := p.nextWith(false); err != nil {
		return nil, err
	}
	return &ast.Leaf{Text: text, Quoted: quoted, At: loc}, nil
}

// parseCmd collects the Args group following a resolved command name,
// consuming tokens until a statement terminator, a closing paren, or a
// Low/VeryLow-priority operator.
func (p *Parser) parseCmd(name string, loc ast.Location) (ast.Node, error) {
	wasInArgs := p.inArgs
	p.inArgs = true
	args := &ast.Args{Scope: p.scope.NewChild(), At: p.cur.Loc}
	for p.isArgToken() {
		argLoc := p.cur.Loc
		argText := p.cur.Text
		argQuoted := p.cur.Quoted
		if err := p.nextWith(false); err != nil {
			p.inArgs = wasInArgs
			return nil, err
		}
		args.Items = append(args.Items, &ast.Leaf{Text: argText, Quoted: argQuoted, At: argLoc})
	}
	args.Closed = true
	p.inArgs = wasInArgs
	return &ast.Cmd{Name: name, Args: args, At: loc}, nil
}

func (p *Parser) isArgToken() bool {
	switch p.cur.Type {
	case lexer.TokenLiteral:
		return true
	case lexer.TokenKeyword:
		return p.cur.Text == "BREAK" || p.cur.Text == "CONTINUE" || p.cur.Text == "QUIT"
	default:
		return false
	}
}

// parseGroup parses a parenthesized block: a fresh child scope and
// statement sequence, ended by `)`.
func (p *Parser) parseGroup() (*ast.Group, error) {
	loc := p.cur.Loc
	childScope := p.scope.NewChild()
	prevScope := p.scope
	p.scope = childScope
	wasInArgs := p.inArgs
	p.inArgs = false

	if err := p.nextWith(true); err != nil {
		p.scope = prevScope
		p.inArgs = wasInArgs
		return nil, err
	}
	g := &ast.Group{Scope: childScope, At: loc}
	if err := p.parseStmtList(g, lexer.TokenRightParen); err != nil {
		p.scope = prevScope
		p.inArgs = wasInArgs
		return nil, err
	}
	if p.cur.Type != lexer.TokenRightParen {
		p.scope = prevScope
		p.inArgs = wasInArgs
		return nil, errors.NewEvalError(p.cur.Loc, "unmatched parenthesis")
	}
	g.Closed = true
	p.scope = prevScope
	p.inArgs = wasInArgs
	if err := p.nextWith(false); err != nil {
		return nil, err
	}
	return g, nil
}

func (p *Parser) expectParenGroup() (*ast.Group, error) {
	if p.cur.Type != lexer.TokenLeftParen {
		return nil, errors.NewEvalError(p.cur.Loc, "expected '(', found %q", p.cur.Text)
	}
	return p.parseGroup()
}

// parseBranch parses `IF (cond) (ifBody) [ELSE (elseBody)]`.
func (p *Parser) parseBranch() (*ast.Branch, error) {
	loc := p.cur.Loc
	if err := p.nextWith(true); err != nil {
		return nil, err
	}
	condGroup, err := p.expectParenGroup()
	if err != nil {
		return nil, err
	}
	cond := groupAsExpr(condGroup)

	ifBody, err := p.expectParenGroup()
	if err != nil {
		return nil, err
	}

	b := &ast.Branch{Cond: cond, IfBranch: ifBody, At: loc}
	if p.cur.Type == lexer.TokenKeyword && p.cur.Text == "ELSE" {
		b.ExpectElse = true
		if err := p.nextWith(true); err != nil {
			return nil, err
		}
		elseBody, err := p.expectParenGroup()
		if err != nil {
			return nil, errors.NewEvalError(p.cur.Loc, "ELSE without a body")
		}
		b.ElseBranch = elseBody
	}
	return b, nil
}

// groupAsExpr unwraps a single-statement parenthesized group into its
// bare expression, which is how conditions `(cond)` are written: the
// parens exist for grouping, not to make a nested block scope matter.
func groupAsExpr(g *ast.Group) ast.Node {
	if len(g.Stmts) == 1 {
		return g.Stmts[0]
	}
	return g
}

// parseLoop parses `WHILE (cond) (body)`.
func (p *Parser) parseLoop() (*ast.Loop, error) {
	loc := p.cur.Loc
	if err := p.nextWith(true); err != nil {
		return nil, err
	}
	condGroup, err := p.expectParenGroup()
	if err != nil {
		return nil, err
	}
	body, err := p.expectParenGroup()
	if err != nil {
		return nil, err
	}
	return &ast.Loop{Cond: groupAsExpr(condGroup), Body: body, At: loc}, nil
}

// parseFor parses `FOR name IN args; (body)`.
func (p *Parser) parseFor() (*ast.For, error) {
	loc := p.cur.Loc
	if err := p.nextWith(true); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.TokenLiteral {
		return nil, errors.NewEvalError(p.cur.Loc, "expected loop variable name after FOR")
	}
	varName := p.cur.Text
	if err := p.nextWith(true); err != nil {
		return nil, err
	}
	if p.cur.Type != lexer.TokenKeyword || p.cur.Text != "IN" {
		return nil, errors.NewEvalError(p.cur.Loc, "expected IN after FOR %s", varName)
	}

	forScope := p.scope.NewChild()
	prevScope := p.scope
	p.scope = forScope
	wasInArgs := p.inArgs
	p.inArgs = true
	if err := p.nextWith(true); err != nil {
		p.scope = prevScope
		p.inArgs = wasInArgs
		return nil, err
	}
	args := &ast.Args{Scope: forScope, At: p.cur.Loc}
	for p.isArgToken() {
		argLoc := p.cur.Loc
		argText := p.cur.Text
		argQuoted := p.cur.Quoted
		if err := p.nextWith(false); err != nil {
			p.scope = prevScope
			p.inArgs = wasInArgs
			return nil, err
		}
		args.Items = append(args.Items, &ast.Leaf{Text: argText, Quoted: argQuoted, At: argLoc})
	}
	args.Closed = true
	p.inArgs = wasInArgs
	if p.cur.Type != lexer.TokenSemicolon {
		p.scope = prevScope
		return nil, errors.NewEvalError(p.cur.Loc, "expected ';' after FOR %s IN ...", varName)
	}
	if err := p.nextWith(true); err != nil {
		p.scope = prevScope
		return nil, err
	}
	body, err := p.expectParenGroup()
	p.scope = prevScope
	if err != nil {
		return nil, err
	}
	if len(args.Items) == 0 {
		return nil, errors.NewEvalError(loc, "FOR requires a non-empty IN list")
	}
	return &ast.For{Var: varName, In: args, Body: body, Scope: forScope, At: loc}, nil
}

// Keywords lists the reserved words the lexer recognizes, in
// alphabetical order.
func Keywords() []string {
	return []string{"BREAK", "CONTINUE", "ELSE", "FOR", "IF", "IN", "QUIT", "WHILE"}
}
