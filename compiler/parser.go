package compiler

import (
	"io"
	"os"
	"strings"
)

// The Parser turns the token stream into one GlobalAst. An algo file is
// a flat list of statements, function declarations may sit between plain
// statements in any order. Blocks are closed by the end keyword instead
// of braces, so every statement form consumes tokens up to and including
// its own terminator.

type Parser struct {
	currentTokenPos int
	currentTokens   []*Token
}

func (parser *Parser) Parse(rd io.Reader) (*GlobalAst, error) {
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.Tokenize(rd)
	if err != nil {
		return nil, err
	}
	parser.reset()
	parser.currentTokens = tokens
	return parser.ParseGlobal()
}

func (parser *Parser) ParseFile(fileName string) (*GlobalAst, error) {
	if !isAlgoFile(fileName) {
		return nil, makeParserError(nil, "%s is not an algo file", fileName)
	}
	rd, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer rd.Close()
	return parser.Parse(rd)
}

func isAlgoFile(fileName string) bool {
	return strings.HasSuffix(fileName, ".algo")
}

func (parser *Parser) ParseGlobal() (*GlobalAst, error) {
	var statements []Ast
	for parser.hasRemainTokens() {
		statement, err := parser.parseStatement()
		if err != nil {
			return nil, err
		}
		if statement != nil {
			statements = append(statements, statement)
		}
	}
	return &GlobalAst{Statements: statements}, nil
}

// parseStatement dispatches on the leading keyword and falls back to an
// expression statement. A bare EndLine yields no statement at all, so
// the caller has to skip nil results.
func (parser *Parser) parseStatement() (Ast, error) {
	token := parser.peekToken()
	if token == nil {
		return nil, makeParserError(nil, "missing token")
	}
	if token.tp == EndLineTP {
		parser.stepForward()
		return nil, nil
	}
	if token.tp == KeywordTP {
		switch token.content {
		case "if":
			parser.stepForward()
			return parser.parseConditional(false)
		case "function":
			parser.stepForward()
			return parser.parseFunctionDeclaration()
		case "declare":
			parser.stepForward()
			return parser.parseHeaderDeclaration()
		case "while":
			parser.stepForward()
			return parser.parseWhileLoop()
		case "return":
			parser.stepForward()
			return parser.parseReturn()
		}
	}
	return parser.parseExpression()
}

// if condition
//     statements
// else
//     statements
// end
//
// An else followed by another if chains: the nested condition becomes
// the single statement of the else branch, and only the outermost if
// consumes the shared closing end.
func (parser *Parser) parseConditional(chained bool) (Ast, error) {
	condition, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}

	hasElse := false
	var thenBranch []Ast
	for {
		token := parser.peekToken()
		if token == nil {
			return nil, makeParserError(nil, "unfinished if statement")
		}
		if token.tp == KeywordTP && token.content == "else" {
			parser.stepForward()
			hasElse = true
			break
		}
		if token.tp == KeywordTP && token.content == "end" {
			if !chained {
				parser.stepForward()
			}
			break
		}
		statement, err := parser.parseStatement()
		if err != nil {
			return nil, err
		}
		if statement != nil {
			thenBranch = append(thenBranch, statement)
		}
	}

	var elseBranch []Ast
	for hasElse {
		token := parser.peekToken()
		if token == nil {
			return nil, makeParserError(nil, "unfinished if-else statement")
		}
		if token.tp == KeywordTP && token.content == "end" {
			if !chained {
				parser.stepForward()
			}
			break
		}
		if token.tp == EndLineTP {
			parser.stepForward()
			continue
		}
		if token.tp == KeywordTP && token.content == "if" {
			parser.stepForward()
			nested, err := parser.parseConditional(true)
			if err != nil {
				return nil, err
			}
			elseBranch = append(elseBranch, nested)
			continue
		}
		statement, err := parser.parseStatement()
		if err != nil {
			return nil, err
		}
		if statement != nil {
			elseBranch = append(elseBranch, statement)
		}
	}

	return &CondAst{Condition: condition, Then: thenBranch, Else: elseBranch}, nil
}

// function name(param: type, ...) [: type]
//     statements
// end
func (parser *Parser) parseFunctionDeclaration() (Ast, error) {
	name, params, returnType, err := parser.parseFunctionHeader()
	if err != nil {
		return nil, err
	}
	var body []Ast
	for {
		token := parser.peekToken()
		if token == nil {
			return nil, makeParserError(nil, "unexpected end of document parsing function '%s'", name)
		}
		if token.tp == KeywordTP && token.content == "end" {
			parser.stepForward()
			break
		}
		statement, err := parser.parseStatement()
		if err != nil {
			return nil, err
		}
		if statement != nil {
			body = append(body, statement)
		}
	}
	return &FuncDeclAst{Name: name, Params: params, ReturnType: returnType, Body: body}, nil
}

// declare function name(param: type, ...) [: type]
func (parser *Parser) parseHeaderDeclaration() (Ast, error) {
	token := parser.nextToken()
	if token == nil {
		return nil, makeParserError(nil, "unexpected end of document after declare keyword")
	}
	if token.tp != KeywordTP || token.content != "function" {
		return nil, makeParserError(token, "unexpected token %s after declare keyword", token)
	}
	name, params, returnType, err := parser.parseFunctionHeader()
	if err != nil {
		return nil, err
	}
	return &FuncHeaderAst{Name: name, Params: params, ReturnType: returnType}, nil
}

// parseFunctionHeader reads "name(param: type, ...)" plus an optional
// ": type" return clause. An empty returned type name means the function
// returns nothing, and in that case the closing EndLine stays in the
// stream for the body loop to skip.
func (parser *Parser) parseFunctionHeader() (string, []*VariableAst, string, error) {
	token := parser.nextToken()
	if token == nil {
		return "", nil, "", makeParserError(nil, "missing name for function")
	}
	if token.tp != VariableTP {
		return "", nil, "", makeParserError(token, "invalid token %s for function name", token)
	}
	name := token.content

	token = parser.nextToken()
	if token == nil {
		return "", nil, "", makeParserError(nil, "missing '(' after function declaration ('%s')", name)
	}
	if token.tp != LeftParenthesisTP {
		return "", nil, "", makeParserError(token, "expected '(', got %s for function '%s'", token, name)
	}

	var params []*VariableAst
	for parser.hasRemainTokens() {
		token = parser.peekToken()
		if token.tp == RightParenthesisTP {
			parser.stepForward()
			break
		}
		if token.tp == CommaTP {
			parser.stepForward()
			continue
		}
		param, err := parser.parseVariable(true)
		if err != nil {
			return "", nil, "", err
		}
		params = append(params, param)
	}

	token = parser.peekToken()
	if token == nil {
		return "", nil, "", makeParserError(nil, "invalid function declaration for '%s'", name)
	}
	switch token.tp {
	case EndLineTP:
		return name, params, "", nil
	case ColonTP:
		parser.stepForward()
	default:
		return "", nil, "", makeParserError(token, "unexpected token %s in function '%s' declaration", token, name)
	}

	token = parser.nextToken()
	if token == nil {
		return "", nil, "", makeParserError(nil, "unexpected end of document in function declaration '%s'", name)
	}
	if token.tp != TypeTP {
		return "", nil, "", makeParserError(token, "unexpected token %s in function declaration '%s', expected a type", token, name)
	}
	returnType := token.content

	token = parser.nextToken()
	if token == nil {
		return "", nil, "", makeParserError(nil, "unexpected end of document in function declaration '%s'", name)
	}
	if token.tp != EndLineTP {
		return "", nil, "", makeParserError(token, "expected end of line, got %s in function declaration '%s'", token, name)
	}
	return name, params, returnType, nil
}

func (parser *Parser) parseReturn() (Ast, error) {
	if parser.peekToken() == nil {
		return &ReturnAst{}, nil
	}
	value, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ReturnAst{Value: value}, nil
}

// while condition
//     statements
// end
func (parser *Parser) parseWhileLoop() (Ast, error) {
	condition, err := parser.parseExpression()
	if err != nil {
		return nil, err
	}
	var body []Ast
	for {
		token := parser.peekToken()
		if token == nil {
			return nil, makeParserError(nil, "error in while loop, unexpected end of document")
		}
		if token.tp == KeywordTP && token.content == "end" {
			parser.stepForward()
			break
		}
		statement, err := parser.parseStatement()
		if err != nil {
			return nil, err
		}
		if statement != nil {
			body = append(body, statement)
		}
	}
	return &WhileAst{Condition: condition, Body: body}, nil
}

// parseVariable reads a name with an optional ": type" suffix. Function
// parameters require the type, everywhere else it may be left out.
func (parser *Parser) parseVariable(requireType bool) (*VariableAst, error) {
	token := parser.nextToken()
	if token == nil {
		return nil, makeParserError(nil, "missing token for variable")
	}
	if token.tp != VariableTP {
		return nil, makeParserError(token, "invalid token %s for variable declaration", token)
	}
	name := token.content

	next := parser.peekToken()
	if next == nil {
		return &VariableAst{Name: name}, nil
	}
	if next.tp != ColonTP {
		if !requireType {
			return &VariableAst{Name: name}, nil
		}
		return nil, makeParserError(next, "missing typedef for variable '%s'", name)
	}
	parser.stepForward()

	token = parser.nextToken()
	if token == nil {
		return nil, makeParserError(nil, "missing type declaration for variable %s", name)
	}
	switch token.tp {
	case TypeTP:
		return &VariableAst{Name: name, Type: &TypeRef{Name: token.content}}, nil
	case ArrayTypeTP:
		return &VariableAst{Name: name, Type: &TypeRef{Name: token.content, IsArray: true}}, nil
	}
	return nil, makeParserError(token, "invalid type token %s for variable '%s'", token, name)
}

func (parser *Parser) peekToken() *Token {
	if !parser.hasRemainTokens() {
		return nil
	}
	return parser.currentTokens[parser.currentTokenPos]
}

func (parser *Parser) nextToken() *Token {
	if !parser.hasRemainTokens() {
		return nil
	}
	token := parser.currentTokens[parser.currentTokenPos]
	parser.currentTokenPos++
	return token
}

func (parser *Parser) stepForward() {
	parser.currentTokenPos++
}

func (parser *Parser) hasRemainTokens() bool {
	return parser.currentTokenPos < len(parser.currentTokens)
}

func (parser *Parser) reset() {
	parser.currentTokenPos, parser.currentTokens = 0, nil
}
