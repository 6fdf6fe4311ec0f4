package compiler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/m1dugh/algo-parser/util"
)

// A character level Tokenizer for algo.

// Algo source has those elements:
// * Keyword: end, return, function, while, for, if, else, declare.
// * Type: int, float, bool, string, array, or any name following a colon.
// * Separator: (, ), [, ], :, ,.
// * Operator: runs over + - % / * < > = !, split into unary and binary.
// * Constant: integer, float, boolean, string ("xxx").
// * Name: letters and underscore, then also digits and dots.
// Every physical line produces a closing EndLine token.

type TokenType int

const (
	LeftParenthesisTP  TokenType = iota // (
	RightParenthesisTP                  // )
	LeftBracketTP                       // [
	RightBracketTP                      // ]
	ColonTP                             // :
	CommaTP                             // ,
	EndLineTP                           // end of a physical line
	IntTP                               // 42
	FloatTP                             // 10.25
	BoolTP                              // true, false
	StringTP                            // "xxx"
	VariableTP                          // user defined name
	FuncCallTP                          // name directly followed by (
	KeywordTP                           // end, return, function, ...
	TypeTP                              // int, float, name after a colon
	ArrayTypeTP                         // type name followed by []
	BinaryOperatorTP                    // + - * / % <- > < >= <= == != !
	UnaryOperatorTP                     // - + binding to the next value
)

const (
	operatorChars  = "+-%/*<>=!"
	separatorChars = "()[]:,"
)

var keywordSet = map[string]bool{
	"end":      true,
	"return":   true,
	"function": true,
	"while":    true,
	"for":      true,
	"if":       true,
	"else":     true,
	"declare":  true,
}

var typeNameSet = map[string]bool{
	"int":    true,
	"float":  true,
	"bool":   true,
	"string": true,
	"array":  true,
}

var binaryOperatorSet = map[string]bool{
	">":  true,
	"<":  true,
	">=": true,
	"<=": true,
	"+":  true,
	"-":  true,
	"<-": true,
	"/":  true,
	"%":  true,
	"*":  true,
	"==": true,
	"!=": true,
	"!":  true,
}

var unaryOperatorSet = map[string]bool{
	"-": true,
	"+": true,
}

type Token struct {
	tp         TokenType
	content    string
	intValue   int64
	floatValue float64
	boolValue  bool
	line       int
	startPos   int
}

func (token *Token) String() string {
	switch token.tp {
	case LeftParenthesisTP:
		return "<LeftParenthesis '('>"
	case RightParenthesisTP:
		return "<RightParenthesis ')'>"
	case LeftBracketTP:
		return "<LeftBracket '['>"
	case RightBracketTP:
		return "<RightBracket ']'>"
	case ColonTP:
		return "<Colon ':'>"
	case CommaTP:
		return "<Comma ','>"
	case EndLineTP:
		return "<EndLine>"
	case IntTP:
		return fmt.Sprintf("<Int (%d)>", token.intValue)
	case FloatTP:
		return fmt.Sprintf("<Float (%v)>", token.floatValue)
	case BoolTP:
		return fmt.Sprintf("<Bool (%t)>", token.boolValue)
	case StringTP:
		return fmt.Sprintf("<String ('%s')>", token.content)
	case VariableTP:
		return fmt.Sprintf("<Variable (%s)>", token.content)
	case FuncCallTP:
		return fmt.Sprintf("<FunctionCall (%s)>", token.content)
	case KeywordTP:
		return fmt.Sprintf("<Keyword (%s)>", token.content)
	case TypeTP:
		return fmt.Sprintf("<TypeDef (%s)>", token.content)
	case ArrayTypeTP:
		return fmt.Sprintf("<ArrayTypeDef (%s)>", token.content)
	case BinaryOperatorTP:
		return fmt.Sprintf("<BinaryOperator (%s)>", token.content)
	case UnaryOperatorTP:
		return fmt.Sprintf("<UnaryOperator (%s)>", token.content)
	}
	return fmt.Sprintf("<Unknown (%s)>", token.content)
}

type lexContext int

const (
	noContext lexContext = iota
	nameContext
	operatorContext
	separatorContext
	numericContext
	quotedContext
)

// Tokenizer walks source one character at a time. Characters accumulate
// into a pending token until one shows up that cannot extend the current
// context, then the pending text is classified by the context it was
// read in and the character is processed again from a fresh context.
type Tokenizer struct {
	tokens  []*Token
	context lexContext
	pending []rune
	line    int
	pos     int
}

func (tokenizer *Tokenizer) Tokenize(rd io.Reader) ([]*Token, error) {
	bfReader := bufio.NewReader(rd)
	for {
		line, err := bfReader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if err == io.EOF && len(line) == 0 {
			return tokenizer.tokens, nil
		}
		if lexErr := tokenizer.tokenizeLine(string(line)); lexErr != nil {
			return nil, lexErr
		}
		tokenizer.line++
		if err == io.EOF {
			return tokenizer.tokens, nil
		}
	}
}

func (tokenizer *Tokenizer) tokenizeLine(line string) error {
	chars := []rune(line)
	i := 0
	for i < len(chars) {
		c := chars[i]
		flush := false
		advance := true
		accumulate := true
		if isSpace(c) && tokenizer.context != quotedContext {
			accumulate = false
			flush = tokenizer.context != noContext
		} else {
			switch tokenizer.context {
			case noContext:
				switch {
				case strings.ContainsRune(operatorChars, c):
					tokenizer.context = operatorContext
				case strings.ContainsRune(separatorChars, c):
					tokenizer.context = separatorContext
				case util.IsLetterOrUnderscore(c):
					tokenizer.context = nameContext
				case util.IsNumericChar(c):
					tokenizer.context = numericContext
				case c == '"':
					tokenizer.context = quotedContext
					accumulate = false
				default:
					return tokenizer.makeError(string(c), tokenizer.line, i, "invalid character")
				}
				tokenizer.pos = i
			case nameContext:
				// Digits and dots keep extending a name once it started.
				if !util.IsLetterOrUnderscore(c) && !util.IsNumericChar(c) {
					flush, advance = true, false
				}
			case separatorContext:
				flush, advance = true, false
			case operatorContext:
				if !strings.ContainsRune(operatorChars, c) {
					flush, advance = true, false
				}
			case numericContext:
				if !util.IsNumericChar(c) {
					flush, advance = true, false
				}
			case quotedContext:
				if c == '"' {
					flush = true
					accumulate = false
				}
			}
		}
		if flush {
			if err := tokenizer.flushPending(); err != nil {
				return err
			}
		}
		if advance {
			if accumulate {
				tokenizer.pending = append(tokenizer.pending, c)
			}
			i++
		}
	}
	switch tokenizer.context {
	case noContext:
	case quotedContext:
		return tokenizer.makeError(string(tokenizer.pending), tokenizer.line, tokenizer.pos, "incorrect string format")
	default:
		if err := tokenizer.flushPending(); err != nil {
			return err
		}
	}
	tokenizer.appendToken(&Token{tp: EndLineTP, line: tokenizer.line, startPos: len(chars)})
	return nil
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// flushPending classifies the accumulated text by the context it was
// read in and resets the machine for the next character.
func (tokenizer *Tokenizer) flushPending() error {
	value := string(tokenizer.pending)
	tokenizer.pending = tokenizer.pending[:0]
	context := tokenizer.context
	tokenizer.context = noContext
	switch context {
	case nameContext:
		tokenizer.lexName(value)
	case operatorContext:
		return tokenizer.lexOperators(value)
	case numericContext:
		return tokenizer.lexNumber(value)
	case quotedContext:
		tokenizer.appendToken(&Token{tp: StringTP, content: value, line: tokenizer.line, startPos: tokenizer.pos})
	case separatorContext:
		return tokenizer.lexSeparator(value)
	default:
		return tokenizer.makeError(value, tokenizer.line, tokenizer.pos, "empty tokenize context")
	}
	return nil
}

func (tokenizer *Tokenizer) appendToken(token *Token) {
	tokenizer.tokens = append(tokenizer.tokens, token)
}

func (tokenizer *Tokenizer) lastToken() *Token {
	if len(tokenizer.tokens) == 0 {
		return nil
	}
	return tokenizer.tokens[len(tokenizer.tokens)-1]
}

func (tokenizer *Tokenizer) lexName(value string) {
	token := &Token{content: value, line: tokenizer.line, startPos: tokenizer.pos}
	switch {
	case typeNameSet[value]:
		token.tp = TypeTP
	case keywordSet[value]:
		token.tp = KeywordTP
	case value == "true" || value == "false":
		token.tp = BoolTP
		token.boolValue = value == "true"
	default:
		token.tp = VariableTP
		// "name: custom" reads the name after the colon as a type.
		if last := tokenizer.lastToken(); last != nil && last.tp == ColonTP {
			token.tp = TypeTP
		}
	}
	tokenizer.appendToken(token)
}

// lexOperators decomposes a run of operator characters into operator
// tokens, trying the longest prefix first and shrinking it from the
// right until something matches. A unary match wins over a binary one
// when the previous token is an operator, a keyword or a comma. At the
// very start of a line only a unary operator can open the run.
func (tokenizer *Tokenizer) lexOperators(value string) error {
	prev := tokenizer.lastToken()
	consumed := 0
	width := len(value)
	for width > 0 {
		op := value[consumed : consumed+width]
		preferUnary := prev == nil || prev.tp == BinaryOperatorTP ||
			prev.tp == UnaryOperatorTP || prev.tp == KeywordTP || prev.tp == CommaTP
		var token *Token
		switch {
		case preferUnary && unaryOperatorSet[op]:
			token = &Token{tp: UnaryOperatorTP, content: op, line: tokenizer.line, startPos: tokenizer.pos + consumed}
		case prev != nil && binaryOperatorSet[op]:
			token = &Token{tp: BinaryOperatorTP, content: op, line: tokenizer.line, startPos: tokenizer.pos + consumed}
		default:
			width--
			continue
		}
		tokenizer.appendToken(token)
		prev = token
		consumed += width
		width = len(value) - consumed
	}
	if consumed != len(value) {
		return tokenizer.makeError(value, tokenizer.line, tokenizer.pos, "invalid operator")
	}
	return nil
}

func (tokenizer *Tokenizer) lexNumber(value string) error {
	if v, ok := toInt(value); ok {
		tokenizer.appendToken(&Token{tp: IntTP, content: value, intValue: v, line: tokenizer.line, startPos: tokenizer.pos})
		return nil
	}
	if v, ok := toFloat(value); ok {
		tokenizer.appendToken(&Token{tp: FloatTP, content: value, floatValue: v, line: tokenizer.line, startPos: tokenizer.pos})
		return nil
	}
	return tokenizer.makeError(value, tokenizer.line, tokenizer.pos, "incorrect number format")
}

func toInt(value string) (int64, bool) {
	var result int64
	for _, c := range value {
		if !util.IsNumber(c) {
			return 0, false
		}
		result = result*10 + int64(c-'0')
	}
	return result, true
}

// toFloat accumulates the integer part forward and the fraction part
// backward from the least significant digit, one divide by ten before
// each add plus a final one, then sums the two parts.
func toFloat(value string) (float64, bool) {
	var upper, lower float64
	chars := []rune(value)
	i := 0
	for ; i < len(chars); i++ {
		c := chars[i]
		if util.IsNumber(c) {
			upper = upper*10 + float64(c-'0')
		} else if c == '.' {
			i++
			break
		} else {
			return 0, false
		}
	}
	for j := len(chars) - 1; j >= i; j-- {
		c := chars[j]
		if !util.IsNumber(c) {
			return 0, false
		}
		lower = lower/10 + float64(c-'0')
	}
	lower /= 10
	return upper + lower, true
}

func (tokenizer *Tokenizer) lexSeparator(value string) error {
	switch value {
	case "(":
		tokenizer.lexLeftParenthesis()
	case ")":
		tokenizer.appendToken(&Token{tp: RightParenthesisTP, content: value, line: tokenizer.line, startPos: tokenizer.pos})
	case "[":
		tokenizer.appendToken(&Token{tp: LeftBracketTP, content: value, line: tokenizer.line, startPos: tokenizer.pos})
	case "]":
		tokenizer.lexRightBracket()
	case ":":
		tokenizer.appendToken(&Token{tp: ColonTP, content: value, line: tokenizer.line, startPos: tokenizer.pos})
	case ",":
		tokenizer.appendToken(&Token{tp: CommaTP, content: value, line: tokenizer.line, startPos: tokenizer.pos})
	default:
		return tokenizer.makeError(value, tokenizer.line, tokenizer.pos, "unknown separator")
	}
	return nil
}

// lexLeftParenthesis rewrites a preceding bare Variable into a
// FunctionCall, unless that variable names the function being declared.
func (tokenizer *Tokenizer) lexLeftParenthesis() {
	n := len(tokenizer.tokens)
	if n > 0 && tokenizer.tokens[n-1].tp == VariableTP {
		declared := n > 1 && tokenizer.tokens[n-2].tp == KeywordTP && tokenizer.tokens[n-2].content == "function"
		if !declared {
			name := tokenizer.tokens[n-1]
			tokenizer.tokens[n-1] = &Token{tp: FuncCallTP, content: name.content, line: name.line, startPos: name.startPos}
		}
	}
	tokenizer.appendToken(&Token{tp: LeftParenthesisTP, content: "(", line: tokenizer.line, startPos: tokenizer.pos})
}

// lexRightBracket folds a trailing "type [" pair into one ArrayType
// token, which is how int[] reaches the parser as a single type name.
func (tokenizer *Tokenizer) lexRightBracket() {
	n := len(tokenizer.tokens)
	if n >= 2 && tokenizer.tokens[n-1].tp == LeftBracketTP && tokenizer.tokens[n-2].tp == TypeTP {
		name := tokenizer.tokens[n-2]
		tokenizer.tokens = tokenizer.tokens[:n-2]
		tokenizer.appendToken(&Token{tp: ArrayTypeTP, content: name.content, line: name.line, startPos: name.startPos})
		return
	}
	tokenizer.appendToken(&Token{tp: RightBracketTP, content: "]", line: tokenizer.line, startPos: tokenizer.pos})
}

func (tokenizer *Tokenizer) makeError(near string, line, pos int, msg string) error {
	return errors.New(fmt.Sprintf("tokenizer error near %s at line %d:%d, msg: %s", near, line, pos, msg))
}

func (tokenizer *Tokenizer) Reset() {
	tokenizer.tokens = nil
	tokenizer.context = noContext
	tokenizer.pending = tokenizer.pending[:0]
	tokenizer.line, tokenizer.pos = 0, 0
}
