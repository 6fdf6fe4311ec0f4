package compiler

import (
	"errors"
	"fmt"
)

// Expression parsing uses two stacks: finished nodes pile up on the
// output stack while operators wait on the operator stack until an
// incoming operator with low enough precedence reduces them. An opening
// parenthesis fences reductions, and a function call token on the
// operator stack later collects everything above the placeholder node it
// pushed on the output stack.

// parseExpression builds a single expression from the tokens up to and
// including the next EndLine.
func (parser *Parser) parseExpression() (Ast, error) {
	var outputStack []Ast
	var operatorStack []*Token
	var err error

loop:
	for {
		token := parser.peekToken()
		if token == nil {
			return nil, makeParserError(nil, "missing token")
		}
		switch token.tp {
		case BoolTP:
			outputStack = append(outputStack, &BoolAst{Value: token.boolValue})
			parser.stepForward()
		case IntTP:
			outputStack = append(outputStack, &IntAst{Value: token.intValue})
			parser.stepForward()
		case FloatTP:
			outputStack = append(outputStack, &FloatAst{Value: token.floatValue})
			parser.stepForward()
		case StringTP:
			outputStack = append(outputStack, &StringAst{Value: token.content})
			parser.stepForward()
		case VariableTP:
			// Only a variable at the head of an expression may carry a
			// ": type" suffix, as in "count: int <- 0".
			if len(operatorStack) == 0 {
				variable, err := parser.parseVariable(false)
				if err != nil {
					return nil, err
				}
				outputStack = append(outputStack, variable)
			} else {
				outputStack = append(outputStack, &VariableAst{Name: token.content})
				parser.stepForward()
			}
		case FuncCallTP:
			operatorStack = append(operatorStack, token)
			outputStack = append(outputStack, &FuncCallAst{Name: token.content})
			parser.stepForward()
		case UnaryOperatorTP, BinaryOperatorTP:
			precedence := operatorPrecedence(token)
			for len(operatorStack) > 0 {
				operator := operatorStack[len(operatorStack)-1]
				if operator.tp == BinaryOperatorTP && operatorPrecedence(operator) >= precedence {
					operatorStack = operatorStack[:len(operatorStack)-1]
					outputStack, err = reduceBinaryOperator(operator, outputStack)
				} else if operator.tp == UnaryOperatorTP && operatorPrecedence(operator) > precedence {
					operatorStack = operatorStack[:len(operatorStack)-1]
					outputStack, err = reduceUnaryOperator(operator, outputStack)
				} else {
					break
				}
				if err != nil {
					return nil, err
				}
			}
			operatorStack = append(operatorStack, token)
			parser.stepForward()
		case CommaTP:
			// An argument separator reduces pending operators down to
			// the parenthesis of the enclosing call.
			for {
				if len(operatorStack) == 0 {
					return nil, makeParserError(token, "missing left parenthesis")
				}
				operator := operatorStack[len(operatorStack)-1]
				if operator.tp == BinaryOperatorTP {
					outputStack, err = reduceBinaryOperator(operator, outputStack)
				} else if operator.tp == UnaryOperatorTP {
					outputStack, err = reduceUnaryOperator(operator, outputStack)
				} else {
					break
				}
				if err != nil {
					return nil, err
				}
				operatorStack = operatorStack[:len(operatorStack)-1]
			}
			parser.stepForward()
		case LeftParenthesisTP:
			operatorStack = append(operatorStack, token)
			parser.stepForward()
		case RightParenthesisTP:
			for {
				if len(operatorStack) == 0 {
					return nil, makeParserError(token, "invalid expression parsing ')'")
				}
				operator := operatorStack[len(operatorStack)-1]
				operatorStack = operatorStack[:len(operatorStack)-1]
				if operator.tp == UnaryOperatorTP {
					outputStack, err = reduceUnaryOperator(operator, outputStack)
				} else if operator.tp == BinaryOperatorTP {
					outputStack, err = reduceBinaryOperator(operator, outputStack)
				} else {
					break
				}
				if err != nil {
					return nil, err
				}
			}
			if len(operatorStack) > 0 {
				operator := operatorStack[len(operatorStack)-1]
				if operator.tp == FuncCallTP {
					operatorStack = operatorStack[:len(operatorStack)-1]
					outputStack, err = reduceFunctionCall(operator, outputStack)
					if err != nil {
						return nil, err
					}
				}
			}
			parser.stepForward()
		case LeftBracketTP:
			parser.stepForward()
			arrayValue, err := parser.parseArrayValue()
			if err != nil {
				return nil, err
			}
			// A single constant element right after a bare variable is
			// an array access, anything else stays an array value.
			if len(arrayValue.Elements) != 1 {
				outputStack = append(outputStack, arrayValue)
				continue
			}
			offset, ok := arrayValue.Elements[0].(*IntAst)
			if !ok {
				outputStack = append(outputStack, arrayValue)
				continue
			}
			if len(outputStack) == 0 {
				outputStack = append(outputStack, arrayValue)
				continue
			}
			variable, ok := outputStack[len(outputStack)-1].(*VariableAst)
			if !ok || variable.Type != nil {
				outputStack = append(outputStack, arrayValue)
				continue
			}
			outputStack = outputStack[:len(outputStack)-1]
			outputStack = append(outputStack, &ArrayAccessAst{Name: variable.Name, Offset: offset.Value})
		case EndLineTP:
			parser.stepForward()
			break loop
		default:
			return nil, makeParserError(token, "invalid token %s", token)
		}
	}

	for len(operatorStack) > 0 {
		operator := operatorStack[len(operatorStack)-1]
		operatorStack = operatorStack[:len(operatorStack)-1]
		switch operator.tp {
		case UnaryOperatorTP:
			outputStack, err = reduceUnaryOperator(operator, outputStack)
		case BinaryOperatorTP:
			outputStack, err = reduceBinaryOperator(operator, outputStack)
		case FuncCallTP:
			outputStack, err = reduceFunctionCall(operator, outputStack)
		default:
			return nil, makeParserError(operator, "invalid token %s in expression", operator)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(outputStack) != 1 {
		return nil, makeParserError(nil, "invalid expression, expected a single value, got %d", len(outputStack))
	}
	return outputStack[0], nil
}

// reduceBinaryOperator pops the two topmost values and pushes the node
// of the operator. Assignment only accepts a variable or an array cell
// on its left side.
func reduceBinaryOperator(operator *Token, outputStack []Ast) ([]Ast, error) {
	if len(outputStack) < 2 {
		return nil, makeParserError(operator, "missing value for operator %s", operator.content)
	}
	right := outputStack[len(outputStack)-1]
	left := outputStack[len(outputStack)-2]
	outputStack = outputStack[:len(outputStack)-2]
	if operator.content == "<-" {
		switch left.(type) {
		case *VariableAst, *ArrayAccessAst:
		default:
			return nil, makeParserError(operator, "can only assign value to variable")
		}
		return append(outputStack, &AssignAst{Target: left, Value: right}), nil
	}
	op, ok := binaryOpCodes[operator.content]
	if !ok {
		return nil, makeParserError(operator, "missing implementation for operator '%s'", operator.content)
	}
	return append(outputStack, &BinaryAst{Op: op, Left: left, Right: right}), nil
}

func reduceUnaryOperator(operator *Token, outputStack []Ast) ([]Ast, error) {
	if len(outputStack) == 0 {
		return nil, makeParserError(operator, "missing value for operator %s", operator.content)
	}
	child := outputStack[len(outputStack)-1]
	outputStack = outputStack[:len(outputStack)-1]
	op := UnaryMinusOpTP
	if operator.content == "+" {
		op = UnaryPlusOpTP
	}
	return append(outputStack, &UnaryAst{Op: op, Child: child}), nil
}

// reduceFunctionCall collects everything pushed on the output stack
// since the call opened, down to the placeholder the call left there,
// and replaces the placeholder with the completed call.
func reduceFunctionCall(operator *Token, outputStack []Ast) ([]Ast, error) {
	var args []Ast
	for len(outputStack) > 0 {
		child := outputStack[len(outputStack)-1]
		outputStack = outputStack[:len(outputStack)-1]
		if _, ok := child.(*FuncCallAst); ok {
			for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
				args[i], args[j] = args[j], args[i]
			}
			return append(outputStack, &FuncCallAst{Name: operator.content, Args: args}), nil
		}
		args = append(args, child)
	}
	return nil, makeParserError(operator, "missing function call")
}

// parseArrayValue collects the raw tokens of each element up to the next
// comma and parses them as a standalone expression closed by an
// artificial EndLine. The opening bracket is already consumed.
func (parser *Parser) parseArrayValue() (*ArrayAst, error) {
	var buffer []*Token
	var elements []Ast
	for {
		token := parser.peekToken()
		if token == nil {
			return nil, makeParserError(nil, "unexpected end of document in array value")
		}
		switch token.tp {
		case CommaTP:
			parser.stepForward()
			buffer = append(buffer, &Token{tp: EndLineTP, line: token.line, startPos: token.startPos})
			sub := &Parser{currentTokens: buffer}
			child, err := sub.parseExpression()
			if err != nil {
				return nil, err
			}
			elements = append(elements, child)
			buffer = nil
		case RightBracketTP:
			parser.stepForward()
			buffer = append(buffer, &Token{tp: EndLineTP, line: token.line, startPos: token.startPos})
			sub := &Parser{currentTokens: buffer}
			child, err := sub.parseExpression()
			if err != nil {
				return nil, err
			}
			elements = append(elements, child)
			return &ArrayAst{Elements: elements}, nil
		case EndLineTP:
			return nil, makeParserError(token, "unexpected token %s while parsing array value", token)
		default:
			parser.stepForward()
			buffer = append(buffer, token)
		}
	}
}

func makeParserError(near *Token, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if near == nil {
		return errors.New(fmt.Sprintf("parser error: %s", msg))
	}
	return errors.New(fmt.Sprintf("parser error near %s at line %d, msg: %s", near, near.line, msg))
}
