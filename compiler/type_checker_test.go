package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpressionType_Literals(t *testing.T) {
	scope := newGlobalScope()
	testData := []struct {
		expression Ast
		expected   *Type
	}{
		{expression: &IntAst{Value: 1}, expected: intType},
		{expression: &FloatAst{Value: 2.5}, expected: floatType},
		{expression: &BoolAst{Value: true}, expected: boolType},
		{expression: &StringAst{Value: "hi"}, expected: stringType},
		{expression: &ArrayAst{Elements: []Ast{&IntAst{Value: 1}}}, expected: arrayType},
	}
	for _, data := range testData {
		tp, err := scope.expressionType(data.expression)
		assert.Nil(t, err)
		assert.Equal(t, data.expected, tp)
	}
}

func TestExpressionType_Arithmetic(t *testing.T) {
	scope := newGlobalScope()
	testData := []struct {
		expression Ast
		expected   *Type
	}{
		{
			expression: &BinaryAst{Op: AddOpTP, Left: &IntAst{Value: 1}, Right: &IntAst{Value: 2}},
			expected:   intType,
		},
		{
			expression: &BinaryAst{Op: MultiplyOpTP, Left: &FloatAst{Value: 1.5}, Right: &FloatAst{Value: 2.0}},
			expected:   floatType,
		},
		{
			expression: &BinaryAst{Op: AddOpTP, Left: &IntAst{Value: 1}, Right: &FloatAst{Value: 2.5}},
			expected:   floatType,
		},
		{
			expression: &BinaryAst{Op: SubtractOpTP, Left: &FloatAst{Value: 2.5}, Right: &IntAst{Value: 1}},
			expected:   floatType,
		},
		{
			expression: &UnaryAst{Op: UnaryMinusOpTP, Child: &IntAst{Value: 3}},
			expected:   intType,
		},
	}
	for _, data := range testData {
		tp, err := scope.expressionType(data.expression)
		assert.Nil(t, err)
		assert.Equal(t, data.expected, tp)
	}

	_, err := scope.expressionType(&BinaryAst{
		Op:    AddOpTP,
		Left:  &StringAst{Value: "s"},
		Right: &IntAst{Value: 1},
	})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "mismatching types 'int' and 'string'")
}

func TestExpressionType_Comparisons(t *testing.T) {
	scope := newGlobalScope()
	ops := []OpCode{GreaterOpTP, LessOpTP, GreaterEqualOpTP, LessEqualOpTP, EqualOpTP, NotEqualOpTP}
	for _, op := range ops {
		tp, err := scope.expressionType(&BinaryAst{Op: op, Left: &IntAst{Value: 1}, Right: &IntAst{Value: 2}})
		assert.Nil(t, err)
		assert.Equal(t, boolType, tp)
	}

	// Comparison operands are not inspected at all.
	tp, err := scope.expressionType(&BinaryAst{
		Op:    EqualOpTP,
		Left:  &IntAst{Value: 1},
		Right: &StringAst{Value: "s"},
	})
	assert.Nil(t, err)
	assert.Equal(t, boolType, tp)
}

func TestExpressionType_Variables(t *testing.T) {
	scope := newGlobalScope()
	scope.registerVariable(&Variable{Name: "count", Type: intType})

	tp, err := scope.expressionType(&VariableAst{Name: "count"})
	assert.Nil(t, err)
	assert.Equal(t, intType, tp)

	// A declared annotation resolves without a binding.
	tp, err = scope.expressionType(&VariableAst{Name: "fresh", Type: &TypeRef{Name: "float"}})
	assert.Nil(t, err)
	assert.Equal(t, floatType, tp)

	_, err = scope.expressionType(&VariableAst{Name: "missing"})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "undeclared variable 'missing'")
}

func TestExpressionType_ArrayAccess(t *testing.T) {
	scope := newGlobalScope()
	scope.registerVariable(&Variable{Name: "xs", Type: &Type{Name: "int", Size: referenceSize, IsArray: true}})
	scope.registerVariable(&Variable{Name: "n", Type: intType})

	tp, err := scope.expressionType(&ArrayAccessAst{Name: "xs", Offset: 0})
	assert.Nil(t, err)
	assert.Equal(t, intType, tp)

	_, err = scope.expressionType(&ArrayAccessAst{Name: "n", Offset: 0})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "is not an array")

	_, err = scope.expressionType(&ArrayAccessAst{Name: "missing", Offset: 0})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "undeclared variable 'missing'")
}

func TestExpressionType_Calls(t *testing.T) {
	scope := newGlobalScope()
	scope.registerFunction(&FuncSignature{Name: "f", Params: []*Type{intType}, ReturnType: intType})
	scope.registerFunction(&FuncSignature{Name: "f", Params: []*Type{floatType}, ReturnType: floatType})
	scope.registerFunction(&FuncSignature{Name: "log", Params: []*Type{stringType}})

	tp, err := scope.expressionType(&FuncCallAst{Name: "f", Args: []Ast{&IntAst{Value: 1}}})
	assert.Nil(t, err)
	assert.Equal(t, intType, tp)

	tp, err = scope.expressionType(&FuncCallAst{Name: "f", Args: []Ast{&FloatAst{Value: 1.0}}})
	assert.Nil(t, err)
	assert.Equal(t, floatType, tp)

	// Arguments never promote across a call boundary.
	_, err = scope.expressionType(&FuncCallAst{Name: "f", Args: []Ast{&BoolAst{Value: true}}})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "undefined function 'f(bool)'")

	_, err = scope.expressionType(&FuncCallAst{Name: "log", Args: []Ast{&StringAst{Value: "x"}}})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "does not return a value")
}

func TestExpressionType_AssignmentAsValue(t *testing.T) {
	scope := newGlobalScope()
	_, err := scope.expressionType(&AssignAst{
		Target: &VariableAst{Name: "x"},
		Value:  &IntAst{Value: 1},
	})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "cannot use an assignment as a value")
}
