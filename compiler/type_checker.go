package compiler

import "strings"

// expressionType computes the type an expression evaluates to, walking
// the scope chain for every name it has to resolve.
func (scope *Scope) expressionType(expression Ast) (*Type, error) {
	switch expr := expression.(type) {
	case *IntAst:
		return intType, nil
	case *FloatAst:
		return floatType, nil
	case *BoolAst:
		return boolType, nil
	case *StringAst:
		return stringType, nil
	case *ArrayAst:
		return arrayType, nil
	case *VariableAst:
		return scope.variableType(expr)
	case *ArrayAccessAst:
		return scope.arrayAccessType(expr)
	case *FuncCallAst:
		return scope.callReturnType(expr)
	case *UnaryAst:
		return scope.expressionType(expr.Child)
	case *BinaryAst:
		return scope.binaryType(expr)
	case *AssignAst:
		return nil, makeSemanticError("cannot use an assignment as a value")
	}
	return nil, makeSemanticError("missing type computation for %T", expression)
}

func (scope *Scope) variableType(variable *VariableAst) (*Type, error) {
	if variable.Type != nil {
		return scope.resolveTypeRef(variable.Type)
	}
	resolved := scope.lookupVariable(variable.Name)
	if resolved == nil {
		return nil, makeSemanticError("undeclared variable '%s'", variable.Name)
	}
	return resolved.Type, nil
}

// arrayAccessType is the element type of the accessed variable, which
// must be bound to an array.
func (scope *Scope) arrayAccessType(access *ArrayAccessAst) (*Type, error) {
	variable := scope.lookupVariable(access.Name)
	if variable == nil {
		return nil, makeSemanticError("undeclared variable '%s'", access.Name)
	}
	if !variable.Type.IsArray {
		return nil, makeSemanticError("variable '%s' of type '%s' is not an array", access.Name, variable.Type)
	}
	return scope.elementType(variable.Type)
}

func (scope *Scope) callReturnType(call *FuncCallAst) (*Type, error) {
	signature, err := scope.resolveCall(call)
	if err != nil {
		return nil, err
	}
	if signature.ReturnType == nil {
		return nil, makeSemanticError("function '%s' does not return a value", signature)
	}
	return signature.ReturnType, nil
}

// resolveCall computes the argument types of a call and finds the
// matching overload. Matching is exact, there is no promotion across a
// call boundary.
func (scope *Scope) resolveCall(call *FuncCallAst) (*FuncSignature, error) {
	args := make([]*Type, 0, len(call.Args))
	for _, arg := range call.Args {
		argTP, err := scope.expressionType(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, argTP)
	}
	signature := scope.lookupFunction(call.Name, args)
	if signature == nil {
		return nil, makeSemanticError("undefined function '%s(%s)'", call.Name, typeNames(args))
	}
	return signature, nil
}

func typeNames(types []*Type) string {
	names := make([]string, 0, len(types))
	for _, tp := range types {
		names = append(names, tp.String())
	}
	return strings.Join(names, ",")
}

// binaryType types an operator node. Comparisons always yield bool.
// Arithmetic requires identical operand types, except that int promotes
// to float when the other side is float.
func (scope *Scope) binaryType(binary *BinaryAst) (*Type, error) {
	switch binary.Op {
	case GreaterOpTP, LessOpTP, GreaterEqualOpTP, LessEqualOpTP, EqualOpTP, NotEqualOpTP:
		return boolType, nil
	}
	rightTP, err := scope.expressionType(binary.Right)
	if err != nil {
		return nil, err
	}
	leftTP, err := scope.expressionType(binary.Left)
	if err != nil {
		return nil, err
	}
	if rightTP.equals(leftTP) {
		return rightTP, nil
	}
	if rightTP.equals(intType) && leftTP.equals(floatType) {
		return floatType, nil
	}
	if rightTP.equals(floatType) && leftTP.equals(intType) {
		return floatType, nil
	}
	return nil, makeSemanticError("mismatching types '%s' and '%s'", rightTP, leftTP)
}
