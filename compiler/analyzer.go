package compiler

// Semantic analysis walks the parsed tree with a chain of scopes,
// checks and infers every binding, resolves calls against the visible
// overloads and flattens nested function declarations into one list of
// independently emittable functions. Top level statements become the
// body of a synthetic main function appended after everything else.

// Program is the analyzed form handed to code generation.
type Program struct {
	Functions []*Function
	Externs   []*FuncSignature
}

// Function is one emittable unit. Locals keep their declaration order,
// FrameSize is the byte sum of their sizes.
type Function struct {
	MangledName string
	Params      []*Variable
	Locals      []*Variable
	ReturnType  *Type
	Statements  []Ast
	FrameSize   int
}

func Analyze(global *GlobalAst) (*Program, error) {
	scope := newGlobalScope()
	body, functions, err := analyzeStatements(global.Statements, scope, nil)
	if err != nil {
		return nil, err
	}
	externs := unimplementedSignatures(scope)

	main := &Function{
		MangledName: "main",
		Locals:      scope.variables,
		Statements:  body,
		FrameSize:   frameSize(scope.variables),
	}
	functions = append(functions, main)
	return &Program{Functions: functions, Externs: externs}, nil
}

// analyzeStatements walks one scope's statement list. It returns the
// statements retained for the enclosing function and the flattened
// functions produced by nested declarations. The enclosing signature is
// nil for the global scope.
func analyzeStatements(statements []Ast, scope *Scope, enclosing *FuncSignature) ([]Ast, []*Function, error) {
	var kept []Ast
	var functions []*Function
	for _, statement := range statements {
		switch stmt := statement.(type) {
		case *AssignAst:
			if err := analyzeAssignment(stmt, scope); err != nil {
				return nil, nil, err
			}
			kept = append(kept, stmt)
		case *FuncDeclAst:
			subFunctions, err := analyzeFunctionDeclaration(stmt, scope)
			if err != nil {
				return nil, nil, err
			}
			functions = append(functions, subFunctions...)
		case *FuncHeaderAst:
			if err := analyzeFunctionHeader(stmt, scope); err != nil {
				return nil, nil, err
			}
		case *FuncCallAst:
			signature, err := scope.resolveCall(stmt)
			if err != nil {
				return nil, nil, err
			}
			mangled, ok := scope.lookupMangledName(signature)
			if !ok {
				return nil, nil, makeSemanticError("missing symbol for function '%s'", signature)
			}
			stmt.Name = mangled
			kept = append(kept, stmt)
		case *ReturnAst:
			if enclosing != nil {
				if err := analyzeReturn(stmt, scope, enclosing); err != nil {
					return nil, nil, err
				}
			}
			kept = append(kept, stmt)
		default:
			kept = append(kept, statement)
		}
	}
	return kept, functions, nil
}

// analyzeAssignment types the value, then binds or checks the target in
// the current scope.
func analyzeAssignment(assign *AssignAst, scope *Scope) error {
	valueTP, err := scope.expressionType(assign.Value)
	if err != nil {
		return err
	}
	switch target := assign.Target.(type) {
	case *VariableAst:
		return scope.bindVariable(target, valueTP)
	case *ArrayAccessAst:
		elementTP, err := scope.arrayAccessType(target)
		if err != nil {
			return err
		}
		if !valueTP.equals(elementTP) {
			return makeSemanticError("mismatching types for '%s[%d]', cell is of type '%s', and expression is of type '%s'",
				target.Name, target.Offset, elementTP, valueTP)
		}
		return nil
	}
	return makeSemanticError("invalid assignment target %T", assign.Target)
}

// bindVariable records a first assignment as a new local of the current
// scope. Later assignments must keep the established type, and an
// explicit annotation must agree with the value.
func (scope *Scope) bindVariable(target *VariableAst, valueTP *Type) error {
	if target.Type != nil {
		declaredTP, err := scope.resolveTypeRef(target.Type)
		if err != nil {
			return err
		}
		if !valueTP.equals(declaredTP) {
			return makeSemanticError("mismatching types for variable '%s', variable is of type '%s', and expression is of type '%s'",
				target.Name, declaredTP, valueTP)
		}
	}
	existing := scope.lookupLocalVariable(target.Name)
	if existing == nil {
		scope.registerVariable(&Variable{Name: target.Name, Type: valueTP})
		return nil
	}
	if !existing.Type.equals(valueTP) {
		return makeSemanticError("mismatching types for variable '%s', variable is of type '%s', and expression is of type '%s'",
			target.Name, existing.Type, valueTP)
	}
	return nil
}

// analyzeFunctionDeclaration registers the signature, walks the body in
// a child scope and flattens every nested declaration ahead of its
// parent. An implementation may complete a forward header as long as
// the return types agree.
func analyzeFunctionDeclaration(decl *FuncDeclAst, scope *Scope) ([]*Function, error) {
	signature, err := buildSignature(decl.Name, decl.Params, decl.ReturnType, scope)
	if err != nil {
		return nil, err
	}

	var mangled string
	existing := scope.lookupLocalFunction(signature.Name, signature.Params)
	if existing != nil {
		if existing.Implemented {
			return nil, makeSemanticError("function '%s' already implemented", signature)
		}
		if !returnTypesEqual(existing.ReturnType, signature.ReturnType) {
			return nil, makeSemanticError("function '%s' implemented with a different return type than declared", signature)
		}
		existing.Implemented = true
		signature = existing
		mangled = scope.path + signature.String()
		scope.symbols[signature.String()] = mangled
	} else {
		signature.Implemented = true
		mangled = scope.registerFunction(signature)
	}

	child := scope.buildChild(signature)
	for i, param := range decl.Params {
		child.registerVariable(&Variable{Name: param.Name, Type: signature.Params[i]})
	}
	paramCount := len(child.variables)

	body, subFunctions, err := analyzeStatements(decl.Body, child, signature)
	if err != nil {
		return nil, err
	}

	locals := child.variables[paramCount:]
	function := &Function{
		MangledName: mangled,
		Params:      child.variables[:paramCount],
		Locals:      locals,
		ReturnType:  signature.ReturnType,
		Statements:  body,
		FrameSize:   frameSize(locals),
	}
	return append(subFunctions, function), nil
}

// analyzeFunctionHeader registers a forward declaration, which is only
// legal at the outermost scope.
func analyzeFunctionHeader(header *FuncHeaderAst, scope *Scope) error {
	if !scope.isGlobal() {
		return makeSemanticError("function '%s' can only be declared at the top level", header.Name)
	}
	signature, err := buildSignature(header.Name, header.Params, header.ReturnType, scope)
	if err != nil {
		return err
	}
	if scope.lookupLocalFunction(signature.Name, signature.Params) != nil {
		return makeSemanticError("function '%s' already declared", signature)
	}
	scope.registerFunction(signature)
	return nil
}

// analyzeReturn checks a return statement against the declared return
// type of the function it sits in. Matching is exact, values do not
// promote across a return.
func analyzeReturn(ret *ReturnAst, scope *Scope, enclosing *FuncSignature) error {
	if ret.Value == nil {
		if enclosing.ReturnType != nil {
			return makeSemanticError("missing return value in function '%s'", enclosing)
		}
		return nil
	}
	if enclosing.ReturnType == nil {
		return makeSemanticError("function '%s' returns no value", enclosing)
	}
	valueTP, err := scope.expressionType(ret.Value)
	if err != nil {
		return err
	}
	if !valueTP.equals(enclosing.ReturnType) {
		return makeSemanticError("mismatching return type for function '%s', expected '%s', got '%s'",
			enclosing, enclosing.ReturnType, valueTP)
	}
	return nil
}

// buildSignature resolves the parameter and return annotations against
// the visible types. Parameters may parse without a type, the analyzer
// requires one.
func buildSignature(name string, params []*VariableAst, returnType string, scope *Scope) (*FuncSignature, error) {
	paramTypes := make([]*Type, 0, len(params))
	for i, param := range params {
		if param.Type == nil {
			return nil, makeSemanticError("missing type for parameter '%s' of function '%s'", param.Name, name)
		}
		for _, previous := range params[:i] {
			if previous.Name == param.Name {
				return nil, makeSemanticError("duplicate parameter '%s' in function '%s'", param.Name, name)
			}
		}
		tp, err := scope.resolveTypeRef(param.Type)
		if err != nil {
			return nil, err
		}
		paramTypes = append(paramTypes, tp)
	}
	signature := &FuncSignature{Name: name, Params: paramTypes}
	if returnType != "" {
		tp := scope.lookupType(returnType)
		if tp == nil {
			return nil, makeSemanticError("unknown return type '%s' for function '%s'", returnType, name)
		}
		signature.ReturnType = tp
	}
	return signature, nil
}

func returnTypesEqual(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.equals(b)
}

func unimplementedSignatures(scope *Scope) []*FuncSignature {
	var externs []*FuncSignature
	for _, signature := range scope.functions {
		if !signature.Implemented {
			externs = append(externs, signature)
		}
	}
	return externs
}

func frameSize(locals []*Variable) int {
	size := 0
	for _, variable := range locals {
		size += variable.Type.Size
	}
	return size
}
