package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// referenceSize is the stack footprint of arrays and strings, which live
// behind a reference.
const referenceSize = 8

// Type is a named, sized value category. Array types keep the element
// type name and flip the flag, the size stays the reference size.
type Type struct {
	Name    string
	Size    int
	IsArray bool
}

var (
	intType    = &Type{Name: "int", Size: 4}
	floatType  = &Type{Name: "float", Size: 8}
	boolType   = &Type{Name: "bool", Size: 1}
	stringType = &Type{Name: "string", Size: referenceSize}
	arrayType  = &Type{Name: "array", Size: referenceSize, IsArray: true}
)

func (tp *Type) equals(other *Type) bool {
	return tp.Name == other.Name && tp.IsArray == other.IsArray
}

func (tp *Type) String() string {
	if tp.IsArray && tp.Name != "array" {
		return tp.Name + "[]"
	}
	return tp.Name
}

// Variable is a resolved binding, its type is immutable for the rest of
// the scope that recorded it.
type Variable struct {
	Name string
	Type *Type
}

// FuncSignature identifies a function by name and ordered parameter
// types. Two signatures with the same name and different parameter
// types are distinct overloads.
type FuncSignature struct {
	Name        string
	Params      []*Type
	ReturnType  *Type // nil when the function returns nothing
	Implemented bool
}

// String renders the canonical "name(t1,t2)" form, shared by overload
// keys and mangled names.
func (signature *FuncSignature) String() string {
	names := make([]string, 0, len(signature.Params))
	for _, param := range signature.Params {
		names = append(names, param.String())
	}
	return fmt.Sprintf("%s(%s)", signature.Name, strings.Join(names, ","))
}

func (signature *FuncSignature) matches(name string, args []*Type) bool {
	if signature.Name != name || len(signature.Params) != len(args) {
		return false
	}
	for i, param := range signature.Params {
		if !param.equals(args[i]) {
			return false
		}
	}
	return true
}

// Scope is one lexical environment. Children hold a reference to their
// parent and never the reverse, every lookup walks from the current
// scope out to the global one. Variables, functions and types keep
// their declaration order.
type Scope struct {
	parent    *Scope
	path      string
	variables []*Variable
	types     []*Type
	functions []*FuncSignature
	symbols   map[string]string // canonical signature -> mangled name
}

func newGlobalScope() *Scope {
	return &Scope{
		types:   []*Type{intType, floatType, boolType, stringType, arrayType},
		symbols: map[string]string{},
	}
}

// buildChild opens the scope of one function body. The path accumulates
// the canonical signature of every enclosing function, which keeps the
// mangled names of nested declarations unique.
func (scope *Scope) buildChild(signature *FuncSignature) *Scope {
	return &Scope{
		parent:  scope,
		path:    scope.path + signature.String() + ".",
		symbols: map[string]string{},
	}
}

func (scope *Scope) isGlobal() bool {
	return scope.parent == nil
}

func (scope *Scope) lookupVariable(name string) *Variable {
	for current := scope; current != nil; current = current.parent {
		for _, variable := range current.variables {
			if variable.Name == name {
				return variable
			}
		}
	}
	return nil
}

// lookupLocalVariable only searches the current scope. Assignments bind
// here, so a body may shadow a name from an enclosing function.
func (scope *Scope) lookupLocalVariable(name string) *Variable {
	for _, variable := range scope.variables {
		if variable.Name == name {
			return variable
		}
	}
	return nil
}

func (scope *Scope) lookupType(name string) *Type {
	for current := scope; current != nil; current = current.parent {
		for _, tp := range current.types {
			if tp.Name == name {
				return tp
			}
		}
	}
	return nil
}

func (scope *Scope) lookupFunction(name string, args []*Type) *FuncSignature {
	for current := scope; current != nil; current = current.parent {
		for _, signature := range current.functions {
			if signature.matches(name, args) {
				return signature
			}
		}
	}
	return nil
}

func (scope *Scope) lookupLocalFunction(name string, args []*Type) *FuncSignature {
	for _, signature := range scope.functions {
		if signature.matches(name, args) {
			return signature
		}
	}
	return nil
}

// lookupMangledName resolves the emitted name of a signature, walking
// outward like every other lookup.
func (scope *Scope) lookupMangledName(signature *FuncSignature) (string, bool) {
	key := signature.String()
	for current := scope; current != nil; current = current.parent {
		if name, ok := current.symbols[key]; ok {
			return name, true
		}
	}
	return "", false
}

func (scope *Scope) registerVariable(variable *Variable) {
	scope.variables = append(scope.variables, variable)
}

// registerFunction records the signature and derives its mangled name
// from the scope path, overwriting the mapping a forward header may have
// left for the same canonical key.
func (scope *Scope) registerFunction(signature *FuncSignature) string {
	mangled := scope.path + signature.String()
	scope.functions = append(scope.functions, signature)
	scope.symbols[signature.String()] = mangled
	return mangled
}

// resolveTypeRef turns a syntactic type annotation into a resolved type.
func (scope *Scope) resolveTypeRef(ref *TypeRef) (*Type, error) {
	base := scope.lookupType(ref.Name)
	if base == nil {
		return nil, makeSemanticError("unknown type '%s'", ref.Name)
	}
	if !ref.IsArray {
		return base, nil
	}
	return &Type{Name: base.Name, Size: referenceSize, IsArray: true}, nil
}

// elementType resolves the type of one cell of an array typed variable.
func (scope *Scope) elementType(arrayTP *Type) (*Type, error) {
	element := scope.lookupType(arrayTP.Name)
	if element == nil {
		return nil, makeSemanticError("unknown element type '%s'", arrayTP.Name)
	}
	return element, nil
}

func makeSemanticError(format string, msg ...interface{}) error {
	return errors.New(fmt.Sprintf("semantic error: "+format, msg...))
}
