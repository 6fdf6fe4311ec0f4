package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScope_Builtins(t *testing.T) {
	scope := newGlobalScope()
	assert.True(t, scope.isGlobal())
	testData := []struct {
		name    string
		size    int
		isArray bool
	}{
		{name: "int", size: 4},
		{name: "float", size: 8},
		{name: "bool", size: 1},
		{name: "string", size: 8},
		{name: "array", size: 8, isArray: true},
	}
	for _, data := range testData {
		tp := scope.lookupType(data.name)
		assert.NotNil(t, tp, data.name)
		assert.Equal(t, data.size, tp.Size, data.name)
		assert.Equal(t, data.isArray, tp.IsArray, data.name)
	}
	assert.Nil(t, scope.lookupType("point"))
}

func TestScope_Variables(t *testing.T) {
	global := newGlobalScope()
	global.registerVariable(&Variable{Name: "a", Type: intType})

	signature := &FuncSignature{Name: "f", Params: []*Type{intType}}
	child := global.buildChild(signature)

	assert.Equal(t, intType, global.lookupVariable("a").Type)
	assert.NotNil(t, child.lookupVariable("a"))
	assert.Nil(t, child.lookupLocalVariable("a"))

	// A child binding shadows the outer one without touching it.
	child.registerVariable(&Variable{Name: "a", Type: floatType})
	assert.Equal(t, floatType, child.lookupVariable("a").Type)
	assert.Equal(t, intType, global.lookupVariable("a").Type)
}

func TestFuncSignature_String(t *testing.T) {
	signature := &FuncSignature{Name: "f", Params: []*Type{intType, floatType}}
	assert.Equal(t, "f(int,float)", signature.String())

	void := &FuncSignature{Name: "g"}
	assert.Equal(t, "g()", void.String())

	arrays := &FuncSignature{Name: "h", Params: []*Type{{Name: "int", Size: referenceSize, IsArray: true}}}
	assert.Equal(t, "h(int[])", arrays.String())
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "int", intType.String())
	assert.Equal(t, "array", arrayType.String())
	assert.Equal(t, "int[]", (&Type{Name: "int", Size: referenceSize, IsArray: true}).String())
}

func TestScope_Overloads(t *testing.T) {
	global := newGlobalScope()
	intF := &FuncSignature{Name: "f", Params: []*Type{intType}}
	floatF := &FuncSignature{Name: "f", Params: []*Type{floatType}}
	global.registerFunction(intF)
	global.registerFunction(floatF)

	assert.Equal(t, intF, global.lookupFunction("f", []*Type{intType}))
	assert.Equal(t, floatF, global.lookupFunction("f", []*Type{floatType}))
	assert.Nil(t, global.lookupFunction("f", []*Type{boolType}))
	assert.Nil(t, global.lookupFunction("f", []*Type{intType, intType}))
	assert.Nil(t, global.lookupFunction("g", []*Type{intType}))
}

func TestScope_Mangling(t *testing.T) {
	global := newGlobalScope()
	outer := &FuncSignature{Name: "outer", Params: []*Type{intType}}
	assert.Equal(t, "outer(int)", global.registerFunction(outer))

	child := global.buildChild(outer)
	inner := &FuncSignature{Name: "inner"}
	assert.Equal(t, "outer(int).inner()", child.registerFunction(inner))

	name, ok := child.lookupMangledName(outer)
	assert.True(t, ok)
	assert.Equal(t, "outer(int)", name)

	name, ok = child.lookupMangledName(inner)
	assert.True(t, ok)
	assert.Equal(t, "outer(int).inner()", name)

	// The inner symbol is invisible from the outside.
	_, ok = global.lookupMangledName(inner)
	assert.False(t, ok)
}

func TestScope_LookupWalksOutward(t *testing.T) {
	global := newGlobalScope()
	outer := &FuncSignature{Name: "outer"}
	global.registerFunction(outer)
	child := global.buildChild(outer)

	assert.Equal(t, outer, child.lookupFunction("outer", nil))
	assert.Nil(t, child.lookupLocalFunction("outer", nil))
}

func TestScope_ResolveTypeRef(t *testing.T) {
	scope := newGlobalScope()

	tp, err := scope.resolveTypeRef(&TypeRef{Name: "int"})
	assert.Nil(t, err)
	assert.Equal(t, intType, tp)

	tp, err = scope.resolveTypeRef(&TypeRef{Name: "int", IsArray: true})
	assert.Nil(t, err)
	assert.Equal(t, &Type{Name: "int", Size: referenceSize, IsArray: true}, tp)

	_, err = scope.resolveTypeRef(&TypeRef{Name: "point"})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "unknown type 'point'")
}
