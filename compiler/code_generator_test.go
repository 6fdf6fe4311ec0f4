package compiler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCode_Layout(t *testing.T) {
	program := &Program{
		Externs: []*FuncSignature{
			{Name: "g", Params: []*Type{intType}, ReturnType: intType},
		},
		Functions: []*Function{
			{
				MangledName: "add(int,int)",
				Params: []*Variable{
					{Name: "a", Type: intType},
					{Name: "b", Type: intType},
				},
				Locals:     []*Variable{{Name: "sum", Type: intType}},
				Statements: []Ast{&ReturnAst{Value: &VariableAst{Name: "sum"}}},
				FrameSize:  4,
			},
		},
	}
	var buffer bytes.Buffer
	err := GenerateCode(&buffer, program)
	assert.Nil(t, err)
	expected := `extern g(int)
func add(int,int)
  slot 0 4 a: int
  slot 4 4 b: int
  slot 8 4 sum: int
  enter 4
  stmt 1
  leave
`
	assert.Equal(t, expected, buffer.String())
}

func TestGenerateCode_FrameMismatch(t *testing.T) {
	program := &Program{
		Functions: []*Function{
			{
				MangledName: "broken()",
				Locals:      []*Variable{{Name: "a", Type: intType}},
				FrameSize:   16,
			},
		},
	}
	var buffer bytes.Buffer
	err := GenerateCode(&buffer, program)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "frame of function 'broken()' declares 16 bytes, computed 4")
}

func TestGenerateCode_FromSource(t *testing.T) {
	source := `
declare function print(value: int)

function half(x: float): float
	y <- x / 2.0
	return y
end

count <- 3
`
	program := analyzeSource(t, source)
	var buffer bytes.Buffer
	err := GenerateCode(&buffer, program)
	assert.Nil(t, err)
	expected := `extern print(int)
func half(float)
  slot 0 8 x: float
  slot 8 8 y: float
  enter 8
  stmt 2
  leave
func main
  slot 0 4 count: int
  enter 4
  stmt 1
  leave
`
	assert.Equal(t, expected, buffer.String())
}
