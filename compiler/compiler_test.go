package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompile(t *testing.T) {
	source := `
declare function g(x: int): int

a <- 1
b <- 2.5
`
	var buffer bytes.Buffer
	err := Compile(strings.NewReader(source), &buffer)
	assert.Nil(t, err)
	expected := `extern g(int)
func main
  slot 0 4 a: int
  slot 4 8 b: float
  enter 12
  stmt 2
  leave
`
	assert.Equal(t, expected, buffer.String())
}

func TestCompile_Program(t *testing.T) {
	source := `
declare function print(value: int)

function fact(n: int): int
	result <- 1
	while n > 1
		result <- result * n
		n <- n - 1
	end
	return result
end

value <- fact(5)
print(value)
`
	var buffer bytes.Buffer
	err := Compile(strings.NewReader(source), &buffer)
	assert.Nil(t, err)
	expected := `extern print(int)
func fact(int)
  slot 0 4 n: int
  slot 4 4 result: int
  enter 4
  stmt 3
  leave
func main
  slot 0 4 value: int
  enter 4
  stmt 2
  leave
`
	assert.Equal(t, expected, buffer.String())
}

func TestCompile_StageErrors(t *testing.T) {
	testData := []struct {
		source   string
		expected string
	}{
		{source: "a <- @", expected: "tokenizer error"},
		{source: "1 <- 2", expected: "parser error"},
		{source: "a <- 1\na <- 2.5", expected: "semantic error"},
	}
	for _, data := range testData {
		var buffer bytes.Buffer
		err := Compile(strings.NewReader(data.source), &buffer)
		assert.NotNil(t, err, data.source)
		assert.Contains(t, err.Error(), data.expected, data.source)
		assert.Empty(t, buffer.String(), data.source)
	}
}

func TestCompileFile_NotAlgoFile(t *testing.T) {
	var buffer bytes.Buffer
	err := CompileFile("main.c", &buffer)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "is not an algo file")
}
