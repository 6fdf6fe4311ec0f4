package compiler

import (
	"fmt"
	"io"
)

// Code generation is a stub that prints the frame layout of every
// analyzed function. Slots follow declaration order, parameters first,
// with no padding between them. Instruction selection sits behind this
// boundary and is not part of the pipeline.

type codeGenerator struct {
	writer io.Writer
	err    error
}

func GenerateCode(w io.Writer, program *Program) error {
	generator := &codeGenerator{writer: w}
	for _, signature := range program.Externs {
		generator.writeLine("extern %s", signature)
	}
	for _, function := range program.Functions {
		if err := generator.generateFunction(function); err != nil {
			return err
		}
	}
	return generator.err
}

func (generator *codeGenerator) generateFunction(function *Function) error {
	generator.writeLine("func %s", function.MangledName)
	offset := 0
	for _, param := range function.Params {
		generator.writeSlot(offset, param)
		offset += param.Type.Size
	}
	localsBase := offset
	for _, local := range function.Locals {
		generator.writeSlot(offset, local)
		offset += local.Type.Size
	}
	if offset-localsBase != function.FrameSize {
		return makeSemanticError("frame of function '%s' declares %d bytes, computed %d",
			function.MangledName, function.FrameSize, offset-localsBase)
	}
	generator.writeLine("  enter %d", function.FrameSize)
	generator.writeLine("  stmt %d", len(function.Statements))
	generator.writeLine("  leave")
	return generator.err
}

func (generator *codeGenerator) writeSlot(offset int, variable *Variable) {
	generator.writeLine("  slot %d %d %s: %s", offset, variable.Type.Size, variable.Name, variable.Type)
}

func (generator *codeGenerator) writeLine(format string, args ...interface{}) {
	if generator.err != nil {
		return
	}
	_, generator.err = fmt.Fprintf(generator.writer, format+"\n", args...)
}
