package compiler

import "io"

// Compile runs tokenizing, parsing, analysis and code generation over
// one source, writing the generated layout to w. The first error of
// any phase aborts the pipeline.
func Compile(rd io.Reader, w io.Writer) error {
	parser := &Parser{}
	global, err := parser.Parse(rd)
	if err != nil {
		return err
	}
	return compileGlobal(global, w)
}

// CompileFile compiles one .algo file.
func CompileFile(fileName string, w io.Writer) error {
	parser := &Parser{}
	global, err := parser.ParseFile(fileName)
	if err != nil {
		return err
	}
	return compileGlobal(global, w)
}

func compileGlobal(global *GlobalAst, w io.Writer) error {
	program, err := Analyze(global)
	if err != nil {
		return err
	}
	return GenerateCode(w, program)
}
