package main

import (
	"fmt"
	"log"
	"os"

	"github.com/m1dugh/algo-parser/compiler"
	"github.com/sanity-io/litter"
	cli "github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "algoc",
		Usage: "Compile algo source code",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "algo source file to compile",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "tokens",
				Aliases: []string{"t"},
				Usage:   "print the token stream",
			},
			&cli.BoolFlag{
				Name:    "ast",
				Aliases: []string{"a"},
				Usage:   "print the parsed tree",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write generated code to a file instead of stdout",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	fileName := c.String("file")

	if c.Bool("tokens") {
		if err := printTokens(fileName); err != nil {
			return exitError(err)
		}
	}

	parser := &compiler.Parser{}
	global, err := parser.ParseFile(fileName)
	if err != nil {
		return exitError(err)
	}
	if c.Bool("ast") {
		litter.Dump(global)
	}

	program, err := compiler.Analyze(global)
	if err != nil {
		return exitError(err)
	}

	out := os.Stdout
	if output := c.String("output"); output != "" {
		file, err := os.Create(output)
		if err != nil {
			return exitError(err)
		}
		defer file.Close()
		out = file
	}
	if err := compiler.GenerateCode(out, program); err != nil {
		return exitError(err)
	}
	return nil
}

func printTokens(fileName string) error {
	rd, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer rd.Close()

	tokenizer := &compiler.Tokenizer{}
	tokens, err := tokenizer.Tokenize(rd)
	if err != nil {
		return err
	}
	for _, token := range tokens {
		fmt.Println(token.String())
	}
	return nil
}

func exitError(err error) cli.ExitCoder {
	return cli.Exit(fmt.Sprintf("error: %s", err), 1)
}
