package main

import (
	"io"
	"os"

	litpipe "github.com/alnah/go-litpipe"
)

// Environment holds injectable dependencies for testability.
// Nil collaborators are replaced by the real implementations.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer

	Runner    litpipe.CommandRunner // external programs
	Printer   litpipe.PagePrinter   // chrome compiler
	Publisher litpipe.Publisher     // blog client

	// DotEnv is the .env file loaded before LITPIPE_* variables are read.
	DotEnv string
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		DotEnv: ".env",
	}
}
