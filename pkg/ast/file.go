package ast

import "fmt"

// ParseError is a syntax error reported by the parser.
type ParseError struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// ParsedFile is one parsed source file. It is owned by the caller and only
// read by the analyzers.
type ParsedFile struct {
	FilePath    string
	Program     *Program
	Source      []byte
	ParseErrors []ParseError
}

// Usable reports whether the file can be analyzed. Files with parse errors
// or without a tree are excluded from every analysis.
func (f *ParsedFile) Usable() bool {
	return f != nil && f.Program != nil && len(f.ParseErrors) == 0
}
