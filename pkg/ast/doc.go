// Package ast defines the tagged-variant syntax tree the analyzers consume.
//
// Every recognised TypeScript/JavaScript construct has its own concrete node
// type implementing Node. Anything else is carried by Other, which keeps the
// raw node type, its token text and its children so traversals never lose
// structure. Consumers match with a type switch and skip the default arm:
//
//	ast.Inspect(file.Program, func(n ast.Node) bool {
//	    switch n := n.(type) {
//	    case *ast.ImportDeclaration:
//	        fmt.Println(n.SourceValue())
//	    }
//	    return true
//	})
//
// Trees are built by package parser and are never mutated afterwards.
package ast
