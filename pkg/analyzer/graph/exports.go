package graph

import "github.com/parkrevil/firebat-sub000/pkg/ast"

// exportStats counts the top-level exported declarations of a program.
// Interfaces and abstract classes are abstract. Local export clauses count
// each binding, abstract when the binding names a local interface or
// abstract class. Re-exports with a source are skipped because the foreign
// declaration is unknown.
func exportStats(prog *ast.Program) ExportStat {
	var stat ExportStat
	if prog == nil {
		return stat
	}
	abstractNames := localAbstractNames(prog)

	for _, stmt := range prog.Body() {
		switch s := stmt.(type) {
		case *ast.ExportNamedDeclaration:
			if s.Source != nil {
				continue
			}
			if s.Declaration != nil {
				stat = addStats(stat, declarationStats(s.Declaration))
			}
			for _, spec := range s.Specifiers {
				stat.Total++
				if abstractNames[spec.Local] {
					stat.Abstract++
				}
			}
		case *ast.ExportDefaultDeclaration:
			if s.Declaration == nil {
				continue
			}
			if id, ok := s.Declaration.(*ast.Identifier); ok {
				stat.Total++
				if abstractNames[id.Name] {
					stat.Abstract++
				}
				continue
			}
			stat = addStats(stat, declarationStats(s.Declaration))
		}
	}
	return stat
}

// declarationStats counts one exported declaration. Variable statements
// count each declarator.
func declarationStats(decl ast.Node) ExportStat {
	switch d := decl.(type) {
	case *ast.InterfaceDeclaration:
		return ExportStat{Total: 1, Abstract: 1}
	case *ast.ClassDeclaration:
		if d.Abstract {
			return ExportStat{Total: 1, Abstract: 1}
		}
		return ExportStat{Total: 1}
	case *ast.VariableDeclaration:
		n := len(d.Declarators)
		if n == 0 {
			n = 1
		}
		return ExportStat{Total: n}
	default:
		return ExportStat{Total: 1}
	}
}

// localAbstractNames returns the names of interfaces and abstract classes
// declared at the top level, exported or not.
func localAbstractNames(prog *ast.Program) map[string]bool {
	names := map[string]bool{}
	record := func(n ast.Node) {
		switch d := n.(type) {
		case *ast.InterfaceDeclaration:
			if name := ast.DeclaredName(d); name != "" {
				names[name] = true
			}
		case *ast.ClassDeclaration:
			if name := ast.DeclaredName(d); d.Abstract && name != "" {
				names[name] = true
			}
		}
	}
	for _, stmt := range prog.Body() {
		switch s := stmt.(type) {
		case *ast.ExportNamedDeclaration:
			record(s.Declaration)
		case *ast.ExportDefaultDeclaration:
			record(s.Declaration)
		default:
			record(s)
		}
	}
	return names
}
