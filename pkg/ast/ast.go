package ast

// Kind identifies the variant of a Node.
type Kind string

const (
	KindProgram                  Kind = "Program"
	KindImportDeclaration        Kind = "ImportDeclaration"
	KindExportNamedDeclaration   Kind = "ExportNamedDeclaration"
	KindExportAllDeclaration     Kind = "ExportAllDeclaration"
	KindExportDefaultDeclaration Kind = "ExportDefaultDeclaration"
	KindExportSpecifier          Kind = "ExportSpecifier"
	KindFunctionDeclaration      Kind = "FunctionDeclaration"
	KindFunctionExpression       Kind = "FunctionExpression"
	KindArrowFunction            Kind = "ArrowFunction"
	KindClassDeclaration         Kind = "ClassDeclaration"
	KindMethodDefinition         Kind = "MethodDefinition"
	KindBlockStatement           Kind = "BlockStatement"
	KindInterfaceDeclaration     Kind = "InterfaceDeclaration"
	KindTypeAliasDeclaration     Kind = "TypeAliasDeclaration"
	KindEnumDeclaration          Kind = "EnumDeclaration"
	KindVariableDeclaration      Kind = "VariableDeclaration"
	KindVariableDeclarator       Kind = "VariableDeclarator"
	KindProperty                 Kind = "Property"
	KindIdentifier               Kind = "Identifier"
	KindLiteral                  Kind = "Literal"
	KindOther                    Kind = "Other"
)

// Position is a point in a source file. Line is 1-based, Column is the
// 0-based byte offset within the line.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Less orders positions by line, then column.
func (p Position) Less(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// Span is the source range covered by a node.
type Span struct {
	Start     Position `json:"start"`
	End       Position `json:"end"`
	StartByte int      `json:"-"`
	EndByte   int      `json:"-"`
}

// Node is implemented by every syntax tree variant. The set of
// implementations is closed to this package.
type Node interface {
	Kind() Kind
	Span() Span
	// Children returns all child nodes in source order.
	Children() []Node
	node()
}

// Base carries the data shared by all variants. Every variant embeds it.
type Base struct {
	Loc  Span
	Kids []Node
}

func (b *Base) Span() Span       { return b.Loc }
func (b *Base) Children() []Node { return b.Kids }
func (*Base) node()              {}

// IsNamed reports whether n is a named syntax node rather than an anonymous
// token such as an operator or keyword.
func IsNamed(n Node) bool {
	if o, ok := n.(*Other); ok {
		return o.Named
	}
	return n != nil
}
