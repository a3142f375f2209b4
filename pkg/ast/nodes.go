package ast

import "strings"

// Program is the root of a file.
type Program struct {
	Base
}

func (*Program) Kind() Kind { return KindProgram }

// Body returns the top-level statements.
func (p *Program) Body() []Node { return p.Kids }

// ImportDeclaration is an import statement, including type-only imports
// and `import x = require("...")`.
type ImportDeclaration struct {
	Base
	Source   *Literal
	TypeOnly bool
}

func (*ImportDeclaration) Kind() Kind { return KindImportDeclaration }

// SourceValue returns the module specifier, or "" when none was found.
func (d *ImportDeclaration) SourceValue() string { return d.Source.StringValue() }

// ExportNamedDeclaration is `export <declaration>`, `export { a, b }` or
// `export { a } from "..."`.
type ExportNamedDeclaration struct {
	Base
	Declaration Node
	Specifiers  []*ExportSpecifier
	Source      *Literal
	TypeOnly    bool
}

func (*ExportNamedDeclaration) Kind() Kind { return KindExportNamedDeclaration }

// SourceValue returns the re-export specifier, or "" for local exports.
func (d *ExportNamedDeclaration) SourceValue() string { return d.Source.StringValue() }

// ExportSpecifier is one entry of an export clause.
type ExportSpecifier struct {
	Base
	Local    string
	Exported string
}

func (*ExportSpecifier) Kind() Kind { return KindExportSpecifier }

// ExportAllDeclaration is `export * from "..."` or `export * as ns from "..."`.
type ExportAllDeclaration struct {
	Base
	Source   *Literal
	Exported string
}

func (*ExportAllDeclaration) Kind() Kind { return KindExportAllDeclaration }

// SourceValue returns the re-export specifier.
func (d *ExportAllDeclaration) SourceValue() string { return d.Source.StringValue() }

// ExportDefaultDeclaration is `export default <declaration or expression>`.
type ExportDefaultDeclaration struct {
	Base
	Declaration Node
}

func (*ExportDefaultDeclaration) Kind() Kind { return KindExportDefaultDeclaration }

// FunctionDeclaration is a named function statement.
type FunctionDeclaration struct {
	Base
	Name      *Identifier
	Body      *BlockStatement
	Async     bool
	Generator bool
}

func (*FunctionDeclaration) Kind() Kind { return KindFunctionDeclaration }

// FunctionExpression is a function used as a value. Name is nil when anonymous.
type FunctionExpression struct {
	Base
	Name      *Identifier
	Body      *BlockStatement
	Async     bool
	Generator bool
}

func (*FunctionExpression) Kind() Kind { return KindFunctionExpression }

// ArrowFunction is `(params) => body`. Body is a block or an expression.
type ArrowFunction struct {
	Base
	Body  Node
	Async bool
}

func (*ArrowFunction) Kind() Kind { return KindArrowFunction }

// ClassDeclaration covers class statements and class expressions.
type ClassDeclaration struct {
	Base
	Name       *Identifier
	Abstract   bool
	Expression bool
}

func (*ClassDeclaration) Kind() Kind { return KindClassDeclaration }

// MethodDefinition is a class or object method, accessor or constructor.
type MethodDefinition struct {
	Base
	Key    Node
	Body   *BlockStatement
	Static bool
	// Accessor is "get", "set" or empty.
	Accessor string
}

func (*MethodDefinition) Kind() Kind { return KindMethodDefinition }

// BlockStatement is a braced statement list.
type BlockStatement struct {
	Base
}

func (*BlockStatement) Kind() Kind { return KindBlockStatement }

// InterfaceDeclaration is a TypeScript interface.
type InterfaceDeclaration struct {
	Base
	Name *Identifier
}

func (*InterfaceDeclaration) Kind() Kind { return KindInterfaceDeclaration }

// TypeAliasDeclaration is `type X = ...`.
type TypeAliasDeclaration struct {
	Base
	Name *Identifier
}

func (*TypeAliasDeclaration) Kind() Kind { return KindTypeAliasDeclaration }

// EnumDeclaration is a TypeScript enum, const or not.
type EnumDeclaration struct {
	Base
	Name *Identifier
}

func (*EnumDeclaration) Kind() Kind { return KindEnumDeclaration }

// VariableDeclaration is a var, let or const statement.
type VariableDeclaration struct {
	Base
	// DeclKind is "var", "let" or "const".
	DeclKind    string
	Declarators []*VariableDeclarator
}

func (*VariableDeclaration) Kind() Kind { return KindVariableDeclaration }

// VariableDeclarator binds one name (or pattern) to an optional initializer.
type VariableDeclarator struct {
	Base
	ID   Node
	Init Node
}

func (*VariableDeclarator) Kind() Kind { return KindVariableDeclarator }

// Property is an object literal pair or a class field.
type Property struct {
	Base
	Key   Node
	Value Node
}

func (*Property) Kind() Kind { return KindProperty }

// Identifier is any name reference or binding, including property and type names.
type Identifier struct {
	Base
	Name string
}

func (*Identifier) Kind() Kind { return KindIdentifier }

// LiteralKind classifies literal values.
type LiteralKind string

const (
	LiteralString  LiteralKind = "string"
	LiteralNumber  LiteralKind = "number"
	LiteralRegExp  LiteralKind = "regexp"
	LiteralBoolean LiteralKind = "boolean"
	LiteralNull    LiteralKind = "null"
	LiteralOther   LiteralKind = "other"
)

// Literal is a primitive value written in source.
type Literal struct {
	Base
	LitKind LiteralKind
	// Raw is the literal as written, quotes included.
	Raw string
}

func (*Literal) Kind() Kind { return KindLiteral }

// StringValue returns the unquoted content of a string literal. It is safe
// to call on a nil receiver and returns "" for non-string literals.
func (l *Literal) StringValue() string {
	if l == nil || l.LitKind != LiteralString || len(l.Raw) < 2 {
		return ""
	}
	q := l.Raw[0]
	if (q != '"' && q != '\'' && q != '`') || l.Raw[len(l.Raw)-1] != q {
		return ""
	}
	return l.Raw[1 : len(l.Raw)-1]
}

// Other carries any construct without a dedicated variant. Anonymous tokens
// (keywords, operators) have Named false and their text in Token.
type Other struct {
	Base
	Type  string
	Token string
	Named bool
}

func (*Other) Kind() Kind { return KindOther }

// DeclaredName returns the name a declaration introduces, or "" if n does
// not declare a name.
func DeclaredName(n Node) string {
	switch n := n.(type) {
	case *FunctionDeclaration:
		return identName(n.Name)
	case *FunctionExpression:
		return identName(n.Name)
	case *ClassDeclaration:
		return identName(n.Name)
	case *InterfaceDeclaration:
		return identName(n.Name)
	case *TypeAliasDeclaration:
		return identName(n.Name)
	case *EnumDeclaration:
		return identName(n.Name)
	case *MethodDefinition:
		return KeyName(n.Key)
	case *VariableDeclarator:
		return KeyName(n.ID)
	case *Property:
		return KeyName(n.Key)
	}
	return ""
}

// KeyName returns the text of a property key or binding name. String keys
// are unquoted; computed and pattern keys yield "".
func KeyName(n Node) string {
	switch n := n.(type) {
	case *Identifier:
		return n.Name
	case *Literal:
		if v := n.StringValue(); v != "" {
			return v
		}
		if n.LitKind == LiteralNumber {
			return n.Raw
		}
	}
	return ""
}

func identName(id *Identifier) string {
	if id == nil {
		return ""
	}
	return strings.TrimSpace(id.Name)
}
