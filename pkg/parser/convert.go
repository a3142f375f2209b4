package parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/parkrevil/firebat-sub000/pkg/ast"
)

// punctuation tokens carry no structure of their own and are dropped.
var punctuation = map[string]bool{
	"(": true, ")": true, "{": true, "}": true, "[": true, "]": true,
	";": true, ",": true, ".": true, ":": true,
}

var identifierTypes = map[string]bool{
	"identifier":                           true,
	"property_identifier":                  true,
	"private_property_identifier":          true,
	"type_identifier":                      true,
	"shorthand_property_identifier":        true,
	"shorthand_property_identifier_pattern": true,
	"statement_identifier":                 true,
}

// converter turns a tree-sitter CST into the ast variants.
type converter struct {
	source []byte
}

func (c *converter) convert(n *sitter.Node) ast.Node {
	if n == nil {
		return nil
	}
	typ := n.Type()

	if !n.IsNamed() {
		if punctuation[typ] {
			return nil
		}
		return &ast.Other{
			Base:  ast.Base{Loc: spanOf(n)},
			Type:  typ,
			Token: nodeText(n, c.source),
		}
	}

	if identifierTypes[typ] {
		return &ast.Identifier{Base: ast.Base{Loc: spanOf(n)}, Name: nodeText(n, c.source)}
	}

	switch typ {
	case "comment", "hash_bang_line":
		return nil
	case "program":
		return &ast.Program{Base: c.base(n)}
	case "import_statement":
		return c.importDeclaration(n)
	case "export_statement":
		return c.exportStatement(n)
	case "export_specifier":
		return c.exportSpecifier(n)
	case "function_declaration", "generator_function_declaration":
		b := c.base(n)
		return &ast.FunctionDeclaration{
			Base:      b,
			Name:      findIdent(b, n.ChildByFieldName("name")),
			Body:      findBlock(b, n.ChildByFieldName("body")),
			Async:     hasToken(n, "async"),
			Generator: hasToken(n, "*"),
		}
	case "function", "function_expression", "generator_function":
		b := c.base(n)
		return &ast.FunctionExpression{
			Base:      b,
			Name:      findIdent(b, n.ChildByFieldName("name")),
			Body:      findBlock(b, n.ChildByFieldName("body")),
			Async:     hasToken(n, "async"),
			Generator: hasToken(n, "*"),
		}
	case "arrow_function":
		b := c.base(n)
		return &ast.ArrowFunction{
			Base:  b,
			Body:  find(b, n.ChildByFieldName("body")),
			Async: hasToken(n, "async"),
		}
	case "class_declaration", "abstract_class_declaration", "class":
		b := c.base(n)
		return &ast.ClassDeclaration{
			Base:       b,
			Name:       findIdent(b, n.ChildByFieldName("name")),
			Abstract:   typ == "abstract_class_declaration",
			Expression: typ == "class",
		}
	case "method_definition":
		b := c.base(n)
		m := &ast.MethodDefinition{
			Base:   b,
			Key:    find(b, n.ChildByFieldName("name")),
			Body:   findBlock(b, n.ChildByFieldName("body")),
			Static: hasToken(n, "static"),
		}
		switch {
		case hasToken(n, "get"):
			m.Accessor = "get"
		case hasToken(n, "set"):
			m.Accessor = "set"
		}
		return m
	case "statement_block":
		return &ast.BlockStatement{Base: c.base(n)}
	case "interface_declaration":
		b := c.base(n)
		return &ast.InterfaceDeclaration{Base: b, Name: findIdent(b, n.ChildByFieldName("name"))}
	case "type_alias_declaration":
		b := c.base(n)
		return &ast.TypeAliasDeclaration{Base: b, Name: findIdent(b, n.ChildByFieldName("name"))}
	case "enum_declaration":
		b := c.base(n)
		return &ast.EnumDeclaration{Base: b, Name: findIdent(b, n.ChildByFieldName("name"))}
	case "lexical_declaration", "variable_declaration":
		b := c.base(n)
		decl := &ast.VariableDeclaration{Base: b, DeclKind: "var"}
		if k := n.ChildByFieldName("kind"); k != nil {
			decl.DeclKind = nodeText(k, c.source)
		}
		for _, kid := range b.Kids {
			if d, ok := kid.(*ast.VariableDeclarator); ok {
				decl.Declarators = append(decl.Declarators, d)
			}
		}
		return decl
	case "variable_declarator":
		b := c.base(n)
		return &ast.VariableDeclarator{
			Base: b,
			ID:   find(b, n.ChildByFieldName("name")),
			Init: find(b, n.ChildByFieldName("value")),
		}
	case "pair", "public_field_definition", "field_definition":
		b := c.base(n)
		keyField := "key"
		if typ != "pair" {
			keyField = "name"
			if typ == "field_definition" {
				keyField = "property"
			}
		}
		return &ast.Property{
			Base:  b,
			Key:   find(b, n.ChildByFieldName(keyField)),
			Value: find(b, n.ChildByFieldName("value")),
		}
	case "ambient_declaration":
		// `declare <declaration>` is treated as the declaration itself.
		for i := range int(n.NamedChildCount()) {
			if inner := c.convert(n.NamedChild(i)); inner != nil {
				return inner
			}
		}
		return c.other(n)
	case "string":
		return c.literal(n, ast.LiteralString)
	case "number":
		return c.literal(n, ast.LiteralNumber)
	case "regex":
		return c.literal(n, ast.LiteralRegExp)
	case "true", "false":
		return c.literal(n, ast.LiteralBoolean)
	case "null", "undefined":
		return c.literal(n, ast.LiteralNull)
	case "string_fragment", "escape_sequence":
		return c.literal(n, ast.LiteralOther)
	default:
		return c.other(n)
	}
}

func (c *converter) base(n *sitter.Node) ast.Base {
	return ast.Base{Loc: spanOf(n), Kids: c.children(n)}
}

func (c *converter) children(n *sitter.Node) []ast.Node {
	count := int(n.ChildCount())
	if count == 0 {
		return nil
	}
	kids := make([]ast.Node, 0, count)
	for i := range count {
		if kid := c.convert(n.Child(i)); kid != nil {
			kids = append(kids, kid)
		}
	}
	return kids
}

func (c *converter) other(n *sitter.Node) ast.Node {
	o := &ast.Other{Base: c.base(n), Type: n.Type(), Named: true}
	if len(o.Kids) == 0 {
		o.Token = nodeText(n, c.source)
	}
	return o
}

func (c *converter) literal(n *sitter.Node, kind ast.LiteralKind) ast.Node {
	return &ast.Literal{
		Base:    ast.Base{Loc: spanOf(n)},
		LitKind: kind,
		Raw:     nodeText(n, c.source),
	}
}

func (c *converter) importDeclaration(n *sitter.Node) ast.Node {
	b := c.base(n)
	decl := &ast.ImportDeclaration{
		Base:     b,
		TypeOnly: hasToken(n, "type") || hasToken(n, "typeof"),
	}
	src := n.ChildByFieldName("source")
	if src == nil {
		// import x = require("./y")
		for i := range int(n.NamedChildCount()) {
			if child := n.NamedChild(i); child.Type() == "import_require_clause" {
				if s := child.ChildByFieldName("source"); s != nil {
					decl.Source = findLiteralDeep(b, s)
				}
			}
		}
		return decl
	}
	decl.Source = findLiteral(b, src)
	return decl
}

func (c *converter) exportStatement(n *sitter.Node) ast.Node {
	b := c.base(n)
	src := n.ChildByFieldName("source")
	var clause *sitter.Node
	for i := range int(n.NamedChildCount()) {
		if child := n.NamedChild(i); child.Type() == "export_clause" {
			clause = child
			break
		}
	}

	if src != nil && clause == nil {
		all := &ast.ExportAllDeclaration{Base: b, Source: findLiteral(b, src)}
		for i := range int(n.NamedChildCount()) {
			if child := n.NamedChild(i); child.Type() == "namespace_export" {
				if id := child.NamedChild(0); id != nil {
					all.Exported = nodeText(id, c.source)
				}
			}
		}
		return all
	}

	if hasToken(n, "default") {
		decl := n.ChildByFieldName("declaration")
		if decl == nil {
			decl = n.ChildByFieldName("value")
		}
		return &ast.ExportDefaultDeclaration{Base: b, Declaration: find(b, decl)}
	}

	named := &ast.ExportNamedDeclaration{
		Base:        b,
		Declaration: find(b, n.ChildByFieldName("declaration")),
		TypeOnly:    hasToken(n, "type"),
	}
	if src != nil {
		named.Source = findLiteral(b, src)
	}
	for _, kid := range b.Kids {
		o, ok := kid.(*ast.Other)
		if !ok || o.Type != "export_clause" {
			continue
		}
		for _, spec := range o.Kids {
			if s, ok := spec.(*ast.ExportSpecifier); ok {
				named.Specifiers = append(named.Specifiers, s)
			}
		}
	}
	return named
}

func (c *converter) exportSpecifier(n *sitter.Node) ast.Node {
	b := c.base(n)
	spec := &ast.ExportSpecifier{Base: b}
	if name := n.ChildByFieldName("name"); name != nil {
		spec.Local = unquote(nodeText(name, c.source))
	}
	spec.Exported = spec.Local
	if alias := n.ChildByFieldName("alias"); alias != nil {
		spec.Exported = unquote(nodeText(alias, c.source))
	}
	return spec
}

// find returns the converted child of b that covers the CST node target.
func find(b ast.Base, target *sitter.Node) ast.Node {
	if target == nil {
		return nil
	}
	start, end := int(target.StartByte()), int(target.EndByte())
	var inner ast.Node
	for _, kid := range b.Kids {
		s := kid.Span()
		if s.StartByte == start && s.EndByte == end {
			return kid
		}
		// unwrapped wrappers such as ambient declarations are narrower
		if inner == nil && ast.IsNamed(kid) && s.StartByte >= start && s.EndByte <= end {
			inner = kid
		}
	}
	return inner
}

func findIdent(b ast.Base, target *sitter.Node) *ast.Identifier {
	id, _ := find(b, target).(*ast.Identifier)
	return id
}

func findBlock(b ast.Base, target *sitter.Node) *ast.BlockStatement {
	blk, _ := find(b, target).(*ast.BlockStatement)
	return blk
}

func findLiteral(b ast.Base, target *sitter.Node) *ast.Literal {
	lit, _ := find(b, target).(*ast.Literal)
	return lit
}

// findLiteralDeep locates a string literal nested anywhere below b.
func findLiteralDeep(b ast.Base, target *sitter.Node) *ast.Literal {
	start := int(target.StartByte())
	var found *ast.Literal
	for _, kid := range b.Kids {
		ast.Inspect(kid, func(n ast.Node) bool {
			if found != nil {
				return false
			}
			if lit, ok := n.(*ast.Literal); ok && lit.Span().StartByte == start {
				found = lit
				return false
			}
			return true
		})
	}
	return found
}

// hasToken reports whether n has a direct anonymous child with the given text.
func hasToken(n *sitter.Node, token string) bool {
	for i := range int(n.ChildCount()) {
		child := n.Child(i)
		if child != nil && !child.IsNamed() && child.Type() == token {
			return true
		}
	}
	return false
}

func spanOf(n *sitter.Node) ast.Span {
	start, end := n.StartPoint(), n.EndPoint()
	return ast.Span{
		Start:     ast.Position{Line: int(start.Row) + 1, Column: int(start.Column)},
		End:       ast.Position{Line: int(end.Row) + 1, Column: int(end.Column)},
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
	}
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
