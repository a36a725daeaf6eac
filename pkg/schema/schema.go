// Package schema recovers the shape of Go type declarations from source
// text: the type name, its visibility, its type parameters and, for struct
// types, the ordered field list with each field's declared type.
//
// Extraction works on a token tree rather than a full syntax tree. The Go
// scanner tokenizes, bracket pairs are folded into groups, and a single
// forward cursor walks the top level. Because groups are consumed whole,
// separators nested inside brackets are never mistaken for top-level ones.
package schema

import (
	"errors"
	"go/token"
	"reflect"
	"strconv"
	"strings"
)

// Errors returned by the schema package.
var (
	// ErrIdentNotFound is returned when no type name can be located.
	ErrIdentNotFound = errors.New("type identifier not found")

	// ErrTypeNotFound is returned by ExtractType when the named type is not
	// declared in the source.
	ErrTypeNotFound = errors.New("type not found")

	// ErrUnbalanced is returned for mismatched or unclosed brackets.
	ErrUnbalanced = errors.New("unbalanced brackets")

	// ErrSyntax wraps scanner errors.
	ErrSyntax = errors.New("syntax error")

	// ErrMalformedField is returned for a field with names but no type.
	ErrMalformedField = errors.New("malformed field")
)

// Visibility tells whether a declared identifier is visible outside its
// package.
type Visibility int

const (
	// Private is the default: the identifier is unexported.
	Private Visibility = iota
	// Public marks an exported identifier.
	Public
)

// String returns the string representation of a Visibility.
func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "private"
}

func visibilityOf(name string) Visibility {
	if token.IsExported(name) {
		return Public
	}
	return Private
}

// Field is one named struct field.
type Field struct {
	// Name is the Go field name.
	Name string
	// Column is the CSV column the field binds to: the csv tag name when
	// present, otherwise Name.
	Column string
	// Type is the declared type rendered as compact text, e.g. "float64",
	// "[]string", "val.Int128".
	Type string
	// Tag is the unquoted struct tag, if any.
	Tag        string
	Visibility Visibility
}

// Schema is the extracted shape of one type declaration.
type Schema struct {
	Name       string
	Visibility Visibility
	// Generics holds the tokens between the type parameter brackets, or nil.
	Generics []Token
	// Fields is nil for non-struct types.
	Fields []Field
	// IsStruct reports whether the declaration's underlying type is a
	// struct literal.
	IsStruct bool
}

// TypeParams renders the type parameter list without brackets, e.g.
// "K comparable, V any". It is empty for non-generic types.
func (s *Schema) TypeParams() string {
	return Join(s.Generics)
}

// TypeParamNames returns the names of the type parameters in order.
func (s *Schema) TypeParamNames() []string {
	if s.Generics == nil {
		return nil
	}
	var names []string
	for _, seg := range splitTop(s.Generics, ",") {
		if seg[0].Kind == TokenIdent {
			names = append(names, seg[0].Text)
		}
	}
	return names
}

// FieldNames returns the Go field names in declaration order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// FieldTypes returns the declared field types in declaration order.
func (s *Schema) FieldTypes() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Type
	}
	return out
}

// Columns returns the bound column names in declaration order.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Column
	}
	return out
}

// Extract returns the first top-level type declaration in src.
func Extract(src string) (*Schema, error) {
	all, err := ExtractAll(src)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrIdentNotFound
	}
	return all[0], nil
}

// ExtractType returns the top-level type declaration named name.
func ExtractType(src, name string) (*Schema, error) {
	all, err := ExtractAll(src)
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, errors.Join(ErrTypeNotFound, errors.New(name))
}

// ExtractAll returns every top-level type declaration in src in source
// order, including those inside grouped "type ( ... )" blocks.
func ExtractAll(src string) ([]*Schema, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}

	var out []*Schema
	c := &cursor{buf: tokens}
	for !c.done() {
		t := c.next()
		if !t.Is(TokenKeyword, "type") {
			continue
		}
		if g, ok := c.peek(); ok && g.IsGroup("(") {
			c.next()
			for _, spec := range splitTop(g.Tokens, ";") {
				s, err := parseSpec(&cursor{buf: spec})
				if err != nil {
					return nil, err
				}
				out = append(out, s)
			}
			continue
		}
		s, err := parseSpec(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// parseSpec reads one TypeSpec starting at the type name.
func parseSpec(c *cursor) (*Schema, error) {
	name, ok := c.peek()
	if !ok || name.Kind != TokenIdent {
		return nil, ErrIdentNotFound
	}
	c.next()

	s := &Schema{Name: name.Text, Visibility: visibilityOf(name.Text)}

	if t, ok := c.peek(); ok && t.Is(TokenPunct, "=") {
		c.next()
	}

	// A bracket group is a type parameter list only when a struct body
	// follows; "type A [4]int" is an array type.
	if t, ok := c.peek(); ok && t.IsGroup("[") {
		if k, ok := c.peekAt(1); ok && k.Is(TokenKeyword, "struct") {
			s.Generics = t.Tokens
			if s.Generics == nil {
				s.Generics = []Token{}
			}
			c.next()
		}
	}

	if t, ok := c.peek(); ok && t.Is(TokenKeyword, "struct") {
		c.next()
		body, ok := c.peek()
		if !ok || !body.IsGroup("{") {
			return nil, errors.Join(ErrMalformedField, errors.New(s.Name+": struct without body"))
		}
		c.next()
		s.IsStruct = true
		fields, err := parseFields(body.Tokens)
		if err != nil {
			return nil, err
		}
		s.Fields = fields
	}
	return s, nil
}

// parseFields splits a struct body on top-level ";" and reads each field
// declaration. Embedded fields, blank fields and fields tagged csv:"-" are
// skipped.
func parseFields(body []Token) ([]Field, error) {
	fields := []Field{}
	for _, decl := range splitTop(body, ";") {
		fs, err := parseField(decl)
		if err != nil {
			return nil, err
		}
		fields = append(fields, fs...)
	}
	return fields, nil
}

func parseField(decl []Token) ([]Field, error) {
	var tag string
	if last := decl[len(decl)-1]; last.Kind == TokenLiteral && isStringLit(last.Text) && len(decl) > 1 {
		if unq, err := strconv.Unquote(last.Text); err == nil {
			tag = unq
		}
		decl = decl[:len(decl)-1]
	}

	if embedded(decl) {
		return nil, nil
	}

	c := &cursor{buf: decl}
	var names []string
	for {
		t, ok := c.peek()
		if !ok || t.Kind != TokenIdent {
			break
		}
		names = append(names, t.Text)
		c.next()
		if sep, ok := c.peek(); ok && sep.Is(TokenPunct, ",") {
			c.next()
			continue
		}
		break
	}
	rest := c.rest()
	if len(names) == 0 || len(rest) == 0 {
		return nil, errors.Join(ErrMalformedField, errors.New(Join(decl)))
	}

	column, skip := csvColumn(tag)
	if skip {
		return nil, nil
	}

	typ := Join(rest)
	out := make([]Field, 0, len(names))
	for _, n := range names {
		if n == "_" {
			continue
		}
		col := n
		if column != "" && len(names) == 1 {
			col = column
		}
		out = append(out, Field{
			Name:       n,
			Column:     col,
			Type:       typ,
			Tag:        tag,
			Visibility: visibilityOf(n),
		})
	}
	return out, nil
}

// embedded reports whether decl is an embedded field: T, *T, pkg.T or
// *pkg.T, optionally generic.
func embedded(decl []Token) bool {
	if decl[0].Is(TokenPunct, "*") {
		return true
	}
	if len(decl) == 1 {
		return decl[0].Kind == TokenIdent
	}
	if decl[0].Kind == TokenIdent && decl[1].Is(TokenPunct, ".") {
		return true
	}
	return len(decl) == 2 && decl[0].Kind == TokenIdent && decl[1].IsGroup("[")
}

func isStringLit(s string) bool {
	return strings.HasPrefix(s, "`") || strings.HasPrefix(s, `"`)
}

// csvColumn reads the csv key of a struct tag. skip is true for csv:"-".
func csvColumn(tag string) (column string, skip bool) {
	v, ok := reflect.StructTag(tag).Lookup("csv")
	if !ok {
		return "", false
	}
	name, _, _ := strings.Cut(v, ",")
	if name == "-" {
		return "", true
	}
	return name, false
}
