// Package gen renders typed CSV loaders for struct declarations. Given Go
// source and a struct type, it emits a []dataframe.Field literal bound to
// the struct's columns plus two functions, Read<T>CSV and Read<T>String,
// that decode input against it.
package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/ssargent/tabula/pkg/logging"
	"github.com/ssargent/tabula/pkg/schema"
	"github.com/ssargent/tabula/pkg/val"
)

var (
	// ErrNoFields is returned for a type with no decodable fields.
	ErrNoFields = errors.New("type has no fields")

	// ErrNoPackage is returned when the package clause cannot be found and
	// Config.Package is empty.
	ErrNoPackage = errors.New("package name not found")
)

// Config describes one generation run.
type Config struct {
	// Source is the Go source file content holding the declaration.
	Source string
	// SourceName is recorded in the generated header.
	SourceName string
	// Type selects the declaration. Empty selects the first struct.
	Type string
	// Package overrides the package clause read from Source.
	Package string
	// Exact makes the loaders decode with dataframe.WithExactTypes.
	Exact bool
}

// Loader is the resolved input of the template.
type Loader struct {
	Package    string
	SourceName string
	TypeName   string
	FieldsVar  string
	CSVFunc    string
	StringFunc string
	Fields     []schema.Field
	Exact      bool
}

var loaderTemplate = template.Must(template.New("loader").Parse(`// Code generated by tabgen{{if .SourceName}} from {{.SourceName}}{{end}}; DO NOT EDIT.

package {{.Package}}

import "github.com/ssargent/tabula/pkg/dataframe"

// {{.FieldsVar}} binds the CSV columns of {{.TypeName}} to their declared types.
var {{.FieldsVar}} = []dataframe.Field{
{{- range .Fields}}
	{Name: {{printf "%q" .Column}}, Type: {{printf "%q" .Type}}},
{{- end}}
}

// {{.CSVFunc}} loads the CSV file at path as a DataFrame typed by {{.TypeName}}.
func {{.CSVFunc}}(path string) (*dataframe.DataFrame, error) {
	return dataframe.ReadCSVAs(path, {{.FieldsVar}}{{if .Exact}}, dataframe.WithExactTypes(){{end}})
}

// {{.StringFunc}} decodes CSV text as a DataFrame typed by {{.TypeName}}.
func {{.StringFunc}}(input string) (*dataframe.DataFrame, error) {
	return dataframe.ReadStringAs(input, {{.FieldsVar}}{{if .Exact}}, dataframe.WithExactTypes(){{end}})
}
`))

// Resolve extracts the selected declaration from cfg.Source and derives
// the identifiers of the generated code.
func Resolve(cfg Config) (*Loader, error) {
	var (
		s   *schema.Schema
		err error
	)
	if cfg.Type != "" {
		s, err = schema.ExtractType(cfg.Source, cfg.Type)
	} else {
		s, err = firstStruct(cfg.Source)
	}
	if err != nil {
		return nil, err
	}
	if len(s.Fields) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFields, s.Name)
	}

	pkg := cfg.Package
	if pkg == "" {
		if pkg, err = PackageName(cfg.Source); err != nil {
			return nil, err
		}
	}

	log := logging.WithType(s.Name)
	supported := val.NormalizedKind
	if cfg.Exact {
		supported = val.DeclaredKind
	}
	for _, f := range s.Fields {
		if _, ok := supported(f.Type); !ok {
			log.Warn("field type is not decodable; loads will fail with ErrInvalidDataType",
				"field", f.Name, "field_type", f.Type)
		}
	}

	title := upperFirst(s.Name)
	prefix := "Read"
	if s.Visibility == schema.Private {
		prefix = "read"
	}
	return &Loader{
		Package:    pkg,
		SourceName: cfg.SourceName,
		TypeName:   s.Name,
		FieldsVar:  lowerInitial(s.Name) + "Fields",
		CSVFunc:    prefix + title + "CSV",
		StringFunc: prefix + title + "String",
		Fields:     s.Fields,
		Exact:      cfg.Exact,
	}, nil
}

// Generate renders gofmt-ed loader source for the declaration selected by
// cfg.
func Generate(cfg Config) ([]byte, error) {
	l, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := loaderTemplate.Execute(&buf, l); err != nil {
		return nil, fmt.Errorf("failed to render loader: %w", err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format loader: %w", err)
	}
	return out, nil
}

// PackageName returns the name in the package clause of src.
func PackageName(src string) (string, error) {
	tokens, err := schema.Tokenize(src)
	if err != nil {
		return "", err
	}
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].Is(schema.TokenKeyword, "package") && tokens[i+1].Kind == schema.TokenIdent {
			return tokens[i+1].Text, nil
		}
	}
	return "", ErrNoPackage
}

// OutputName returns the conventional file name for the loader of
// typeName: "Player" becomes "player_frame.go", "HTTPLog" becomes
// "http_log_frame.go".
func OutputName(typeName string) string {
	var b strings.Builder
	runes := []rune(typeName)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String() + "_frame.go"
}

func firstStruct(src string) (*schema.Schema, error) {
	all, err := schema.ExtractAll(src)
	if err != nil {
		return nil, err
	}
	for _, s := range all {
		if s.IsStruct {
			return s, nil
		}
	}
	if len(all) > 0 {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrNoFields, all[0].Name)
	}
	return nil, schema.ErrIdentNotFound
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}

// lowerInitial lowercases the leading run of capitals, leaving the last one
// when it starts the next word: HTTPLog becomes httpLog, ID becomes id.
func lowerInitial(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	if n > 1 && n < len(runes) && unicode.IsLower(runes[n]) {
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
