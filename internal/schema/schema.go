// Package schema holds the declarations exchanged between the image CDN plugin and the host
// GraphQL data layer: type and argument declarations (rendered as GraphQL SDL) and the
// resolver contract used to override a field of an existing type.
package schema

// schema.go contains the type declarations and the Builder used to create them

import (
	"sort"
	"strings"
)

// TypeKind is an "enumeration" of the kinds of GraphQL type that can be declared
type TypeKind int

const (
	Scalar TypeKind = iota
	Enum
	Input
	Object
)

const (
	openString  = " {\n"
	closeString = "}\n"

	gqlScalarType = "scalar"
	gqlEnumType   = "enum"
	gqlInputType  = "input"
	gqlObjectType = "type"
)

// String returns the SDL keyword for the kind of type
func (k TypeKind) String() string {
	switch k {
	case Scalar:
		return gqlScalarType
	case Enum:
		return gqlEnumType
	case Input:
		return gqlInputType
	case Object:
		return gqlObjectType
	}
	return "unknown"
}

type (
	// ArgDecl declares one argument of a field (or one field of an input/object type)
	ArgDecl struct {
		Name        string
		Type        string // GraphQL type reference, eg "Int", "[String!]!"
		Default     string // GraphQL literal, empty for no default
		Description string
	}

	// Args is a set of argument declarations keyed by name
	Args map[string]ArgDecl

	// TypeDecl declares a GraphQL type to be added to the host schema
	TypeDecl struct {
		Kind        TypeKind
		Name        string
		Description string
		Values      []string // enum values
		Fields      Args     // input and object fields
	}

	// Builder creates type declarations.  It is handed to a transformer by the host.
	Builder struct{}
)

// NewBuilder returns a Builder
func NewBuilder() *Builder {
	return &Builder{}
}

// EnumType declares an enum.  As with enums elsewhere a description may be appended to the
// name or to any value after a hash (#) character, eg "CropMode#How to crop" or "fill#Fill the box".
func (b *Builder) EnumType(name string, values ...string) TypeDecl {
	name, desc := splitDescription(name)
	r := TypeDecl{Kind: Enum, Name: name, Description: desc}
	r.Values = append(r.Values, values...)
	return r
}

// InputType declares an input object type
func (b *Builder) InputType(name string, fields Args) TypeDecl {
	name, desc := splitDescription(name)
	return TypeDecl{Kind: Input, Name: name, Description: desc, Fields: fields}
}

// ObjectType declares an output object type
func (b *Builder) ObjectType(name string, fields Args) TypeDecl {
	name, desc := splitDescription(name)
	return TypeDecl{Kind: Object, Name: name, Description: desc, Fields: fields}
}

// ScalarType declares a custom scalar
func (b *Builder) ScalarType(name string) TypeDecl {
	name, desc := splitDescription(name)
	return TypeDecl{Kind: Scalar, Name: name, Description: desc}
}

// SDL returns the declaration in GraphQL schema definition language
func (d TypeDecl) SDL() string {
	builder := &strings.Builder{}
	writeDescription(builder, "", d.Description)
	builder.WriteString(d.Kind.String())
	builder.WriteRune(' ')
	builder.WriteString(d.Name)

	switch d.Kind {
	case Scalar:
		builder.WriteRune('\n')
	case Enum:
		builder.WriteString(openString)
		for _, v := range d.Values {
			v, desc := splitDescription(v)
			writeDescription(builder, " ", desc)
			builder.WriteRune(' ')
			builder.WriteString(v)
			builder.WriteRune('\n')
		}
		builder.WriteString(closeString)
	case Input, Object:
		builder.WriteString(openString)
		for _, arg := range d.Fields.Sorted() {
			writeDescription(builder, " ", arg.Description)
			builder.WriteRune(' ')
			builder.WriteString(arg.SDL())
			builder.WriteRune('\n')
		}
		builder.WriteString(closeString)
	}
	return builder.String()
}

// SDL returns the argument as "name: Type" plus any default value
func (a ArgDecl) SDL() string {
	s := a.Name + ": " + a.Type
	if a.Default != "" {
		s += " = " + a.Default
	}
	return s
}

// Sorted returns the declarations ordered by name, so that generated SDL is always the same
func (args Args) Sorted() []ArgDecl {
	names := make([]string, 0, len(args))
	for k := range args {
		names = append(names, k)
	}
	sort.Strings(names)

	r := make([]ArgDecl, 0, len(args))
	for _, name := range names {
		arg := args[name]
		if arg.Name == "" {
			arg.Name = name
		}
		r = append(r, arg)
	}
	return r
}

// SDL returns the argument list as used in a field definition, eg "(h: Int, w: Int)", or an
// empty string if there are no arguments
func (args Args) SDL() string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, 0, len(args))
	for _, arg := range args.Sorted() {
		part := arg.SDL()
		if arg.Description != "" {
			part = quoteDescription(arg.Description) + " " + part
		}
		parts = append(parts, part)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// splitDescription separates the text after the first hash (#) from a name or value
func splitDescription(s string) (string, string) {
	parts := strings.SplitN(s, "#", 2)
	name := strings.TrimSpace(parts[0])
	if len(parts) < 2 {
		return name, ""
	}
	return name, strings.TrimSpace(parts[1])
}

func writeDescription(builder *strings.Builder, indent, desc string) {
	if desc == "" {
		return
	}
	builder.WriteString(indent)
	builder.WriteString(quoteDescription(desc))
	builder.WriteRune('\n')
}

func quoteDescription(desc string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ").Replace(desc) + `"`
}
