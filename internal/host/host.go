// Package host is an in-process GraphQL data layer for a static site.  Content is added as
// collections of nodes (decoded JSON/YAML objects) whose types are declared in SDL, plugins
// add schema types and field resolvers through LoadSource, and queries are executed over
// HTTP or a websocket.
package host

// host.go implements the Host, its LoadSource lifecycle and the assembly of the schema

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/andrewwphillips/imagecdn/internal/schema"
)

const queryTypeName = "Query"

type (
	// Host stores the content, the plugins' LoadSource funcs and (after Build) the schema
	Host struct {
		sdl         string                              // node type declarations
		collections map[string][]map[string]interface{} // nodes keyed by type name
		order       []string                            // collection names in the order added
		sources     []func(schema.Actions) error

		once      sync.Once
		buildErr  error
		schema    *ast.Schema
		typesSDL  string           // SDL of types added by plugins
		resolvers schema.Resolvers // field overrides added by plugins

		// options
		noIntrospection, noConcurrency bool
		initialTimeout                 time.Duration
		logger                         *slog.Logger
		metrics                        *metrics
	}

	// actions is what the LoadSource funcs are given
	actions struct {
		h     *Host
		types map[string]schema.TypeDecl
		names []string // type names in the order added
	}
)

// New creates a host given the SDL for the node types of the collections to be added
func New(sdl string, options ...func(*Host)) *Host {
	h := &Host{
		sdl:         sdl,
		collections: make(map[string][]map[string]interface{}),
		resolvers:   make(schema.Resolvers),
	}
	h.SetOptions(options...)
	return h
}

// AddCollection adds (or appends to) the nodes of a type.  Collections must be added before Build.
func (h *Host) AddCollection(typeName string, nodes []map[string]interface{}) {
	if _, ok := h.collections[typeName]; !ok {
		h.order = append(h.order, typeName)
	}
	h.collections[typeName] = append(h.collections[typeName], nodes...)
}

// LoadSource implements schema.API.  The funcs are called by Build in the order they were queued.
func (h *Host) LoadSource(fn func(schema.Actions) error) {
	h.sources = append(h.sources, fn)
}

// Build calls the LoadSource funcs then generates and validates the schema.  Only the first call does
// anything, later calls return the same error (if any).
func (h *Host) Build() error {
	h.once.Do(func() {
		h.buildErr = h.build()
		if h.buildErr != nil {
			h.logger.Error("building schema", "error", h.buildErr)
		}
	})
	return h.buildErr
}

// SDL returns the schema source.  After a successful Build this is the complete schema (node types,
// plugin types and arguments, generated query) otherwise just the node types and generated query.
func (h *Host) SDL() string {
	if h.schema == nil {
		return h.sdl + "\n" + h.querySDL()
	}
	builder := &strings.Builder{}
	formatter.NewFormatter(builder).FormatSchema(h.schema)
	return builder.String()
}

func (h *Host) build() error {
	if len(h.order) == 0 {
		return fmt.Errorf("no collections have been added")
	}

	a := &actions{h: h, types: make(map[string]schema.TypeDecl)}
	for i, fn := range h.sources {
		if err := fn(a); err != nil {
			return fmt.Errorf("%w in load source %d", err, i+1)
		}
	}
	builder := &strings.Builder{}
	for _, name := range a.names {
		builder.WriteString(a.types[name].SDL())
	}
	h.typesSDL = builder.String()

	doc, err := parser.ParseSchemas(validator.Prelude,
		&ast.Source{Name: "nodes", Input: h.sdl},
		&ast.Source{Name: "plugins", Input: h.typesSDL},
		&ast.Source{Name: "query", Input: h.querySDL()},
	)
	if err != nil {
		return fmt.Errorf("%w parsing schema", err)
	}

	// Add the resolver arguments to the field definitions
	for typeName, fields := range h.resolvers {
		def := doc.Definitions.ForName(typeName)
		if def == nil {
			def = doc.Extensions.ForName(typeName)
		}
		if def == nil || def.Kind != ast.Object {
			return fmt.Errorf("cannot add resolver to %q as it is not an object type", typeName)
		}
		for fieldName, r := range fields {
			fieldDef := def.Fields.ForName(fieldName)
			if fieldDef == nil {
				return fmt.Errorf("cannot add resolver to %s.%s as the field does not exist", typeName, fieldName)
			}
			if err := addArguments(fieldDef, r.Args); err != nil {
				return fmt.Errorf("%w adding arguments to %s.%s", err, typeName, fieldName)
			}
		}
	}

	s, gqlErr := validator.ValidateSchemaDocument(doc)
	if gqlErr != nil {
		return fmt.Errorf("%w validating schema", gqlErr)
	}
	h.schema = s
	h.logger.Debug("schema built", "collections", len(h.order), "types", len(a.names))
	return nil
}

// querySDL generates the Query type - for each collection a list of all nodes plus a lookup by ID
func (h *Host) querySDL() string {
	builder := &strings.Builder{}
	builder.WriteString("type " + queryTypeName + " {\n")
	for _, name := range h.order {
		builder.WriteString(" all" + name + ": [" + name + "!]!\n")
		builder.WriteString(" " + lowerFirst(name) + "(id: ID!): " + name + "\n")
	}
	builder.WriteString("}\n")
	return builder.String()
}

// addArguments parses argument declarations and adds them to a field, replacing any of the same name
func addArguments(fieldDef *ast.FieldDefinition, args schema.Args) error {
	if len(args) == 0 {
		return nil
	}
	if err := args.Validate(); err != nil {
		return err
	}
	doc, err := parser.ParseSchema(&ast.Source{Name: "arguments", Input: "type A { f" + args.SDL() + ": Int }"})
	if err != nil {
		return err
	}
	for _, arg := range doc.Definitions[0].Fields[0].Arguments {
		if existing := fieldDef.Arguments.ForName(arg.Name); existing != nil {
			*existing = *arg
			continue
		}
		fieldDef.Arguments = append(fieldDef.Arguments, arg)
	}
	return nil
}

func lowerFirst(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(first)) + s[size:]
}

// AddSchemaTypes implements schema.Actions.  Adding the same declaration again is ignored but a
// different declaration of the same name is an error.
func (a *actions) AddSchemaTypes(types []schema.TypeDecl) error {
	for _, decl := range types {
		if err := decl.Validate(); err != nil {
			return err
		}
		if previous, ok := a.types[decl.Name]; ok {
			if previous.SDL() != decl.SDL() {
				return fmt.Errorf("type %q added more than once with different declarations", decl.Name)
			}
			continue
		}
		a.types[decl.Name] = decl
		a.names = append(a.names, decl.Name)
	}
	return nil
}

// Schema implements schema.Actions
func (a *actions) Schema() *schema.Builder {
	return schema.NewBuilder()
}

// AddSchemaResolvers implements schema.Actions.  A later resolver for the same field replaces an earlier one.
func (a *actions) AddSchemaResolvers(resolvers schema.Resolvers) error {
	typeNames := make([]string, 0, len(resolvers))
	for typeName := range resolvers {
		typeNames = append(typeNames, typeName)
	}
	sort.Strings(typeNames)

	for _, typeName := range typeNames {
		if typeName == queryTypeName {
			return fmt.Errorf("resolvers cannot be added to %s", queryTypeName)
		}
		if a.h.resolvers[typeName] == nil {
			a.h.resolvers[typeName] = make(map[string]schema.FieldResolver)
		}
		for fieldName, r := range resolvers[typeName] {
			if r.Resolve == nil {
				return fmt.Errorf("resolver for %s.%s is nil", typeName, fieldName)
			}
			a.h.resolvers[typeName][fieldName] = r
		}
	}
	return nil
}
