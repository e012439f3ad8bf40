package imagecdn

// types.go makes the declaration and transformer types (which live in internal packages) available
// to users of the plugin, including the interfaces a host must implement

import (
	"github.com/andrewwphillips/imagecdn/internal/schema"
	"github.com/andrewwphillips/imagecdn/internal/transformer"
)

type (
	// TypeDecl declares a GraphQL type (eg an enum of crop modes) to add to the host schema
	TypeDecl = schema.TypeDecl

	// ArgDecl declares one argument of a field
	ArgDecl = schema.ArgDecl

	// Args is a set of argument declarations keyed by argument name
	Args = schema.Args

	// Builder is what the host hands to a transformer to create type declarations
	Builder = schema.Builder

	ResolveParams = schema.ResolveParams
	ResolveInfo   = schema.ResolveInfo
	ResolveFunc   = schema.ResolveFunc
	FieldResolver = schema.FieldResolver
	Resolvers     = schema.Resolvers

	// Transformer is implemented by the preset and custom CDN transformers
	Transformer = transformer.Transformer

	// URLBuilder is optionally implemented by a Transformer to build the CDN URL
	URLBuilder = transformer.URLBuilder

	// TransformParams are passed to URLBuilder.Transform
	TransformParams = transformer.Params

	// CustomTransformer makes a Transformer from funcs
	CustomTransformer = transformer.Custom

	// CDNOptions contains the "cdn" options
	CDNOptions = transformer.CDN
)

type (
	// API is the part of the host framework that the plugin is given at registration
	API = schema.API

	// Actions are what a host provides to a LoadSource func
	Actions = schema.Actions
)

// RegisterPreset makes a custom transformer selectable by name with the cdn.preset option
func RegisterPreset(name string, t Transformer) error {
	return transformer.Register(name, t)
}

// Presets returns the names of the available presets
func Presets() []string {
	return transformer.Names()
}
