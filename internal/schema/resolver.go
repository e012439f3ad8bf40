package schema

// resolver.go declares how a field resolver is registered with the host and how it is called

import "context"

type (
	// ResolveInfo is execution metadata about the field being resolved
	ResolveInfo struct {
		ParentType string // name of the object type that owns the field
		FieldName  string // name of the field in the schema
		FieldKey   string // response key - the alias if one was used in the query, else FieldName
	}

	// ResolveParams are the inputs to one call of a resolver
	ResolveParams struct {
		Context context.Context
		Parent  map[string]interface{} // the already resolved parent object
		Args    map[string]interface{} // query arguments with defaults applied
		Info    ResolveInfo
	}

	// ResolveFunc produces the value of a field.  A nil value (and nil error) gives a GraphQL null.
	ResolveFunc func(p ResolveParams) (interface{}, error)

	// FieldResolver overrides the resolution of one field.  Args are added to the field's definition.
	FieldResolver struct {
		Args    Args
		Resolve ResolveFunc
	}

	// Resolvers is keyed by type name then field name
	Resolvers map[string]map[string]FieldResolver
)

type (
	// API is the part of the host framework that a plugin is given when it is registered
	API interface {
		// LoadSource queues a func to be called (once) while the host loads its data sources.
		// Any error returned from the func aborts loading.
		LoadSource(fn func(Actions) error)
	}

	// Actions are available to a LoadSource func
	Actions interface {
		AddSchemaTypes(types []TypeDecl) error
		Schema() *Builder
		AddSchemaResolvers(resolvers Resolvers) error
	}
)
