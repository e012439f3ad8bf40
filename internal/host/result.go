package host

// result.go is used to generate the query output

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/dolmen-go/jsonmap"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/andrewwphillips/imagecdn/internal/schema"
)

type (
	// gqlOperation controls an operation (query) of a GraphQL request
	gqlOperation struct {
		*Host // required for the schema, resolvers, options etc

		variables map[string]interface{} // variables valid for this op (extracted from the request)
	}

	// gqlValue contains the result of a query or queries, or an error, plus the name
	gqlValue struct {
		name  string      // name/alias of the entry/resolver
		value interface{} // scalar, nested result (jsonmap.Ordered), list ([]interface{})
		err   error       // non-nil if something went wrong whence the contents of value should be ignored
	}
)

// GetSelections resolves the selections of an object by finding and evaluating the corresponding field(s).
// Returns a jsonmap.Ordered (a map of values and a slice that remembers the order they were added) that contains
// an entry for each selection, where the map "key" is the name or alias of the field and the value is:
//
//	a) scalar value (stored in an interface{})
//	b) a nested jsonmap.Ordered if the field is an object
//	c) a slice (ie []interface{}) if the field is a list
//
// Parameters:
//
//	ctx = a Go context that could expire at any time
//	set = list of selections from a GraphQL query to be resolved
//	typeName = name of the object type being resolved
//	parent = the object (node) that contains the field values (nil for the root query)
func (op *gqlOperation) GetSelections(ctx context.Context, set ast.SelectionSet, typeName string,
	parent map[string]interface{},
) (jsonmap.Ordered, error) {
	resultChans := make([]<-chan gqlValue, 0, len(set))
	for _, s := range set {
		switch astType := s.(type) {
		case *ast.Field:
			if ch := op.FindSelection(ctx, astType, typeName, parent); ch != nil {
				resultChans = append(resultChans, ch)
			}

		case *ast.InlineFragment:
			if !op.fragmentApplies(astType.TypeCondition, typeName) || op.directiveBypass(astType.Directives) {
				continue
			}
			resultChans = append(resultChans, op.FindFragments(ctx, astType.SelectionSet, typeName, parent))

		case *ast.FragmentSpread:
			if !op.fragmentApplies(astType.Definition.TypeCondition, typeName) || op.directiveBypass(astType.Directives) {
				continue
			}
			resultChans = append(resultChans, op.FindFragments(ctx, astType.Definition.SelectionSet, typeName, parent))
		}
	}

	// Now extract the values (will block until all channels have closed)
	r := jsonmap.Ordered{
		Data:  make(map[string]interface{}),
		Order: make([]string, 0, len(set)),
	}
	for _, ch := range resultChans {
	inner:
		for {
			select {
			case v, ok := <-ch:
				if !ok {
					break inner
				}
				if v.err != nil {
					return jsonmap.Ordered{}, v.err
				}
				if prev, ok := r.Data[v.name]; ok {
					r.Data[v.name] = mergeValues(prev, v.value) // same response key selected again
				} else {
					r.Order = append(r.Order, v.name)
					r.Data[v.name] = v.value
				}
			case <-ctx.Done():
				return jsonmap.Ordered{}, ctx.Err()
			}
		}
	}
	return r, nil
}

// mergeValues combines the results of two selections with the same response key.  Objects
// (and lists of objects) are merged field by field keeping the order of the first.
func mergeValues(first, second interface{}) interface{} {
	switch f := first.(type) {
	case jsonmap.Ordered:
		s, ok := second.(jsonmap.Ordered)
		if !ok {
			return second
		}
		for _, name := range s.Order {
			if prev, ok := f.Data[name]; ok {
				f.Data[name] = mergeValues(prev, s.Data[name])
			} else {
				f.Order = append(f.Order, name)
				f.Data[name] = s.Data[name]
			}
		}
		return f
	case []interface{}:
		s, ok := second.([]interface{})
		if !ok || len(s) != len(f) {
			return second
		}
		for i := range f {
			f[i] = mergeValues(f[i], s[i])
		}
		return f
	}
	return second
}

// FindSelection returns the resolved value of a field in a chan, or nil if the field is excluded by a directive
func (op *gqlOperation) FindSelection(ctx context.Context, astField *ast.Field, typeName string,
	parent map[string]interface{},
) <-chan gqlValue {
	if op.directiveBypass(astField.Directives) {
		return nil
	}

	if op.noConcurrency {
		ch := make(chan gqlValue, 1)
		op.wrapResolve(ctx, astField, typeName, parent, ch)
		return ch
	}
	ch := make(chan gqlValue, 1)
	// Calling wrapResolve as a go routine allows resolvers to run in parallel
	go op.wrapResolve(ctx, astField, typeName, parent, ch)
	return ch
}

// wrapResolve calls resolve putting the return value on a chan and converting any panic to an error
func (op *gqlOperation) wrapResolve(ctx context.Context, astField *ast.Field, typeName string,
	parent map[string]interface{}, ch chan<- gqlValue,
) {
	defer func() {
		// Convert any panics in resolvers into an (internal) error
		if recoverValue := recover(); recoverValue != nil {
			ch <- gqlValue{err: fmt.Errorf("internal error: panic %v", recoverValue)}
		}
		close(ch)
	}()
	ch <- op.resolve(ctx, astField, typeName, parent)
}

// FindFragments resolves the selections of a fragment and returns them on a (closed) chan
func (op *gqlOperation) FindFragments(ctx context.Context, set ast.SelectionSet, typeName string,
	parent map[string]interface{},
) <-chan gqlValue {
	result, err := op.GetSelections(ctx, set, typeName, parent)

	var ch chan gqlValue
	if err != nil {
		ch = make(chan gqlValue, 1)
		ch <- gqlValue{err: err}
	} else {
		ch = make(chan gqlValue, len(result.Order))
		for _, v := range result.Order {
			ch <- gqlValue{name: v, value: result.Data[v]}
		}
	}
	close(ch)
	return ch
}

// resolve obtains the value of a field (incl. nested objects and lists).  If a plugin added a resolver
// for the field it is called, otherwise the value is taken from the parent (or the collections for
// the root query).
func (op *gqlOperation) resolve(ctx context.Context, astField *ast.Field, typeName string,
	parent map[string]interface{},
) gqlValue {
	if astField.Name == "__typename" {
		if op.noIntrospection {
			return gqlValue{err: fmt.Errorf("introspection is disabled")}
		}
		return gqlValue{name: astField.Alias, value: typeName}
	}

	var value interface{}
	if r, ok := op.resolvers[typeName][astField.Name]; ok {
		var err error
		value, err = r.Resolve(schema.ResolveParams{
			Context: ctx,
			Parent:  parent,
			Args:    astField.ArgumentMap(op.variables),
			Info: schema.ResolveInfo{
				ParentType: typeName,
				FieldName:  astField.Name,
				FieldKey:   astField.Alias,
			},
		})
		if err != nil {
			return gqlValue{err: fmt.Errorf("%w resolving %s.%s", err, typeName, astField.Name)}
		}
	} else if typeName == queryTypeName {
		var err error
		if value, err = op.rootValue(astField); err != nil {
			return gqlValue{err: err}
		}
	} else {
		value = parent[astField.Name]
	}

	value, err := op.complete(ctx, astField, astField.Definition.Type, value)
	if err != nil {
		return gqlValue{err: err}
	}
	return gqlValue{name: astField.Alias, value: value}
}

// rootValue gets the value of a generated Query field - all nodes of a collection or one node by ID
func (op *gqlOperation) rootValue(astField *ast.Field) (interface{}, error) {
	if strings.HasPrefix(astField.Name, "all") {
		if nodes, ok := op.collections[strings.TrimPrefix(astField.Name, "all")]; ok {
			return nodes, nil
		}
	}
	typeName := astField.Definition.Type.Name()
	nodes, ok := op.collections[typeName]
	if !ok {
		return nil, fmt.Errorf("no collection for query %q", astField.Name)
	}
	id := fmt.Sprint(astField.ArgumentMap(op.variables)["id"])
	for _, node := range nodes {
		if fmt.Sprint(node["id"]) == id {
			return node, nil
		}
	}
	return nil, nil
}

// complete converts a resolved value to the output for the field's type: lists are completed element by
// element, objects have their selections resolved and scalars are returned as is
func (op *gqlOperation) complete(ctx context.Context, astField *ast.Field, t *ast.Type, value interface{}) (interface{}, error) {
	if value == nil {
		if t.NonNull {
			return nil, fmt.Errorf("returning null when %q is not nullable", astField.Alias)
		}
		return nil, nil
	}

	if t.Elem != nil {
		v := reflect.ValueOf(value)
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			return nil, fmt.Errorf("expected a list for %q but got %T", astField.Alias, value)
		}
		results := make([]interface{}, 0, v.Len()) // to distinguish empty slice from nil slice
		for i := 0; i < v.Len(); i++ {
			elt, err := op.complete(ctx, astField, t.Elem, v.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			results = append(results, elt)
		}
		return results, nil
	}

	def := op.schema.Types[t.NamedType]
	if def == nil {
		return nil, fmt.Errorf("unknown type %q for %q", t.NamedType, astField.Alias)
	}
	switch def.Kind {
	case ast.Object, ast.Interface, ast.Union:
		node, ok := value.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected an object for %q but got %T", astField.Alias, value)
		}
		typeName := def.Name
		if def.Kind != ast.Object {
			// The concrete type of an interface or union must be recorded in the node
			if typeName, ok = node["__typename"].(string); !ok {
				return nil, fmt.Errorf("cannot tell the type of %q (%s) as it has no __typename", astField.Alias, def.Name)
			}
		}
		return op.GetSelections(ctx, astField.SelectionSet, typeName, node)

	case ast.Enum, ast.Scalar:
		if t.NamedType == "ID" {
			return fmt.Sprint(value), nil // IDs may be given as numbers but are always output as strings
		}
		return value, nil
	}
	return nil, fmt.Errorf("cannot output %s %q", def.Kind, def.Name)
}

// fragmentApplies checks if a fragment with a type condition applies to an object of type typeName
func (op *gqlOperation) fragmentApplies(condition, typeName string) bool {
	if condition == "" || condition == typeName {
		return true
	}
	if def := op.schema.Types[condition]; def != nil {
		for _, possible := range op.schema.GetPossibleTypes(def) {
			if possible.Name == typeName {
				return true
			}
		}
	}
	return false
}

// directiveBypass handles field directives - just standard "skip" and "include" for now
// Returns: true if a directive indicates the field is not to be processed
func (op *gqlOperation) directiveBypass(directives ast.DirectiveList) bool {
	for _, d := range directives {
		if d.Name != "skip" && d.Name != "include" {
			continue
		}
		reverse := d.Name == "skip"
		for _, arg := range d.Arguments {
			if arg.Name == "if" {
				if rawValue, err := arg.Value.Value(op.variables); err == nil {
					if b, ok := rawValue.(bool); ok && b == reverse {
						return true
					}
				}
			}
		}
	}
	return false
}
