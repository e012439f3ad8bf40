package host

// execute.go handles the execution of a GraphQL request

import (
	"context"
	"errors"
	"time"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/validator"
)

type (
	// Request is a GraphQL request as decoded from an HTTP request body (JSON) or WS message
	Request struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName,omitempty"`
		Variables     map[string]interface{} `json:"variables,omitempty"`
	}

	// Result contains the result (or errors) of the request to be encoded in JSON
	Result struct {
		Data   interface{}   `json:"data"` // jsonmap.Ordered, or nil if there were errors
		Errors gqlerror.List `json:"errors,omitempty"`
	}
)

// Execute parses, validates and runs a query (Build must have been called successfully)
func (h *Host) Execute(ctx context.Context, req Request) (r Result) {
	start := time.Now()
	defer func() { h.metrics.observe(start, len(r.Errors) > 0) }()

	if h.schema == nil {
		r.Errors = append(r.Errors, gqlerror.Errorf("schema has not been built"))
		return
	}

	// First analyse and validate the query string
	query, errs := gqlparser.LoadQuery(h.schema, req.Query)
	if errs != nil {
		r.Errors = errs
		return
	}

	operation, gqlErr := selectOperation(query, req.OperationName)
	if gqlErr != nil {
		r.Errors = append(r.Errors, gqlErr)
		return
	}

	op := gqlOperation{Host: h}
	if len(operation.VariableDefinitions) > 0 {
		vars, err := validator.VariableValues(h.schema, operation, req.Variables)
		if err != nil {
			r.Errors = append(r.Errors, toGQLError(err))
			return
		}
		op.variables = vars
	}

	if operation.Operation != ast.Query {
		r.Errors = append(r.Errors, gqlerror.Errorf("%s operations are not supported", operation.Operation))
		return
	}

	result, err := op.GetSelections(ctx, operation.SelectionSet, queryTypeName, nil)
	if err != nil {
		r.Errors = append(r.Errors, &gqlerror.Error{
			Message:    err.Error(),
			Extensions: map[string]interface{}{"operation": operation.Name},
		})
		return
	}
	r.Data = result
	return
}

// selectOperation finds the operation to run - the named one, or the only one if no name is given
func selectOperation(query *ast.QueryDocument, name string) (*ast.OperationDefinition, *gqlerror.Error) {
	if name != "" {
		if operation := query.Operations.ForName(name); operation != nil {
			return operation, nil
		}
		return nil, gqlerror.Errorf("operation %q not found", name)
	}
	if len(query.Operations) != 1 {
		return nil, gqlerror.Errorf("operation name required when the request has %d operations", len(query.Operations))
	}
	return query.Operations[0], nil
}

// toGQLError returns err as a GraphQL error (keeping its location etc if it already is one)
func toGQLError(err error) *gqlerror.Error {
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		return gqlErr
	}
	return gqlerror.Errorf("%s", err.Error())
}
