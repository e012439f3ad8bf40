package transformer

// args.go has helpers used by the presets to read query arguments and build URLs

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/andrewwphillips/imagecdn/internal/schema"
)

// sizeArgs are the width/height arguments common to all the presets
var sizeArgs = schema.Args{
	"width":  {Name: "width", Type: "Int", Description: "Width in pixels"},
	"height": {Name: "height", Type: "Int", Description: "Height in pixels"},
}

// withSizeArgs returns the size arguments plus one enum argument
func withSizeArgs(name, enumName, description string) schema.Args {
	r := make(schema.Args, len(sizeArgs)+1)
	for k, v := range sizeArgs {
		r[k] = v
	}
	r[name] = schema.ArgDecl{Name: name, Type: enumName, Description: description}
	return r
}

// sizeArg gets a width or height argument as a string.  An absent (or zero) size gives an empty string.
// Int arguments are int64 when they come from a query (literal or variable) but other integer types
// and whole floats are accepted in case a transformer is called directly.
func sizeArg(args map[string]interface{}, name string) (string, error) {
	var n int64
	switch v := args[name].(type) {
	case nil:
		return "", nil
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != math.Trunc(v) {
			return "", fmt.Errorf("argument %q must be a whole number (got %v)", name, v)
		}
		n = int64(v)
	default:
		return "", fmt.Errorf("argument %q must be an integer (got %T)", name, v)
	}
	if n < 0 {
		return "", fmt.Errorf("argument %q must not be negative (got %d)", name, n)
	}
	if n == 0 {
		return "", nil
	}
	return strconv.FormatInt(n, 10), nil
}

// enumArg gets an enum (or string) argument - enum values are passed to resolvers as strings
func enumArg(args map[string]interface{}, name string) (string, error) {
	switch v := args[name].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("argument %q must be a string (got %T)", name, v)
	}
}

// joinURL joins the non-empty segments with a single slash between each
func joinURL(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	for i := range parts {
		if i > 0 {
			parts[i] = strings.TrimLeft(parts[i], "/")
		}
		if i < len(parts)-1 {
			parts[i] = strings.TrimRight(parts[i], "/")
		}
	}

	// Drop anything that was only slashes
	r := parts[:0]
	for _, s := range parts {
		if s != "" {
			r = append(r, s)
		}
	}
	return strings.Join(r, "/")
}
