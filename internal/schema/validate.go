package schema

// validate.go has functions to check that declarations are valid before they are handed to the host

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nameRegex    = regexp.MustCompile(`^[_a-zA-Z][_a-zA-Z0-9]*$`)
	typeRefRegex = regexp.MustCompile(`^(\[\s*[_a-zA-Z][_a-zA-Z0-9]*\s*!?\s*\]|[_a-zA-Z][_a-zA-Z0-9]*)\s*!?$`)
)

// ValidName checks that a string contains a valid GraphQL identifier like a type, field,
// argument or enum value name.
func ValidName(s string) bool {
	if strings.HasPrefix(s, "__") {
		return false // reserved names
	}
	return nameRegex.MatchString(s)
}

// validTypeRef checks that a string is a (single level) GraphQL type reference, eg "Int!" or "[String!]"
func validTypeRef(s string) bool {
	return typeRefRegex.MatchString(strings.TrimSpace(s))
}

// Validate checks the declaration is well-formed (names, values, field types)
func (d TypeDecl) Validate() error {
	if !ValidName(d.Name) {
		return fmt.Errorf("%q is not a valid %s name", d.Name, d.Kind)
	}
	switch d.Kind {
	case Scalar:
		// nothing else to check

	case Enum:
		if len(d.Values) == 0 {
			return fmt.Errorf("enum %q has no values", d.Name)
		}
		inUse := make(map[string]struct{}, len(d.Values)) // for repeated value check
		for _, v := range d.Values {
			v, _ = splitDescription(v)
			if v == "true" || v == "false" || v == "null" { // reserved names
				return fmt.Errorf("%q is not an allowed enum value (enum %s)", v, d.Name)
			}
			if !ValidName(v) {
				return fmt.Errorf("%q is not a valid enum value (enum %s)", v, d.Name)
			}
			if _, ok := inUse[v]; ok {
				return fmt.Errorf("%q is a repeated enum value (enum %s)", v, d.Name)
			}
			inUse[v] = struct{}{}
		}

	case Input, Object:
		if len(d.Fields) == 0 {
			return fmt.Errorf("%s %q has no fields", d.Kind, d.Name)
		}
		if err := d.Fields.Validate(); err != nil {
			return fmt.Errorf("%w in %s %q", err, d.Kind, d.Name)
		}

	default:
		return fmt.Errorf("type %q has unknown kind %d", d.Name, int(d.Kind))
	}
	return nil
}

// Validate checks all the argument names and type references
func (args Args) Validate() error {
	for key, arg := range args {
		if arg.Name != "" && arg.Name != key {
			return fmt.Errorf("argument %q is declared under key %q", arg.Name, key)
		}
		if !ValidName(key) {
			return fmt.Errorf("%q is not a valid argument name", key)
		}
		if !validTypeRef(arg.Type) {
			return fmt.Errorf("argument %q has invalid type %q", key, arg.Type)
		}
	}
	return nil
}
