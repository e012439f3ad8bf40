package imagecdn

// resolver.go creates the resolver that rewrites the value of one configured field

import (
	"fmt"
	"path"
	"strings"
)

// newResolver returns the resolver for one type/field.  Everything it uses is captured here and
// never modified, so the returned func is safe to call concurrently.
func newResolver(baseURLs BaseURLs, cdn CDNOptions, tr Transformer, spec FieldSpec) ResolveFunc {
	exclude := make(map[string]struct{}, len(spec.Exclude))
	for _, ext := range spec.Exclude {
		exclude[ext] = struct{}{}
	}
	builder, _ := tr.(URLBuilder)

	return func(p ResolveParams) (interface{}, error) {
		sourceURL, err := sourceURL(p.Parent, spec.SourceField, p.Info.FieldKey)
		if err != nil {
			return nil, fmt.Errorf("%w in %s.%s", err, spec.TypeName, spec.SourceField)
		}
		if sourceURL == "" {
			return nil, nil
		}

		if _, ok := exclude[extension(sourceURL)]; ok {
			return sourceURL, nil
		}

		stripped := baseURLs.Strip(sourceURL)
		if builder == nil {
			return stripped, nil
		}
		return builder.Transform(TransformParams{CDN: cdn, Args: p.Args, SourceURL: stripped})
	}
}

// sourceURL finds the URL to rewrite in the parent object.  The source field is looked up first
// and if that has no value the response key (ie the alias used in the query) is tried, for hosts
// that store already resolved values under the alias.  An empty string counts as no value.
func sourceURL(parent map[string]interface{}, sourceField, fieldKey string) (string, error) {
	for _, key := range [...]string{sourceField, fieldKey} {
		if key == "" {
			continue
		}
		switch v := parent[key].(type) {
		case nil:
			continue
		case string:
			if v != "" {
				return v, nil
			}
		case fmt.Stringer:
			if s := v.String(); s != "" {
				return s, nil
			}
		default:
			return "", fmt.Errorf("field %q holds %T, expected a string URL", key, v)
		}
	}
	return "", nil
}

// extension returns the text after the last dot of the final element of the URL path,
// eg "svg" for "http://x.com/a.svg" or "" for "http://x.com/dir.d/file" or "/.env"
func extension(url string) string {
	base := path.Base(url) // also removes trailing slashes
	ext := path.Ext(base)
	if ext == base {
		return "" // just a leading dot (eg ".env") is not an extension
	}
	return strings.TrimPrefix(ext, ".")
}

// Strip removes the first occurrence of each base URL in turn, each from the result of the last.
// What happens when base URLs overlap, or one occurs more than once, is not defined - just the
// first occurrence of each is removed.
func (b BaseURLs) Strip(s string) string {
	for _, base := range b {
		s = strings.Replace(s, base, "", 1)
	}
	return s
}
