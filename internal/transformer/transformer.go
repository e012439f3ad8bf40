// Package transformer defines what a CDN transformer must provide to the image CDN plugin and
// implements the built-in presets.  A transformer declares the extra schema types and resolver
// arguments it needs, and (optionally) builds the final CDN URL from a stripped source URL.
package transformer

import (
	"github.com/andrewwphillips/imagecdn/internal/schema"
)

type (
	// Transformer is implemented by every preset and by custom transformers
	Transformer interface {
		// CreateSchemaTypes returns types (eg crop mode enums) to add to the host schema
		CreateSchemaTypes(b *schema.Builder) []schema.TypeDecl

		// CreateResolverArgs returns the arguments added to each rewritten field (may be nil)
		CreateResolverArgs() schema.Args
	}

	// URLBuilder is optionally implemented by a Transformer.  If it is not implemented the
	// resolver returns the stripped source URL unchanged.
	URLBuilder interface {
		Transform(p Params) (string, error)
	}

	// CDN holds the CDN options.  BaseURL and ImagePrefix are not used by the plugin, just passed
	// through to the transformer.
	CDN struct {
		BaseURL     string      `koanf:"baseUrl" json:"baseUrl" yaml:"baseUrl"`
		ImagePrefix string      `koanf:"imagePrefix" json:"imagePrefix" yaml:"imagePrefix"`
		Preset      string      `koanf:"preset" json:"preset" yaml:"preset"`
		Transformer Transformer `koanf:"-" json:"-" yaml:"-"` // used if Preset is empty
	}

	// Params are passed to URLBuilder.Transform for each resolved field
	Params struct {
		CDN       CDN
		Args      map[string]interface{} // query arguments (as declared by CreateResolverArgs)
		SourceURL string                 // source URL with the site base URL(s) removed
	}

	// Custom makes a Transformer from funcs, which is simpler than declaring a new type for a
	// one-off transformer.  Any of the fields may be nil.
	Custom struct {
		Types func(b *schema.Builder) []schema.TypeDecl
		Args  schema.Args
		Build func(p Params) (string, error)
	}
)

// CreateSchemaTypes implements Transformer
func (c Custom) CreateSchemaTypes(b *schema.Builder) []schema.TypeDecl {
	if c.Types == nil {
		return nil
	}
	return c.Types(b)
}

// CreateResolverArgs implements Transformer
func (c Custom) CreateResolverArgs() schema.Args {
	return c.Args
}

// Transform implements URLBuilder - with no Build func the source URL is returned as is
func (c Custom) Transform(p Params) (string, error) {
	if c.Build == nil {
		return p.SourceURL, nil
	}
	return c.Build(p)
}
