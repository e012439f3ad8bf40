package imagecdn

// imagecdn.go provides Register - the plugin entry point

import (
	"errors"
	"fmt"

	"github.com/andrewwphillips/imagecdn/internal/logging"
	"github.com/andrewwphillips/imagecdn/internal/transformer"
)

// ErrNoTransformer is returned (wrapped in a ConfigError) when neither a preset nor a custom transformer is configured
var ErrNoTransformer = errors.New("must provide a transformer")

// ConfigError is returned from Register if the options are not usable
type ConfigError struct {
	Option string // eg "cdn.preset"
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("image cdn plugin option %s: %v", e.Option, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Register installs the plugin.  It resolves the transformer, then queues a LoadSource func with
// the host which adds the transformer's schema types and a resolver for each of opts.Types.
// If no transformer can be found (no preset and no custom transformer, or an unknown preset)
// nothing is queued and a *ConfigError wrapping ErrNoTransformer is returned.
func Register(api API, opts Options, options ...func(*settings)) error {
	s := settings{logger: logging.L()}
	for _, option := range options {
		option(&s)
	}

	tr, err := resolveTransformer(opts.CDN)
	if err != nil {
		return err
	}
	if opts.CDN.Preset != "" {
		s.logger.Debug("image cdn using preset", "preset", opts.CDN.Preset)
	}
	_, hasBuilder := tr.(URLBuilder)

	api.LoadSource(func(actions Actions) error {
		if err := actions.AddSchemaTypes(tr.CreateSchemaTypes(actions.Schema())); err != nil {
			return fmt.Errorf("%w adding image cdn schema types", err)
		}

		for _, spec := range opts.Types {
			args := tr.CreateResolverArgs()
			if args == nil {
				args = Args{}
			}
			err := actions.AddSchemaResolvers(Resolvers{
				spec.TypeName: {
					spec.SourceField: {
						Args:    args,
						Resolve: newResolver(opts.Site.BaseURL, opts.CDN, tr, spec),
					},
				},
			})
			if err != nil {
				return fmt.Errorf("%w adding image cdn resolver for %s.%s", err, spec.TypeName, spec.SourceField)
			}
			s.logger.Debug("image cdn resolver added", "type", spec.TypeName, "field", spec.SourceField,
				"exclude", spec.Exclude, "transform", hasBuilder)
		}
		return nil
	})
	return nil
}

// resolveTransformer gets the preset named in the options or else the custom transformer
func resolveTransformer(cdn CDNOptions) (Transformer, error) {
	if cdn.Preset != "" {
		if tr := transformer.Lookup(cdn.Preset); tr != nil {
			return tr, nil
		}
		return nil, &ConfigError{Option: "cdn.preset", Err: fmt.Errorf("%w (unknown preset %q)", ErrNoTransformer, cdn.Preset)}
	}
	if cdn.Transformer == nil {
		return nil, &ConfigError{Option: "cdn.transformer", Err: ErrNoTransformer}
	}
	return cdn.Transformer, nil
}
