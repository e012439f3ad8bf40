package imagecdn

// options.go has the plugin options (as loaded from the host's configuration) and the defaults

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
)

type (
	// Options are the plugin options.  They are read when the plugin is registered and never modified.
	Options struct {
		Site  SiteOptions `koanf:"site" json:"site" yaml:"site"`
		CDN   CDNOptions  `koanf:"cdn" json:"cdn" yaml:"cdn"`
		Types []FieldSpec `koanf:"types" json:"types" yaml:"types"`
	}

	// SiteOptions contains the "site" options
	SiteOptions struct {
		// BaseURL is removed from the start (or anywhere) of each source URL before it is passed to the
		// transformer.  If there is more than one they are removed in order.
		BaseURL BaseURLs `koanf:"baseUrl" json:"baseUrl" yaml:"baseUrl"`
	}

	// BaseURLs is a list of base URLs which can be decoded from a single string or a list of strings
	BaseURLs []string

	// FieldSpec identifies one field of one type whose value is to be rewritten
	FieldSpec struct {
		TypeName    string   `koanf:"typeName" json:"typeName" yaml:"typeName"`
		SourceField string   `koanf:"sourceField" json:"sourceField" yaml:"sourceField"`
		Exclude     []string `koanf:"exclude" json:"exclude" yaml:"exclude"` // file extensions (without the dot) to leave alone
	}
)

// DefaultOptions returns the options used for anything not configured.  The empty base URL (no
// base URLs) means nothing is stripped; the empty preset with no transformer is not usable so at
// least the cdn.preset option must be configured.
func DefaultOptions() Options {
	return Options{
		Site: SiteOptions{BaseURL: nil},
		CDN: CDNOptions{
			BaseURL:     "",
			ImagePrefix: "",
			Preset:      "",
		},
		Types: []FieldSpec{},
	}
}

// ParseBaseURLs converts a decoded configuration value (a string or a list of strings) to BaseURLs
func ParseBaseURLs(v interface{}) (BaseURLs, error) {
	switch value := v.(type) {
	case nil:
		return nil, nil
	case string:
		return BaseURLs{value}, nil
	case []string:
		return BaseURLs(value), nil
	case []interface{}:
		r := make(BaseURLs, 0, len(value))
		for i, elt := range value {
			s, ok := elt.(string)
			if !ok {
				return nil, fmt.Errorf("base URL %d must be a string (got %T)", i, elt)
			}
			r = append(r, s)
		}
		return r, nil
	}
	return nil, fmt.Errorf("base URL must be a string or list of strings (got %T)", v)
}

// UnmarshalJSON accepts a string or an array of strings
func (b *BaseURLs) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r, err := ParseBaseURLs(raw)
	if err != nil {
		return err
	}
	*b = r
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence of scalars
func (b *BaseURLs) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*b = BaseURLs{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("%w decoding base URL list", err)
		}
		*b = list
		return nil
	}
	return fmt.Errorf("line %d: base URL must be a string or list of strings", node.Line)
}

type settings struct {
	logger *slog.Logger
}

// Logger sets the logger used by Register (the default is the process-wide logger)
func Logger(l *slog.Logger) func(*settings) {
	return func(s *settings) {
		s.logger = l
	}
}
