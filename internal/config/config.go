// Package config loads the image CDN plugin options and the site content served by the host.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/andrewwphillips/imagecdn"
)

// EnvPrefix is the prefix of environment variables that override the options file,
// eg IMAGECDN__CDN__PRESET=imgix.  A list of site base URLs is separated by commas.
const EnvPrefix = "IMAGECDN__"

const baseURLKey = "site.baseUrl"

// envKeys maps lower-cased environment variable paths to option keys
var envKeys = map[string]string{
	"site__baseurl":    "site__baseUrl",
	"cdn__baseurl":     "cdn__baseUrl",
	"cdn__imageprefix": "cdn__imagePrefix",
	"cdn__preset":      "cdn__preset",
}

// Load merges YAML (if present) with env-vars (prefix `IMAGECDN__`, delimiter `__`) over
// the default options.  A missing file is not an error.
func Load(path string) (imagecdn.Options, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return imagecdn.Options{}, fmt.Errorf("%w loading %s", err, path)
		}
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, "__", envValue), nil); err != nil {
		return imagecdn.Options{}, fmt.Errorf("%w loading environment", err)
	}

	// The base URL may be a string or a list so is decoded separately
	baseURLs, err := imagecdn.ParseBaseURLs(k.Get(baseURLKey))
	if err != nil {
		return imagecdn.Options{}, fmt.Errorf("%s: %w", baseURLKey, err)
	}
	k.Delete(baseURLKey)

	opts := imagecdn.DefaultOptions()
	if err := k.Unmarshal("", &opts); err != nil {
		return imagecdn.Options{}, fmt.Errorf("%w decoding options", err)
	}
	if baseURLs != nil {
		opts.Site.BaseURL = baseURLs
	}
	if err := Validate(opts); err != nil {
		return imagecdn.Options{}, err
	}
	return opts, nil
}

// envValue converts an environment variable to an option key and value (an empty key skips it)
func envValue(name, value string) (string, interface{}) {
	key, ok := envKeys[strings.ToLower(strings.TrimPrefix(name, EnvPrefix))]
	if !ok {
		return "", nil
	}
	if key == "site__baseUrl" && strings.Contains(value, ",") {
		list := make([]interface{}, 0)
		for _, s := range strings.Split(value, ",") {
			if s = strings.TrimSpace(s); s != "" {
				list = append(list, s)
			}
		}
		return key, list
	}
	return key, value
}

// Validate checks the options that can be checked before the plugin is registered
func Validate(opts imagecdn.Options) error {
	if opts.CDN.Preset != "" && !known(opts.CDN.Preset) {
		return fmt.Errorf("cdn.preset %q is not one of %s", opts.CDN.Preset, strings.Join(imagecdn.Presets(), ", "))
	}
	for i, spec := range opts.Types {
		if spec.TypeName == "" || spec.SourceField == "" {
			return fmt.Errorf("types[%d]: typeName and sourceField are required", i)
		}
		for _, ext := range spec.Exclude {
			if strings.HasPrefix(ext, ".") {
				return fmt.Errorf("types[%d]: exclude %q should not start with a dot", i, ext)
			}
		}
	}
	return nil
}

func known(preset string) bool {
	presets := imagecdn.Presets()
	i := sort.SearchStrings(presets, preset)
	return i < len(presets) && presets[i] == preset
}

// LookupEnv reports which option keys are set by the environment (for logging)
func LookupEnv() []string {
	var r []string
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if key, _ := envValue(name, ""); strings.HasPrefix(name, EnvPrefix) && key != "" {
			r = append(r, strings.ReplaceAll(key, "__", "."))
		}
	}
	sort.Strings(r)
	return r
}
