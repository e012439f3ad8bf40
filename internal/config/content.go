package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/andrewwphillips/imagecdn/internal/host"
)

// Content is the site content: the SDL of the node types and the nodes of each collection, eg
//
//	schema: |
//	  type Post { id: ID! title: String! cover: String }
//	collections:
//	  Post:
//	    - id: 1
//	      title: Cat
//	      cover: https://example.com/uploads/cat.jpg
type Content struct {
	Schema      string                              `yaml:"schema"`
	Collections map[string][]map[string]interface{} `yaml:"collections"`
}

// LoadContent reads a content file
func LoadContent(path string) (Content, error) {
	var c Content
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("%w reading content", err)
	}
	if err = yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("%w decoding content %s", err, path)
	}
	if c.Schema == "" {
		return c, fmt.Errorf("content %s has no schema", path)
	}
	if len(c.Collections) == 0 {
		return c, fmt.Errorf("content %s has no collections", path)
	}
	return c, nil
}

// NewHost creates a host with the content's schema and collections (added in name order)
func (c Content) NewHost(options ...func(*host.Host)) *host.Host {
	h := host.New(c.Schema, options...)
	names := make([]string, 0, len(c.Collections))
	for name := range c.Collections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h.AddCollection(name, c.Collections[name])
	}
	return h
}
