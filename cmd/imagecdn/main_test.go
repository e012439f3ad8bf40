package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewwphillips/imagecdn/internal/logging"
)

const testConfig = `
site:
  baseUrl: https://example.com/
cdn:
  preset: cloudinary
  baseUrl: https://res.cloudinary.com/demo/image/fetch
types:
  - typeName: Post
    sourceField: cover
`

const testContent = `
schema: |
  type Post { id: ID! title: String! cover: String }
collections:
  Post:
    - id: 1
      title: Cat
      cover: https://example.com/uploads/cat.jpg
    - id: 2
      title: Dog
`

// run parses the command line and runs the selected command, returning what it wrote
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := CLI{Out: &out}
	parser, err := kong.New(&cli,
		kong.Name("imagecdn"),
		kong.Exit(func(int) { t.Fatalf("unexpected exit for %v", args) }),
	)
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	if err != nil {
		return "", err
	}
	err = ctx.Run(&cli)
	return out.String(), err
}

// files writes the options and content files and returns the flags that select them
func files(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	config := filepath.Join(dir, "imagecdn.yaml")
	content := filepath.Join(dir, "content.yaml")
	require.NoError(t, os.WriteFile(config, []byte(testConfig), 0o600))
	require.NoError(t, os.WriteFile(content, []byte(testContent), 0o600))
	return []string{"--config", config, "--content", content}
}

func TestPresets(t *testing.T) {
	out, err := run(t, "presets")
	require.NoError(t, err)
	assert.Equal(t, "cloudinary\nimagekit\nimgix\n", out)
}

func TestToken(t *testing.T) {
	out, err := run(t, "token", "--secret", "shh", "--ttl", "1h", "alice")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (interface{}, error) {
		return []byte("shh"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.NotNil(t, claims.ExpiresAt)

	_, err = run(t, "token", "alice")
	assert.Error(t, err, "secret is required")
}

func TestResolve(t *testing.T) {
	flags := files(t)
	tests := map[string]struct {
		args     []string
		expected string
	}{
		"no_args":  {[]string{"https://example.com/uploads/cat.jpg"}, "https://res.cloudinary.com/demo/image/fetch/uploads/cat.jpg"},
		"args":     {[]string{"-a", "width=300", "-a", "crop=fill", "https://example.com/uploads/cat.jpg"}, "https://res.cloudinary.com/demo/image/fetch/w_300,c_fill/uploads/cat.jpg"},
		"excluded": {[]string{"--exclude", "svg", "-a", "width=300", "https://example.com/logo.svg"}, "https://example.com/logo.svg"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := run(t, append(append(append([]string{}, flags...), "resolve"), tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected+"\n", out)
		})
	}

	_, err := run(t, append(append([]string{}, flags...), "resolve", "-a", "width=-1", "https://example.com/a.jpg")...)
	assert.ErrorContains(t, err, "must not be negative")
}

func TestSchema(t *testing.T) {
	out, err := run(t, append(files(t), "schema")...)
	require.NoError(t, err)
	assert.Contains(t, out, "allPost: [Post!]!")
	assert.Contains(t, out, "cover(")
	assert.Contains(t, out, "width: Int")
}

func TestQuery(t *testing.T) {
	flags := files(t)
	out, err := run(t, append(flags, "query", `query Q($id: ID!) { post(id: $id) { title cover(width: 64) } }`,
		"--variables", `{"id": 1}`)...)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"post":{"title":"Cat","cover":"https://res.cloudinary.com/demo/image/fetch/w_64/uploads/cat.jpg"}}}`, out)

	out, err = run(t, append(flags, "query", `{ post(id: 1) { nosuch } }`)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"errors"`)

	_, err = run(t, append(flags, "query", "{ allPost { id } }", "--variables", "{")...)
	assert.ErrorContains(t, err, "decode variables")
}

func TestMissingContent(t *testing.T) {
	_, err := run(t, "--content", filepath.Join(t.TempDir(), "missing.yaml"), "schema")
	assert.ErrorContains(t, err, "load content")
}

func TestQueryArgs(t *testing.T) {
	got, err := queryArgs(map[string]string{"width": "300", "crop": "fill", "gravity": "north east"})
	require.NoError(t, err)
	assert.Equal(t, `(crop: fill, gravity: "north east", width: 300)`, got)

	got, err = queryArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = queryArgs(map[string]string{"bad name": "1"})
	assert.Error(t, err)
}

func TestLoggingFlags(t *testing.T) {
	t.Setenv("IMAGECDN_LOG_LEVEL", "error")
	_, err := run(t, "presets")
	require.NoError(t, err)
	assert.False(t, logging.L().Enabled(context.Background(), slog.LevelWarn), "level from the environment")

	_, err = run(t, "-v", "presets")
	require.NoError(t, err)
	assert.True(t, logging.L().Enabled(context.Background(), slog.LevelDebug), "--verbose overrides the environment")
}
