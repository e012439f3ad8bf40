// Command imagecdn serves site content over GraphQL with image fields rewritten to CDN URLs.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/andrewwphillips/imagecdn"
	"github.com/andrewwphillips/imagecdn/internal/config"
	"github.com/andrewwphillips/imagecdn/internal/host"
	"github.com/andrewwphillips/imagecdn/internal/logging"
)

// CLI definition & global flags
type CLI struct {
	Config  string `short:"c" help:"Image CDN options file path" default:"imagecdn.yaml"`
	Content string `help:"Site content file path (schema and collections)" default:"content.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`
	LogJSON bool   `name:"log-json" help:"Log in JSON format"`

	Serve   ServeCmd   `cmd:"" help:"Serve GraphQL queries over HTTP and websockets"`
	Schema  SchemaCmd  `cmd:"" help:"Print the schema including the image CDN types and arguments"`
	Query   QueryCmd   `cmd:"" help:"Run a GraphQL query against the content and print the result"`
	Resolve ResolveCmd `cmd:"" help:"Rewrite one image URL using the configured CDN"`
	Token   TokenCmd   `cmd:"" help:"Issue a bearer token for serve --token-secret"`
	Presets PresetsCmd `cmd:"" help:"List the built-in CDN presets"`

	Out io.Writer `kong:"-"` // where command output is written (stdout)
}

// AfterApply runs after flag parsing; the flags override the logging set from the environment.
func (c *CLI) AfterApply() error {
	opts := logging.EnvOptions()
	if c.Verbose {
		opts.Level = "debug"
	}
	if c.LogJSON {
		opts.JSON = true
	}
	slog.SetDefault(logging.Configure(opts))
	return nil
}

func main() {
	// Variables in .env are used for anything not already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "imagecdn: loading .env:", err)
	}
	slog.SetDefault(logging.InitFromEnv())

	cli := CLI{Out: os.Stdout}
	ctx := kong.Parse(&cli,
		kong.Name("imagecdn"),
		kong.Description("GraphQL content host with image CDN URL rewriting."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli); err != nil {
		logging.L().Error("command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}

// options loads the image CDN options
func (c *CLI) options() (imagecdn.Options, error) {
	opts, err := config.Load(c.Config)
	if err != nil {
		return opts, fmt.Errorf("load config: %w", err)
	}
	if keys := config.LookupEnv(); len(keys) > 0 {
		logging.L().Debug("options set from the environment", "keys", keys)
	}
	return opts, nil
}

// newHost loads the options and content, registers the plugin and builds the schema
func (c *CLI) newHost(options ...func(*host.Host)) (*host.Host, error) {
	opts, err := c.options()
	if err != nil {
		return nil, err
	}
	content, err := config.LoadContent(c.Content)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	h := content.NewHost(append([]func(*host.Host){host.Logger(logging.L())}, options...)...)
	if err = imagecdn.Register(h, opts, imagecdn.Logger(logging.L())); err != nil {
		return nil, err
	}
	if err = h.Build(); err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return h, nil
}
