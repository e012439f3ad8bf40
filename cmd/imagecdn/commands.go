package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dolmen-go/jsonmap"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andrewwphillips/imagecdn"
	"github.com/andrewwphillips/imagecdn/internal/host"
	"github.com/andrewwphillips/imagecdn/internal/logging"
	"github.com/andrewwphillips/imagecdn/internal/schema"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr          string        `help:"Address to listen on" default:":8080"`
	Path          string        `help:"Path of the GraphQL endpoint" default:"/graphql"`
	Metrics       bool          `help:"Expose Prometheus metrics at /metrics"`
	TokenSecret   string        `help:"Require bearer tokens signed with this secret" env:"IMAGECDN_TOKEN_SECRET"`
	NoConcurrency bool          `help:"Resolve the fields of a query one at a time"`
	InitTimeout   time.Duration `help:"Time allowed for a websocket client to send connection_init" default:"10s"`
}

func (s *ServeCmd) Run(root *CLI) error {
	mux := http.NewServeMux()
	options := []func(*host.Host){host.NoConcurrency(s.NoConcurrency), host.InitialTimeout(s.InitTimeout)}
	if s.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		options = append(options, host.Metrics(reg))
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	h, err := root.newHost(options...)
	if err != nil {
		return err
	}

	var handler http.Handler = h
	if s.TokenSecret != "" {
		handler = host.RequireToken([]byte(s.TokenSecret), h)
	}
	mux.Handle(s.Path, handler)

	srv := &http.Server{Addr: s.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logging.L().Info("serving", "addr", s.Addr, "path", s.Path, "metrics", s.Metrics, "auth", s.TokenSecret != "")

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logging.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// SchemaCmd implements the 'schema' command.
type SchemaCmd struct{}

func (s *SchemaCmd) Run(root *CLI) error {
	h, err := root.newHost()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(root.Out, h.SDL())
	return err
}

// QueryCmd implements the 'query' command.
type QueryCmd struct {
	Query     string `arg:"" help:"GraphQL query"`
	Variables string `help:"Query variables as a JSON object"`
	Operation string `help:"Name of the operation to run"`
}

func (q *QueryCmd) Run(root *CLI) error {
	h, err := root.newHost()
	if err != nil {
		return err
	}
	req := host.Request{Query: q.Query, OperationName: q.Operation}
	if q.Variables != "" {
		decoder := json.NewDecoder(strings.NewReader(q.Variables))
		decoder.UseNumber()
		if err = decoder.Decode(&req.Variables); err != nil {
			return fmt.Errorf("decode variables: %w", err)
		}
		host.FixNumberVariables(req.Variables)
	}
	buf, err := json.MarshalIndent(h.Execute(context.Background(), req), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(root.Out, string(buf))
	return err
}

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	URL     string            `arg:"" help:"Source image URL"`
	Arg     map[string]string `short:"a" help:"Transformation argument, eg -a width=300 -a crop=fill"`
	Exclude []string          `help:"File extensions (without the dot) to leave unchanged"`
}

const (
	resolveSchema = "type Image { id: ID! src: String }"
	resolveType   = "Image"
	resolveField  = "src"
)

// Run rewrites the URL the same way as a query of a configured field, using a host with a single image
func (r *ResolveCmd) Run(root *CLI) error {
	opts, err := root.options()
	if err != nil {
		return err
	}
	opts.Types = []imagecdn.FieldSpec{{TypeName: resolveType, SourceField: resolveField, Exclude: r.Exclude}}

	h := host.New(resolveSchema, host.Logger(logging.L()))
	h.AddCollection(resolveType, []map[string]interface{}{{"id": "1", resolveField: r.URL}})
	if err = imagecdn.Register(h, opts, imagecdn.Logger(logging.L())); err != nil {
		return err
	}
	if err = h.Build(); err != nil {
		return err
	}

	args, err := queryArgs(r.Arg)
	if err != nil {
		return err
	}
	result := h.Execute(context.Background(), host.Request{
		Query: `{ image(id: "1") { ` + resolveField + args + ` } }`,
	})
	if len(result.Errors) > 0 {
		return result.Errors
	}
	image, _ := result.Data.(jsonmap.Ordered).Data["image"].(jsonmap.Ordered)
	src := image.Data[resolveField]
	if src == nil {
		return errors.New("no URL was returned")
	}
	_, err = fmt.Fprintln(root.Out, src)
	return err
}

// queryArgs formats arguments for a query: integers as is, enum values as names, anything else as a string
func queryArgs(args map[string]string) (string, error) {
	if len(args) == 0 {
		return "", nil
	}
	names := make([]string, 0, len(args))
	for name := range args {
		if !schema.ValidName(name) {
			return "", fmt.Errorf("%q is not a valid argument name", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		value := args[name]
		if _, err := strconv.ParseInt(value, 10, 64); err != nil && !schema.ValidName(value) {
			value = strconv.Quote(value)
		}
		parts = append(parts, name+": "+value)
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

// TokenCmd implements the 'token' command.
type TokenCmd struct {
	Subject string        `arg:"" help:"Who the token is issued to"`
	TTL     time.Duration `name:"ttl" help:"How long the token is valid (0 for no expiry)" default:"24h"`
	Secret  string        `help:"Secret used to sign the token" env:"IMAGECDN_TOKEN_SECRET" required:""`
}

func (t *TokenCmd) Run(root *CLI) error {
	token, err := host.NewToken([]byte(t.Secret), t.Subject, t.TTL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(root.Out, token)
	return err
}

// PresetsCmd implements the 'presets' command.
type PresetsCmd struct{}

func (p *PresetsCmd) Run(root *CLI) error {
	for _, name := range imagecdn.Presets() {
		if _, err := fmt.Fprintln(root.Out, name); err != nil {
			return err
		}
	}
	return nil
}
