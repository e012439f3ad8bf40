package host_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/andrewwphillips/imagecdn/internal/host"
)

const postSchema = `
type Post { id: ID! title: String! cover: String tags: [String!] author: Author }
type Author { name: String! avatar: String }
`

func postNodes() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"id":     1,
			"title":  "First",
			"cover":  "https://example.com/img/cat.jpg",
			"tags":   []interface{}{"a", "b"},
			"author": map[string]interface{}{"name": "Ann", "avatar": "/img/ann.png"},
		},
		{"id": "2", "title": "Second"},
		{"id": 3, "title": "Third", "author": map[string]interface{}{}},
	}
}

// newPostHost creates and builds a host with a single "Post" collection
func newPostHost(t *testing.T, options ...func(*host.Host)) *host.Host {
	t.Helper()
	h := host.New(postSchema, options...)
	h.AddCollection("Post", postNodes())
	if err := h.Build(); err != nil {
		t.Fatalf("Unexpected build error: %v", err)
	}
	return h
}

// post sends a JSON request to the handler and returns the status code and body
func post(h http.Handler, body string) (int, string) {
	request := httptest.NewRequest("POST", "/", strings.NewReader(body))
	request.Header.Add("Content-Type", "application/json")
	writer := httptest.NewRecorder()
	h.ServeHTTP(writer, request)
	return writer.Code, writer.Body.String()
}

func TestQuery(t *testing.T) {
	queryData := map[string]struct {
		body     string // JSON request
		expected string // expected response body, or part of the error message (if error is true)
		error    bool
	}{
		"all": {`{"query": "{ allPost { id title } }"}`,
			`{"data":{"allPost":[{"id":"1","title":"First"},{"id":"2","title":"Second"},{"id":"3","title":"Third"}]}}`, false},
		"by_id_int": {`{"query": "{ post(id: 1) { title } }"}`,
			`{"data":{"post":{"title":"First"}}}`, false},
		"by_id_string": {`{"query": "{ post(id: \"2\") { title } }"}`,
			`{"data":{"post":{"title":"Second"}}}`, false},
		"not_found": {`{"query": "{ post(id: 99) { title } }"}`,
			`{"data":{"post":null}}`, false},
		"alias": {`{"query": "{ p: post(id: 2) { t: title } }"}`,
			`{"data":{"p":{"t":"Second"}}}`, false},
		"order": {`{"query": "{ post(id: 1) { title id } }"}`,
			`{"data":{"post":{"title":"First","id":"1"}}}`, false},
		"list": {`{"query": "{ post(id: 1) { tags } }"}`,
			`{"data":{"post":{"tags":["a","b"]}}}`, false},
		"nested": {`{"query": "{ post(id: 1) { author { name avatar } } }"}`,
			`{"data":{"post":{"author":{"name":"Ann","avatar":"/img/ann.png"}}}}`, false},
		"nulls": {`{"query": "{ post(id: 2) { cover tags author { name } } }"}`,
			`{"data":{"post":{"cover":null,"tags":null,"author":null}}}`, false},
		"typename": {`{"query": "{ post(id: 1) { __typename } }"}`,
			`{"data":{"post":{"__typename":"Post"}}}`, false},
		"fragment": {`{"query": "query { post(id: 1) { ...F } } fragment F on Post { title }"}`,
			`{"data":{"post":{"title":"First"}}}`, false},
		"inline": {`{"query": "{ post(id: 1) { ... on Post { id } } }"}`,
			`{"data":{"post":{"id":"1"}}}`, false},
		"skip": {`{"query": "query($s: Boolean!) { post(id: 1) { title @skip(if: $s) id } }", "variables": {"s": true}}`,
			`{"data":{"post":{"id":"1"}}}`, false},
		"noskip": {`{"query": "query($s: Boolean!) { post(id: 1) { title @skip(if: $s) id } }", "variables": {"s": false}}`,
			`{"data":{"post":{"title":"First","id":"1"}}}`, false},
		"include": {`{"query": "{ post(id: 1) { title @include(if: false) id } }"}`,
			`{"data":{"post":{"id":"1"}}}`, false},
		"variable": {`{"query": "query Q($id: ID!) { post(id: $id) { title } }", "variables": {"id": "2"}}`,
			`{"data":{"post":{"title":"Second"}}}`, false},
		"operation": {`{"query": "query A { post(id: 1) { id } } query B { post(id: 2) { id } }", "operationName": "B"}`,
			`{"data":{"post":{"id":"2"}}}`, false},
		"repeated": {`{"query": "{ post(id: 1) { title } post(id: 1) { id title } }"}`,
			`{"data":{"post":{"title":"First","id":"1"}}}`, false},
		"repeated_nested": {`{"query": "{ post(id: 1) { author { name } } post(id: 1) { id author { avatar } } }"}`,
			`{"data":{"post":{"author":{"name":"Ann","avatar":"/img/ann.png"},"id":"1"}}}`, false},
		"repeated_list": {`{"query": "{ allPost { id } allPost { title } }"}`,
			`{"data":{"allPost":[{"id":"1","title":"First"},{"id":"2","title":"Second"},{"id":"3","title":"Third"}]}}`, false},
		"fragment_merge": {`{"query": "query { post(id: 1) { author { name } ...F } } fragment F on Post { title author { avatar } }"}`,
			`{"data":{"post":{"author":{"name":"Ann","avatar":"/img/ann.png"},"title":"First"}}}`, false},

		"non_null": {`{"query": "{ post(id: 3) { author { name } } }"}`, `not nullable`, true},
		"unknown_field": {`{"query": "{ post(id: 1) { body } }"}`, `Cannot query field`, true},
		"no_op_name": {`{"query": "query A { post(id: 1) { id } } query B { post(id: 2) { id } }"}`, `operation name required`, true},
		"bad_op_name": {`{"query": "query A { post(id: 1) { id } }", "operationName": "C"}`, `not found`, true},
		"missing_var": {`{"query": "query Q($id: ID!) { post(id: $id) { title } }"}`, `id`, true},
		"syntax": {`{"query": "{ post(id: 1) { id }"}`, `Expected`, true},
	}

	for _, concurrency := range []bool{true, false} {
		h := newPostHost(t, host.NoConcurrency(!concurrency))
		for name, data := range queryData {
			code, got := post(h, data.body)
			Assertf(t, code == http.StatusOK, "%-14s (concurrent %v) expected status 200, got %d", name, concurrency, code)
			if data.error {
				Assertf(t, strings.Contains(got, `"errors":[`) && strings.Contains(got, data.expected),
					"%-14s (concurrent %v) expected error containing %q, got %s", name, concurrency, data.expected, got)
				continue
			}
			Assertf(t, got == data.expected, "%-14s (concurrent %v) expected %s, got %s", name, concurrency, data.expected, got)
		}
	}
}

func TestNoIntrospection(t *testing.T) {
	h := newPostHost(t, host.NoIntrospection(true))
	_, got := post(h, `{"query": "{ post(id: 1) { __typename } }"}`)
	Assertf(t, strings.Contains(got, "introspection is disabled"), "expected introspection error, got %s", got)
}

func TestRequestMethods(t *testing.T) {
	h := newPostHost(t)

	// GET with the query and variables as URL parameters
	params := url.Values{}
	params.Set("query", "query Q($id: ID!) { post(id: $id) { title } }")
	params.Set("variables", `{"id": 1}`)
	writer := httptest.NewRecorder()
	h.ServeHTTP(writer, httptest.NewRequest("GET", "/?"+params.Encode(), nil))
	Assertf(t, writer.Code == http.StatusOK, "GET expected status 200, got %d", writer.Code)
	Assertf(t, writer.Body.String() == `{"data":{"post":{"title":"First"}}}`, "GET got %s", writer.Body.String())
	Assertf(t, writer.Header().Get("Content-Type") == "application/json", "GET content type %q", writer.Header().Get("Content-Type"))

	writer = httptest.NewRecorder()
	h.ServeHTTP(writer, httptest.NewRequest("PUT", "/", strings.NewReader(`{"query": "{ allPost { id } }"}`)))
	Assertf(t, writer.Code == http.StatusMethodNotAllowed, "PUT expected status 405, got %d", writer.Code)

	code, got := post(h, `{"query": `)
	Assertf(t, code == http.StatusBadRequest, "bad JSON expected status 400, got %d", code)
	Assertf(t, strings.Contains(got, "Error decoding JSON request"), "bad JSON got %s", got)

	code, _ = post(h, `{}`)
	Assertf(t, code == http.StatusBadRequest, "no query expected status 400, got %d", code)
}

func TestFixNumberVariables(t *testing.T) {
	h := newPostHost(t)
	// 3 must be decoded as an integer (not a float) to be used as an ID
	_, got := post(h, `{"query": "query Q($id: ID!) { post(id: $id) { id } }", "variables": {"id": 3}}`)
	Assertf(t, got == `{"data":{"post":{"id":"3"}}}`, "expected post 3, got %s", got)
}

// Assertf is like Errorf but also logs successful tests (with a tick) if the verbose flag (-v) is used
func Assertf(t *testing.T, succeeded bool, format string, args ...interface{}) {
	const (
		succeed = "\u2713" // tick
		failed  = "XXXXX"  //"\u2717" // cross
	)

	t.Helper()
	if !succeeded {
		t.Errorf("%-6s"+format, append([]interface{}{failed}, args...)...)
	} else {
		t.Logf("%-6s"+format, append([]interface{}{succeed}, args...)...)
	}
}
