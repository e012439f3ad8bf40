package schema_test

import (
	"strings"
	"testing"

	"github.com/andrewwphillips/imagecdn/internal/schema"
)

// TestTypeSDL checks the SDL generated for each kind of declaration
func TestTypeSDL(t *testing.T) {
	b := schema.NewBuilder()
	sdlData := map[string]struct {
		decl     schema.TypeDecl
		expected string
	}{
		"scalar":      {b.ScalarType("Url"), "scalar Url"},
		"scalar_desc": {b.ScalarType("Url#A web address"), `"A web address" scalar Url`},
		"enum":        {b.EnumType("Crop", "fill", "fit"), "enum Crop{fill fit}"},
		"enum_desc":   {b.EnumType("Crop# How to crop ", "fill#Fill the box", "fit"), `"How to crop" enum Crop{"Fill the box" fill fit}`},
		"input": {
			b.InputType("Size", schema.Args{"w": {Type: "Int"}, "h": {Type: "Int", Default: "10"}}),
			"input Size{h: Int = 10 w: Int}",
		},
		"object": {
			b.ObjectType("Image", schema.Args{"url": {Type: "String!", Description: `the "src"`}}),
			`type Image{"the \"src\"" url: String!}`,
		},
	}

	for name, data := range sdlData {
		got := data.decl.SDL()
		Assertf(t, compareSDL(got, data.expected), "%-12s expected %q got %q", name, data.expected, got)
	}
}

// TestArgsSDL checks generation of field argument lists
func TestArgsSDL(t *testing.T) {
	argsData := map[string]struct {
		args     schema.Args
		expected string
	}{
		"nil":     {nil, ""},
		"empty":   {schema.Args{}, ""},
		"one":     {schema.Args{"width": {Type: "Int"}}, "(width: Int)"},
		"sorted":  {schema.Args{"width": {Type: "Int"}, "crop": {Type: "Crop", Default: "fill"}}, "(crop: Crop = fill, width: Int)"},
		"desc":    {schema.Args{"w": {Type: "Int", Description: "pixels"}}, `("pixels" w: Int)`},
		"keyName": {schema.Args{"h": {Name: "h", Type: "Int!"}}, "(h: Int!)"},
	}

	for name, data := range argsData {
		got := data.args.SDL()
		Assertf(t, got == data.expected, "%-12s expected %q got %q", name, data.expected, got)
	}
}

func TestValidate(t *testing.T) {
	b := schema.NewBuilder()
	validateData := map[string]struct {
		decl  schema.TypeDecl
		error string // expected error substring (empty if valid)
	}{
		"enum_ok":       {b.EnumType("Crop", "fill", "fit"), ""},
		"scalar_ok":     {b.ScalarType("Url"), ""},
		"input_ok":      {b.InputType("Size", schema.Args{"w": {Type: "[Int!]!"}}), ""},
		"bad_name":      {b.EnumType("1Crop", "fill"), "not a valid enum name"},
		"reserved_name": {b.ScalarType("__Url"), "not a valid scalar name"},
		"no_values":     {b.EnumType("Crop"), "has no values"},
		"reserved":      {b.EnumType("Crop", "true"), "not an allowed enum value"},
		"bad_value":     {b.EnumType("Crop", "a-b"), "not a valid enum value"},
		"repeated":      {b.EnumType("Crop", "fill", "fill#again"), "repeated enum value"},
		"no_fields":     {b.InputType("Size", nil), "has no fields"},
		"bad_type":      {b.InputType("Size", schema.Args{"w": {Type: "[[Int]]"}}), "invalid type"},
		"bad_arg":       {b.ObjectType("Size", schema.Args{"a b": {Type: "Int"}}), "not a valid argument name"},
		"key_mismatch":  {b.ObjectType("Size", schema.Args{"w": {Name: "h", Type: "Int"}}), "declared under key"},
		"unknown_kind":  {schema.TypeDecl{Kind: 42, Name: "X"}, "unknown kind"},
	}

	for name, data := range validateData {
		err := data.decl.Validate()
		if data.error == "" {
			Assertf(t, err == nil, "%-14s expected no error, got %v", name, err)
			continue
		}
		Assertf(t, err != nil && strings.Contains(err.Error(), data.error),
			"%-14s expected error containing %q, got %v", name, data.error, err)
	}
}

func TestValidName(t *testing.T) {
	for s, expected := range map[string]bool{
		"width": true, "_w": true, "w2": true, "": false, "2w": false, "__w": false, "w-h": false,
	} {
		Assertf(t, schema.ValidName(s) == expected, "%-6q expected %v", s, expected)
	}
}

// compareSDL compares two strings ignoring differences in white space
func compareSDL(s1, s2 string) bool {
	return strings.Join(strings.Fields(strings.NewReplacer("{", " { ", "}", " } ").Replace(s1)), " ") ==
		strings.Join(strings.Fields(strings.NewReplacer("{", " { ", "}", " } ").Replace(s2)), " ")
}

// Assertf displays an error message and fails the test if the condition is false, or logs a success message
func Assertf(t *testing.T, succeeded bool, format string, args ...interface{}) {
	const (
		succeed = "\u2713" // tick
		failed  = "X"      //"\u2717" // cross
	)

	t.Helper()
	if !succeeded {
		t.Errorf("%s\t"+format, append([]interface{}{failed}, args...)...)
	} else {
		t.Logf("%s\t"+format, append([]interface{}{succeed}, args...)...)
	}
}
