package transformer

import (
	"net/url"
	"strings"

	"github.com/andrewwphillips/imagecdn/internal/schema"
)

// Imgix builds imgix URLs where the transformation is in the query string, eg
//
//	https://demo.imgix.net/cat.jpg?fit=crop&h=200&w=300
type Imgix struct{}

const imgixFit = "ImgixFitMode"

func (Imgix) CreateSchemaTypes(b *schema.Builder) []schema.TypeDecl {
	return []schema.TypeDecl{
		b.EnumType(imgixFit+"#imgix resize fit mode",
			"clamp", "clip", "crop", "facearea", "fill", "fillmax", "max", "min", "scale",
		),
	}
}

func (Imgix) CreateResolverArgs() schema.Args {
	return withSizeArgs("fit", imgixFit, "How the image is fitted to the width and height")
}

func (Imgix) Transform(p Params) (string, error) {
	query := url.Values{}
	for _, a := range [...]struct{ name, key string }{{"width", "w"}, {"height", "h"}} {
		v, err := sizeArg(p.Args, a.name)
		if err != nil {
			return "", err
		}
		if v != "" {
			query.Set(a.key, v)
		}
	}
	fit, err := enumArg(p.Args, "fit")
	if err != nil {
		return "", err
	}
	if fit != "" {
		query.Set("fit", fit)
	}

	r := joinURL(p.CDN.BaseURL, p.CDN.ImagePrefix, p.SourceURL)
	if len(query) == 0 {
		return r, nil
	}
	sep := "?"
	if strings.Contains(r, "?") {
		sep = "&"
	}
	return r + sep + query.Encode(), nil // Encode sorts by key
}
