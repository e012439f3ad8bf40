package transformer

import (
	"strings"

	"github.com/andrewwphillips/imagecdn/internal/schema"
)

// Cloudinary builds Cloudinary delivery URLs such as
//
//	https://res.cloudinary.com/demo/image/fetch/w_300,h_200,c_fill/https://example.com/cat.jpg
//
// where cdn.baseUrl is "https://res.cloudinary.com/demo/image/fetch" (or ".../upload" with
// cdn.imagePrefix set to a folder for uploaded images).
type Cloudinary struct{}

const cloudinaryCrop = "CloudinaryCropMode"

func (Cloudinary) CreateSchemaTypes(b *schema.Builder) []schema.TypeDecl {
	return []schema.TypeDecl{
		b.EnumType(cloudinaryCrop+"#Cloudinary crop/resize mode",
			"scale#Change the size to exactly the width and height given",
			"fit#Fit inside the box keeping the aspect ratio",
			"limit#Same as fit but only scale down",
			"mfit#Fit inside the box, only scaling up",
			"fill#Fill the box, cropping if necessary",
			"lfill#Same as fill but only scale down",
			"pad#Fit inside the box and pad to fill it",
			"lpad#Same as pad but only scale down",
			"mpad#Same as pad but never scale",
			"crop#Extract a region of the original",
			"thumb#Thumbnail, usually used with face detection",
		),
	}
}

func (Cloudinary) CreateResolverArgs() schema.Args {
	return withSizeArgs("crop", cloudinaryCrop, "How the image is cropped or resized")
}

func (Cloudinary) Transform(p Params) (string, error) {
	var options []string
	for _, a := range [...]struct{ name, prefix string }{{"width", "w_"}, {"height", "h_"}} {
		v, err := sizeArg(p.Args, a.name)
		if err != nil {
			return "", err
		}
		if v != "" {
			options = append(options, a.prefix+v)
		}
	}
	crop, err := enumArg(p.Args, "crop")
	if err != nil {
		return "", err
	}
	if crop != "" {
		options = append(options, "c_"+crop)
	}
	return joinURL(p.CDN.BaseURL, p.CDN.ImagePrefix, strings.Join(options, ","), p.SourceURL), nil
}
