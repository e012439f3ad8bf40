package transformer

import (
	"strings"

	"github.com/andrewwphillips/imagecdn/internal/schema"
)

// ImageKit builds ImageKit URLs with the transformation in the path, eg
//
//	https://ik.imagekit.io/demo/tr:w-300,h-200,c-at_max/cat.jpg
type ImageKit struct{}

const imageKitCrop = "ImageKitCropMode"

func (ImageKit) CreateSchemaTypes(b *schema.Builder) []schema.TypeDecl {
	return []schema.TypeDecl{
		b.EnumType(imageKitCrop+"#ImageKit crop strategy",
			"maintain_ratio#Keep the aspect ratio, cropping to fit",
			"force#Squeeze to the exact size",
			"at_least#At least the given size",
			"at_max#At most the given size",
		),
	}
}

func (ImageKit) CreateResolverArgs() schema.Args {
	return withSizeArgs("crop", imageKitCrop, "How the image is cropped")
}

func (ImageKit) Transform(p Params) (string, error) {
	var options []string
	for _, a := range [...]struct{ name, prefix string }{{"width", "w-"}, {"height", "h-"}} {
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
		options = append(options, "c-"+crop)
	}

	var tr string
	if len(options) > 0 {
		tr = "tr:" + strings.Join(options, ",")
	}
	return joinURL(p.CDN.BaseURL, p.CDN.ImagePrefix, tr, p.SourceURL), nil
}
