// Package imagecdn is a plugin for a static site's GraphQL data layer that rewrites
// image fields into CDN URLs.
//
// For each configured type/field pair (eg the "image" field of "Post") the plugin installs
// a resolver that takes the field's value, removes the site's base URL(s) and hands the
// result to a CDN "transformer" which builds the final URL.  The transformer also adds
// arguments (such as width, height and crop mode) to the field, so a query like this:
//
//	{
//	   allPost {
//	      title
//	      image(width: 300, crop: fill)
//	   }
//	}
//
// could return an image URL like:
//
//	https://res.cloudinary.com/demo/image/fetch/w_300,c_fill/uploads/cat.jpg
//
// Transformers for Cloudinary, ImageKit and imgix are built in (see the cdn.preset option)
// or you can supply your own.  Register the plugin with any host that implements the API
// interface, for example:
//
//	opts := imagecdn.DefaultOptions()
//	opts.Site.BaseURL = imagecdn.BaseURLs{"https://example.com/"}
//	opts.CDN.Preset = "cloudinary"
//	opts.CDN.BaseURL = "https://res.cloudinary.com/demo/image/fetch"
//	opts.Types = []imagecdn.FieldSpec{{TypeName: "Post", SourceField: "image", Exclude: []string{"svg"}}}
//	if err := imagecdn.Register(h, opts); err != nil {
//	   log.Fatal(err)
//	}
package imagecdn
