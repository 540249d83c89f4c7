// Package imageloc decides where a photo file is loaded from.
//
// Photo files live in two places: names generated by the server on upload
// (a UUID stem, "3f0c...e1.jpg") are served by the backend, while pre-seeded
// names ("kenobi1.jpg") ship with the static assets. Each name therefore has
// a primary and a fallback URL:
//
//	res, err := imageloc.New(imageloc.Config{
//		ServerURL: "http://localhost:3001/images",
//		StaticURL: "http://localhost:3000/images",
//	})
//	res.PrimaryURL("kenobi1.jpg")  // http://localhost:3000/images/kenobi1.jpg
//	res.FallbackURL("kenobi1.jpg") // http://localhost:3001/images/kenobi1.jpg
//
// A renderer walks the two candidates with an Attempt. After the second
// failure the image is Unavailable and no further URL is offered:
//
//	a := res.Begin(photo.FileName)
//	for a.State() == imageloc.Loading {
//		if load(a.URL()) == nil {
//			a.Succeed()
//			break
//		}
//		a.Fail()
//	}
//
// Fetch does the same with HTTP GETs.
package imageloc
