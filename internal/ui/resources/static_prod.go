//go:build !dev

package resources

import (
	"bytes"
	"embed"
	"io/fs"
	"net/http"
	"strings"
	"time"
)

//go:embed static/*
var staticFS embed.FS

// Handler returns an HTTP handler for serving static files.
// In production mode, files are embedded in the binary and scripts and
// stylesheets are minified once, when the handler is built.
func Handler() http.Handler {
	fsys, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	minified := minifyAll(fsys)
	fileServer := http.FileServer(http.FS(fsys))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// embedded assets change only with the binary
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

		name := strings.TrimPrefix(r.URL.Path, "/static/")
		if data, ok := minified[name]; ok {
			http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(data))
			return
		}
		http.StripPrefix("/static/", fileServer).ServeHTTP(w, r)
	})
}

// minifyAll minifies every top-level asset esbuild understands. An asset
// that fails to minify is served as is.
func minifyAll(fsys fs.FS) map[string][]byte {
	out := make(map[string][]byte)
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return out
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		src, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			continue
		}
		data, err := Minify(e.Name(), src)
		if err != nil {
			continue
		}
		out[e.Name()] = data
	}
	return out
}
