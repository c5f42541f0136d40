package resources

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinify(t *testing.T) {
	js := []byte("function add(first, second) {\n  // sum\n  return first + second;\n}\nwindow.add = add;\n")
	out, err := Minify("add.js", js)
	require.NoError(t, err)
	assert.Less(t, len(out), len(js))
	assert.NotContains(t, string(out), "// sum")

	css := []byte(".widget {\n  color: #ff0000;\n  margin: 0px;\n}\n")
	out, err = Minify("widget.css", css)
	require.NoError(t, err)
	assert.Less(t, len(out), len(css))
	assert.Contains(t, string(out), ".widget")
}

func TestMinify_PassThrough(t *testing.T) {
	src := []byte("not a script")
	out, err := Minify("notes.txt", src)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestMinify_SyntaxError(t *testing.T) {
	_, err := Minify("broken.js", []byte("function ( {"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "esbuild errors")
	assert.Contains(t, err.Error(), "broken.js")
}

func TestHandler_ServesAssets(t *testing.T) {
	h := Handler()

	for _, name := range []string{"camera.js", "widget.css"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, StaticPath(name), nil))
		assert.Equal(t, http.StatusOK, rec.Code, name)
		assert.NotEmpty(t, rec.Body.String(), name)
		assert.NotEmpty(t, rec.Header().Get("Cache-Control"), name)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, StaticPath("missing.js"), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
