package resources

import (
	"fmt"
	"path"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Minify shrinks a JavaScript or CSS asset with esbuild. Other files are
// returned unchanged.
func Minify(name string, src []byte) ([]byte, error) {
	var loader api.Loader
	switch path.Ext(name) {
	case ".js":
		loader = api.LoaderJS
	case ".css":
		loader = api.LoaderCSS
	default:
		return src, nil
	}

	result := api.Transform(string(src), api.TransformOptions{
		Loader:            loader,
		Sourcefile:        name,
		Target:            api.ES2020,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})

	if len(result.Errors) > 0 {
		var errMsg strings.Builder
		for _, msg := range result.Errors {
			if msg.Location != nil {
				fmt.Fprintf(&errMsg, "%s:%d:%d: ", msg.Location.File, msg.Location.Line, msg.Location.Column)
			}
			errMsg.WriteString(msg.Text)
			errMsg.WriteString("\n")
		}
		return nil, fmt.Errorf("esbuild errors:\n%s", errMsg.String())
	}

	return result.Code, nil
}
