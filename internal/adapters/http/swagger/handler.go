// Package swagger serves the OpenAPI document of the widget API and a ReDoc
// page that renders it.
package swagger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

var (
	ErrServe = errors.New("swagger serve failed")
)

const (
	documentPath = "/openapi.yaml"
	redocScript  = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"
)

// Register attaches the docs routes to mux:
//
//	GET /api-docs      ReDoc page
//	GET /openapi.yaml  embedded OpenAPI document
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /api-docs", serveDocs)
	mux.HandleFunc("GET "+documentPath, serveSpec)
}

func serveDocs(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := docsPage(documentPath).Render(&buf); err != nil {
		http.Error(w, fmt.Errorf("%w: %w", ErrServe, err).Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func serveSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(OpenAPI)
}

// docsPage is the ReDoc shell pointed at the document under docURL.
func docsPage(docURL string) g.Node {
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				TitleEl(g.Text("Horus API Docs")),
				StyleEl(g.Raw("body{margin:0;padding:0}")),
			),
			Body(
				g.El("redoc", ID("redoc-container"), g.Attr("spec-url", docURL)),
				Script(Src(redocScript)),
			),
		),
	)
}
