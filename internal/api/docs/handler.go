package docs

import (
	"bytes"
	_ "embed"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const specPath = "/docs/swagger.yaml"

//go:embed swagger.yaml
var openAPISpec []byte

// builtAt stands in for the modification time of the embedded document
var builtAt = time.Now()

// RegisterRoutes mounts Swagger UI under /docs, reading the embedded
// OpenAPI document of the report API.
func RegisterRoutes(r chi.Router) {
	r.Get("/docs", http.RedirectHandler("/docs/index.html", http.StatusFound).ServeHTTP)
	r.Get(specPath, serveSpec)
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL(specPath),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
	))
}

func serveSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	http.ServeContent(w, r, "swagger.yaml", builtAt, bytes.NewReader(openAPISpec))
}
