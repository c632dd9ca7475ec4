package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"shop-backend/pkg/apierror"
)

// DocsHandler serves the OpenAPI document read at startup and a Swagger UI
// page pointing at it.
type DocsHandler struct {
	document []byte
}

func NewDocsHandler(documentPath string) *DocsHandler {
	documentPath = strings.TrimSpace(documentPath)
	if documentPath == "" {
		return &DocsHandler{}
	}

	document, err := os.ReadFile(documentPath)
	if err != nil {
		slog.Warn("openapi document unavailable", "path", documentPath, "error", err)
		return &DocsHandler{}
	}
	return &DocsHandler{document: document}
}

func (h *DocsHandler) OpenAPI(w http.ResponseWriter, _ *http.Request) {
	if h == nil || len(h.document) == 0 {
		writeError(w, apierror.NotFound("API documentation is not available", ""))
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.document)
}

func (h *DocsHandler) SwaggerUI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self' https://unpkg.com; script-src 'self' 'unsafe-inline' https://unpkg.com; style-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data:")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, swaggerPage)
}

const swaggerPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Shop Backend API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
        persistAuthorization: true,
        tryItOutEnabled: true
      });
    </script>
  </body>
</html>`
