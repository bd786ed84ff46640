package http

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openAPIDocument []byte

var (
	specOnce sync.Once
	spec     *openapi3.T
	specErr  error
)

// Spec returns the parsed and validated OpenAPI document of the API.
func Spec() (*openapi3.T, error) {
	specOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openAPIDocument)
		if err != nil {
			specErr = fmt.Errorf("load openapi document: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			specErr = fmt.Errorf("invalid openapi document: %w", err)
			return
		}
		spec = doc
	})
	return spec, specErr
}

// GetSpec handles GET /openapi.json.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	doc, err := Spec()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}
