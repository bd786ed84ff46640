package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpec_IsValid(t *testing.T) {
	doc, err := Spec()
	require.NoError(t, err)
	assert.Equal(t, "Stepwise API", doc.Info.Title)
}

func TestSpec_DocumentsEveryRoute(t *testing.T) {
	doc, err := Spec()
	require.NoError(t, err)

	s := NewServer(nil)
	err = chi.Walk(s.router(), func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if route != "/" {
			route = strings.TrimSuffix(route, "/")
		}
		item := doc.Paths.Value(route)
		if assert.NotNil(t, item, "route %s is not documented", route) {
			assert.NotNil(t, item.GetOperation(method), "%s %s is not documented", method, route)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestServer_GetSpec(t *testing.T) {
	srv := httptest.NewServer(NewHandler(nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/openapi.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "3.0.3", body["openapi"])
	assert.Contains(t, body["paths"], "/machines/{machine}/records/{id}/transitions/{transition}")
}
