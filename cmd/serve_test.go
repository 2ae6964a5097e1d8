package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodaten-labs/streetcrawl/internal/crawl"
)

func testMux() *http.ServeMux {
	return newServeMux(&crawl.Snapshot{
		Streets: []string{"Ahornweg", "Buchenstraße"},
		StreetNumbers: map[string][]string{
			"Ahornweg": {"1", "2b", "10"},
			"Leerweg":  nil,
		},
	})
}

func get(t *testing.T, mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestServe_Health(t *testing.T) {
	rec := get(t, testMux(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServe_Streets(t *testing.T) {
	rec := get(t, testMux(), "/streets")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count   int      `json:"count"`
		Streets []string `json:"streets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, []string{"Ahornweg", "Buchenstraße"}, body.Streets)
}

func TestServe_StreetNumbers(t *testing.T) {
	rec := get(t, testMux(), "/streets/Ahornweg/numbers")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Street  string   `json:"street"`
		Count   int      `json:"count"`
		Numbers []string `json:"numbers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Ahornweg", body.Street)
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, []string{"1", "2b", "10"}, body.Numbers)
}

func TestServe_StreetWithoutNumbers(t *testing.T) {
	rec := get(t, testMux(), "/streets/Leerweg/numbers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"street":"Leerweg","count":0,"numbers":[]}`, rec.Body.String())
}

func TestServe_UnknownStreet(t *testing.T) {
	rec := get(t, testMux(), "/streets/Nirgendwo/numbers")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
