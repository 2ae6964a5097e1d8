package suggest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodaten-labs/streetcrawl/internal/fetcher"
)

func newTestClient(streetURL, numberURL string) *Client {
	return NewHTTP(
		fetcher.Options{
			UserAgent: "test-agent",
			Timeout:   5 * time.Second,
		},
		Endpoints{StreetURL: streetURL, NumberURL: numberURL},
	)
}

func TestStreets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "Ahorn", r.URL.Query().Get("street"))
		w.Write([]byte(`{"suggestions":[{"data":"Ahornweg"},{"data":"Ahornstraße"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	streets, err := c.Streets(context.Background(), "Ahorn")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ahornweg", "Ahornstraße"}, streets)
}

func TestHouseNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Ahornweg", r.URL.Query().Get("street"))
		assert.Equal(t, "1", r.URL.Query().Get("streetnr"))
		w.Write([]byte(`{"suggestions":[{"data":"1"},{"data":"1a"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	numbers, err := c.HouseNumbers(context.Background(), "Ahornweg", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "1a"}, numbers)
}

func TestHouseNumbers_OmitsEmptyPrefixParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["streetnr"]
		assert.False(t, present, "streetnr must be omitted for an empty prefix")
		w.Write([]byte(`{"suggestions":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	numbers, err := c.HouseNumbers(context.Background(), "Ahornweg", "")
	require.NoError(t, err)
	assert.Empty(t, numbers)
}

func TestStreets_IgnoresMalformedEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"suggestions":[{"data":"Ahornweg"},"bare string",{"value":"no data"},{"data":"Buchenstraße"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	streets, err := c.Streets(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ahornweg", "Buchenstraße"}, streets)
}

func TestStreets_UnrecognizedShapeYieldsZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"something":"else"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	streets, err := c.Streets(context.Background(), "A")
	require.NoError(t, err)
	assert.Empty(t, streets)
}

func TestStreets_InvalidJSONIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL)
	_, err := c.Streets(context.Background(), "A")
	require.Error(t, err)
}
