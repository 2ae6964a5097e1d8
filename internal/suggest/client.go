// Package suggest implements the client for the city's address
// autocomplete service: one endpoint for street-name suggestions, one for
// house-number suggestions under a street. Both truncate to twelve entries
// per response.
package suggest

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/rotisserie/eris"

	"github.com/geodaten-labs/streetcrawl/internal/fetcher"
)

// Endpoints holds the two autocomplete endpoint URLs.
type Endpoints struct {
	StreetURL string
	NumberURL string
}

// Fetcher is the transport dependency of the client.
type Fetcher interface {
	GetJSON(ctx context.Context, rawURL string, params url.Values, out any) error
}

// Client queries the autocomplete service.
type Client struct {
	fetcher   Fetcher
	endpoints Endpoints
}

// New creates a Client over the given transport and endpoints.
func New(f Fetcher, endpoints Endpoints) *Client {
	return &Client{fetcher: f, endpoints: endpoints}
}

// NewHTTP creates a Client with a default HTTP fetcher.
func NewHTTP(opts fetcher.Options, endpoints Endpoints) *Client {
	return New(fetcher.New(opts), endpoints)
}

// envelope is the response shape of both endpoints. Entries are decoded
// individually so a single malformed suggestion drops silently instead of
// failing the whole response.
type envelope struct {
	Suggestions []json.RawMessage `json:"suggestions"`
}

// Streets returns street-name suggestions for a prefix.
func (c *Client) Streets(ctx context.Context, prefix string) ([]string, error) {
	params := url.Values{"street": {prefix}}

	var env envelope
	if err := c.fetcher.GetJSON(ctx, c.endpoints.StreetURL, params, &env); err != nil {
		return nil, eris.Wrapf(err, "suggest: streets for prefix %q", prefix)
	}
	return extract(env), nil
}

// HouseNumbers returns house-number suggestions for a street and an
// optional number prefix. The parameter is omitted entirely when the
// prefix is empty; the service returns nothing for an empty streetnr.
func (c *Client) HouseNumbers(ctx context.Context, street, numberPrefix string) ([]string, error) {
	params := url.Values{"street": {street}}
	if numberPrefix != "" {
		params.Set("streetnr", numberPrefix)
	}

	var env envelope
	if err := c.fetcher.GetJSON(ctx, c.endpoints.NumberURL, params, &env); err != nil {
		return nil, eris.Wrapf(err, "suggest: numbers for street %q prefix %q", street, numberPrefix)
	}
	return extract(env), nil
}

// extract pulls the data field from each suggestion, ignoring entries of
// unrecognized shape.
func extract(env envelope) []string {
	out := make([]string, 0, len(env.Suggestions))
	for _, raw := range env.Suggestions {
		var entry struct {
			Data *string `json:"data"`
		}
		if err := json.Unmarshal(raw, &entry); err != nil || entry.Data == nil {
			continue
		}
		out = append(out, *entry.Data)
	}
	return out
}
