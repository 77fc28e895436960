// Package geocode resolves coordinates to postal codes through a
// Nominatim-compatible reverse-geocoding service.
package geocode

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// PostalLookup resolves (lat, long) to a postal code. An empty string with a
// nil error means the location has no postal code; callers are expected to
// fall back rather than fail.
type PostalLookup interface {
	PostalCode(ctx context.Context, lat, long float64) (string, error)
}

type NominatimClient struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewNominatimClient(baseURL, userAgent string, timeout time.Duration, logger *zap.Logger) *NominatimClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")

	return &NominatimClient{http: client, logger: logger}
}

type reverseResponse struct {
	Address struct {
		Postcode string `json:"postcode"`
	} `json:"address"`
}

// PostalCode performs a reverse lookup. The upstream service can take
// seconds to answer.
func (c *NominatimClient) PostalCode(ctx context.Context, lat, long float64) (string, error) {
	var result reverseResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"format":          "jsonv2",
			"lat":             strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":             strconv.FormatFloat(long, 'f', -1, 64),
			"accept-language": "en",
		}).
		SetResult(&result).
		Get("/reverse")
	if err != nil {
		return "", fmt.Errorf("reverse geocode failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("reverse geocode returned status %d", resp.StatusCode())
	}

	c.logger.Debug("reverse geocode",
		zap.Float64("lat", lat),
		zap.Float64("long", long),
		zap.String("postcode", result.Address.Postcode),
	)
	return result.Address.Postcode, nil
}
