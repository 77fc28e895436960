package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPostalCode(t *testing.T) {
	var gotLat, gotLon, gotUA string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLat = r.URL.Query().Get("lat")
		gotLon = r.URL.Query().Get("lon")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"address":{"postcode":"500032","suburb":"Gachibowli"}}`))
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "pincode_finder", 5*time.Second, zap.NewNop())
	code, err := client.PostalCode(context.Background(), 17.44, 78.34)

	require.NoError(t, err)
	assert.Equal(t, "500032", code)
	assert.Equal(t, "17.44", gotLat)
	assert.Equal(t, "78.34", gotLon)
	assert.Equal(t, "pincode_finder", gotUA)
}

func TestPostalCodeMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"address":{"suburb":"open sea"}}`))
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "pincode_finder", 5*time.Second, zap.NewNop())
	code, err := client.PostalCode(context.Background(), 0, 0)

	// no postcode is not an error; callers fall back
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestPostalCodeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "pincode_finder", 5*time.Second, zap.NewNop())
	_, err := client.PostalCode(context.Background(), 17.44, 78.34)
	assert.Error(t, err)
}
