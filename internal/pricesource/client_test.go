package pricesource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "kumbara/internal/errors"
	"kumbara/internal/testutil"
)

func TestClient_FetchPrices_Success(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-KEY")
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name":"GRAM_ALTIN","alis":"3.475,89","satis":"3.480,00"},
			{"name":"YENI_CEYREK","alis":"5.694,00"},
			{"name":"ONS","alis":"2.650,10"},
			{"name":"HAS_ALTIN","alis":""},
			{"name":"YENI_TAM","alis":"bozuk"}
		]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret", time.Second, server.Client())
	prices, err := c.FetchPrices(context.Background())
	testutil.AssertNoError(t, err)

	if gotKey != "secret" {
		t.Errorf("X-API-KEY = %q, want %q", gotKey, "secret")
	}
	if len(prices) != 2 {
		t.Fatalf("expected 2 prices, got %d: %v", len(prices), prices)
	}
	testutil.AssertDecimal(t, GramAltin, prices[GramAltin], "3475.89")
	testutil.AssertDecimal(t, CeyrekYeni, prices[CeyrekYeni], "5694")
}

func TestClient_FetchPrices_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non_success_status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed_body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"prices":`))
			},
		},
		{
			name: "object_instead_of_array",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"name":"GRAM_ALTIN","alis":"1,0"}`))
			},
		},
		{
			name: "zero_parseable_entries",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`[{"name":"ONS","alis":"2.650,10"},{"name":"GRAM_ALTIN","alis":"-"}]`))
			},
		},
		{
			name: "empty_array",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`[]`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewClient(server.URL, "k", time.Second, server.Client())
			prices, err := c.FetchPrices(context.Background())
			if prices != nil {
				t.Errorf("expected nil prices, got %v", prices)
			}
			testutil.AssertAppError(t, err, apperrors.ErrFetchFailed.Code)
		})
	}
}

func TestClient_FetchPrices_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, "k", 50*time.Millisecond, server.Client())
	start := time.Now()
	_, err := c.FetchPrices(context.Background())
	testutil.AssertAppError(t, err, apperrors.ErrFetchFailed.Code)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fetch took %s, expected the timeout to cut it short", elapsed)
	}
}

func TestClient_FetchPrices_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c := NewClient(url, "k", time.Second, nil)
	_, err := c.FetchPrices(context.Background())
	testutil.AssertAppError(t, err, apperrors.ErrFetchFailed.Code)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("http://example.test/gold-prices/", "", 0, nil)
	if c.timeout != DefaultTimeout {
		t.Errorf("timeout = %s, want %s", c.timeout, DefaultTimeout)
	}
	if c.baseURL != "http://example.test/gold-prices" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.httpClient == nil {
		t.Error("expected a default http client")
	}
}
