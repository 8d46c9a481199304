package yahoosearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrade/internal/feature/search/domain/entity"
)

func TestClient_Search(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/finance/search", r.URL.Path)
		assert.Equal(t, "reliance", r.URL.Query().Get("q"))
		assert.Equal(t, "0", r.URL.Query().Get("newsCount"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quotes":[
			{"symbol":"RELIANCE.NS","shortname":"RELIANCE INDS","longname":"Reliance Industries Limited","exchange":"NSI","exchDisp":"NSE","quoteType":"EQUITY"},
			{"symbol":"RELIANCE.BO","shortname":"RELIANCE INDUSTRIES LTD.","exchange":"BSE","quoteType":"EQUITY"},
			{"symbol":"","shortname":"ignored"}
		]}`))
	}))
	defer server.Close()

	c := NewClient("query1", server.URL, ".NS", "test-agent", 5*time.Second)
	results, err := c.Search(context.Background(), "reliance")

	require.NoError(t, err)
	assert.Equal(t, "query1", c.Name())
	assert.Equal(t, []entity.SearchResult{
		{Symbol: "RELIANCE", Name: "Reliance Industries Limited", Exchange: "NSE", Type: "EQUITY"},
		{Symbol: "RELIANCE.BO", Name: "RELIANCE INDUSTRIES LTD.", Exchange: "BSE", Type: "EQUITY"},
	}, results)
}

func TestClient_Search_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusTooManyRequests, `{}`},
		{"invalid json", http.StatusOK, `{"quotes":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient("query2", server.URL, ".NS", "test-agent", 5*time.Second)
			results, err := c.Search(context.Background(), "tcs")

			assert.Error(t, err)
			assert.Nil(t, results)
		})
	}
}

func TestClient_Search_Empty(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"quotes":[]}`))
	}))
	defer server.Close()

	c := NewClient("query1", server.URL, ".NS", "test-agent", 5*time.Second)
	results, err := c.Search(context.Background(), "zzzz")

	require.NoError(t, err)
	assert.Empty(t, results)
}
