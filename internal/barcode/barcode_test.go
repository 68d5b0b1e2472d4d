package barcode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	mu   sync.Mutex
	data map[string]Result
}

func (m *memCache) Get(_ context.Context, code string) (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.data[code]
	return r, ok
}

func (m *memCache) Set(_ context.Context, code string, r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[code] = r
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "soft drinks", NormalizeCategory("en:soft-drinks"))
	assert.Equal(t, "bebidas", NormalizeCategory("es:bebidas"))
	assert.Equal(t, "snacks", NormalizeCategory("snacks"))
}

func TestLookup_OpenFoodFactsHit(t *testing.T) {
	off := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/product/7501055300075.json", r.URL.Path)
		assert.Equal(t, "product_name,categories_tags", r.URL.Query().Get("fields"))
		w.Write([]byte(`{"status":1,"product":{"product_name":"Coca-Cola 600ml","categories_tags":["en:soft-drinks","en:beverages"]}}`))
	}))
	defer off.Close()
	upc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("fallback must not be called when the primary answers")
	}))
	defer upc.Close()

	c := NewClient(Options{OpenFoodFactsURL: off.URL, UPCItemDBURL: upc.URL})
	r := c.Lookup(context.Background(), "7501055300075")
	require.True(t, r.Found())
	assert.Equal(t, "Coca-Cola 600ml", *r.Name)
	require.NotNil(t, r.Category)
	assert.Equal(t, "soft drinks", *r.Category)
}

func TestLookup_FallbackToUPCItemDB(t *testing.T) {
	off := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":0,"status_verbose":"product not found"}`))
	}))
	defer off.Close()
	upc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prod/trial/lookup", r.URL.Path)
		assert.Equal(t, "0885909950805", r.URL.Query().Get("upc"))
		w.Write([]byte(`{"code":"OK","items":[{"title":"Pilas AA","category":"Electronics"}]}`))
	}))
	defer upc.Close()

	c := NewClient(Options{OpenFoodFactsURL: off.URL, UPCItemDBURL: upc.URL})
	r := c.Lookup(context.Background(), "0885909950805")
	require.True(t, r.Found())
	assert.Equal(t, "Pilas AA", *r.Name)
	assert.Equal(t, "Electronics", *r.Category)
}

func TestLookup_TimeoutsDegradeToNotFound(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	c := NewClient(Options{OpenFoodFactsURL: slow.URL, UPCItemDBURL: broken.URL, Timeout: 50 * time.Millisecond})
	start := time.Now()
	r := c.Lookup(context.Background(), "123")
	assert.False(t, r.Found())
	assert.Nil(t, r.Category)
	assert.Less(t, time.Since(start), time.Second)
}

func TestLookup_EmptyCodeAndCache(t *testing.T) {
	calls := 0
	off := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"product":{"product_name":"Agua Natural 1L"}}`))
	}))
	defer off.Close()

	cache := &memCache{data: map[string]Result{}}
	c := NewClient(Options{OpenFoodFactsURL: off.URL, UPCItemDBURL: off.URL, Cache: cache})

	assert.False(t, c.Lookup(context.Background(), "  ").Found())
	assert.Equal(t, 0, calls)

	first := c.Lookup(context.Background(), "750")
	second := c.Lookup(context.Background(), "750")
	require.True(t, first.Found())
	assert.Equal(t, *first.Name, *second.Name)
	assert.Nil(t, second.Category)
	assert.Equal(t, 1, calls)
}
