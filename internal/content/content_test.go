package content

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sigil/internal/platform/config"
	"sigil/pkg/platform/sentinel"
)

func newTestClient(t *testing.T, baseURL string, timeout time.Duration) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := NewClient(config.ContentConfig{BaseURL: baseURL, Timeout: timeout}, logger)
	require.NoError(t, err)
	return client
}

// gateway is a minimal in-memory content store for round-trip tests.
func gateway() http.HandlerFunc {
	var mu sync.Mutex
	entries := map[string][]byte{}

	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			entries[r.URL.Path] = body
			w.WriteHeader(http.StatusCreated)
		case http.MethodGet:
			body, ok := entries[r.URL.Path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write(body)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func TestPutStoresUnderDigest(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	data := []byte("certificate body")

	hash, err := client.Put(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256Hash(data).Hex(), hash)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/content/"+hash, gotPath)
	assert.Equal(t, data, gotBody)
}

func TestFetchRoundTrip(t *testing.T) {
	srv := httptest.NewServer(gateway())
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	data := []byte("certificate body")

	hash, err := client.Put(context.Background(), data)
	require.NoError(t, err)

	got, err := client.Fetch(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFetchUnknownHashIsNotFound(t *testing.T) {
	srv := httptest.NewServer(gateway())
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	unknown := crypto.Keccak256Hash([]byte("never stored")).Hex()

	_, err := client.Fetch(context.Background(), unknown)
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestFetchRejectsTamperedBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not what was stored"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	hash := crypto.Keccak256Hash([]byte("original")).Hex()

	_, err := client.Fetch(context.Background(), hash)
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Contains(t, err.Error(), "digest")
}

func TestFetchRejectsMalformedHash(t *testing.T) {
	// No request should be made, so the base URL does not need to resolve.
	client := newTestClient(t, "http://127.0.0.1:0", 0)

	_, err := client.Fetch(context.Background(), "not-a-digest")
	require.Error(t, err)
	assert.NotErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestGatewayErrorsAreUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)

	_, err := client.Put(context.Background(), []byte("data"))
	require.ErrorIs(t, err, sentinel.ErrUnavailable)

	_, err = client.Fetch(context.Background(), crypto.Keccak256Hash([]byte("data")).Hex())
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestSlowGatewayHitsCallBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 30*time.Millisecond)

	_, err := client.Put(context.Background(), []byte("data"))
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(config.ContentConfig{}, nil)
	require.Error(t, err)
}
