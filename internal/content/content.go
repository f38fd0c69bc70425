// Package content stores and retrieves document bodies through a
// content-addressed HTTP gateway. Entries are keyed by the keccak256 digest
// of their bytes, so every fetch can verify it got what it asked for. Like
// the ledger, the gateway is a collaborator: failures surface as
// sentinel.ErrUnavailable, never as business errors.
package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"sigil/internal/platform/config"
	"sigil/pkg/platform/sentinel"
)

const (
	defaultTimeout = 10 * time.Second

	// maxFetchBytes bounds gateway responses; document bodies are capped well
	// below this at registration time.
	maxFetchBytes = 16 << 20
)

// Client talks to the content gateway. Put uploads under the body's own
// digest; Fetch retrieves by digest and checks the bytes against it.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a gateway client from config. The per-call budget comes
// from cfg.Timeout.
func NewClient(cfg config.ContentConfig, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("content gateway base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// Put stores data under its keccak256 digest and returns the digest. The
// gateway address is derived client-side, so the returned hash is the same
// one the ledger anchors.
func (c *Client) Put(ctx context.Context, data []byte) (string, error) {
	hash := crypto.Keccak256Hash(data).Hex()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.entryURL(hash), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build content upload: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("content upload: %v: %w", err, sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxFetchBytes))

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("content upload: gateway returned %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}
	return hash, nil
}

// Fetch retrieves the bytes stored under hash. Responses whose digest does
// not match the requested hash are rejected.
func (c *Client) Fetch(ctx context.Context, hash string) ([]byte, error) {
	digest, err := hexutil.Decode(hash)
	if err != nil || len(digest) != common.HashLength {
		return nil, fmt.Errorf("content hash %q is not a 32-byte hex digest", hash)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.entryURL(hash), nil)
	if err != nil {
		return nil, fmt.Errorf("build content fetch: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content fetch: %v: %w", err, sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("content %s: %w", hash, sentinel.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content fetch: gateway returned %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
	if err != nil {
		return nil, fmt.Errorf("content fetch: %v: %w", err, sentinel.ErrUnavailable)
	}
	if len(body) > maxFetchBytes {
		return nil, fmt.Errorf("content %s exceeds %d bytes: %w", hash, maxFetchBytes, sentinel.ErrUnavailable)
	}
	if got := crypto.Keccak256Hash(body); got != common.BytesToHash(digest) {
		c.logger.Warn("content gateway returned mismatched bytes", "hash", hash, "got", got.Hex())
		return nil, fmt.Errorf("content %s failed digest check: %w", hash, sentinel.ErrUnavailable)
	}
	return body, nil
}

func (c *Client) entryURL(hash string) string {
	return c.baseURL + "/content/" + hash
}
