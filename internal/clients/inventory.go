package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryClient reserves and releases stock in the catalog service.
type InventoryClient interface {
	Reserve(ctx context.Context, productID uuid.UUID, quantity int) error
	Release(ctx context.Context, productID uuid.UUID, quantity int) error
}

// HTTPInventoryClient talks to the catalog service's internal API.
type HTTPInventoryClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewHTTPInventoryClient(baseURL string, log *zap.Logger) *HTTPInventoryClient {
	return &HTTPInventoryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

func (c *HTTPInventoryClient) Reserve(ctx context.Context, productID uuid.UUID, quantity int) error {
	return c.post(ctx, fmt.Sprintf("%s/internal/products/%s/reserve?quantity=%d", c.baseURL, productID, quantity))
}

func (c *HTTPInventoryClient) Release(ctx context.Context, productID uuid.UUID, quantity int) error {
	return c.post(ctx, fmt.Sprintf("%s/internal/products/%s/release?quantity=%d", c.baseURL, productID, quantity))
}

func (c *HTTPInventoryClient) post(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inventory service unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("inventory service returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
