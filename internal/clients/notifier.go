package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationClient delivers user-facing notifications. Delivery is
// best-effort: failures are logged, never propagated to the caller.
type NotificationClient interface {
	Notify(ctx context.Context, recipientID uuid.UUID, kind, title, message string, meta map[string]any)
}

// HTTPNotificationClient posts notifications to the notification service.
type HTTPNotificationClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewHTTPNotificationClient(baseURL string, log *zap.Logger) *HTTPNotificationClient {
	return &HTTPNotificationClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

func (c *HTTPNotificationClient) Notify(ctx context.Context, recipientID uuid.UUID, kind, title, message string, meta map[string]any) {
	body, _ := json.Marshal(map[string]any{
		"recipient_id": recipientID.String(),
		"type":         kind,
		"title":        title,
		"message":      message,
		"meta":         meta,
	})

	url := fmt.Sprintf("%s/internal/notify", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		c.log.Warn("failed to build notification request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("failed to send notification", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("notification delivery failed", zap.Int("status", resp.StatusCode))
	}
}
