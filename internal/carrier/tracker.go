package carrier

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Shipment statuses as normalized from carrier tracking pages.
const (
	StatusInTransit      = "in_transit"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
	StatusException      = "exception"
	StatusUnknown        = "unknown"
)

type Checkpoint struct {
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

type TrackingInfo struct {
	CarrierRef  string       `json:"carrier_ref"`
	Status      string       `json:"status"`
	Checkpoints []Checkpoint `json:"checkpoints"`
	FetchedAt   time.Time    `json:"fetched_at"`
}

// Tracker scrapes a carrier's public tracking page. Carriers rarely offer
// an API on the free tier, so this parses the HTML the buyer would see.
type Tracker struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
	maxRetries int
}

func NewTracker(baseURL string, timeoutMS, maxRetries int, log *zap.Logger) *Tracker {
	return &Tracker{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
		},
		log:        log,
		maxRetries: maxRetries,
	}
}

func (t *Tracker) Track(ctx context.Context, carrierRef string) (*TrackingInfo, error) {
	url := fmt.Sprintf("%s?tracking=%s", t.baseURL, carrierRef)

	var doc *goquery.Document
	var lastErr error

	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := t.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}

	if lastErr != nil {
		return nil, lastErr
	}

	return parseTrackingDoc(doc, carrierRef), nil
}

func parseTrackingDoc(doc *goquery.Document, carrierRef string) *TrackingInfo {
	info := &TrackingInfo{
		CarrierRef: carrierRef,
		Status:     StatusUnknown,
		FetchedAt:  time.Now(),
	}

	statusText := strings.TrimSpace(doc.Find(".tracking-status, .shipment-status").First().Text())
	info.Status = normalizeStatus(statusText)

	doc.Find(".tracking-event, .checkpoint").Each(func(i int, s *goquery.Selection) {
		cp := Checkpoint{
			Time:        strings.TrimSpace(s.Find(".event-time, .checkpoint-time").Text()),
			Location:    strings.TrimSpace(s.Find(".event-location, .checkpoint-location").Text()),
			Description: strings.TrimSpace(s.Find(".event-description, .checkpoint-description").Text()),
		}
		if cp.Time == "" && cp.Description == "" {
			return
		}
		info.Checkpoints = append(info.Checkpoints, cp)
		if info.Status == StatusUnknown && i == 0 {
			info.Status = normalizeStatus(cp.Description)
		}
	})

	return info
}

func normalizeStatus(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "delivered"):
		return StatusDelivered
	case strings.Contains(lower, "out for delivery"):
		return StatusOutForDelivery
	case strings.Contains(lower, "transit"), strings.Contains(lower, "picked up"),
		strings.Contains(lower, "departed"), strings.Contains(lower, "arrived"):
		return StatusInTransit
	case strings.Contains(lower, "exception"), strings.Contains(lower, "failed"),
		strings.Contains(lower, "return"):
		return StatusException
	default:
		return StatusUnknown
	}
}
