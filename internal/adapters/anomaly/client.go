// Package anomaly calls the external anomaly scoring service.
package anomaly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"expense-insight/internal/core/domain"
)

// maxResponseBytes caps how much of a classifier reply is read
const maxResponseBytes = 64 << 10

// Client posts expense drafts to {baseURL}/anomaly.
// Every call is a single attempt bounded by the client timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a classifier client. An empty baseURL yields a
// client whose calls always fail as degraded.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type classifyRequest struct {
	Amount   float64 `json:"Amount"`
	Category string  `json:"Category"`
	Date     string  `json:"Date"`
}

type classifyResponse struct {
	IsAnomaly *bool    `json:"is_anomaly"`
	Score     *float64 `json:"score"`
}

// Classify scores draft, forwarding the caller's bearer token.
// Every failure wraps domain.ErrUpstreamDegraded.
func (c *Client) Classify(ctx context.Context, draft domain.AnomalyDraft, bearerToken string) (*domain.AnomalyResult, error) {
	if c.baseURL == "" {
		return nil, degraded("classifier URL is not configured")
	}

	payload, err := json.Marshal(classifyRequest{
		Amount:   draft.Amount,
		Category: string(draft.Category),
		Date:     draft.Date.UTC().Format(domain.DateLayout),
	})
	if err != nil {
		return nil, degraded("encode request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/anomaly", bytes.NewReader(payload))
	if err != nil {
		return nil, degraded("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, degraded("call classifier: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, degraded("read response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, degraded("classifier returned status %d", resp.StatusCode)
	}

	var out classifyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, degraded("decode response: %v", err)
	}
	if out.IsAnomaly == nil {
		return nil, degraded("response is missing is_anomaly")
	}

	// Rule-based verdicts carry no score
	score := 0.0
	if out.Score != nil {
		score = *out.Score
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return nil, degraded("score is not finite")
	}

	return &domain.AnomalyResult{
		IsAnomaly: *out.IsAnomaly,
		Score:     score,
	}, nil
}

func degraded(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrUpstreamDegraded, fmt.Sprintf(format, args...))
}
