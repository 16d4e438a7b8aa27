// Package notify posts ledger summaries to a configured webhook URL, e.g. a
// chat integration the shop owner watches.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/beejwala/seedledger/internal/domain/models"
)

// Client exposes the outbound notification operations used by the scheduler.
type Client interface {
	PostSummary(ctx context.Context, summary models.DailySummary) error
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
	webhookURL string
}

// NewClient builds a webhook notifier for the provided URL.
func NewClient(webhookURL string) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &WebhookClient{
		httpClient: restyClient,
		webhookURL: webhookURL,
	}
}

type summaryPayload struct {
	Text            string  `json:"text"`
	Date            string  `json:"date"`
	TotalCollection float64 `json:"total_collection"`
	OutstandingDues float64 `json:"outstanding_dues"`
	StockValue      float64 `json:"stock_value"`
	TotalExpenses   float64 `json:"total_expenses"`
}

// PostSummary delivers one daily summary to the webhook.
func (c *WebhookClient) PostSummary(ctx context.Context, summary models.DailySummary) error {
	payload := summaryPayload{
		Text:            summary.Message,
		Date:            summary.Date.Format("2006-01-02"),
		TotalCollection: summary.Stats.TotalCollection,
		OutstandingDues: summary.OutstandingDues,
		StockValue:      summary.Stats.StockValue,
		TotalExpenses:   summary.Stats.TotalExpenses,
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.webhookURL)
	if err != nil {
		return fmt.Errorf("post summary webhook: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("summary webhook rejected with status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
