package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"garage-dashboard/internal/domain/model"
)

// summaryClient reads today's numbers over REST. Events only say that
// something changed.
type summaryClient struct {
	base     string
	garageID int64
	http     *http.Client
}

func newSummaryClient(base string, garageID int64, client *http.Client) *summaryClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &summaryClient{
		base:     strings.TrimRight(base, "/"),
		garageID: garageID,
		http:     client,
	}
}

func (s *summaryClient) Fetch(ctx context.Context) (model.TodaySummary, error) {
	q := url.Values{"garageId": {strconv.FormatInt(s.garageID, 10)}}
	endpoint := s.base + "/api/analytics/today-summary?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.TodaySummary{}, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return model.TodaySummary{}, fmt.Errorf("fetch today summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		return model.TodaySummary{}, fmt.Errorf("fetch today summary: %s: %s", resp.Status, body.Error)
	}

	var summary model.TodaySummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return model.TodaySummary{}, fmt.Errorf("decode today summary: %w", err)
	}
	return summary, nil
}

// money renders an amount in cents.
func money(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(cents/100), cents%100)
}

func formatSummary(s model.TodaySummary) string {
	return fmt.Sprintf("Today: [::b]%d[::-] bookings  [::b]%s[::-] revenue  [::b]%d[::-] pending",
		s.Bookings, money(s.Revenue), s.PendingActions)
}
