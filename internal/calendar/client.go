package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"clinic_sync_backend/platform/config"
	"clinic_sync_backend/platform/logger"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
)

const maxFetchAttempts = 4

// Client fetches events from the external calendar listing service.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewClient constructs a calendar client. The limiter bounds the request
// rate across all calendars in a run; the service throttles aggressively.
func NewClient(cfg config.CalendarConfig, log *logger.Logger) *Client {
	rps := cfg.GetCalendarRequestsPerSecond()
	if rps <= 0 {
		rps = 5
	}

	return &Client{
		baseURL: cfg.GetCalendarBaseURL(),
		apiKey:  cfg.GetCalendarAPIKey(),
		client:  &http.Client{Timeout: cfg.GetCalendarRequestTimeout()},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		log:     log,
	}
}

// ListEvents returns every event on one calendar within [from, to], following
// continuation tokens until the listing is exhausted.
func (c *Client) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error) {
	var events []Event
	pageToken := ""

	for {
		page, err := c.listPage(ctx, calendarID, from, to, pageToken)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			start, ok := parseEventStart(item.Start)
			if !ok {
				continue
			}
			events = append(events, Event{
				ID:          item.ID,
				CalendarID:  calendarID,
				Start:       start,
				Summary:     item.Summary,
				Description: item.Description,
			})
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			return events, nil
		}
	}
}

func (c *Client) listPage(ctx context.Context, calendarID string, from, to time.Time, pageToken string) (*eventList, error) {
	backoff := retry.WithMaxRetries(maxFetchAttempts-1, retry.NewFibonacci(500*time.Millisecond))

	var page *eventList
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		result, err := c.doListRequest(ctx, calendarID, from, to, pageToken)
		if err != nil {
			return err
		}
		page = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	return page, nil
}

func (c *Client) doListRequest(ctx context.Context, calendarID string, from, to time.Time, pageToken string) (*eventList, error) {
	params := url.Values{}
	params.Add("timeMin", from.Format(time.RFC3339))
	params.Add("timeMax", to.Format(time.RFC3339))
	params.Add("singleEvents", "true")
	params.Add("orderBy", "startTime")
	if pageToken != "" {
		params.Add("pageToken", pageToken)
	}

	reqURL := fmt.Sprintf("%s/calendars/%s/events?%s", c.baseURL, url.PathEscape(calendarID), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, retry.RetryableError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return nil, retry.RetryableError(fmt.Errorf("calendar service status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar service status %d", resp.StatusCode)
	}

	var page eventList
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, err
	}

	return &page, nil
}

// parseEventStart extracts a timezone-naive start time. Timed events carry an
// RFC3339 dateTime; all-day events carry a bare date at midnight.
func parseEventStart(start eventStart) (time.Time, bool) {
	if start.DateTime != "" {
		t, err := time.Parse(time.RFC3339, start.DateTime)
		if err != nil {
			return time.Time{}, false
		}
		return stripZone(t), true
	}
	if start.Date != "" {
		t, err := time.Parse("2006-01-02", start.Date)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// stripZone drops the zone while keeping wall-clock components, so that an
// event at 09:10-05:00 buckets and compares as 09:10.
func stripZone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
