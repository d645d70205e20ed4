package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"

	"github.com/privcal/calagent/internal/config"
	"github.com/privcal/calagent/internal/logging"
)

// Client issues authenticated requests to the calendar API proxy.
//
// The proxy fronts the calendar backend and speaks its v3 wire format
// under /calendar/v3/..., so responses decode directly into the backend's
// published types. The client is stateless across calls apart from the
// reusable connection pool; it never retries on its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a proxy client from the process configuration.
// The bearer credential is attached by an oauth2 transport wrapping the
// default connection pool.
func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.ProxyAPIKey,
		TokenType:   "Bearer",
	})
	httpClient := oauth2.NewClient(context.Background(), tokenSource)
	httpClient.Timeout = cfg.ProxyTimeout

	return &Client{
		baseURL:    strings.TrimRight(cfg.ProxyURL, "/"),
		httpClient: httpClient,
		logger:     logging.WithComponent(logger, "proxy"),
	}
}

// do issues one request and maps the outcome to the error taxonomy.
// Any 2xx response returns the raw body; everything else returns exactly
// one typed error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("proxy request failed",
			logging.Operation(method+" "+path),
			logging.Err(err))
		return nil, 0, &Error{Connectivity: true, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &Error{Connectivity: true, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("proxy request completed",
		logging.Operation(method+" "+path),
		logging.HTTPStatus(resp.StatusCode),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, resp.StatusCode, nil
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, resp.StatusCode, &AuthError{Message: parseErrorMessage(data, "Invalid or missing API key")}
	case http.StatusForbidden:
		return nil, resp.StatusCode, parseForbidden(data)
	case http.StatusNotFound:
		return nil, resp.StatusCode, &NotFoundError{Message: parseErrorMessage(data, "Resource not found")}
	case http.StatusTooManyRequests:
		return nil, resp.StatusCode, &RateLimitError{
			Message:    parseErrorMessage(data, "Too many requests"),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	default:
		return nil, resp.StatusCode, &Error{
			StatusCode: resp.StatusCode,
			Body:       truncateBody(data),
		}
	}
}

// parseRetryAfter parses a Retry-After header given in seconds. An
// absent or malformed header yields zero.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// ListCalendarsOptions narrows a calendar list call.
type ListCalendarsOptions struct {
	MaxResults  int64
	PageToken   string
	ShowDeleted bool
	ShowHidden  bool
}

// ListCalendars lists all calendars visible through the proxy.
func (c *Client) ListCalendars(ctx context.Context, opts ListCalendarsOptions) (*calendar.CalendarList, error) {
	query := url.Values{}
	if opts.MaxResults > 0 {
		query.Set("maxResults", strconv.FormatInt(opts.MaxResults, 10))
	}
	if opts.PageToken != "" {
		query.Set("pageToken", opts.PageToken)
	}
	if opts.ShowDeleted {
		query.Set("showDeleted", "true")
	}
	if opts.ShowHidden {
		query.Set("showHidden", "true")
	}

	data, _, err := c.do(ctx, http.MethodGet, "/calendar/v3/users/me/calendarList", query, nil)
	if err != nil {
		return nil, err
	}

	var list calendar.CalendarList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode calendar list: %w", err)
	}
	return &list, nil
}

// GetCalendar retrieves metadata for a specific calendar.
func (c *Client) GetCalendar(ctx context.Context, calendarID string) (*calendar.Calendar, error) {
	path := "/calendar/v3/calendars/" + url.PathEscape(calendarID)

	data, _, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var cal calendar.Calendar
	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("failed to decode calendar: %w", err)
	}
	return &cal, nil
}

// ListEventsOptions narrows an event list call.
type ListEventsOptions struct {
	MaxResults   int64
	PageToken    string
	TimeMin      time.Time
	TimeMax      time.Time
	Query        string
	OrderBy      string
	SingleEvents bool
	ShowDeleted  bool
	UpdatedMin   time.Time
}

// ListEvents lists events in a calendar.
func (c *Client) ListEvents(ctx context.Context, calendarID string, opts ListEventsOptions) (*calendar.Events, error) {
	path := "/calendar/v3/calendars/" + url.PathEscape(calendarID) + "/events"

	query := url.Values{}
	query.Set("singleEvents", strconv.FormatBool(opts.SingleEvents))
	if opts.MaxResults > 0 {
		query.Set("maxResults", strconv.FormatInt(opts.MaxResults, 10))
	}
	if opts.PageToken != "" {
		query.Set("pageToken", opts.PageToken)
	}
	if !opts.TimeMin.IsZero() {
		query.Set("timeMin", opts.TimeMin.Format(time.RFC3339))
	}
	if !opts.TimeMax.IsZero() {
		query.Set("timeMax", opts.TimeMax.Format(time.RFC3339))
	}
	if opts.Query != "" {
		query.Set("q", opts.Query)
	}
	if opts.OrderBy != "" {
		query.Set("orderBy", opts.OrderBy)
	}
	if opts.ShowDeleted {
		query.Set("showDeleted", "true")
	}
	if !opts.UpdatedMin.IsZero() {
		query.Set("updatedMin", opts.UpdatedMin.Format(time.RFC3339))
	}

	data, _, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var events calendar.Events
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return &events, nil
}

// GetEvent retrieves a specific event by id. timeZone optionally
// localizes the returned start and end times.
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID, timeZone string) (*calendar.Event, error) {
	path := "/calendar/v3/calendars/" + url.PathEscape(calendarID) + "/events/" + url.PathEscape(eventID)

	var query url.Values
	if timeZone != "" {
		query = url.Values{"timeZone": []string{timeZone}}
	}

	data, _, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var event calendar.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return &event, nil
}

// WriteOptions apply to mutating event calls.
type WriteOptions struct {
	// SendUpdates controls attendee notification: "all", "externalOnly"
	// or "none". Empty leaves the backend default.
	SendUpdates string

	// ConferenceDataVersion must be 1 for the backend to materialize
	// conference create requests.
	ConferenceDataVersion int64
}

func (o WriteOptions) query() url.Values {
	query := url.Values{}
	if o.SendUpdates != "" {
		query.Set("sendUpdates", o.SendUpdates)
	}
	if o.ConferenceDataVersion > 0 {
		query.Set("conferenceDataVersion", strconv.FormatInt(o.ConferenceDataVersion, 10))
	}
	return query
}

// CreateEvent creates a new event in a calendar.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, event *calendar.Event, opts WriteOptions) (*calendar.Event, error) {
	path := "/calendar/v3/calendars/" + url.PathEscape(calendarID) + "/events"

	data, _, err := c.do(ctx, http.MethodPost, path, opts.query(), event)
	if err != nil {
		return nil, err
	}

	var created calendar.Event
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("failed to decode created event: %w", err)
	}
	return &created, nil
}

// UpdateEvent replaces an event in full. The body is passed through to
// the backend untouched, so callers own field-level semantics.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, body map[string]any, opts WriteOptions) (*calendar.Event, error) {
	path := "/calendar/v3/calendars/" + url.PathEscape(calendarID) + "/events/" + url.PathEscape(eventID)

	data, _, err := c.do(ctx, http.MethodPut, path, opts.query(), body)
	if err != nil {
		return nil, err
	}

	var updated calendar.Event
	if err := json.Unmarshal(data, &updated); err != nil {
		return nil, fmt.Errorf("failed to decode updated event: %w", err)
	}
	return &updated, nil
}

// PatchEvent applies a partial update to an event. Only the fields
// present in body are changed.
func (c *Client) PatchEvent(ctx context.Context, calendarID, eventID string, body map[string]any, opts WriteOptions) (*calendar.Event, error) {
	path := "/calendar/v3/calendars/" + url.PathEscape(calendarID) + "/events/" + url.PathEscape(eventID)

	data, _, err := c.do(ctx, http.MethodPatch, path, opts.query(), body)
	if err != nil {
		return nil, err
	}

	var patched calendar.Event
	if err := json.Unmarshal(data, &patched); err != nil {
		return nil, fmt.Errorf("failed to decode patched event: %w", err)
	}
	return &patched, nil
}

// DeleteEvent deletes an event. The backend answers 204 with an empty
// body on success. The proxy may block the deletion pending
// confirmation, which surfaces as a ForbiddenError with
// ConfirmationRequired set.
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string, opts WriteOptions) error {
	path := "/calendar/v3/calendars/" + url.PathEscape(calendarID) + "/events/" + url.PathEscape(eventID)

	query := url.Values{}
	if opts.SendUpdates != "" {
		query.Set("sendUpdates", opts.SendUpdates)
	}

	_, _, err := c.do(ctx, http.MethodDelete, path, query, nil)
	return err
}
