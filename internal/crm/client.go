// Package crm is the client for the remote CRM REST service. It is the only
// package that talks to the network, and the only one that knows about the
// CRM's loose JSON shapes: every response is normalized into internal/domain
// types before it leaves this package.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ignite/crm-dashboard/internal/domain"
	"github.com/ignite/crm-dashboard/internal/pkg/httpretry"
	"github.com/ignite/crm-dashboard/internal/pkg/logger"
)

// Config holds the settings needed to construct a Client.
type Config struct {
	BaseURL    string
	APIKey     string
	ClientID   string
	Timeout    time.Duration
	MaxRetries int
}

// Client is the CRM API client.
//
// Read calls (fetches) go through a retrying client because they are
// idempotent. Mutations are single-attempt: a failed upload or delete is
// surfaced to the user for a manual retry, never repeated automatically.
type Client struct {
	baseURL  string
	apiKey   string
	clientID string
	reader   httpretry.HTTPDoer
	writer   httpretry.HTTPDoer
}

// APIError is a non-2xx response from the CRM, carrying the server-reported
// message so handlers can surface it verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crm: API error (status %d): %s", e.StatusCode, e.Message)
}

// NewClient creates a new CRM API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	base := &http.Client{Timeout: timeout}
	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		clientID: cfg.ClientID,
		reader:   httpretry.NewRetryClient(base, cfg.MaxRetries),
		writer:   base,
	}
}

// SetHTTPClient replaces both underlying HTTP clients (useful for testing).
func (c *Client) SetHTTPClient(doer httpretry.HTTPDoer) {
	c.reader = doer
	c.writer = doer
}

// doRequest performs an authenticated request and returns the raw body.
// Non-2xx responses become *APIError with the server's error message.
func (c *Client) doRequest(ctx context.Context, doer httpretry.HTTPDoer, method, endpoint string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Client-ID", c.clientID)

	resp, err := doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: serverMessage(respBody)}
	}

	return respBody, nil
}

// serverMessage pulls the error text out of a CRM error body, falling back
// to the raw body when it is not the usual {"error": "..."} envelope.
func serverMessage(body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if m := firstNonEmpty(envelope.Error, envelope.Message); m != "" {
			return m
		}
	}
	return string(body)
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.doRequest(ctx, c.reader, http.MethodGet, endpoint, nil)
}

// ========== Data files & contacts ==========

// GetDataFiles retrieves all contact files for the configured client.
func (c *Client) GetDataFiles(ctx context.Context) ([]domain.DataFile, error) {
	body, err := c.get(ctx, fmt.Sprintf("/clients/%s/datafiles", url.PathEscape(c.clientID)))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []dataFilePayload `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse datafiles response: %w", err)
	}

	files := make([]domain.DataFile, 0, len(resp.Data))
	for _, p := range resp.Data {
		files = append(files, p.normalize())
	}
	return files, nil
}

// GetContacts retrieves the contacts of one data file.
func (c *Client) GetContacts(ctx context.Context, dataFileID string) ([]domain.Contact, error) {
	body, err := c.get(ctx, fmt.Sprintf("/clients/%s/datafiles/%s/contacts",
		url.PathEscape(c.clientID), url.PathEscape(dataFileID)))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []contactPayload `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse contacts response: %w", err)
	}

	contacts := make([]domain.Contact, 0, len(resp.Data))
	for _, p := range resp.Data {
		contacts = append(contacts, p.normalize())
	}
	return contacts, nil
}

// UploadContacts submits one import batch. The whole batch is one request;
// a failure uploads nothing and the caller decides whether to retry.
func (c *Client) UploadContacts(ctx context.Context, batch ContactBatch) (*UploadResult, error) {
	endpoint := fmt.Sprintf("/clients/%s/datafiles", url.PathEscape(c.clientID))
	body, err := c.doRequest(ctx, c.writer, http.MethodPost, endpoint, batch)
	if err != nil {
		return nil, err
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}
	return &result, nil
}

// ========== Segments ==========

// GetSegments retrieves all segments for the configured client.
func (c *Client) GetSegments(ctx context.Context) ([]domain.Segment, error) {
	body, err := c.get(ctx, fmt.Sprintf("/clients/%s/segments", url.PathEscape(c.clientID)))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []segmentPayload `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse segments response: %w", err)
	}

	segments := make([]domain.Segment, 0, len(resp.Data))
	for _, p := range resp.Data {
		segments = append(segments, p.normalize())
	}
	return segments, nil
}

// CreateSegment creates a segment, optionally seeding it with contacts.
func (c *Client) CreateSegment(ctx context.Context, name string, contactIDs []string) (*domain.Segment, error) {
	endpoint := fmt.Sprintf("/clients/%s/segments", url.PathEscape(c.clientID))
	payload := map[string]interface{}{"name": name}
	if len(contactIDs) > 0 {
		payload["contact_ids"] = contactIDs
	}

	body, err := c.doRequest(ctx, c.writer, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var p segmentPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to parse segment response: %w", err)
	}
	seg := p.normalize()
	return &seg, nil
}

// AddContactsToSegment appends contacts to an existing segment.
func (c *Client) AddContactsToSegment(ctx context.Context, segmentID string, contactIDs []string) error {
	endpoint := fmt.Sprintf("/clients/%s/segments/%s/contacts",
		url.PathEscape(c.clientID), url.PathEscape(segmentID))
	_, err := c.doRequest(ctx, c.writer, http.MethodPost, endpoint,
		map[string]interface{}{"contact_ids": contactIDs})
	return err
}

// ========== Tracking & logs ==========

func logQueryParams(q LogQuery) string {
	params := url.Values{}
	if q.DataFileID != "" {
		params.Set("data_file_id", q.DataFileID)
	}
	if q.SegmentID != "" {
		params.Set("segment_id", q.SegmentID)
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

// GetTrackingEvents retrieves open/click events for a data file or segment.
func (c *Client) GetTrackingEvents(ctx context.Context, q LogQuery) ([]domain.TrackingEvent, error) {
	body, err := c.get(ctx, fmt.Sprintf("/clients/%s/tracking%s",
		url.PathEscape(c.clientID), logQueryParams(q)))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []trackingEventPayload `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse tracking response: %w", err)
	}

	events := make([]domain.TrackingEvent, 0, len(resp.Data))
	for _, p := range resp.Data {
		e, ok := p.normalize()
		if !ok {
			logger.Debug("crm: dropping tracking event record",
				"id", p.ID, "event_type", firstNonEmpty(p.EventType, p.Type),
				"timestamp", firstNonEmpty(p.Timestamp, p.CreatedAt))
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

// GetEmailLogs retrieves send logs for a data file or segment.
func (c *Client) GetEmailLogs(ctx context.Context, q LogQuery) ([]domain.SendLogRecord, error) {
	body, err := c.get(ctx, fmt.Sprintf("/clients/%s/emaillogs%s",
		url.PathEscape(c.clientID), logQueryParams(q)))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []emailLogPayload `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse email logs response: %w", err)
	}

	logs := make([]domain.SendLogRecord, 0, len(resp.Data))
	for _, p := range resp.Data {
		l, ok := p.normalize()
		if !ok {
			logger.Debug("crm: dropping email log record",
				"id", p.ID, "sent_at", firstNonEmpty(p.SentAt, p.CreatedAt))
			continue
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// GetMissingLogContacts retrieves contacts with no send log in the window.
func (c *Client) GetMissingLogContacts(ctx context.Context, from, to time.Time) ([]domain.MissingLogContact, error) {
	params := url.Values{}
	params.Set("from", from.UTC().Format(time.DateOnly))
	params.Set("to", to.UTC().Format(time.DateOnly))

	body, err := c.get(ctx, fmt.Sprintf("/clients/%s/missing-logs?%s",
		url.PathEscape(c.clientID), params.Encode()))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []domain.MissingLogContact `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse missing-logs response: %w", err)
	}
	return resp.Data, nil
}

// DeleteTrackingContact removes one contact's tracking record.
func (c *Client) DeleteTrackingContact(ctx context.Context, contactID string) error {
	endpoint := fmt.Sprintf("/clients/%s/tracking/contacts/%s",
		url.PathEscape(c.clientID), url.PathEscape(contactID))
	_, err := c.doRequest(ctx, c.writer, http.MethodDelete, endpoint, nil)
	return err
}
