package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"calendar/pkg/model"
)

const (
	defaultHTTPTimeout   = 10 * time.Second
	headerIdempotencyKey = "Idempotency-Key"
)

// HttpClient is a thin JSON client for the calendar API.
type HttpClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewHttpClient(baseURL string) *HttpClient {
	return &HttpClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

// Envelope is the success body written by every calendar endpoint.
type Envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type Page[T any] struct {
	Data       []T   `json:"data"`
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

// Upcoming mirrors the wire form of an upcoming appointment.
type Upcoming struct {
	AppointmentID string `json:"appointment_id"`
	OwnerID       string `json:"owner_id"`
	InviteeID     string `json:"invitee_id"`
	InviteeName   string `json:"invitee_name"`
	InviteeEmail  string `json:"invitee_email"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

func (c *HttpClient) CreateUser(ctx context.Context, user model.User) (*Response, error) {
	return c.request(ctx, http.MethodPost, "/api/v1/users", user, nil)
}

func (c *HttpClient) SetupAvailability(ctx context.Context, req model.AvailabilitySetupRequest) (*Response, error) {
	return c.request(ctx, http.MethodPost, "/api/v1/availability/setup", req, nil)
}

func (c *HttpClient) UpdateAvailability(ctx context.Context, req model.AvailabilitySetupRequest) (*Response, error) {
	return c.request(ctx, http.MethodPut, "/api/v1/availability/setup", req, nil)
}

func (c *HttpClient) AvailableSlots(ctx context.Context, ownerID string, date time.Time) ([]model.Slot, *Response, error) {
	path := fmt.Sprintf("/api/v1/availability/%s/slots?date=%s",
		url.PathEscape(ownerID), date.Format(model.DateLayout))
	resp, err := c.request(ctx, http.MethodGet, path, nil, nil)
	if err != nil || resp.StatusCode != http.StatusOK {
		return nil, resp, err
	}
	var env Envelope[[]model.Slot]
	if err := resp.DecodeJSON(&env); err != nil {
		return nil, resp, fmt.Errorf("failed to decode slots: %w", err)
	}
	return env.Data, resp, nil
}

// Book sends a booking under idempotencyKey. The result is nil for non-2xx answers.
func (c *HttpClient) Book(ctx context.Context, idempotencyKey string, req model.BookAppointmentRequest) (*model.BookResult, *Response, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers[headerIdempotencyKey] = idempotencyKey
	}
	resp, err := c.request(ctx, http.MethodPost, "/api/v1/appointments/book", req, headers)
	if err != nil || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, resp, err
	}
	var env Envelope[model.BookResult]
	if err := resp.DecodeJSON(&env); err != nil {
		return nil, resp, fmt.Errorf("failed to decode booking: %w", err)
	}
	return &env.Data, resp, nil
}

func (c *HttpClient) UpcomingAppointments(ctx context.Context, ownerID string, limit int, offset int64) (*Page[Upcoming], *Response, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.FormatInt(offset, 10))
	path := fmt.Sprintf("/api/v1/appointments/owner/%s/upcoming?%s", url.PathEscape(ownerID), query.Encode())

	resp, err := c.request(ctx, http.MethodGet, path, nil, nil)
	if err != nil || resp.StatusCode != http.StatusOK {
		return nil, resp, err
	}
	var page Page[Upcoming]
	if err := resp.DecodeJSON(&page); err != nil {
		return nil, resp, fmt.Errorf("failed to decode upcoming appointments: %w", err)
	}
	return &page, resp, nil
}

func (c *HttpClient) request(ctx context.Context, method, path string, body any, headers map[string]string) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		Response: resp,
		Body:     respBody,
	}, nil
}

func (c *HttpClient) WaitForHealthy(ctx context.Context, maxWait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		resp, err := c.request(ctx, http.MethodGet, "/health", nil, nil)
		if err == nil && resp.StatusCode == http.StatusOK {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("service did not become healthy within %v", maxWait)
		case <-ticker.C:
		}
	}
}

func GetErrorMessage(resp *Response) string {
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := resp.DecodeJSON(&errResp); err != nil {
		return fmt.Sprintf("failed to unmarshal error: %v", err)
	}

	if errResp.Message != "" {
		return errResp.Message
	}
	if errResp.Error != "" {
		return errResp.Error
	}
	return errResp.Code
}
