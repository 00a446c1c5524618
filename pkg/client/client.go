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

	"github.com/parkwatch/parkwatch/pkg/domain"
)

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the payload returned by a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
}

// CreateTicketRequest is the payload for uploading a new ticket.
// Date and Time must already be converted to UTC.
type CreateTicketRequest struct {
	VehicleNumber string `json:"vehicle_number"`
	Location      string `json:"location"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	ImageBase64   string `json:"image_base64,omitempty"`
}

// UpdateTicketRequest is the payload for updating an existing ticket.
// Set ImageBase64 to replace the photo, or RemoveImage to drop it.
type UpdateTicketRequest struct {
	VehicleNumber string `json:"vehicle_number,omitempty"`
	Location      string `json:"location,omitempty"`
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	ImageBase64   string `json:"image_base64,omitempty"`
	RemoveImage   bool   `json:"remove_image,omitempty"`
}

// TicketFilter narrows a ticket search. Zero-value fields are omitted.
// Time accepts HH:MM, a bare hour ("11"), or an hour prefix ("11:").
type TicketFilter struct {
	VehicleNumber string
	Location      string
	Date          string
	Time          string
}

// Client is the parkwatch API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. token may be empty for the
// pre-authentication endpoints.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.post(ctx, "/auth/register", req, nil); err != nil {
		return fmt.Errorf("client.Register: %w", err)
	}
	return nil
}

// Login exchanges credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/auth/login", body, &resp); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &resp, nil
}

// RegisterPushToken reconciles the push delivery token with the backend.
// The backend upserts, so re-posting the same token is safe.
func (c *Client) RegisterPushToken(ctx context.Context, deliveryToken string) error {
	body := map[string]string{"fcm_token": deliveryToken}
	if err := c.post(ctx, "/auth/register_token", body, nil); err != nil {
		return fmt.Errorf("client.RegisterPushToken: %w", err)
	}
	return nil
}

// CreateTicket uploads a new ticket and returns its backend-assigned ID.
func (c *Client) CreateTicket(ctx context.Context, req CreateTicketRequest) (int, error) {
	var resp struct {
		ID int `json:"id"`
	}
	if err := c.post(ctx, "/ticket", req, &resp); err != nil {
		return 0, fmt.Errorf("client.CreateTicket: %w", err)
	}
	return resp.ID, nil
}

// SearchTickets fetches the caller's tickets matching the filter.
func (c *Client) SearchTickets(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	params := url.Values{}
	if filter.VehicleNumber != "" {
		params.Set("vehicle_number", filter.VehicleNumber)
	}
	if filter.Location != "" {
		params.Set("location", filter.Location)
	}
	if filter.Date != "" {
		params.Set("date", filter.Date)
	}
	if filter.Time != "" {
		params.Set("time", filter.Time)
	}

	path := "/tickets"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var tickets []domain.Ticket
	if err := c.get(ctx, path, &tickets); err != nil {
		return nil, fmt.Errorf("client.SearchTickets: %w", err)
	}
	return tickets, nil
}

// GetTicket fetches a single ticket by ID. The response omits the image
// body; use TicketImage for that.
func (c *Client) GetTicket(ctx context.Context, id int) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := c.get(ctx, "/ticket/"+strconv.Itoa(id), &ticket); err != nil {
		return nil, fmt.Errorf("client.GetTicket: %w", err)
	}
	return &ticket, nil
}

// UpdateTicket updates an existing ticket.
func (c *Client) UpdateTicket(ctx context.Context, id int, req UpdateTicketRequest) error {
	if err := c.doRequest(ctx, http.MethodPut, "/ticket/"+strconv.Itoa(id), req, nil); err != nil {
		return fmt.Errorf("client.UpdateTicket: %w", err)
	}
	return nil
}

// DeleteTicket deletes a ticket by ID.
func (c *Client) DeleteTicket(ctx context.Context, id int) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/ticket/"+strconv.Itoa(id), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteTicket: %w", err)
	}
	return nil
}

// TicketImage fetches a ticket's photo as a base64 string.
func (c *Client) TicketImage(ctx context.Context, id int) (string, error) {
	var resp struct {
		ImageBase64 string `json:"image_base64"`
	}
	if err := c.get(ctx, "/ticket/"+strconv.Itoa(id)+"/image", &resp); err != nil {
		return "", fmt.Errorf("client.TicketImage: %w", err)
	}
	return resp.ImageBase64, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Msg != "" {
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Msg}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}
