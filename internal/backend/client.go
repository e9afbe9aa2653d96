// Package backend is the HTTP client for the repair-request service. It owns
// the wire contract: bearer credential attach, JSON bodies with camelCase
// fields, and normalization of error responses into APIError.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/remontpro/frontdesk/internal/lifecycle"
	"github.com/remontpro/frontdesk/internal/models"
)

type Client struct {
	BaseURL string
	Client  *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Login exchanges form-encoded credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (models.Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return models.Token{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token models.Token
	if err := c.send(req, &token); err != nil {
		return models.Token{}, err
	}
	return token, nil
}

// Me resolves the identity behind a credential.
func (c *Client) Me(ctx context.Context, token string) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &user)
	return user, err
}

// CreateRequest submits the public intake form. No credential is attached.
func (c *Client) CreateRequest(ctx context.Context, in models.RequestCreate) (models.RepairRequest, error) {
	var req models.RepairRequest
	err := c.do(ctx, http.MethodPost, "/requests", "", in, &req)
	return req, err
}

// ListRequests returns the full collection, optionally constrained by status.
// Dispatcher only.
func (c *Client) ListRequests(ctx context.Context, token string, status lifecycle.Status) ([]models.RepairRequest, error) {
	path := "/requests"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var items []models.RepairRequest
	err := c.do(ctx, http.MethodGet, path, token, nil, &items)
	return items, err
}

// ListMasters returns the assignable master roster. Dispatcher only.
func (c *Client) ListMasters(ctx context.Context, token string) ([]models.MasterOption, error) {
	var items []models.MasterOption
	err := c.do(ctx, http.MethodGet, "/users/masters", token, nil, &items)
	return items, err
}

// MasterRequests returns the requests assigned to the caller, filtered
// server-side.
func (c *Client) MasterRequests(ctx context.Context, token string) ([]models.RepairRequest, error) {
	var items []models.RepairRequest
	err := c.do(ctx, http.MethodGet, "/master/requests", token, nil, &items)
	return items, err
}

func (c *Client) Assign(ctx context.Context, token string, id, masterID int64) (models.RepairRequest, error) {
	body := struct {
		MasterID int64 `json:"masterId"`
	}{MasterID: masterID}
	var req models.RepairRequest
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/requests/%d/assign", id), token, body, &req)
	return req, err
}

func (c *Client) Cancel(ctx context.Context, token string, id int64) (models.RepairRequest, error) {
	var req models.RepairRequest
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/requests/%d/cancel", id), token, nil, &req)
	return req, err
}

func (c *Client) Take(ctx context.Context, token string, id int64) (models.RepairRequest, error) {
	var req models.RepairRequest
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/requests/%d/take", id), token, nil, &req)
	return req, err
}

func (c *Client) Done(ctx context.Context, token string, id int64) (models.RepairRequest, error) {
	var req models.RepairRequest
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/requests/%d/done", id), token, nil, &req)
	return req, err
}

// History fetches the audit trail for a request. The audit data is one
// logical resource exposed under two role-scoped paths, so the path is
// chosen by caller role.
func (c *Client) History(ctx context.Context, token string, role lifecycle.Role, id int64) ([]models.AuditEvent, error) {
	path := fmt.Sprintf("/requests/%d/history", id)
	if role == lifecycle.RoleMaster {
		path = fmt.Sprintf("/master/requests/%d/history", id)
	}
	var items []models.AuditEvent
	err := c.do(ctx, http.MethodGet, path, token, nil, &items)
	return items, err
}

// Ping probes backend reachability for the front end's own health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", "", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("backend: decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
