// Package api maps the uptime backend's HTTP surface onto typed calls.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/angeloszaimis/uptime-client/internal/checker"
)

// Doer is the transport the API is built on.
type Doer interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

type CreateCheckerRequest struct {
	Site   string  `json:"site"`
	Period float64 `json:"period"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type Client struct {
	doer Doer
}

func New(doer Doer) *Client {
	return &Client{doer: doer}
}

func (c *Client) ListCheckers(ctx context.Context) ([]checker.Checker, error) {
	var out []checker.Checker
	if err := c.doer.Do(ctx, http.MethodGet, "/checkers", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []checker.Checker{}
	}
	return out, nil
}

func (c *Client) CheckerLogs(ctx context.Context, id int) ([]checker.LogEntry, error) {
	var out []checker.LogEntry
	if err := c.doer.Do(ctx, http.MethodGet, fmt.Sprintf("/checker/%d", id), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []checker.LogEntry{}
	}
	return out, nil
}

func (c *Client) CreateChecker(ctx context.Context, req CreateCheckerRequest) (*checker.Checker, error) {
	var out checker.Checker
	if err := c.doer.Do(ctx, http.MethodPost, "/checkers", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, creds Credentials) (AuthResponse, error) {
	var out AuthResponse
	err := c.doer.Do(ctx, http.MethodPost, "/register", creds, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResponse, error) {
	var out AuthResponse
	err := c.doer.Do(ctx, http.MethodPost, "/login", creds, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doer.Do(ctx, http.MethodPost, "/users/logout", nil, nil)
}
