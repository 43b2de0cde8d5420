package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/spcet/lostfound/internal/model"
)

type loginResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
	Role  string          `json:"role"`
}

func (c *Client) login(ctx context.Context, path string, body any) error {
	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return err
	}
	c.session.Set(resp.Token, resp.Role, resp.User)
	return nil
}

// StudentLogin signs in with roll number and date of birth.
func (c *Client) StudentLogin(ctx context.Context, rollNumber, dob string) (*model.Student, error) {
	if strings.TrimSpace(rollNumber) == "" || strings.TrimSpace(dob) == "" {
		return nil, &ValidationError{Field: "roll_number", Message: "roll number and date of birth are required"}
	}
	err := c.login(ctx, "/auth/student/login", map[string]string{"roll_number": rollNumber, "dob": dob})
	if err != nil {
		return nil, err
	}
	var s model.Student
	if err := c.session.User(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// AdminLogin signs in with username and password.
func (c *Client) AdminLogin(ctx context.Context, username, password string) (*model.Admin, error) {
	if username == "" || password == "" {
		return nil, &ValidationError{Field: "username", Message: "username and password are required"}
	}
	err := c.login(ctx, "/auth/admin/login", map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, err
	}
	var a model.Admin
	if err := c.session.User(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Me refreshes the session's user record and returns the role.
func (c *Client) Me(ctx context.Context) (string, error) {
	var resp struct {
		User json.RawMessage `json:"user"`
		Role string          `json:"role"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return "", err
	}
	c.session.Set(c.session.Token(), resp.Role, resp.User)
	return resp.Role, nil
}

// Logout revokes the token on the server and clears the session.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.session.Invalidate()
	return err
}
