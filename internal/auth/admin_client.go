package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUserNotFound is returned by FindUserIDByEmail.
var ErrUserNotFound = errors.New("user not found")

// AdminClient calls the Supabase Admin API. cmd/seed uses it to provision
// the demo account; request handling never does.
type AdminClient struct {
	supabaseURL string
	serviceKey  string
	httpClient  *http.Client
}

// NewAdminClient creates a new Supabase Admin API client.
// Requires the service role key (SUPABASE_KEY) for elevated permissions.
func NewAdminClient(supabaseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		supabaseURL: supabaseURL,
		serviceKey:  serviceKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateUserRequest is the payload for creating a new user
type CreateUserRequest struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// AdminUser is a user as returned by the Admin API
type AdminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type listUsersResponse struct {
	Users []AdminUser `json:"users"`
}

// EnsureUser returns the id of the user with email, creating a confirmed
// account with password when none exists.
func (c *AdminClient) EnsureUser(ctx context.Context, email, password string) (string, error) {
	id, err := c.FindUserIDByEmail(ctx, email)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return "", err
	}
	return c.CreateUser(ctx, email, password)
}

// FindUserIDByEmail searches the first page of users for email.
func (c *AdminClient) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	var list listUsersResponse
	if err := c.do(ctx, http.MethodGet, "/auth/v1/admin/users", nil, &list); err != nil {
		return "", fmt.Errorf("list users: %w", err)
	}

	for _, user := range list.Users {
		if user.Email == email {
			return user.ID, nil
		}
	}
	return "", ErrUserNotFound
}

// CreateUser creates a confirmed user and returns its id.
func (c *AdminClient) CreateUser(ctx context.Context, email, password string) (string, error) {
	payload := CreateUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
	}

	var created AdminUser
	if err := c.do(ctx, http.MethodPost, "/auth/v1/admin/users", payload, &created); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return created.ID, nil
}

// DeleteUserByEmail deletes the user with email. Missing users are not an error.
func (c *AdminClient) DeleteUserByEmail(ctx context.Context, email string) error {
	id, err := c.FindUserIDByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := c.do(ctx, http.MethodDelete, "/auth/v1/admin/users/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (c *AdminClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.supabaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
