package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/estante-app/estante/core"
)

var validate = validator.New()

// Client talks to the estante backend over HTTP. It is stateless: the
// bearer token is passed in by the session layer on every call that
// needs one.
type Client struct {
	baseURL  string
	http     *http.Client
	deviceID string
	log      zerolog.Logger
}

var _ core.AuthAPI = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithDeviceID sets the stable device identifier sent with every
// request as X-Device-ID.
func WithDeviceID(id string) Option {
	return func(c *Client) { c.deviceID = id }
}

// WithClientLogger attaches a logger.
func WithClientLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type userPayload struct {
	ID          int64     `json:"id"`
	Role        core.Role `json:"role"`
	ProfileName string    `json:"profileName"`
	ProfilePic  string    `json:"profilePic"`
}

type credentialsResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

func (p userPayload) profile() core.UserProfile {
	return core.UserProfile{
		ID:          p.ID,
		Role:        p.Role,
		DisplayName: p.ProfileName,
		AvatarURL:   p.ProfilePic,
	}
}

// Login exchanges email and password for a token and profile.
func (c *Client) Login(ctx context.Context, email, password string) (*core.Credentials, error) {
	body := map[string]string{"email": email, "password": password}

	resp, err := c.do(ctx, http.MethodPost, "/auth/login", "", body)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, core.ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("login returned %s", resp.Status)
	}

	var payload credentialsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	return &core.Credentials{Token: payload.Token, User: payload.User.profile()}, nil
}

// Register creates an account and returns its first credential set.
func (c *Client) Register(ctx context.Context, input core.RegisterInput) (*core.Credentials, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid registration input: %w", err)
	}

	body := map[string]string{
		"name":     input.Name,
		"email":    input.Email,
		"password": input.Password,
	}

	resp, err := c.do(ctx, http.MethodPost, "/auth/register", "", body)
	if err != nil {
		return nil, fmt.Errorf("register request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("register returned %s", resp.Status)
	}

	var payload credentialsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode register response: %w", err)
	}
	return &core.Credentials{Token: payload.Token, User: payload.User.profile()}, nil
}

// Validate confirms the token is still accepted by the server. Any
// non-2xx answer means the token is no longer valid.
func (c *Client) Validate(ctx context.Context, token string) error {
	resp, err := c.do(ctx, http.MethodGet, "/auth/validar", token, nil)
	if err != nil {
		return fmt.Errorf("validate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", core.ErrTokenRejected, resp.Status)
	}
	return nil
}

// VerifyAdmin asks the server whether the token's account is an admin.
func (c *Client) VerifyAdmin(ctx context.Context, token string) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, "/usuarios/verificar-admin", token, nil)
	if err != nil {
		return false, fmt.Errorf("admin check request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, fmt.Errorf("%w: %s", core.ErrAdminCheckFailed, resp.Status)
	}

	var isAdmin bool
	if err := json.NewDecoder(resp.Body).Decode(&isAdmin); err != nil {
		return false, fmt.Errorf("decode admin check response: %w", err)
	}
	return isAdmin, nil
}

// UpdateProfile edits the account's display fields and returns the
// server-confirmed profile. Omitted fields are left untouched.
func (c *Client) UpdateProfile(ctx context.Context, token string, userID int64, update core.ProfileUpdate) (*core.UserProfile, error) {
	body := map[string]string{}
	if update.DisplayName != nil {
		body["profileName"] = *update.DisplayName
	}
	if update.AvatarURL != nil {
		body["profilePic"] = *update.AvatarURL
	}

	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/usuarios/%d", userID), token, body)
	if err != nil {
		return nil, fmt.Errorf("profile update request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("profile update returned %s", resp.Status)
	}

	var payload userPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode profile response: %w", err)
	}
	profile := payload.profile()
	return &profile, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-ID", c.deviceID)
	}

	c.log.Trace().Str("method", method).Str("path", path).Msg("api request")
	return c.http.Do(req)
}
