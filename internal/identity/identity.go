package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ninjapaylabs/ninjapay/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	// ErrInvalidToken covers expired, malformed or revoked session tokens.
	ErrInvalidToken = errors.New("identity: invalid or expired token")

	// ErrRejected means the identity service refused a signup or sign-in;
	// the upstream message is attached for the caller.
	ErrRejected = errors.New("identity: request rejected")
)

// Session is an authenticated identity-service session.
type Session struct {
	UID     string
	IDToken string
}

// Client is the identity collaborator consumed by the HTTP layer. The wire
// protocol behind it is not reimplemented here; these are plain REST calls
// against the Firebase identitytoolkit API.
type Client interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	VerifyToken(ctx context.Context, token string) (string, error)
}

type restClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) Client {
	return &restClient{
		baseURL: cfg.IdentityBaseURL,
		apiKey:  cfg.IdentityAPIKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type authResponse struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *restClient) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "accounts:signUp", email, password)
}

func (c *restClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.authenticate(ctx, "accounts:signInWithPassword", email, password)
}

func (c *restClient) authenticate(ctx context.Context, endpoint, email, password string) (*Session, error) {
	payload, status, err := c.post(ctx, endpoint, map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}

	var resp authResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("identity: decode %s: %w", endpoint, err)
	}

	if status != http.StatusOK {
		message := "unknown error"
		if resp.Error != nil {
			message = resp.Error.Message
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, message)
	}

	return &Session{UID: resp.LocalID, IDToken: resp.IDToken}, nil
}

// VerifyToken resolves a session token to the subject identifier via the
// accounts:lookup endpoint.
func (c *restClient) VerifyToken(ctx context.Context, token string) (string, error) {
	payload, status, err := c.post(ctx, "accounts:lookup", map[string]any{
		"idToken": token,
	})
	if err != nil {
		return "", err
	}

	if status != http.StatusOK {
		c.logger.Debug("token verification refused", zap.Int("status", status))
		return "", ErrInvalidToken
	}

	var resp struct {
		Users []struct {
			LocalID string `json:"localId"`
		} `json:"users"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", fmt.Errorf("identity: decode lookup: %w", err)
	}
	if len(resp.Users) == 0 || resp.Users[0].LocalID == "" {
		return "", ErrInvalidToken
	}
	return resp.Users[0].LocalID, nil
}

func (c *restClient) post(ctx context.Context, endpoint string, body map[string]any) ([]byte, int, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return payload, resp.StatusCode, nil
}

var Module = fx.Module("identity",
	fx.Provide(New),
)
