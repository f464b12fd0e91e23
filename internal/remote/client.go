// Package remote is the typed HTTP client for the paginated user
// collection endpoint. Failures are terminal: there is no retry here,
// the caller decides whether to re-invoke.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	eclient "github.com/shuvava/go-enrichable-client/client"
	"github.com/shuvava/go-enrichable-client/middleware"
	"go.uber.org/zap"

	"userdir/internal/domain/user"
	apperrors "userdir/pkg/errors"
)

// UserResponse is the envelope of the paginated list endpoint.
type UserResponse struct {
	Data []user.User `json:"data"`
}

// updatedFields is the subset of fields the remote confirms on update.
type updatedFields struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Client talks to the remote user directory.
type Client struct {
	baseURL string
	http    *eclient.Client
	log     *zap.Logger
}

// New creates a Client for the collection rooted at baseURL
// (e.g. "https://reqres.in/api").
func New(baseURL string, log *zap.Logger) *Client {
	ec := eclient.DefaultPooledClient()
	ec.Use(middleware.UserAgent(middleware.UserAgentConfig{
		App:     "userdir",
		Version: "1.0",
	}))

	return &Client{baseURL: baseURL, http: ec, log: log}
}

// do executes one request and decodes a 2xx JSON body into out (when out
// is non-nil). Transport failures and non-success statuses map onto the
// TransportError/ServerError taxonomy.
func (c *Client) do(ctx context.Context, op, method, url string, body, out interface{}) error {
	req, err := eclient.NewHTTPRequest(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req = req.WithContext(ctx)

	log := c.log.With(zap.String("op", op), zap.String("request_id", requestID))
	log.Debug("remote call", zap.String("method", method), zap.String("url", url))

	resp, err := c.http.Client.Do(req)
	if err != nil {
		log.Error("remote call failed", zap.Error(err))
		return apperrors.NewTransportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := serverMessage(resp)
		log.Warn("remote call rejected", zap.Int("status", resp.StatusCode), zap.String("message", msg))
		return apperrors.NewServerError(op, resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error("failed to decode response", zap.Error(err))
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

// serverMessage extracts a short human-readable message from an error
// response body, falling back to the HTTP status text.
func serverMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(raw) > 0 {
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			if payload.Error != "" {
				return payload.Error
			}
			if payload.Message != "" {
				return payload.Message
			}
		}
	}
	return http.StatusText(resp.StatusCode)
}

// ListUsers fetches one page of the collection. A page shorter than
// perPage is the terminal page.
func (c *Client) ListUsers(ctx context.Context, page, perPage int) ([]user.User, error) {
	url := fmt.Sprintf("%s/users?page=%d&per_page=%d", c.baseURL, page, perPage)

	var envelope UserResponse
	if err := c.do(ctx, "list users", http.MethodGet, url, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// CreateUser creates a user remotely. The server echoes the accepted
// fields but never assigns an id; id assignment is a local concern.
func (c *Client) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	url := fmt.Sprintf("%s/users", c.baseURL)

	var created user.User
	if err := c.do(ctx, "create user", http.MethodPost, url, u, &created); err != nil {
		return user.User{}, err
	}
	return created, nil
}

// UpdateUser updates a user remotely. The returned User carries only
// the fields the server confirmed (names and email); merging them into
// the local record is the repository's job.
func (c *Client) UpdateUser(ctx context.Context, id int64, u user.User) (user.User, error) {
	url := fmt.Sprintf("%s/users/%d", c.baseURL, id)

	var confirmed updatedFields
	if err := c.do(ctx, "update user", http.MethodPut, url, u, &confirmed); err != nil {
		return user.User{}, err
	}

	return user.User{
		FirstName: confirmed.FirstName,
		LastName:  confirmed.LastName,
		Email:     confirmed.Email,
	}, nil
}

// DeleteUser removes a user remotely.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	url := fmt.Sprintf("%s/users/%d", c.baseURL, id)
	return c.do(ctx, "delete user", http.MethodDelete, url, nil, nil)
}
