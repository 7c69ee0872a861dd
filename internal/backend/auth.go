package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"plant_monitor/internal/telemetry"
)

const loginPath = "login"

// ErrLoginRejected is returned when the backend answers a login with anything
// other than 200 and the failure is on the client side (4xx or non-200 2xx).
var ErrLoginRejected = errors.New("login rejected by backend")

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks credentials against the backend and returns its session payload verbatim.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, c.endpoint(loginPath), loginRequest{Email: email, Password: password})
	if err != nil {
		var fe *telemetry.FetchError
		if errors.As(err, &fe) && fe.StatusCode >= 400 && fe.StatusCode < 500 {
			return "", fmt.Errorf("%w: status %d", ErrLoginRejected, fe.StatusCode)
		}
		return "", err
	}
	if resp.status != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrLoginRejected, resp.status)
	}
	return string(resp.body), nil
}
