package api

import (
	"context"
	"net/http"
)

// CodeGrant is returned when a verification code has been emailed.
type CodeGrant struct {
	RequestToken string `json:"request_token"`
}

// Identity is the authenticated user returned by code verification.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

// RequestCode asks the service to email a verification code.
func (c *Client) RequestCode(ctx context.Context, email string) (*CodeGrant, error) {
	in := map[string]string{"email": email}
	out := &CodeGrant{}
	if err := c.Do(ctx, http.MethodPost, "/api/v1/auth/request_code", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyCode exchanges an emailed code plus the request token for an
// access token.
func (c *Client) VerifyCode(ctx context.Context, email, code, requestToken string) (*Identity, error) {
	in := map[string]string{
		"email":         email,
		"code":          code,
		"request_token": requestToken,
	}
	out := &Identity{}
	if err := c.Do(ctx, http.MethodPost, "/api/v1/auth/verify_code", in, out); err != nil {
		return nil, err
	}
	return out, nil
}
