package api

import "context"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// Login exchanges credentials for a token. It does not arm the transport;
// that is the session store's job.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	var out LoginResponse
	err := c.post(ctx, "/api/auth/login", loginRequest{Username: username, Password: password}, &out)
	return out, err
}

// Register creates an account. A successful register performs no session
// change; the caller logs in separately.
func (c *Client) Register(ctx context.Context, username, email, password, fullName string) error {
	return c.post(ctx, "/api/auth/register", registerRequest{
		Username: username,
		Email:    email,
		Password: password,
		FullName: fullName,
	}, nil)
}

// Me returns the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	err := c.get(ctx, "/api/auth/me", nil, &out)
	return out, err
}
