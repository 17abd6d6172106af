package api

import (
	"context"
	"net/http"
	"strings"
)

// Session is the result of a successful login.
type Session struct {
	Token string
	User  User
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. The request never carries
// an Authorization header.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	const op = "login"
	env, err := c.do(ctx, call{
		op: op, method: http.MethodPost, path: "/auth/login",
		body:          loginRequest{Username: strings.TrimSpace(username), Password: password},
		preferMessage: true,
		rejected:      "Login failed",
	})
	if err != nil {
		return Session{}, err
	}
	s := Session{Token: env.Token}
	if env.User != nil {
		s.User = *env.User
	}
	if s.Token == "" {
		// Some deployments nest the token under data.
		data, derr := decodeData[struct {
			Token string `json:"token"`
			User  *User  `json:"user"`
		}](op, env)
		if derr == nil {
			s.Token = data.Token
			if data.User != nil {
				s.User = *data.User
			}
		}
	}
	if s.Token == "" {
		return Session{}, &Error{Op: op, Kind: KindDecode, Message: "Login succeeded but no token was returned"}
	}
	return s, nil
}

// Logout ends the session of the client's token.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, call{op: "logout", method: http.MethodPost, path: "/auth/logout"})
	return err
}

// Check returns the user behind the client's token.
func (c *Client) Check(ctx context.Context) (User, error) {
	const op = "check auth"
	env, err := c.do(ctx, call{op: op, method: http.MethodGet, path: "/auth/check"})
	if err != nil {
		return User{}, err
	}
	if env.User != nil {
		return *env.User, nil
	}
	return decodeData[User](op, env)
}
