package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudshare/cloudshare-go/cache"
	"github.com/cloudshare/cloudshare-go/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register creates an account. On success the returned token and user are
// written into the session store before the call returns.
func (c *HTTPClient) Register(ctx context.Context, email, password string) (models.User, error) {
	return c.authenticate(ctx, "/auth/register", email, password)
}

// Login signs in. Same session side effect as Register.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (models.User, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

func (c *HTTPClient) authenticate(ctx context.Context, path, email, password string) (models.User, error) {
	var resp authResponse
	err := c.doJSON(ctx, http.MethodPost, path, credentialsRequest{Email: email, Password: password}, &resp, withAuth)
	if err != nil {
		return models.User{}, err
	}

	if err := c.session.Set(ctx, resp.Token, resp.User); err != nil {
		return models.User{}, fmt.Errorf("failed to persist session: %w", err)
	}
	c.log.Info(ctx, "signed in", "userId", resp.User.UserID)
	return resp.User, nil
}

// Logout clears the session and every cached query result.
func (c *HTTPClient) Logout(ctx context.Context) error {
	if err := c.session.Clear(ctx); err != nil {
		return err
	}
	c.cache.Clear()
	return nil
}

// Profile returns the authenticated user's profile, cached under the User
// tag.
func (c *HTTPClient) Profile(ctx context.Context) (models.User, error) {
	key := cache.Key{Op: "getProfile"}
	tags := []cache.Tag{{Kind: cache.KindUser}}
	return cache.Do(ctx, c.cache, key, tags, func(ctx context.Context) (models.User, error) {
		var user models.User
		if err := c.doJSON(ctx, http.MethodGet, "/auth/profile", nil, &user, withAuth); err != nil {
			return models.User{}, err
		}
		return user, nil
	})
}
