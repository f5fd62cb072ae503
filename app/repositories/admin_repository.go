package repositories

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/kuman/app/models"
)

// ErrNoToken is returned when a 2xx login response carries no token.
var ErrNoToken = errors.New("repositories: login response has no token")

// AdminRepository covers login, support chats and outgoing e-mail.
type AdminRepository struct {
	c *Client
}

func NewAdminRepository(c *Client) *AdminRepository {
	return &AdminRepository{c: c}
}

// Login exchanges credentials for a bearer token.
func (r *AdminRepository) Login(ctx context.Context, creds models.Credentials) (string, error) {
	var res models.LoginResult
	if err := fetch(r.c.post(ctx, "login", "/admin/login", creds), &res); err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", ErrNoToken
	}
	return res.Token, nil
}

// Chats returns the open support conversations of both populations.
func (r *AdminRepository) Chats(ctx context.Context) (models.ChatList, error) {
	var list models.ChatList
	err := fetch(r.c.get(ctx, "chat", "/admin/chat"), &list)
	return list, err
}

func (r *AdminRepository) SendEmail(ctx context.Context, e models.Email) error {
	return exec(r.c.post(ctx, "email", "/admin/send-email", e))
}
