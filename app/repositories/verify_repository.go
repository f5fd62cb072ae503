package repositories

import (
	"context"

	"github.com/shashiranjanraj/kuman/app/models"
)

type VerifyRepository struct {
	c *Client
}

func NewVerifyRepository(c *Client) *VerifyRepository {
	return &VerifyRepository{c: c}
}

// Pending returns the verification queue.
func (r *VerifyRepository) Pending(ctx context.Context) ([]models.VerificationCandidate, error) {
	var cs []models.VerificationCandidate
	err := fetch(r.c.get(ctx, "verify", "/admin/verify"), &cs)
	return cs, err
}

// Decide approves (true) or rejects (false) a walker.
func (r *VerifyRepository) Decide(ctx context.Context, d models.Decision) error {
	return exec(r.c.post(ctx, "verify.decide", "/admin/verify", d))
}
