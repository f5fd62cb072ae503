package repositories

import (
	"context"

	"github.com/shashiranjanraj/kuman/app/models"
)

// UserRepository reads and removes walker and requester accounts.
type UserRepository struct {
	c *Client
}

func NewUserRepository(c *Client) *UserRepository {
	return &UserRepository{c: c}
}

// Walkers returns verified walkers.
func (r *UserRepository) Walkers(ctx context.Context) ([]models.Walker, error) {
	var ws []models.Walker
	err := fetch(r.c.get(ctx, "walkers", "/admin/walker"), &ws)
	return ws, err
}

// AllWalkers returns every walker, verified or not.
func (r *UserRepository) AllWalkers(ctx context.Context) ([]models.Walker, error) {
	var ws []models.Walker
	err := fetch(r.c.get(ctx, "walkers.all", "/admin/walkerALL"), &ws)
	return ws, err
}

func (r *UserRepository) Requesters(ctx context.Context) ([]models.Requester, error) {
	var rs []models.Requester
	err := fetch(r.c.get(ctx, "requesters", "/admin/requester"), &rs)
	return rs, err
}

// Delete removes the account with the given id.
func (r *UserRepository) Delete(ctx context.Context, userID int64) error {
	return exec(r.c.delete(ctx, "users.delete", "/admin/delete-user/"+id(userID)))
}
