package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/app/repositories"
	"github.com/shashiranjanraj/kuman/pkg/logger"
	"github.com/shashiranjanraj/kuman/pkg/validate"
)

// VerifyService drives the walker verification queue.
type VerifyService struct {
	repo *repositories.VerifyRepository
}

func NewVerifyService(repo *repositories.VerifyRepository) *VerifyService {
	return &VerifyService{repo: repo}
}

func (s *VerifyService) Pending(ctx context.Context) ([]models.VerificationCandidate, error) {
	return s.repo.Pending(ctx)
}

// Find returns one queued candidate.
func (s *VerifyService) Find(ctx context.Context, walkerID int64) (models.VerificationCandidate, error) {
	cs, err := s.repo.Pending(ctx)
	if err != nil {
		return models.VerificationCandidate{}, err
	}
	for _, c := range cs {
		if c.WalkerID == walkerID {
			return c, nil
		}
	}
	return models.VerificationCandidate{}, fmt.Errorf("walker %d: %w", walkerID, repositories.ErrNotFound)
}

func (s *VerifyService) Approve(ctx context.Context, walkerID int64) error {
	return s.decide(ctx, walkerID, true)
}

func (s *VerifyService) Reject(ctx context.Context, walkerID int64) error {
	return s.decide(ctx, walkerID, false)
}

func (s *VerifyService) decide(ctx context.Context, walkerID int64, ok bool) error {
	if walkerID <= 0 {
		return &validate.Error{Fields: map[string]string{"walkerId": "The walkerId field is required."}}
	}
	if err := s.repo.Decide(ctx, models.Decision{WalkerID: walkerID, Status: ok}); err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("verify: decision sent", "walker_id", walkerID, "approved", ok)
	return nil
}

// UserService lists and removes accounts.
type UserService struct {
	users *repositories.UserRepository
	admin *repositories.AdminRepository
}

func NewUserService(users *repositories.UserRepository, admin *repositories.AdminRepository) *UserService {
	return &UserService{users: users, admin: admin}
}

// Walkers returns verified walkers, or every walker when all is set.
func (s *UserService) Walkers(ctx context.Context, all bool) ([]models.Walker, error) {
	if all {
		return s.users.AllWalkers(ctx)
	}
	return s.users.Walkers(ctx)
}

func (s *UserService) Requesters(ctx context.Context) ([]models.Requester, error) {
	return s.users.Requesters(ctx)
}

func (s *UserService) Delete(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return &validate.Error{Fields: map[string]string{"id": "The id field is required."}}
	}
	return s.users.Delete(ctx, userID)
}

// SendEmail validates and sends an admin e-mail.
func (s *UserService) SendEmail(ctx context.Context, e models.Email) error {
	if err := validate.Check(e); err != nil {
		return err
	}
	return s.admin.SendEmail(ctx, e)
}
