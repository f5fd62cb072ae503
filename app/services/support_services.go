package services

import (
	"context"

	"github.com/shashiranjanraj/kuman/app/models"
	"github.com/shashiranjanraj/kuman/app/repositories"
)

type SupportService struct {
	admin *repositories.AdminRepository
}

func NewSupportService(admin *repositories.AdminRepository) *SupportService {
	return &SupportService{admin: admin}
}

// Requests fetches /admin/chat and merges both populations.
func (s *SupportService) Requests(ctx context.Context) ([]models.SupportRequest, error) {
	list, err := s.admin.Chats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeSupport(list), nil
}

// MergeSupport flattens the requester and walker chats into one list,
// requesters first, each tagged with its role and userId.
func MergeSupport(list models.ChatList) []models.SupportRequest {
	out := make([]models.SupportRequest, 0, len(list.Requester)+len(list.Walker))
	for _, e := range list.Requester {
		out = append(out, supportRequest(e, models.RoleRequester, e.RequesterID))
	}
	for _, e := range list.Walker {
		out = append(out, supportRequest(e, models.RoleWalker, e.WalkerID))
	}
	return out
}

func supportRequest(e models.ChatEntry, role models.Role, userID int64) models.SupportRequest {
	return models.SupportRequest{
		Role:     role,
		UserID:   userID,
		OrderID:  e.OrderID,
		Username: e.Username,
		Message:  e.Message,
		At:       e.CreatedAt,
	}
}
