package usecase

import (
	"context"
	"strings"

	"user_service/internal/domain"
)

func validateUser(user *domain.User) error {
	if user == nil {
		return domain.InvalidUser("user must not be nil")
	}
	if strings.TrimSpace(user.Name) == "" {
		return domain.InvalidUser("user name is required")
	}
	return nil
}

func validateRequest(req *domain.UserRequest) error {
	if req == nil {
		return domain.InvalidUser("user must not be nil")
	}
	if strings.TrimSpace(req.Name) == "" {
		return domain.InvalidUser("user name is required")
	}
	return nil
}

func validateID(id int64) error {
	if id <= 0 {
		return domain.InvalidUser("invalid user ID")
	}
	return nil
}

// requireExisting resolves id to a stored user or fails with a NotFound error.
func requireExisting(ctx context.Context, repo domain.UserRepository, id int64) (*domain.User, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return repo.FindByID(ctx, id)
}
