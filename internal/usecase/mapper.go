package usecase

import (
	"strings"

	"user_service/internal/domain"
)

func toEntity(req *domain.UserRequest) *domain.User {
	return &domain.User{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	}
}

func toResponse(user *domain.User) *domain.UserResponse {
	return &domain.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Age:       user.Age,
		CreatedAt: user.CreatedAt,
	}
}

func toResponses(users []domain.User) []domain.UserResponse {
	out := make([]domain.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *toResponse(&users[i]))
	}
	return out
}

// applyUpdate copies the supplied request fields onto user as given. A blank
// name or email counts as not supplied. ID and CreatedAt are never touched.
func applyUpdate(req *domain.UserRequest, user *domain.User) {
	if req == nil {
		return
	}
	if strings.TrimSpace(req.Name) != "" {
		user.Name = req.Name
	}
	if strings.TrimSpace(req.Email) != "" {
		user.Email = req.Email
	}
	if req.Age > 0 {
		user.Age = req.Age
	}
}
