package usecase

import (
	"context"

	"user_service/internal/domain"

	"github.com/sirupsen/logrus"
)

type UserUseCase interface {
	CreateUser(ctx context.Context, req *domain.UserRequest) (*domain.UserResponse, error)
	GetUserByID(ctx context.Context, id int64) (*domain.UserResponse, error)
	GetAllUsers(ctx context.Context) ([]domain.UserResponse, error)
	UpdateUser(ctx context.Context, id int64, req *domain.UserRequest) (*domain.UserResponse, error)
	DeleteUser(ctx context.Context, id int64) error
}

type userUseCase struct {
	userRepo domain.UserRepository
	log      *logrus.Logger
}

func NewUserUseCase(repo domain.UserRepository, logger *logrus.Logger) UserUseCase {
	return &userUseCase{
		userRepo: repo,
		log:      logger,
	}
}

func (uc *userUseCase) CreateUser(ctx context.Context, req *domain.UserRequest) (*domain.UserResponse, error) {
	if err := validateRequest(req); err != nil {
		uc.log.Warnf("Use Case: Rejected user creation: %v", err)
		return nil, err
	}

	uc.log.Infof("Use Case: Attempting to create user with email '%s'", req.Email)
	created, err := uc.userRepo.Save(ctx, toEntity(req))
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create user '%s': %v", req.Email, err)
		return nil, err
	}

	uc.log.Infof("Use Case: User created successfully with ID %d", created.ID)
	return toResponse(created), nil
}

func (uc *userUseCase) GetUserByID(ctx context.Context, id int64) (*domain.UserResponse, error) {
	if err := validateID(id); err != nil {
		uc.log.Warnf("Use Case: Attempted to get user with invalid ID: %d", id)
		return nil, err
	}

	user, err := uc.userRepo.FindByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get user ID %d: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: User retrieved successfully for ID %d", id)
	return toResponse(user), nil
}

func (uc *userUseCase) GetAllUsers(ctx context.Context) ([]domain.UserResponse, error) {
	users, err := uc.userRepo.FindAll(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list users: %v", err)
		return nil, err
	}
	if len(users) == 0 {
		uc.log.Info("Use Case: No users stored")
		return nil, domain.NoUsers()
	}

	uc.log.Infof("Use Case: Retrieved %d users", len(users))
	return toResponses(users), nil
}

func (uc *userUseCase) UpdateUser(ctx context.Context, id int64, req *domain.UserRequest) (*domain.UserResponse, error) {
	user, err := requireExisting(ctx, uc.userRepo, id)
	if err != nil {
		uc.log.Warnf("Use Case: Cannot update user ID %d: %v", id, err)
		return nil, err
	}

	applyUpdate(req, user)
	if err := validateUser(user); err != nil {
		uc.log.Warnf("Use Case: Update for ID %d produced an invalid user: %v", id, err)
		return nil, err
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		uc.log.Errorf("Use Case: Repository failed to update user ID %d: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: User updated successfully for ID %d", id)
	return toResponse(user), nil
}

func (uc *userUseCase) DeleteUser(ctx context.Context, id int64) error {
	if _, err := requireExisting(ctx, uc.userRepo, id); err != nil {
		uc.log.Warnf("Use Case: Cannot delete user ID %d: %v", id, err)
		return err
	}

	if err := uc.userRepo.Delete(ctx, id); err != nil {
		uc.log.Errorf("Use Case: Repository failed to delete user ID %d: %v", id, err)
		return err
	}

	uc.log.Infof("Use Case: User deleted successfully for ID %d", id)
	return nil
}
