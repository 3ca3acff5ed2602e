package service

//go:generate mockgen -source=user.go -destination=mocks/user_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/disaster_resource_system/internal/apperror"
	"github.com/shenikar/disaster_resource_system/internal/models"
	"github.com/shenikar/disaster_resource_system/internal/policy"
)

// UserRepository определяет контракт для работы с бд пользователей
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	CountApprovedAdmins(ctx context.Context) (int, error)
}

// UserService минимальный справочник пользователей: роли и одобрение.
// Проверка паролей и выдача учетных данных выполняются вне этого сервиса.
type UserService interface {
	RegisterUser(ctx context.Context, user *models.User) error
	BootstrapAdmin(ctx context.Context, user *models.User) error
	ResolveActor(ctx context.Context, id uuid.UUID) (models.Actor, error)
	GetUser(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, actor models.Actor) ([]*models.User, error)
	ApproveUser(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, actor models.Actor, id uuid.UUID, patch models.UserPatch) (*models.User, error)
}

type userService struct {
	repo   UserRepository
	logger *logrus.Logger
}

func NewUserService(repo UserRepository, logger *logrus.Logger) UserService {
	return &userService{
		repo:   repo,
		logger: logger,
	}
}

// RegisterUser создает пользователя; граждане одобряются сразу
func (s *userService) RegisterUser(ctx context.Context, user *models.User) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "user",
		"method":   "RegisterUser",
		"username": user.Username,
	})

	if user.Role == models.RoleAnonymous {
		user.Role = models.RoleCitizen
	}
	if err := validateUser(user); err != nil {
		log.WithError(err).Warn("User validation failed")
		return err
	}
	user.IsApproved = policy.InitialApproval(user.Role)

	if err := s.repo.Create(ctx, user); err != nil {
		log.WithError(err).Warn("Failed to create user in repository")
		return fmt.Errorf("service: could not register user: %w", err)
	}

	log.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"role":        user.Role,
		"is_approved": user.IsApproved,
	}).Info("User registered")
	return nil
}

// BootstrapAdmin создает первого одобренного администратора
func (s *userService) BootstrapAdmin(ctx context.Context, user *models.User) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "user",
		"method":   "BootstrapAdmin",
		"username": user.Username,
	})

	admins, err := s.repo.CountApprovedAdmins(ctx)
	if err != nil {
		return fmt.Errorf("service: could not count admins: %w", err)
	}
	if admins > 0 {
		return apperror.Conflict("an approved admin already exists", nil)
	}

	user.Role = models.RoleAdmin
	if err := validateUser(user); err != nil {
		return err
	}
	user.IsApproved = true

	if err := s.repo.Create(ctx, user); err != nil {
		log.WithError(err).Error("Failed to create admin in repository")
		return fmt.Errorf("service: could not bootstrap admin: %w", err)
	}

	log.WithField("user_id", user.ID).Info("Bootstrap admin created")
	return nil
}

// ResolveActor строит Actor по идентификатору из токена
func (s *userService) ResolveActor(ctx context.Context, id uuid.UUID) (models.Actor, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Actor{}, fmt.Errorf("service: could not resolve actor: %w", err)
	}
	return user.Actor(), nil
}

func (s *userService) GetUser(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.User, error) {
	if actor.IsAnonymous() || actor.ID != id {
		if err := policy.Authorize(actor, policy.ActionUserManage); err != nil {
			return nil, err
		}
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get user: %w", err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, actor models.Actor) ([]*models.User, error) {
	if err := policy.Authorize(actor, policy.ActionUserManage); err != nil {
		return nil, err
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("method", "ListUsers").Error("Failed to list users")
		return nil, fmt.Errorf("service: could not list users: %w", err)
	}
	return users, nil
}

func (s *userService) ApproveUser(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.User, error) {
	approved := true
	return s.UpdateUser(ctx, actor, id, models.UserPatch{IsApproved: &approved})
}

func (s *userService) UpdateUser(ctx context.Context, actor models.Actor, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "user",
		"method":  "UpdateUser",
		"user_id": id,
		"actor":   actor.ID,
	})

	if err := policy.Authorize(actor, policy.ActionUserManage); err != nil {
		log.WithError(err).Warn("User update refused by policy")
		return nil, err
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, apperror.Validation("invalid role %q", *patch.Role)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not update user: %w", err)
	}

	if patch.Email != nil {
		user.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.PhoneNumber != nil {
		user.PhoneNumber = *patch.PhoneNumber
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.IsApproved != nil {
		user.IsApproved = *patch.IsApproved
	}
	// Граждане подтверждены всегда, в том числе после смены роли
	if policy.InitialApproval(user.Role) {
		user.IsApproved = true
	}

	if err := s.repo.Update(ctx, user); err != nil {
		log.WithError(err).Error("Failed to update user in repository")
		return nil, fmt.Errorf("service: could not update user: %w", err)
	}

	log.WithFields(logrus.Fields{
		"role":        user.Role,
		"is_approved": user.IsApproved,
	}).Info("User updated")
	return user, nil
}

func validateUser(u *models.User) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	if u.Username == "" {
		return apperror.Validation("username is required")
	}
	if !u.Role.Valid() {
		return apperror.Validation("invalid role %q", u.Role)
	}
	return nil
}
