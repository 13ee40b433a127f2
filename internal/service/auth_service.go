package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"go-supplychain-ledger/internal/model"
	"go-supplychain-ledger/internal/repository"
	"go-supplychain-ledger/pkg/jwt"
	"go-supplychain-ledger/pkg/validator"
)

type AuthService interface {
	Login(email, password string) (string, *model.User, error)
	Register(actor *Actor, req *model.User, password string) (*model.User, error)
	GetUser(id uuid.UUID) (*model.User, error)
	ListUsers() ([]model.User, error)
}

type authService struct {
	users repository.UserRepository
}

func NewAuthService(users repository.UserRepository) AuthService {
	return &authService{users: users}
}

func (s *authService) Login(email, password string) (string, *model.User, error) {
	if email == "" || password == "" {
		return "", nil, NewValidationError("please provide email and password")
	}
	user, err := s.users.FindByEmail(email)
	if err != nil || !user.CheckPassword(password) {
		return "", nil, NewAuthorizationError("invalid credentials")
	}
	if !user.IsActive {
		return "", nil, NewAuthorizationError("account is deactivated")
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, user.Role)
	if err != nil {
		return "", nil, err
	}
	now := time.Now()
	user.LastSeenAt = &now
	_ = s.users.Update(user)

	return token, user, nil
}

// Register creates a new actor account. The admin role can only be granted
// by an existing admin; self-registration is limited to supply chain roles.
func (s *authService) Register(actor *Actor, req *model.User, password string) (*model.User, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if len(password) < 6 {
		return nil, NewValidationError("password must be at least 6 characters")
	}
	if req.Role == model.RoleAdmin && (actor == nil || !actor.Is(model.RoleAdmin)) {
		return nil, NewAuthorizationError("only admins may create admin accounts")
	}
	if existing, err := s.users.FindByEmail(req.Email); err == nil && existing.ID != uuid.Nil {
		return nil, NewValidationError("email %s is already registered", req.Email)
	}
	if err := req.SetPassword(password); err != nil {
		return nil, err
	}
	req.IsActive = true
	if actor != nil {
		req.CreatedBy = actor.ID.String()
	}
	if err := s.users.Create(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *authService) GetUser(id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: id.String()}
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) ListUsers() ([]model.User, error) {
	return s.users.FindAll()
}
