package services

import (
	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// UserService handles business logic for user accounts. Every user it
// returns is sanitized: the password hash never leaves this layer.
type UserService struct {
	repo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// Register creates a new user, hashing their password. A duplicate
// email is a conflict.
func (s *UserService) Register(user *models.User) (*models.User, error) {
	if user.Username == "" || user.Email == "" || user.Password == "" {
		return nil, apperrors.E(apperrors.KindValidation, "username, email and password are required")
	}
	if existing, err := s.repo.GetByEmail(user.Email); err == nil && existing != nil {
		return nil, apperrors.E(apperrors.KindConflict, "email '%s' already registered", user.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStore, err, "failed to hash password")
	}
	user.Password = string(hashed)
	if user.Role == "" {
		user.Role = "customer"
	}

	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// GetAll returns all users, sanitized.
func (s *UserService) GetAll() ([]models.User, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}

// lookup finds a user by id or email; exactly one must be given.
func (s *UserService) lookup(id, email string) (*models.User, error) {
	switch {
	case id != "":
		return s.repo.GetByID(id)
	case email != "":
		return s.repo.GetByEmail(email)
	default:
		return nil, apperrors.E(apperrors.KindValidation, "an id or email identifier is required")
	}
}

// Get returns one sanitized user by id or email.
func (s *UserService) Get(id, email string) (*models.User, error) {
	user, err := s.lookup(id, email)
	if err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// UpdateUserRequest carries the partial-update fields; nil means leave
// the field as it is.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

// Update applies a partial update to the user identified by id or email.
func (s *UserService) Update(id, email string, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.lookup(id, email)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if existing, err := s.repo.GetByEmail(*req.Email); err == nil && existing != nil {
			return nil, apperrors.E(apperrors.KindConflict, "email '%s' already registered", *req.Email)
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindStore, err, "failed to hash password")
		}
		user.Password = string(hashed)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	if err := s.repo.Update(user); err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}

// Delete removes the user identified by id or email, returning the
// sanitized record that was deleted.
func (s *UserService) Delete(id, email string) (*models.User, error) {
	user, err := s.lookup(id, email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(user.ID); err != nil {
		return nil, err
	}
	return user.Sanitize(), nil
}
