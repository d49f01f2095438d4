package repositories

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront/internal/apperrors"
	"storefront/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// GetAll retrieves all users from the database.
func (r *GORMUserRepository) GetAll() ([]models.User, error) {
	var users []models.User
	if err := r.db.Find(&users).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindStore, err, "failed to get all users")
	}
	return users, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "user with ID %s not found", id)
		}
		return nil, apperrors.Wrap(apperrors.KindStore, err, "failed to get user by ID %s", id)
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.KindNotFound, "user with email %s not found", email)
		}
		return nil, apperrors.Wrap(apperrors.KindStore, err, "failed to get user by email %s", email)
	}
	return &user, nil
}

// Create creates a new user in the database. A racing registration can
// slip past the service-level email check and land on the unique index;
// that is still a conflict, not a store failure.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.E(apperrors.KindConflict, "email '%s' already registered", user.Email)
		}
		return apperrors.Wrap(apperrors.KindStore, err, "failed to create user")
	}
	return nil
}

// Update saves the full user record.
func (r *GORMUserRepository) Update(user *models.User) error {
	res := r.db.Save(user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return apperrors.E(apperrors.KindConflict, "email '%s' already registered", user.Email)
		}
		return apperrors.Wrap(apperrors.KindStore, res.Error, "failed to update user")
	}
	if res.RowsAffected == 0 {
		return apperrors.E(apperrors.KindNotFound, "user with ID %s not found for update", user.ID)
	}
	return nil
}

// Delete removes a user by their ID.
func (r *GORMUserRepository) Delete(id string) error {
	res := r.db.Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.KindStore, res.Error, "failed to delete user")
	}
	if res.RowsAffected == 0 {
		return apperrors.E(apperrors.KindNotFound, "user with ID %s not found for deletion", id)
	}
	return nil
}
