package repositories

import (
	"github.com/hermon-k/roomshare/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByFirebaseUID(firebaseUID string) (*models.User, error)
	UpdateUser(user *models.User) error
	UpdateUserAge(id uint, age int) error
	// FindCompatibleUsers returns users inside the age window whose gender
	// matches the room restriction (any gender when mixed) and whose
	// religion is compatible, excluding one user (the group creator).
	FindCompatibleUsers(ageMin, ageMax int, genderRestriction, religion string, excludeID uint) ([]models.User, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email from PostgreSQL
func (r *PostgresUserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByFirebaseUID retrieves a user by Firebase UID from PostgreSQL
func (r *PostgresUserRepository) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates an existing user in PostgreSQL
func (r *PostgresUserRepository) UpdateUser(user *models.User) error {
	return r.db.Save(user).Error
}

// UpdateUserAge persists an age supplied during matching for a profile
// that did not have one yet.
func (r *PostgresUserRepository) UpdateUserAge(id uint, age int) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("age", age).Error
}

// FindCompatibleUsers queries users eligible for a group_found fan-out.
func (r *PostgresUserRepository) FindCompatibleUsers(ageMin, ageMax int, genderRestriction, religion string, excludeID uint) ([]models.User, error) {
	q := r.db.Where("age BETWEEN ? AND ?", ageMin, ageMax).Where("id <> ?", excludeID)
	if genderRestriction != models.GenderMixed {
		q = q.Where("gender = ?", genderRestriction)
	}
	if religion != models.ReligionAny {
		q = q.Where("religion = ?", religion)
	} else {
		q = q.Where("religion <> ''")
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
