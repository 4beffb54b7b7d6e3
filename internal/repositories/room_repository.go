package repositories

import (
	"github.com/hermon-k/roomshare/backend/internal/models"
	"gorm.io/gorm"
)

// RoomRepository defines the interface for room data operations
type RoomRepository interface {
	CreateRoom(room *models.Room) error
	GetRoomByID(id uint) (*models.Room, error)
	GetAvailableRooms() ([]models.Room, error)
	GetRoomsByLandlord(landlordID uint) ([]models.Room, error)
	UpdateRoom(room *models.Room) error
}

// PostgresRoomRepository implements RoomRepository for PostgreSQL
type PostgresRoomRepository struct {
	db *gorm.DB
}

// NewPostgresRoomRepository creates a new PostgresRoomRepository
func NewPostgresRoomRepository(db *gorm.DB) *PostgresRoomRepository {
	return &PostgresRoomRepository{db: db}
}

// CreateRoom creates a new room listing
func (r *PostgresRoomRepository) CreateRoom(room *models.Room) error {
	return r.db.Create(room).Error
}

// GetRoomByID retrieves a room by ID
func (r *PostgresRoomRepository) GetRoomByID(id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// GetAvailableRooms retrieves all rooms open for matching
func (r *PostgresRoomRepository) GetAvailableRooms() ([]models.Room, error) {
	var rooms []models.Room
	if err := r.db.Where("is_available = ? AND is_approved = ?", true, true).
		Order("created_at DESC").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// GetRoomsByLandlord retrieves all rooms owned by one landlord
func (r *PostgresRoomRepository) GetRoomsByLandlord(landlordID uint) ([]models.Room, error) {
	var rooms []models.Room
	if err := r.db.Where("landlord_id = ?", landlordID).Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

// UpdateRoom updates an existing room
func (r *PostgresRoomRepository) UpdateRoom(room *models.Room) error {
	return r.db.Save(room).Error
}
