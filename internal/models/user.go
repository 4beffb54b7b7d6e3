package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Age         int    `json:"age"`                      // 0 until the user supplies it
	Gender      string `json:"gender" gorm:"type:varchar(10)"`
	Religion    string `json:"religion" gorm:"type:varchar(30)"`
	Password    string `json:"-"`                                         // Store hashed password, ignore for JSON serialization
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID
}

type CreateUserRequest struct {
	FirstName   string `json:"first_name" validate:"required,min=2,max=50"`
	LastName    string `json:"last_name" validate:"omitempty,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Age         int    `json:"age" validate:"omitempty,min=16,max=100"`
	Gender      string `json:"gender" validate:"required,oneof=male female"`
	Religion    string `json:"religion" validate:"omitempty,max=30"`
	FirebaseUID string `json:"firebase_uid" validate:"required"` // Firebase UID will be provided by the client after Firebase Auth
}

type CreateLocalUserRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=50"`
	LastName  string `json:"last_name" validate:"omitempty,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Age       int    `json:"age" validate:"omitempty,min=16,max=100"`
	Gender    string `json:"gender" validate:"required,oneof=male female"`
	Religion  string `json:"religion" validate:"omitempty,max=30"`
	Password  string `json:"password" validate:"required,min=8"`
}

type UpdateUserRequest struct {
	FirstName string `json:"first_name,omitempty" validate:"omitempty,min=2,max=50"`
	LastName  string `json:"last_name,omitempty" validate:"omitempty,max=50"`
	Age       int    `json:"age,omitempty" validate:"omitempty,min=16,max=100"`
	Gender    string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	Religion  string `json:"religion,omitempty" validate:"omitempty,max=30"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
