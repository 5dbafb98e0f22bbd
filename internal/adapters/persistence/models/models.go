package models

import (
	"time"

	"expense-insight/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Identity
// ============================================================

// User represents users table
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	FullName    string         `gorm:"size:100" json:"fullName"`
	Email       string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	Gender      string         `gorm:"size:20" json:"gender,omitempty"`
	PhoneNumber string         `gorm:"size:20" json:"phoneNumber,omitempty"`
	Address     string         `gorm:"size:255" json:"address,omitempty"`
	IsActive    bool           `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID          uint      `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	Gender      string    `json:"gender,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Address     string    `json:"address,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		Gender:      u.Gender,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
	}
}

// PasswordResetToken represents password_reset_tokens table.
// Only the SHA-256 hash of the emailed token is stored.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:100;not null;index" json:"email"`
	TokenHash string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ============================================================
// Expenses
// ============================================================

// Expense represents expenses table
type Expense struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"userId"`
	Category     string    `gorm:"size:30;not null;index" json:"category"`
	Amount       float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date         time.Time `gorm:"not null;index" json:"date"`
	Notes        string    `gorm:"size:500" json:"notes"`
	RawText      string    `gorm:"type:text" json:"rawText,omitempty"`
	Status       string    `gorm:"size:10;not null;default:'Normal'" json:"status"`
	AnomalyScore float64   `gorm:"not null;default:0" json:"anomalyScore"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relations
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Expense) TableName() string {
	return "expenses"
}

// ExpenseResponse DTO
type ExpenseResponse struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"userId"`
	Category     string    `json:"category"`
	Amount       float64   `json:"amount"`
	Date         string    `json:"date"`
	Notes        string    `json:"notes"`
	RawText      string    `json:"rawText,omitempty"`
	Status       string    `json:"status"`
	AnomalyScore float64   `json:"anomalyScore"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (e *Expense) ToResponse() *ExpenseResponse {
	return &ExpenseResponse{
		ID:           e.ID,
		UserID:       e.UserID,
		Category:     e.Category,
		Amount:       e.Amount,
		Date:         e.Date.UTC().Format(domain.DateLayout),
		Notes:        e.Notes,
		RawText:      e.RawText,
		Status:       e.Status,
		AnomalyScore: e.AnomalyScore,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

// ToExpenseResponses maps a page of expenses to DTOs
func ToExpenseResponses(expenses []*Expense) []*ExpenseResponse {
	out := make([]*ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, e.ToResponse())
	}
	return out
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates or updates every table owned by the service
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&PasswordResetToken{},
		&Expense{},
	)
}
