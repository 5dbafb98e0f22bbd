package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"expense-insight/internal/adapters/persistence/models"
	"expense-insight/internal/pkg/password"

	"gorm.io/gorm"
)

// SeedConfig names the demo account created in development mode
type SeedConfig struct {
	Email    string
	Password string
}

// Seeder handles database seeding
type Seeder struct {
	db   *gorm.DB
	seed SeedConfig
	now  func() time.Time
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, seed SeedConfig) *Seeder {
	return &Seeder{
		db:   db,
		seed: seed,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	if s.seed.Email == "" {
		return nil
	}

	log.Println("🌱 Running database seeders...")

	user, err := s.seedDemoUser()
	if err != nil {
		return err
	}
	if user == nil {
		log.Println("ℹ️ Demo user already exists, skipping seed")
		return nil
	}

	if err := s.seedDemoExpenses(user.ID); err != nil {
		return err
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedDemoUser creates the demo account. It returns nil when the
// account already exists.
// This is for development/testing only
func (s *Seeder) seedDemoUser() (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(s.seed.Email))

	var existing models.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if !password.ValidatePassword(s.seed.Password) {
		return nil, errors.New("SEED_USER_PASSWORD must be between 8 and 30 characters")
	}
	hashedPassword, err := password.Hash(s.seed.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName: "Demo User",
		Email:    email,
		Password: hashedPassword,
		IsActive: true,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}

	log.Printf("✅ Demo user created: %s", user.Email)
	return user, nil
}

// seedDemoExpenses spreads a few expenses over the last three months
func (s *Seeder) seedDemoExpenses(userID uint) error {
	now := s.now()
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var expenses []*models.Expense
	for i := 0; i < 3; i++ {
		start := month.AddDate(0, -i, 0)
		expenses = append(expenses,
			&models.Expense{UserID: userID, Category: "Rent", Amount: 1200, Date: start, Notes: "Monthly rent", Status: "Normal"},
			&models.Expense{UserID: userID, Category: "Groceries", Amount: 85.40, Date: start.AddDate(0, 0, 6), Status: "Normal"},
			&models.Expense{UserID: userID, Category: "Utilities", Amount: 64.99, Date: start.AddDate(0, 0, 14), Status: "Normal"},
		)
	}

	if err := s.db.Create(&expenses).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d demo expenses", len(expenses))
	return nil
}
