package store

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pine-backend/internal/config"
	"pine-backend/pkg/models"
)

// Store is the local lead archive. It backs the /api/leads endpoints and
// keeps a copy of every processed lead next to the spreadsheet ledger.
type Store struct {
	db *gorm.DB
}

// Open connects to PostgreSQL when DB_HOST is set, otherwise to the SQLite
// file at DB_PATH.
func Open(cfg *config.Config) (*Store, error) {
	var dialector gorm.Dialector
	if cfg.DBHost != "" {
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(cfg.DBPath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open lead archive: %w", err)
	}

	if err := db.AutoMigrate(&models.Lead{}); err != nil {
		return nil, fmt.Errorf("migrate lead archive: %w", err)
	}

	log.Println("Lead archive initialized")
	return &Store{db: db}, nil
}

func (s *Store) SaveLead(lead *models.Lead) error {
	return s.db.Create(lead).Error
}

// RecentLeads returns up to limit leads, newest first. RFC 3339 timestamps
// sort lexicographically so ordering on the string column is correct.
func (s *Store) RecentLeads(limit int) ([]models.Lead, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var leads []models.Lead
	err := s.db.Order("timestamp DESC").Limit(limit).Find(&leads).Error
	if err != nil {
		return nil, err
	}
	if leads == nil {
		leads = []models.Lead{}
	}
	return leads, nil
}
