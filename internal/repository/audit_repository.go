package repository

import (
	"fmt"

	"gorm.io/gorm"

	"pdfchat/internal/model"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(record *model.AuditRecord) error {
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("create audit record failed: %w", err)
	}
	return nil
}
