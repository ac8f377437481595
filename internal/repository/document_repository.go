package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pdfchat/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(tx *gorm.DB, doc *model.DocumentRecord) error {
	if tx == nil {
		tx = r.db
	}
	if err := tx.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*model.DocumentRecord, error) {
	var doc model.DocumentRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]model.DocumentRecord, error) {
	var list []model.DocumentRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return list, nil
}

// DeleteByID removes the document row and reports whether it existed.
func (r *DocumentRepository) DeleteByID(tx *gorm.DB, id string) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	res := tx.Where("id = ?", id).Delete(&model.DocumentRecord{})
	if res.Error != nil {
		return false, fmt.Errorf("delete document failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
