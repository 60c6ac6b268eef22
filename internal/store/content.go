package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/antiquenepal/storefront/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetFooter returns the footer row and its links. An unset footer is empty,
// not missing.
func (s *Store) GetFooter(ctx context.Context) (*models.FooterContent, error) {
	var f models.FooterContent
	err := s.db.WithContext(ctx).Order("id ASC").First(&f).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load footer: %w", err)
	}

	var links []models.FooterLink
	if err := s.db.WithContext(ctx).Order("section ASC, position ASC, id ASC").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to load footer links: %w", err)
	}
	f.Links = links
	return &f, nil
}

// SaveFooter replaces the footer and all of its links in one transaction.
func (s *Store) SaveFooter(ctx context.Context, f *models.FooterContent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. --- Footer row ---
		var existing models.FooterContent
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Order("id ASC").First(&existing).Error
		switch {
		case err == nil:
			f.ID = existing.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			f.ID = 0
		default:
			return err
		}
		if err := tx.Save(f).Error; err != nil {
			return fmt.Errorf("failed to save footer: %w", err)
		}

		// 2. --- Links ---
		if err := tx.Where("1 = 1").Delete(&models.FooterLink{}).Error; err != nil {
			return fmt.Errorf("failed to clear footer links: %w", err)
		}
		if len(f.Links) == 0 {
			return nil
		}
		for i := range f.Links {
			f.Links[i].ID = 0
		}
		if err := tx.Create(&f.Links).Error; err != nil {
			return fmt.Errorf("failed to save footer links: %w", err)
		}
		return nil
	})
}

func (s *Store) ListSettings(ctx context.Context) ([]models.SiteSetting, error) {
	var settings []models.SiteSetting
	if err := s.db.WithContext(ctx).Order("setting_key ASC").Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

func (s *Store) GetSetting(ctx context.Context, key string) (*models.SiteSetting, error) {
	var setting models.SiteSetting
	if err := s.db.WithContext(ctx).Where("setting_key = ?", key).First(&setting).Error; err != nil {
		return nil, translateError(err)
	}
	return &setting, nil
}

func (s *Store) PutSetting(ctx context.Context, key, value string) (*models.SiteSetting, error) {
	setting := models.SiteSetting{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save setting: %w", err)
	}
	return &setting, nil
}
