package persistence

import (
	"context"

	"github.com/tehraja/backend/internal/domain/activity"
	"github.com/tehraja/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormActivityRepository implements activity.Repository using GORM
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// Append inserts e and prunes everything past the newest retain entries in
// the same transaction
func (r *GormActivityRepository) Append(ctx context.Context, e activity.Entry, retain int) error {
	if retain <= 0 {
		retain = activity.DefaultRetention
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.ActivityEntryModelFromDomain(e)).Error; err != nil {
			return err
		}
		keep := tx.Model(&models.ActivityEntryModel{}).
			Select("seq").
			Order("seq DESC").
			Limit(retain)
		return tx.Where("seq NOT IN (?)", keep).Delete(&models.ActivityEntryModel{}).Error
	})
}

// FindRecent lists entries newest first
func (r *GormActivityRepository) FindRecent(ctx context.Context, limit int) ([]activity.Entry, error) {
	query := r.db.WithContext(ctx).Order("seq DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rows []models.ActivityEntryModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]activity.Entry, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// DeleteAll clears the log
func (r *GormActivityRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ActivityEntryModel{})
	return result.RowsAffected, result.Error
}

var _ activity.Repository = (*GormActivityRepository)(nil)
