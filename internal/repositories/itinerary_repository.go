package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	dbm "tripwise/internal/models/db_models"
)

type ItineraryRepository interface {
	// SaveVersion stores snap as the next version of its goal and makes it
	// the active one.
	SaveVersion(ctx context.Context, snap *dbm.ItinerarySnapshot) error
	GetActive(ctx context.Context, goalID string) (*dbm.ItinerarySnapshot, error)
	// Rollback re-activates the version preceding the active one and returns
	// it, or nil when there is nothing to roll back to.
	Rollback(ctx context.Context, goalID string) (*dbm.ItinerarySnapshot, error)
}

type itineraryRepository struct {
	db *gorm.DB
}

func NewItineraryRepository(db *gorm.DB) ItineraryRepository {
	return &itineraryRepository{db: db}
}

func (r *itineraryRepository) SaveVersion(ctx context.Context, snap *dbm.ItinerarySnapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest int
		if err := tx.Model(&dbm.ItinerarySnapshot{}).
			Where("goal_id = ?", snap.GoalID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&latest).Error; err != nil {
			return err
		}
		if err := tx.Model(&dbm.ItinerarySnapshot{}).
			Where("goal_id = ? AND active = ?", snap.GoalID, true).
			Update("active", false).Error; err != nil {
			return err
		}
		snap.Version = latest + 1
		snap.Active = true
		return tx.Create(snap).Error
	})
}

func (r *itineraryRepository) GetActive(ctx context.Context, goalID string) (*dbm.ItinerarySnapshot, error) {
	var snap dbm.ItinerarySnapshot
	err := r.db.WithContext(ctx).
		Where("goal_id = ? AND active = ?", goalID, true).
		First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}

func (r *itineraryRepository) Rollback(ctx context.Context, goalID string) (*dbm.ItinerarySnapshot, error) {
	var out *dbm.ItinerarySnapshot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active dbm.ItinerarySnapshot
		if err := tx.Where("goal_id = ? AND active = ?", goalID, true).First(&active).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		var prev dbm.ItinerarySnapshot
		if err := tx.Where("goal_id = ? AND version < ?", goalID, active.Version).
			Order("version DESC").
			First(&prev).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Model(&active).Update("active", false).Error; err != nil {
			return err
		}
		if err := tx.Model(&prev).Update("active", true).Error; err != nil {
			return err
		}
		prev.Active = true
		out = &prev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
