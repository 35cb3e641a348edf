package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbm "tripwise/internal/models/db_models"
)

type GoalRepository interface {
	// CreateIfAbsent inserts the goal and its milestones unless the user
	// already has a goal of the same type, in which case that goal is returned.
	CreateIfAbsent(ctx context.Context, goal *dbm.Goal) (*dbm.Goal, bool, error)
	GetByID(ctx context.Context, id string) (*dbm.Goal, error)
	GetByUserAndType(ctx context.Context, userID, goalType string) (*dbm.Goal, error)
	// UpdateLocked loads the goal under a row lock, applies fn and persists
	// the goal and its milestones in the same transaction. It returns nil, nil
	// when the goal does not exist.
	UpdateLocked(ctx context.Context, id string, fn func(goal *dbm.Goal) error) (*dbm.Goal, error)
}

type goalRepository struct {
	db *gorm.DB
}

func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) CreateIfAbsent(ctx context.Context, goal *dbm.Goal) (*dbm.Goal, bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(goal)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		for i := range goal.Milestones {
			goal.Milestones[i].GoalID = goal.ID
		}
		if len(goal.Milestones) > 0 {
			return tx.Create(&goal.Milestones).Error
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		return goal, true, nil
	}
	existing, err := r.GetByUserAndType(ctx, goal.UserID, goal.Type)
	return existing, false, err
}

func (r *goalRepository) GetByID(ctx context.Context, id string) (*dbm.Goal, error) {
	var goal dbm.Goal
	err := r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("type, target_value") }).
		Where("id = ?", id).
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &goal, nil
}

func (r *goalRepository) GetByUserAndType(ctx context.Context, userID, goalType string) (*dbm.Goal, error) {
	var goal dbm.Goal
	err := r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("type, target_value") }).
		Where("user_id = ? AND type = ?", userID, goalType).
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &goal, nil
}

func (r *goalRepository) UpdateLocked(ctx context.Context, id string, fn func(goal *dbm.Goal) error) (*dbm.Goal, error) {
	var out *dbm.Goal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var goal dbm.Goal
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&goal).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("goal_id = ?", goal.ID).Order("type, target_value").Find(&goal.Milestones).Error; err != nil {
			return err
		}

		if err := fn(&goal); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(&goal).Error; err != nil {
			return err
		}
		for i := range goal.Milestones {
			if err := tx.Save(&goal.Milestones[i]).Error; err != nil {
				return err
			}
		}
		out = &goal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
