package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbm "tripwise/internal/models/db_models"
)

type DestinationEmbeddingRepository interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]dbm.DestinationEmbedding, error)
	Upsert(ctx context.Context, e *dbm.DestinationEmbedding) error
}

type destinationEmbeddingRepository struct {
	db *gorm.DB
}

func NewDestinationEmbeddingRepository(db *gorm.DB) DestinationEmbeddingRepository {
	return &destinationEmbeddingRepository{db: db}
}

func (r *destinationEmbeddingRepository) GetByIDs(ctx context.Context, ids []string) (map[string]dbm.DestinationEmbedding, error) {
	out := make(map[string]dbm.DestinationEmbedding, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []dbm.DestinationEmbedding
	if err := r.db.WithContext(ctx).Where("destination_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.DestinationID] = row
	}
	return out, nil
}

func (r *destinationEmbeddingRepository) Upsert(ctx context.Context, e *dbm.DestinationEmbedding) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "destination_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "category", "location", "tags", "embedding"}),
		}).
		Create(e).Error
}
