package db_models

import (
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

type DestinationEmbedding struct {
	DestinationID string `gorm:"primaryKey;column:destination_id"`
	Name          string
	Description   string
	Category      string
	Location      string
	Tags          pq.StringArray  `gorm:"type:text[]"`
	Embedding     pgvector.Vector `gorm:"type:vector(1536)"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`
}
