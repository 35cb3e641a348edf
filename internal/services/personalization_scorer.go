package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pgvector/pgvector-go"

	"tripwise/internal/models/db_models"
	dm "tripwise/internal/models/domain_models"
	"tripwise/internal/repositories"
	"tripwise/pkg/utils"
)

// NeutralPersonalizationScorer scores every destination 0.5. It is used when
// no embedding provider is configured.
type NeutralPersonalizationScorer struct{}

func (NeutralPersonalizationScorer) BaseScore(context.Context, string, dm.Constraints, dm.Destination) (float64, error) {
	return neutralScore, nil
}

// EmbeddingPersonalizationScorer compares the traveler's interests with the
// destination description in embedding space.
type EmbeddingPersonalizationScorer struct {
	client utils.EmbeddingClientInterface
	repo   repositories.DestinationEmbeddingRepository

	mu        sync.RWMutex
	profiles  map[string]pgvector.Vector
	embedding map[string]pgvector.Vector
}

func NewEmbeddingPersonalizationScorer(client utils.EmbeddingClientInterface, repo repositories.DestinationEmbeddingRepository) *EmbeddingPersonalizationScorer {
	return &EmbeddingPersonalizationScorer{
		client:    client,
		repo:      repo,
		profiles:  make(map[string]pgvector.Vector),
		embedding: make(map[string]pgvector.Vector),
	}
}

func (s *EmbeddingPersonalizationScorer) BaseScore(ctx context.Context, _ string, c dm.Constraints, d dm.Destination) (float64, error) {
	text := profileText(c)
	if text == "" {
		return neutralScore, nil
	}
	pv, err := s.profileVector(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", utils.ErrScorerUnavailable, err)
	}
	dv, err := s.destinationVector(ctx, d)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", utils.ErrScorerUnavailable, err)
	}
	return (utils.CosineSimilarity(pv, dv) + 1) / 2, nil
}

func (s *EmbeddingPersonalizationScorer) profileVector(ctx context.Context, text string) (pgvector.Vector, error) {
	s.mu.RLock()
	v, ok := s.profiles[text]
	s.mu.RUnlock()
	if ok {
		return v, nil
	}
	v, err := s.client.GetEmbedding(ctx, text)
	if err != nil {
		return pgvector.Vector{}, err
	}
	s.mu.Lock()
	s.profiles[text] = v
	s.mu.Unlock()
	return v, nil
}

func (s *EmbeddingPersonalizationScorer) destinationVector(ctx context.Context, d dm.Destination) (pgvector.Vector, error) {
	s.mu.RLock()
	v, ok := s.embedding[d.ID]
	s.mu.RUnlock()
	if ok {
		return v, nil
	}

	if s.repo != nil {
		stored, err := s.repo.GetByIDs(ctx, []string{d.ID})
		if err != nil {
			slog.Warn("load destination embedding failed", "destination_id", d.ID, "error", err)
		} else if row, ok := stored[d.ID]; ok && len(row.Embedding.Slice()) > 0 {
			s.remember(d.ID, row.Embedding)
			return row.Embedding, nil
		}
	}

	v, err := s.client.GetEmbedding(ctx, destinationText(d))
	if err != nil {
		return pgvector.Vector{}, err
	}
	s.remember(d.ID, v)

	if s.repo != nil {
		row := &db_models.DestinationEmbedding{
			DestinationID: d.ID,
			Name:          d.Name,
			Description:   d.Description,
			Category:      d.Category,
			Location:      d.Location,
			Tags:          d.Tags,
			Embedding:     v,
		}
		if err := s.repo.Upsert(ctx, row); err != nil {
			slog.Warn("store destination embedding failed", "destination_id", d.ID, "error", err)
		}
	}
	return v, nil
}

func (s *EmbeddingPersonalizationScorer) remember(id string, v pgvector.Vector) {
	s.mu.Lock()
	s.embedding[id] = v
	s.mu.Unlock()
}

func profileText(c dm.Constraints) string {
	parts := make([]string, 0, len(c.Interests)+len(c.Cities)+1)
	parts = append(parts, c.Interests...)
	parts = append(parts, c.Cities...)
	if c.GoalAware {
		parts = append(parts, string(c.GoalType)+" travel")
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func destinationText(d dm.Destination) string {
	parts := []string{d.Name, d.Category, d.Location}
	parts = append(parts, d.Tags...)
	if d.Description != "" {
		parts = append(parts, d.Description)
	}
	return strings.Join(parts, " ")
}
