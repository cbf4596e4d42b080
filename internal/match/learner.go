package match

import (
	"context"
	"fmt"
)

// Learner folds confirmed best matches into the aggregate pattern tables
// so future candidate ranking can lean on accumulated evidence. It is
// called once per confirmed best match per order, never per candidate.
type Learner struct {
	store Store
}

func NewLearner(store Store) *Learner {
	return &Learner{store: store}
}

// RecordMatch updates the title-pattern and category-relationship
// aggregates with one confirmed match.
func (l *Learner) RecordMatch(ctx context.Context, source Article, best BestMatch) error {
	if err := l.store.UpsertTitlePattern(ctx, source.TitleHash, best.TargetTitleHash, best.Similarity); err != nil {
		return fmt.Errorf("record title pattern: %w", err)
	}
	if err := l.store.UpsertCategoryRelationship(ctx, source.Category, best.TargetCategory, best.Similarity); err != nil {
		return fmt.Errorf("record category relationship: %w", err)
	}
	return nil
}
