package repository

import (
	"context"

	"flightdeck-service/internal/domain/entity"
)

// CriteriaParser turns free text into a criteria patch. The implementation is
// an external collaborator; failures are recoverable and leave criteria as
// they were.
type CriteriaParser interface {
	Parse(ctx context.Context, text string) (*entity.CriteriaPatch, error)
}
