package records

import (
	"context"

	"github.com/crmforge/pipedex/internal/domain"
	"github.com/crmforge/pipedex/internal/domain/record"
)

// Reader fetches records from the CRM.
type Reader interface {
	FetchAll(ctx context.Context, kind domain.EntityKind, limit int) ([]record.Record, error)
	FetchByID(ctx context.Context, kind domain.EntityKind, id int64) (record.Record, error)
}

// Mutator creates and updates CRM records. Payload fields pass through to
// the API unmapped; the CRM owns the schema.
type Mutator interface {
	Create(ctx context.Context, kind domain.EntityKind, fields map[string]any) (record.Record, error)
	Update(ctx context.Context, kind domain.EntityKind, id int64, fields map[string]any) (record.Record, error)
}
