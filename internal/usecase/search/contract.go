package search

import (
	"context"

	"github.com/crmforge/pipedex/internal/domain"
	"github.com/crmforge/pipedex/internal/domain/record"
)

// Source is the remote record source. RemoteSearch is the CRM's own search
// endpoint and is known-unreliable: it may return nothing for data that
// exists, which is why the client-side filter and fuzzy engines exist.
type Source interface {
	FetchAll(ctx context.Context, kind domain.EntityKind, limit int) ([]record.Record, error)
	FetchByID(ctx context.Context, kind domain.EntityKind, id int64) (record.Record, error)
	RemoteSearch(ctx context.Context, kind domain.EntityKind, term string) ([]record.Record, error)
}
