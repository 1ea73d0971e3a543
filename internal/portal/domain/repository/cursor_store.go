package repository

import (
	"context"

	"consultancy-portal/internal/portal/domain/model"
)

// CursorStore keeps pagination cursor chains per (session, listing).
type CursorStore interface {
	// Load returns the stored chain, or an empty chain when none exists.
	Load(ctx context.Context, sessionID, listing string) (*model.CursorChain, error)
	Save(ctx context.Context, chain *model.CursorChain) error
	Clear(ctx context.Context, sessionID, listing string) error
}
