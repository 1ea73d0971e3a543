package memory

import (
	"context"
	"sync"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
)

var _ repository.CursorStore = (*CursorStore)(nil)

// CursorStore keeps cursor chains in process memory.
type CursorStore struct {
	mu     sync.Mutex
	chains map[string]map[int]model.Cursor
}

func NewCursorStore() *CursorStore {
	return &CursorStore{chains: make(map[string]map[int]model.Cursor)}
}

func chainKey(sessionID, listing string) string {
	return sessionID + "/" + listing
}

func (s *CursorStore) Load(ctx context.Context, sessionID, listing string) (*model.CursorChain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain := model.NewCursorChain(sessionID, listing)
	for page, cur := range s.chains[chainKey(sessionID, listing)] {
		chain.Cursors[page] = cur
	}
	return chain, nil
}

func (s *CursorStore) Save(ctx context.Context, chain *model.CursorChain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cursors := make(map[int]model.Cursor, len(chain.Cursors))
	for page, cur := range chain.Cursors {
		cursors[page] = cur
	}
	s.chains[chainKey(chain.SessionID, chain.Listing)] = cursors
	return nil
}

func (s *CursorStore) Clear(ctx context.Context, sessionID, listing string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.chains, chainKey(sessionID, listing))
	return nil
}
