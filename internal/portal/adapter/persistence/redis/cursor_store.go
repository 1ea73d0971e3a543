package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/logger"

	goredis "github.com/redis/go-redis/v9"
)

var _ repository.CursorStore = (*CursorStore)(nil)

const keyPrefix = "portal:cursors"

// CursorStore keeps one hash per (session, listing): field = page number,
// value = the JSON cursor recorded for that page. Idle chains expire.
type CursorStore struct {
	client goredis.UniversalClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCursorStore(client goredis.UniversalClient, ttl time.Duration, log logger.Logger) *CursorStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &CursorStore{client: client, ttl: ttl, logger: log.WithComponent("cursor-store")}
}

func chainKey(sessionID, listing string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, sessionID, listing)
}

func (s *CursorStore) Load(ctx context.Context, sessionID, listing string) (*model.CursorChain, error) {
	raw, err := s.client.HGetAll(ctx, chainKey(sessionID, listing)).Result()
	if err != nil {
		return nil, fmt.Errorf("load cursors: %w", err)
	}
	chain := model.NewCursorChain(sessionID, listing)
	for field, value := range raw {
		page, err := strconv.Atoi(field)
		if err != nil {
			s.logger.Warnf("skip cursor with page %q", field)
			continue
		}
		var cur model.Cursor
		if err := json.Unmarshal([]byte(value), &cur); err != nil {
			s.logger.Warnf("skip undecodable cursor for page %d: %v", page, err)
			continue
		}
		chain.Cursors[page] = cur
	}
	return chain, nil
}

// Save replaces the stored chain and refreshes its expiry.
func (s *CursorStore) Save(ctx context.Context, chain *model.CursorChain) error {
	key := chainKey(chain.SessionID, chain.Listing)
	values := make(map[string]interface{}, len(chain.Cursors))
	for page, cur := range chain.Cursors {
		data, err := json.Marshal(cur)
		if err != nil {
			return fmt.Errorf("encode cursor for page %d: %w", page, err)
		}
		values[strconv.Itoa(page)] = string(data)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values)
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save cursors: %w", err)
	}
	return nil
}

func (s *CursorStore) Clear(ctx context.Context, sessionID, listing string) error {
	if err := s.client.Del(ctx, chainKey(sessionID, listing)).Err(); err != nil {
		return fmt.Errorf("clear cursors: %w", err)
	}
	return nil
}
