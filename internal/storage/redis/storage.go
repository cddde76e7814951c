package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Read-modify-write operations use WATCH/MULTI and are retried when a
// watched key changes underneath them.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getJSON[T any](ctx context.Context, g getter, key string, notFound error) (*T, error) {
	data, err := g.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// mgetJSON loads the given keys, skipping ones that have expired
func mgetJSON[T any](ctx context.Context, client *redis.Client, keys []string) ([]*T, error) {
	if len(keys) == 0 {
		return []*T{}, nil
	}
	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(values))
	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(str), &v); err != nil {
			continue // Skip invalid data
		}
		out = append(out, &v)
	}
	return out, nil
}

// watch runs txf under WATCH on keys, retrying when the transaction is
// aborted by a concurrent write
func (s *Storage) watch(ctx context.Context, txf func(tx *redis.Tx) error, keys ...string) error {
	for range s.cfg.MaxTxRetries {
		err := s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return model.ErrConcurrentUpdate
}

// Player operations

func (s *Storage) playerTTL(p *model.Player) time.Duration {
	if strings.HasPrefix(p.AuthSubject, model.GuestSubjectPrefix) {
		return s.cfg.GuestPlayerTTL
	}
	return 0
}

func (s *Storage) EnsurePlayer(ctx context.Context, candidate *model.Player) (*model.Player, error) {
	data, err := json.Marshal(candidate)
	if err != nil {
		return nil, err
	}
	idxKey := subjectIndexKey(candidate.AuthSubject)

	var result *model.Player
	err = s.watch(ctx, func(tx *redis.Tx) error {
		existingID, err := tx.Get(ctx, idxKey).Result()
		if err == nil {
			result, err = getJSON[model.Player](ctx, tx, playerKey(model.PlayerID(existingID)), model.ErrPlayerNotFound)
			return err
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}

		ttl := s.playerTTL(candidate)
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, playerKey(candidate.ID), data, ttl)
			pipe.Set(ctx, idxKey, string(candidate.ID), ttl)
			return nil
		})
		if err == nil {
			result = candidate.Clone()
		}
		return err
	}, idxKey)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return getJSON[model.Player](ctx, s.client, playerKey(id), model.ErrPlayerNotFound)
}

func (s *Storage) GetPlayerBySubject(ctx context.Context, subject string) (*model.Player, error) {
	id, err := s.client.Get(ctx, subjectIndexKey(subject)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return s.GetPlayer(ctx, model.PlayerID(id))
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}
	created, err := s.client.SetNX(ctx, accountKey(account.Username), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrUsernameTaken
	}
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	return getJSON[model.Account](ctx, s.client, accountKey(username), model.ErrAccountNotFound)
}

// Session operations

func (s *Storage) CreateSession(ctx context.Context, session *model.Session, pool *model.DraftPool) error {
	sessionData, err := json.Marshal(session)
	if err != nil {
		return err
	}
	poolData, err := json.Marshal(pool)
	if err != nil {
		return err
	}

	key := sessionKey(session.ID)
	return s.watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return model.ErrConcurrentUpdate
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, sessionData, s.cfg.SessionTTL)
			pipe.Set(ctx, draftKey(session.ID), poolData, s.cfg.SessionTTL)
			s.indexSession(ctx, pipe, nil, session)
			return nil
		})
		return err
	}, key)
}

// indexSession moves the session between index sets to match its new state
func (s *Storage) indexSession(ctx context.Context, pipe redis.Pipeliner, before, after *model.Session) {
	key := sessionKey(after.ID)
	if before == nil || before.Status != after.Status {
		if before != nil {
			pipe.SRem(ctx, sessionsByStatusKey(before.Status), key)
		}
		pipe.SAdd(ctx, sessionsByStatusKey(after.Status), key)
	}
	for _, id := range []model.PlayerID{after.Player1, after.Player2} {
		if id != "" && (before == nil || !before.IsParticipant(id)) {
			pipe.SAdd(ctx, sessionsForPlayerKey(id), key)
		}
	}
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return getJSON[model.Session](ctx, s.client, sessionKey(id), model.ErrSessionNotFound)
}

func (s *Storage) UpdateSession(ctx context.Context, id model.SessionID, fn storage.SessionMutation) (*model.Session, error) {
	key := sessionKey(id)
	var result *model.Session
	err := s.watch(ctx, func(tx *redis.Tx) error {
		current, err := getJSON[model.Session](ctx, tx, key, model.ErrSessionNotFound)
		if err != nil {
			return err
		}
		next := current.Clone()
		if err := fn(next); err != nil {
			return err
		}
		next.Version = current.Version + 1
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.cfg.SessionTTL)
			s.indexSession(ctx, pipe, current, next)
			return nil
		})
		if err == nil {
			result = next
		}
		return err
	}, key)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Storage) listSessions(ctx context.Context, indexKey string) ([]*model.Session, error) {
	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	sessions, err := mgetJSON[model.Session](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	storage.SortSessions(sessions)
	return sessions, nil
}

func (s *Storage) ListSessionsByStatus(ctx context.Context, status model.SessionStatus) ([]*model.Session, error) {
	sessions, err := s.listSessions(ctx, sessionsByStatusKey(status))
	if err != nil {
		return nil, err
	}
	// Index membership is updated in the same transaction as the record,
	// but filter anyway in case an expired key was re-created
	filtered := sessions[:0]
	for _, session := range sessions {
		if session.Status == status {
			filtered = append(filtered, session)
		}
	}
	return filtered, nil
}

func (s *Storage) ListSessionsForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Session, error) {
	return s.listSessions(ctx, sessionsForPlayerKey(playerID))
}

// Draft operations

func (s *Storage) GetDraftPool(ctx context.Context, sessionID model.SessionID) (*model.DraftPool, error) {
	return getJSON[model.DraftPool](ctx, s.client, draftKey(sessionID), model.ErrDraftNotFound)
}

func (s *Storage) UpdateDraft(ctx context.Context, sessionID model.SessionID, fn storage.DraftMutation) (*model.Session, *model.DraftPool, error) {
	sKey, dKey := sessionKey(sessionID), draftKey(sessionID)
	var (
		resultSession *model.Session
		resultPool    *model.DraftPool
	)
	err := s.watch(ctx, func(tx *redis.Tx) error {
		session, err := getJSON[model.Session](ctx, tx, sKey, model.ErrSessionNotFound)
		if err != nil {
			return err
		}
		pool, err := getJSON[model.DraftPool](ctx, tx, dKey, model.ErrDraftNotFound)
		if err != nil {
			return err
		}

		nextSession, nextPool := session.Clone(), pool.Clone()
		if err := fn(nextSession, nextPool); err != nil {
			return err
		}
		nextSession.Version = session.Version + 1
		nextPool.Version = pool.Version + 1

		sessionData, err := json.Marshal(nextSession)
		if err != nil {
			return err
		}
		poolData, err := json.Marshal(nextPool)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, sKey, sessionData, s.cfg.SessionTTL)
			pipe.Set(ctx, dKey, poolData, s.cfg.SessionTTL)
			s.indexSession(ctx, pipe, session, nextSession)
			return nil
		})
		if err == nil {
			resultSession, resultPool = nextSession, nextPool
		}
		return err
	}, sKey, dKey)
	if err != nil {
		return nil, nil, err
	}
	return resultSession, resultPool, nil
}

// Card operations

func (s *Storage) SaveCard(ctx context.Context, card *model.Card) error {
	data, err := json.Marshal(card)
	if err != nil {
		return err
	}

	key := cardKey(card.ID)
	indexKey := cardsForSessionKey(card.SessionID)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, key, data, s.cfg.CardTTL)
	pipe.SAdd(ctx, indexKey, key)
	pipe.SAdd(ctx, allCardsKey(), key)
	if s.cfg.CardTTL > 0 {
		pipe.Expire(ctx, indexKey, s.cfg.CardTTL) // Keep index TTL in sync
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetCard(ctx context.Context, id model.CardID) (*model.Card, error) {
	return getJSON[model.Card](ctx, s.client, cardKey(id), model.ErrCardNotFound)
}

func (s *Storage) UpdateCard(ctx context.Context, id model.CardID, fn storage.CardMutation) (*model.Card, error) {
	key := cardKey(id)
	var result *model.Card
	err := s.watch(ctx, func(tx *redis.Tx) error {
		card, err := getJSON[model.Card](ctx, tx, key, model.ErrCardNotFound)
		if err != nil {
			return err
		}
		next := card.Clone()
		if err := fn(next); err != nil {
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.cfg.CardTTL)
			return nil
		})
		if err == nil {
			result = next
		}
		return err
	}, key)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Storage) ListCards(ctx context.Context, filter model.CardFilter) ([]*model.Card, error) {
	indexKey := allCardsKey()
	if filter.SessionID != "" {
		indexKey = cardsForSessionKey(filter.SessionID)
	}
	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	cards, err := mgetJSON[model.Card](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}

	result := make([]*model.Card, 0, len(cards))
	for _, card := range cards {
		if filter.Matches(card) {
			result = append(result, card)
		}
	}
	storage.SortCards(result)
	return result, nil
}

// Image operations

func (s *Storage) SaveImage(ctx context.Context, image *model.Image) error {
	data, err := json.Marshal(image)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, imageKey(image.ID), data, s.cfg.ImageTTL).Err()
}

func (s *Storage) GetImage(ctx context.Context, id model.ImageID) (*model.Image, error) {
	return getJSON[model.Image](ctx, s.client, imageKey(id), model.ErrImageNotFound)
}
