package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Updates hold the write lock across read, mutation and write.
type Storage struct {
	mu sync.RWMutex

	players      map[model.PlayerID]*model.Player
	subjectIndex map[string]model.PlayerID
	accounts     map[string]*model.Account
	sessions     map[model.SessionID]*model.Session
	pools        map[model.SessionID]*model.DraftPool
	cards        map[model.CardID]*model.Card
	images       map[model.ImageID]*model.Image
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:      make(map[model.PlayerID]*model.Player),
		subjectIndex: make(map[string]model.PlayerID),
		accounts:     make(map[string]*model.Account),
		sessions:     make(map[model.SessionID]*model.Session),
		pools:        make(map[model.SessionID]*model.DraftPool),
		cards:        make(map[model.CardID]*model.Card),
		images:       make(map[model.ImageID]*model.Image),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) EnsurePlayer(ctx context.Context, candidate *model.Player) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.subjectIndex[candidate.AuthSubject]; ok {
		return s.players[id].Clone(), nil
	}
	s.players[candidate.ID] = candidate.Clone()
	s.subjectIndex[candidate.AuthSubject] = candidate.ID
	return candidate.Clone(), nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player.Clone(), nil
}

func (s *Storage) GetPlayerBySubject(ctx context.Context, subject string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.subjectIndex[subject]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return s.players[id].Clone(), nil
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.Username]; exists {
		return model.ErrUsernameTaken
	}
	a := *account
	s.accounts[account.Username] = &a
	return nil
}

func (s *Storage) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	a := *account
	return &a, nil
}

// Session operations

func (s *Storage) CreateSession(ctx context.Context, session *model.Session, pool *model.DraftPool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return model.ErrConcurrentUpdate
	}
	s.sessions[session.ID] = session.Clone()
	s.pools[session.ID] = pool.Clone()
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *Storage) UpdateSession(ctx context.Context, id model.SessionID, fn storage.SessionMutation) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.Version = current.Version + 1
	s.sessions[id] = next
	return next.Clone(), nil
}

func (s *Storage) ListSessionsByStatus(ctx context.Context, status model.SessionStatus) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.Session
	for _, session := range s.sessions {
		if session.Status == status {
			result = append(result, session.Clone())
		}
	}
	storage.SortSessions(result)
	return result, nil
}

func (s *Storage) ListSessionsForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.Session
	for _, session := range s.sessions {
		if session.IsParticipant(playerID) {
			result = append(result, session.Clone())
		}
	}
	storage.SortSessions(result)
	return result, nil
}

// Draft operations

func (s *Storage) GetDraftPool(ctx context.Context, sessionID model.SessionID) (*model.DraftPool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pool, ok := s.pools[sessionID]
	if !ok {
		return nil, model.ErrDraftNotFound
	}
	return pool.Clone(), nil
}

func (s *Storage) UpdateDraft(ctx context.Context, sessionID model.SessionID, fn storage.DraftMutation) (*model.Session, *model.DraftPool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil, model.ErrSessionNotFound
	}
	pool, ok := s.pools[sessionID]
	if !ok {
		return nil, nil, model.ErrDraftNotFound
	}

	nextSession, nextPool := session.Clone(), pool.Clone()
	if err := fn(nextSession, nextPool); err != nil {
		return nil, nil, err
	}
	nextSession.Version = session.Version + 1
	nextPool.Version = pool.Version + 1
	s.sessions[sessionID] = nextSession
	s.pools[sessionID] = nextPool
	return nextSession.Clone(), nextPool.Clone(), nil
}

// Card operations

func (s *Storage) SaveCard(ctx context.Context, card *model.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[card.ID] = card.Clone()
	return nil
}

func (s *Storage) GetCard(ctx context.Context, id model.CardID) (*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[id]
	if !ok {
		return nil, model.ErrCardNotFound
	}
	return card.Clone(), nil
}

func (s *Storage) UpdateCard(ctx context.Context, id model.CardID, fn storage.CardMutation) (*model.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[id]
	if !ok {
		return nil, model.ErrCardNotFound
	}
	next := card.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.cards[id] = next
	return next.Clone(), nil
}

func (s *Storage) ListCards(ctx context.Context, filter model.CardFilter) ([]*model.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*model.Card
	for _, card := range s.cards {
		if filter.Matches(card) {
			result = append(result, card.Clone())
		}
	}
	storage.SortCards(result)
	return result, nil
}

// Image operations

func (s *Storage) SaveImage(ctx context.Context, image *model.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	img := *image
	img.Data = slices.Clone(image.Data)
	s.images[image.ID] = &img
	return nil
}

func (s *Storage) GetImage(ctx context.Context, id model.ImageID) (*model.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	image, ok := s.images[id]
	if !ok {
		return nil, model.ErrImageNotFound
	}
	img := *image
	img.Data = slices.Clone(image.Data)
	return &img, nil
}
