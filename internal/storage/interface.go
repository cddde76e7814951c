package storage

import (
	"context"

	"github.com/mcoot/vibedraft/internal/model"
)

// SessionMutation edits a session in place. Returning an error aborts the
// update and nothing is written.
type SessionMutation func(session *model.Session) error

// DraftMutation edits a session and its draft pool as one unit. Returning an
// error aborts the update and nothing is written.
type DraftMutation func(session *model.Session, pool *model.DraftPool) error

// CardMutation edits a card in place. Returning an error aborts the update.
type CardMutation func(card *model.Card) error

// Storage defines the interface for data persistence.
//
// Update methods are atomic read-modify-write operations: the mutation sees
// the latest committed state, runs on a private copy, and its result is
// committed only if no other writer changed the record in between. Every
// committed write increments the record's Version.
type Storage interface {
	// Player operations
	EnsurePlayer(ctx context.Context, candidate *model.Player) (*model.Player, error)
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerBySubject(ctx context.Context, subject string) (*model.Player, error)

	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, username string) (*model.Account, error)

	// Session operations
	CreateSession(ctx context.Context, session *model.Session, pool *model.DraftPool) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	UpdateSession(ctx context.Context, id model.SessionID, fn SessionMutation) (*model.Session, error)
	ListSessionsByStatus(ctx context.Context, status model.SessionStatus) ([]*model.Session, error)
	ListSessionsForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Session, error)

	// Draft operations
	GetDraftPool(ctx context.Context, sessionID model.SessionID) (*model.DraftPool, error)
	UpdateDraft(ctx context.Context, sessionID model.SessionID, fn DraftMutation) (*model.Session, *model.DraftPool, error)

	// Card operations
	SaveCard(ctx context.Context, card *model.Card) error
	GetCard(ctx context.Context, id model.CardID) (*model.Card, error)
	UpdateCard(ctx context.Context, id model.CardID, fn CardMutation) (*model.Card, error)
	ListCards(ctx context.Context, filter model.CardFilter) ([]*model.Card, error)

	// Image operations
	SaveImage(ctx context.Context, image *model.Image) error
	GetImage(ctx context.Context, id model.ImageID) (*model.Image, error)
}
