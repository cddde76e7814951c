package sqlite

import (
	"context"
	"database/sql"

	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage"
)

func (s *Store) CreateSession(ctx context.Context, session *model.Session, pool *model.DraftPool) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, session.ID).Scan(&exists); err != nil {
			return err
		}
		if exists > 0 {
			return model.ErrConcurrentUpdate
		}
		if err := writeSession(ctx, tx, session, true); err != nil {
			return err
		}
		return writePool(ctx, tx, pool, true)
	})
}

func writeSession(ctx context.Context, tx *sql.Tx, session *model.Session, insert bool) error {
	data, err := encode(session)
	if err != nil {
		return err
	}
	if insert {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sessions (id, status, player1, player2, version, data, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			session.ID, session.Status, session.Player1, session.Player2, session.Version, data, toMillis(session.CreatedAt))
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE sessions SET status = ?, player2 = ?, version = ?, data = ? WHERE id = ?`,
		session.Status, session.Player2, session.Version, data, session.ID)
	return err
}

func writePool(ctx context.Context, tx *sql.Tx, pool *model.DraftPool, insert bool) error {
	data, err := encode(pool)
	if err != nil {
		return err
	}
	if insert {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO draft_pools (session_id, version, data) VALUES (?, ?, ?)`,
			pool.SessionID, pool.Version, data)
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE draft_pools SET version = ?, data = ? WHERE session_id = ?`,
		pool.Version, data, pool.SessionID)
	return err
}

func (s *Store) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return getJSON[model.Session](ctx, s.db, model.ErrSessionNotFound, `SELECT data FROM sessions WHERE id = ?`, id)
}

func (s *Store) UpdateSession(ctx context.Context, id model.SessionID, fn storage.SessionMutation) (*model.Session, error) {
	var result *model.Session
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getJSON[model.Session](ctx, tx, model.ErrSessionNotFound, `SELECT data FROM sessions WHERE id = ?`, id)
		if err != nil {
			return err
		}
		next := current.Clone()
		if err := fn(next); err != nil {
			return err
		}
		next.Version = current.Version + 1
		if err := writeSession(ctx, tx, next, false); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) ListSessionsByStatus(ctx context.Context, status model.SessionStatus) ([]*model.Session, error) {
	sessions, err := listJSON[model.Session](ctx, s.db, `SELECT data FROM sessions WHERE status = ?`, status)
	if err != nil {
		return nil, err
	}
	storage.SortSessions(sessions)
	return sessions, nil
}

func (s *Store) ListSessionsForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Session, error) {
	sessions, err := listJSON[model.Session](ctx, s.db, `SELECT data FROM sessions WHERE player1 = ? OR player2 = ?`, playerID, playerID)
	if err != nil {
		return nil, err
	}
	storage.SortSessions(sessions)
	return sessions, nil
}

func (s *Store) GetDraftPool(ctx context.Context, sessionID model.SessionID) (*model.DraftPool, error) {
	return getJSON[model.DraftPool](ctx, s.db, model.ErrDraftNotFound, `SELECT data FROM draft_pools WHERE session_id = ?`, sessionID)
}

func (s *Store) UpdateDraft(ctx context.Context, sessionID model.SessionID, fn storage.DraftMutation) (*model.Session, *model.DraftPool, error) {
	var (
		resultSession *model.Session
		resultPool    *model.DraftPool
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		session, err := getJSON[model.Session](ctx, tx, model.ErrSessionNotFound, `SELECT data FROM sessions WHERE id = ?`, sessionID)
		if err != nil {
			return err
		}
		pool, err := getJSON[model.DraftPool](ctx, tx, model.ErrDraftNotFound, `SELECT data FROM draft_pools WHERE session_id = ?`, sessionID)
		if err != nil {
			return err
		}

		nextSession, nextPool := session.Clone(), pool.Clone()
		if err := fn(nextSession, nextPool); err != nil {
			return err
		}
		nextSession.Version = session.Version + 1
		nextPool.Version = pool.Version + 1

		if err := writeSession(ctx, tx, nextSession, false); err != nil {
			return err
		}
		if err := writePool(ctx, tx, nextPool, false); err != nil {
			return err
		}
		resultSession, resultPool = nextSession, nextPool
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return resultSession, resultPool, nil
}
