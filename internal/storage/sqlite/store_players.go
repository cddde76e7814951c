package sqlite

import (
	"context"
	"database/sql"

	"github.com/mcoot/vibedraft/internal/model"
)

func (s *Store) EnsurePlayer(ctx context.Context, candidate *model.Player) (*model.Player, error) {
	data, err := encode(candidate)
	if err != nil {
		return nil, err
	}
	var result *model.Player
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO players (id, auth_subject, data, created_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT (auth_subject) DO NOTHING`,
			candidate.ID, candidate.AuthSubject, data, toMillis(candidate.CreatedAt),
		); err != nil {
			return err
		}
		result, err = getJSON[model.Player](ctx, tx, model.ErrPlayerNotFound,
			`SELECT data FROM players WHERE auth_subject = ?`, candidate.AuthSubject)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return getJSON[model.Player](ctx, s.db, model.ErrPlayerNotFound, `SELECT data FROM players WHERE id = ?`, id)
}

func (s *Store) GetPlayerBySubject(ctx context.Context, subject string) (*model.Player, error) {
	return getJSON[model.Player](ctx, s.db, model.ErrPlayerNotFound, `SELECT data FROM players WHERE auth_subject = ?`, subject)
}

func (s *Store) CreateAccount(ctx context.Context, account *model.Account) error {
	data, err := encode(account)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (username, data, created_at) VALUES (?, ?, ?) ON CONFLICT (username) DO NOTHING`,
		account.Username, data, toMillis(account.CreatedAt))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrUsernameTaken
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	return getJSON[model.Account](ctx, s.db, model.ErrAccountNotFound, `SELECT data FROM accounts WHERE username = ?`, username)
}
