package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/storage"
)

func (s *Store) SaveCard(ctx context.Context, card *model.Card) error {
	data, err := encode(card)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cards (id, session_id, owner_id, location, data, created_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET session_id = excluded.session_id, owner_id = excluded.owner_id,
		 location = excluded.location, data = excluded.data`,
		card.ID, card.SessionID, card.OwnerID, card.Location, data, toMillis(card.CreatedAt))
	return err
}

func (s *Store) GetCard(ctx context.Context, id model.CardID) (*model.Card, error) {
	return getJSON[model.Card](ctx, s.db, model.ErrCardNotFound, `SELECT data FROM cards WHERE id = ?`, id)
}

func (s *Store) UpdateCard(ctx context.Context, id model.CardID, fn storage.CardMutation) (*model.Card, error) {
	var result *model.Card
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		card, err := getJSON[model.Card](ctx, tx, model.ErrCardNotFound, `SELECT data FROM cards WHERE id = ?`, id)
		if err != nil {
			return err
		}
		next := card.Clone()
		if err := fn(next); err != nil {
			return err
		}
		data, err := encode(next)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE cards SET location = ?, data = ? WHERE id = ?`, next.Location, data, id); err != nil {
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

func (s *Store) ListCards(ctx context.Context, filter model.CardFilter) ([]*model.Card, error) {
	var (
		where []string
		args  []any
	)
	if filter.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.Location != "" {
		where = append(where, "location = ?")
		args = append(args, filter.Location)
	}
	query := `SELECT data FROM cards`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	cards, err := listJSON[model.Card](ctx, s.db, query, args...)
	if err != nil {
		return nil, err
	}
	storage.SortCards(cards)
	return cards, nil
}

func (s *Store) SaveImage(ctx context.Context, image *model.Image) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO images (id, card_id, content_type, data, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET content_type = excluded.content_type, data = excluded.data`,
		image.ID, image.CardID, image.ContentType, image.Data, toMillis(image.CreatedAt))
	return err
}

func (s *Store) GetImage(ctx context.Context, id model.ImageID) (*model.Image, error) {
	var (
		image     model.Image
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, card_id, content_type, data, created_at FROM images WHERE id = ?`, id,
	).Scan(&image.ID, &image.CardID, &image.ContentType, &image.Data, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrImageNotFound
		}
		return nil, err
	}
	image.CreatedAt = fromMillis(createdAt)
	return &image, nil
}
