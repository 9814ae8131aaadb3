package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateHand(ctx context.Context, h Hand) (string, error) {
	if h.ID == "" {
		h.ID = NewID()
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO hands (id, room_id, hand_number, dealer_id, small_blind, big_blind, start_chips)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		h.ID, h.RoomID, h.HandNumber, h.DealerID, h.SmallBlind, h.BigBlind, h.StartChips)
	if err != nil {
		return "", fmt.Errorf("insert hand: %w", err)
	}
	return h.ID, nil
}

func (s *Store) RecordAction(ctx context.Context, a HandAction) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO hand_actions (id, hand_id, seq, player_id, street, action_type, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.HandID, a.Seq, a.PlayerID, a.Street, a.ActionType, a.Amount)
	if err != nil {
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

// EndHand stores the outcome and every pot award in one transaction.
func (s *Store) EndHand(ctx context.Context, handID string, res HandResult) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE hands
		SET winner_id = $2, winner_name = $3, hand_category = $4, pot = $5, board = $6, ended_at = now()
		WHERE id = $1`,
		handID, res.WinnerID, res.WinnerName, res.HandCategory, res.Pot, res.Board)
	if err != nil {
		return fmt.Errorf("update hand: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	ids := make([]string, 0, len(res.Awards))
	for id := range res.Awards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, playerID := range ids {
		if res.Awards[playerID] <= 0 {
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO pot_awards (id, hand_id, player_id, amount) VALUES ($1, $2, $3, $4)`,
			NewID(), handID, playerID, res.Awards[playerID]); err != nil {
			return fmt.Errorf("insert award: %w", err)
		}
	}
	return tx.Commit(ctx)
}

const handColumns = `id, room_id, hand_number, dealer_id, small_blind, big_blind, start_chips,
	winner_id, winner_name, hand_category, pot, board, started_at, ended_at`

func scanHand(row pgx.Row) (Hand, error) {
	var h Hand
	err := row.Scan(&h.ID, &h.RoomID, &h.HandNumber, &h.DealerID, &h.SmallBlind, &h.BigBlind, &h.StartChips,
		&h.WinnerID, &h.WinnerName, &h.HandCategory, &h.Pot, &h.Board, &h.StartedAt, &h.EndedAt)
	return h, err
}

func (s *Store) GetHand(ctx context.Context, handID string) (*Hand, error) {
	h, err := scanHand(s.Pool.QueryRow(ctx, `SELECT `+handColumns+` FROM hands WHERE id = $1`, handID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

// ListRecentHands returns hands newest first. An empty roomID lists every room.
func (s *Store) ListRecentHands(ctx context.Context, roomID string, limit, offset int) ([]Hand, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT `+handColumns+`
		FROM hands
		WHERE ($1 = '' OR room_id = $1)
		ORDER BY started_at DESC, id DESC
		LIMIT $2 OFFSET $3`, roomID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Hand{}
	for rows.Next() {
		h, err := scanHand(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) ListHandActions(ctx context.Context, handID string) ([]HandAction, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, hand_id, seq, player_id, street, action_type, amount, created_at
		FROM hand_actions WHERE hand_id = $1 ORDER BY seq`, handID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []HandAction{}
	for rows.Next() {
		var a HandAction
		if err := rows.Scan(&a.ID, &a.HandID, &a.Seq, &a.PlayerID, &a.Street, &a.ActionType, &a.Amount, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) ListPotAwards(ctx context.Context, handID string) ([]PotAward, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, hand_id, player_id, amount, created_at
		FROM pot_awards WHERE hand_id = $1 ORDER BY player_id`, handID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PotAward{}
	for rows.Next() {
		var a PotAward
		if err := rows.Scan(&a.ID, &a.HandID, &a.PlayerID, &a.Amount, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
