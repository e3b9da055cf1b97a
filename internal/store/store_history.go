package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"innario/internal/hymnal"
)

// SelectionRecord carries one Sunday's hymns for persistence. Hymns are
// stored in service order with 1-based positions.
type SelectionRecord struct {
	WardID        int64
	SelectionDate time.Time
	FirstSunday   bool
	Festive       bool
	Festivity     hymnal.Festivity
	Hymns         []hymnal.Hymn
}

// RecordSelection stores a completed selection. The selection date keeps only
// its calendar day.
func (s *Store) RecordSelection(ctx context.Context, rec SelectionRecord) (*Selection, error) {
	if rec.WardID == 0 {
		return nil, errors.New("ward id is required")
	}
	if len(rec.Hymns) == 0 {
		return nil, errors.New("selection has no hymns")
	}
	if _, err := s.GetWard(ctx, rec.WardID); err != nil {
		return nil, err
	}

	date := timestamp(dateOnly(rec.SelectionDate))
	now := timestamp(time.Now())
	var selectionID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO hymn_selections (ward_id, selection_date, first_sunday, festive_sunday, festivity, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			rec.WardID, date, boolToInt(rec.FirstSunday), boolToInt(rec.Festive),
			nullableString(rec.Festivity.String()), now,
		)
		if err != nil {
			return fmt.Errorf("insert selection: %w", err)
		}
		selectionID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		for i, hymn := range rec.Hymns {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO selected_hymns (selection_id, hymn_number, hymn_title, hymn_category, position)
                 VALUES (?, ?, ?, ?, ?)`,
				selectionID, hymn.Number, hymn.Title, hymn.Category, i+1,
			); err != nil {
				return fmt.Errorf("insert selected hymn: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetSelection(ctx, selectionID)
}

// GetSelection fetches one selection with its hymns.
func (s *Store) GetSelection(ctx context.Context, id int64) (*Selection, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectionColumns+` FROM hymn_selections WHERE id = ?`, id)
	sel, err := scanSelection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("selection %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get selection: %w", err)
	}
	if err := s.loadSelectedHymns(ctx, []*Selection{sel}); err != nil {
		return nil, err
	}
	return sel, nil
}

// MostRecent returns the ward's latest selection, or nil when the ward has no
// history yet.
func (s *Store) MostRecent(ctx context.Context, wardID int64) (*Selection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectionColumns+` FROM hymn_selections
         WHERE ward_id = ? ORDER BY selection_date DESC, id DESC LIMIT 1`, wardID)
	sel, err := scanSelection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("most recent selection: %w", err)
	}
	if err := s.loadSelectedHymns(ctx, []*Selection{sel}); err != nil {
		return nil, err
	}
	return sel, nil
}

// WardHistory returns the ward's selections newest first. A non-positive
// limit defaults to 10.
func (s *Store) WardHistory(ctx context.Context, wardID int64, limit int) ([]*Selection, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectionColumns+` FROM hymn_selections
         WHERE ward_id = ? ORDER BY selection_date DESC, id DESC LIMIT ?`, wardID, limit)
	if err != nil {
		return nil, fmt.Errorf("ward history: %w", err)
	}
	defer rows.Close()

	var selections []*Selection
	for rows.Next() {
		sel, err := scanSelection(rows)
		if err != nil {
			return nil, err
		}
		selections = append(selections, sel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.loadSelectedHymns(ctx, selections); err != nil {
		return nil, err
	}
	return selections, nil
}

// RecentNumbers returns the distinct hymn numbers a ward sang within the
// given number of weeks before today.
func (s *Store) RecentNumbers(ctx context.Context, wardID int64, weeksBack int) (map[int]struct{}, error) {
	numbers := make(map[int]struct{})
	if weeksBack <= 0 {
		return numbers, nil
	}
	cutoff := timestamp(dateOnly(time.Now()).AddDate(0, 0, -7*weeksBack))
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT sh.hymn_number
         FROM selected_hymns sh
         JOIN hymn_selections hs ON hs.id = sh.selection_id
         WHERE hs.ward_id = ? AND hs.selection_date >= ?`, wardID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("recent numbers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var number int
		if err := rows.Scan(&number); err != nil {
			return nil, err
		}
		numbers[number] = struct{}{}
	}
	return numbers, rows.Err()
}

// DeleteWardHistory removes every selection a ward has recorded.
func (s *Store) DeleteWardHistory(ctx context.Context, wardID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM hymn_selections WHERE ward_id = ?`, wardID)
	if err != nil {
		return 0, fmt.Errorf("delete ward history: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

func (s *Store) loadSelectedHymns(ctx context.Context, selections []*Selection) error {
	if len(selections) == 0 {
		return nil
	}
	byID := make(map[int64]*Selection, len(selections))
	ids := make([]any, 0, len(selections))
	for _, sel := range selections {
		sel.Hymns = []SelectedHymn{}
		byID[sel.ID] = sel
		ids = append(ids, sel.ID)
	}
	query := `SELECT id, selection_id, hymn_number, hymn_title, hymn_category, position
        FROM selected_hymns WHERE selection_id IN (` + makePlaceholders(len(ids)) + `) ORDER BY selection_id, position`
	rows, err := s.db.QueryContext(ctx, query, ids...)
	if err != nil {
		return fmt.Errorf("load selected hymns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			hymn        SelectedHymn
			selectionID int64
		)
		if err := rows.Scan(&hymn.ID, &selectionID, &hymn.Number, &hymn.Title, &hymn.Category, &hymn.Position); err != nil {
			return err
		}
		if sel, ok := byID[selectionID]; ok {
			sel.Hymns = append(sel.Hymns, hymn)
		}
	}
	return rows.Err()
}

const selectionColumns = `id, ward_id, selection_date, first_sunday, festive_sunday, festivity, created_at`

func scanSelection(scanner interface{ Scan(dest ...any) error }) (*Selection, error) {
	var (
		sel         Selection
		firstSunday int
		festive     int
		festivity   sql.NullString
		dateRaw     string
		createdRaw  string
	)
	err := scanner.Scan(&sel.ID, &sel.WardID, &dateRaw, &firstSunday, &festive, &festivity, &createdRaw)
	if err != nil {
		return nil, err
	}
	sel.FirstSunday = firstSunday != 0
	sel.Festive = festive != 0
	sel.Festivity = hymnal.Festivity(festivity.String)
	if date, err := parseTimeString(dateRaw); err == nil {
		sel.SelectionDate = date
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		sel.CreatedAt = created
	}
	return &sel, nil
}

// dateOnly strips the time of day, keeping the calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
