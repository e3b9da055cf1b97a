package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CreateArea inserts a new area with a unique name.
func (s *Store) CreateArea(ctx context.Context, name string) (*Area, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("area name is required")
	}
	if taken, err := s.nameTaken(ctx, "areas", name, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("area %q: %w", name, ErrConflict)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO areas (name, created_at) VALUES (?, ?)`,
		name, timestamp(time.Now()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("area %q: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("insert area: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetArea(ctx, id)
}

// GetArea fetches an area with its stake count.
func (s *Store) GetArea(ctx context.Context, id int64) (*Area, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT a.id, a.name, a.created_at, COUNT(s.id)
         FROM areas a LEFT JOIN stakes s ON s.area_id = a.id
         WHERE a.id = ? GROUP BY a.id`, id)
	area, err := scanArea(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("area %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get area: %w", err)
	}
	return area, nil
}

// ListAreas returns every area ordered by name.
func (s *Store) ListAreas(ctx context.Context) ([]*Area, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.name, a.created_at, COUNT(s.id)
         FROM areas a LEFT JOIN stakes s ON s.area_id = a.id
         GROUP BY a.id ORDER BY a.name`)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	defer rows.Close()

	var areas []*Area
	for rows.Next() {
		area, err := scanArea(rows)
		if err != nil {
			return nil, err
		}
		areas = append(areas, area)
	}
	return areas, rows.Err()
}

// RenameArea changes an area's name, keeping names unique.
func (s *Store) RenameArea(ctx context.Context, id int64, name string) (*Area, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("area name is required")
	}
	if taken, err := s.nameTaken(ctx, "areas", name, id); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("area %q: %w", name, ErrConflict)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE areas SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("area %q: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("rename area: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return nil, fmt.Errorf("area %d: %w", id, ErrNotFound)
	}
	return s.GetArea(ctx, id)
}

// DeleteArea removes an area. Its stakes stay behind without an area.
func (s *Store) DeleteArea(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM areas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete area: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("area %d: %w", id, ErrNotFound)
	}
	return nil
}

// CreateStake inserts a new stake, optionally assigned to an area.
func (s *Store) CreateStake(ctx context.Context, name string, areaID int64) (*Stake, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("stake name is required")
	}
	if areaID != 0 {
		if _, err := s.GetArea(ctx, areaID); err != nil {
			return nil, err
		}
	}
	if taken, err := s.nameTaken(ctx, "stakes", name, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("stake %q: %w", name, ErrConflict)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO stakes (name, area_id, created_at) VALUES (?, ?, ?)`,
		name, nullableID(areaID), timestamp(time.Now()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("stake %q: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("insert stake: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetStake(ctx, id)
}

// GetStake fetches a stake with its area name and ward count.
func (s *Store) GetStake(ctx context.Context, id int64) (*Stake, error) {
	row := s.db.QueryRowContext(ctx, selectStake+` WHERE s.id = ? GROUP BY s.id`, id)
	stake, err := scanStake(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("stake %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get stake: %w", err)
	}
	return stake, nil
}

// ListStakes returns stakes ordered by name, filtered by area when areaID is
// non-zero.
func (s *Store) ListStakes(ctx context.Context, areaID int64) ([]*Stake, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if areaID == 0 {
		rows, err = s.db.QueryContext(ctx, selectStake+` GROUP BY s.id ORDER BY s.name`)
	} else {
		rows, err = s.db.QueryContext(ctx, selectStake+` WHERE s.area_id = ? GROUP BY s.id ORDER BY s.name`, areaID)
	}
	if err != nil {
		return nil, fmt.Errorf("list stakes: %w", err)
	}
	defer rows.Close()

	var stakes []*Stake
	for rows.Next() {
		stake, err := scanStake(rows)
		if err != nil {
			return nil, err
		}
		stakes = append(stakes, stake)
	}
	return stakes, rows.Err()
}

// UpdateStake persists the stake's name and area assignment.
func (s *Store) UpdateStake(ctx context.Context, stake *Stake) error {
	if stake == nil {
		return errors.New("stake is nil")
	}
	stake.Name = strings.TrimSpace(stake.Name)
	if stake.Name == "" {
		return errors.New("stake name is required")
	}
	if taken, err := s.nameTaken(ctx, "stakes", stake.Name, stake.ID); err != nil {
		return err
	} else if taken {
		return fmt.Errorf("stake %q: %w", stake.Name, ErrConflict)
	}
	if stake.AreaID != 0 {
		if _, err := s.GetArea(ctx, stake.AreaID); err != nil {
			return err
		}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE stakes SET name = ?, area_id = ? WHERE id = ?`,
		stake.Name, nullableID(stake.AreaID), stake.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("stake %q: %w", stake.Name, ErrConflict)
		}
		return fmt.Errorf("update stake: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("stake %d: %w", stake.ID, ErrNotFound)
	}
	return nil
}

// DeleteStake removes a stake together with its wards and their selection
// history.
func (s *Store) DeleteStake(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		// Ward deletion cascades to selections and assignments.
		if _, err := tx.ExecContext(ctx, `DELETE FROM wards WHERE stake_id = ?`, id); err != nil {
			return fmt.Errorf("delete stake wards: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM stakes WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete stake: %w", err)
		}
		if affected, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", err)
		} else if affected == 0 {
			return fmt.Errorf("stake %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// CreateWard inserts a new ward, optionally assigned to a stake.
func (s *Store) CreateWard(ctx context.Context, name string, stakeID int64) (*Ward, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("ward name is required")
	}
	if stakeID != 0 {
		if _, err := s.GetStake(ctx, stakeID); err != nil {
			return nil, err
		}
	}
	if taken, err := s.nameTaken(ctx, "wards", name, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("ward %q: %w", name, ErrConflict)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO wards (name, stake_id, created_at) VALUES (?, ?, ?)`,
		name, nullableID(stakeID), timestamp(time.Now()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("ward %q: %w", name, ErrConflict)
		}
		return nil, fmt.Errorf("insert ward: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetWard(ctx, id)
}

// GetWard fetches a ward by identifier.
func (s *Store) GetWard(ctx context.Context, id int64) (*Ward, error) {
	row := s.db.QueryRowContext(ctx, selectWard+` WHERE w.id = ?`, id)
	ward, err := scanWard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ward %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ward: %w", err)
	}
	return ward, nil
}

// GetWardByName fetches a ward by its unique name.
func (s *Store) GetWardByName(ctx context.Context, name string) (*Ward, error) {
	row := s.db.QueryRowContext(ctx, selectWard+` WHERE w.name = ?`, strings.TrimSpace(name))
	ward, err := scanWard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ward %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get ward by name: %w", err)
	}
	return ward, nil
}

// GetOrCreateWard finds a ward by name, creating it without a stake when
// missing.
func (s *Store) GetOrCreateWard(ctx context.Context, name string) (*Ward, error) {
	ward, err := s.GetWardByName(ctx, name)
	if err == nil {
		return ward, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.CreateWard(ctx, name, 0)
}

// ListWards returns every ward ordered by name.
func (s *Store) ListWards(ctx context.Context) ([]*Ward, error) {
	return s.listWards(ctx, selectWard+` ORDER BY w.name`)
}

// ListWardsByStake returns the wards of one stake ordered by name.
func (s *Store) ListWardsByStake(ctx context.Context, stakeID int64) ([]*Ward, error) {
	return s.listWards(ctx, selectWard+` WHERE w.stake_id = ? ORDER BY w.name`, stakeID)
}

func (s *Store) listWards(ctx context.Context, query string, args ...any) ([]*Ward, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list wards: %w", err)
	}
	defer rows.Close()

	var wards []*Ward
	for rows.Next() {
		ward, err := scanWard(rows)
		if err != nil {
			return nil, err
		}
		wards = append(wards, ward)
	}
	return wards, rows.Err()
}

// UpdateWard persists the ward's name and stake assignment.
func (s *Store) UpdateWard(ctx context.Context, ward *Ward) error {
	if ward == nil {
		return errors.New("ward is nil")
	}
	ward.Name = strings.TrimSpace(ward.Name)
	if ward.Name == "" {
		return errors.New("ward name is required")
	}
	if taken, err := s.nameTaken(ctx, "wards", ward.Name, ward.ID); err != nil {
		return err
	} else if taken {
		return fmt.Errorf("ward %q: %w", ward.Name, ErrConflict)
	}
	if ward.StakeID != 0 {
		if _, err := s.GetStake(ctx, ward.StakeID); err != nil {
			return err
		}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE wards SET name = ?, stake_id = ? WHERE id = ?`,
		ward.Name, nullableID(ward.StakeID), ward.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("ward %q: %w", ward.Name, ErrConflict)
		}
		return fmt.Errorf("update ward: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("ward %d: %w", ward.ID, ErrNotFound)
	}
	return nil
}

// DeleteWard removes a ward; selection history and assignments cascade.
func (s *Store) DeleteWard(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ward: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("ward %d: %w", id, ErrNotFound)
	}
	return nil
}

// nameTaken reports whether another row in the table already uses the name.
func (s *Store) nameTaken(ctx context.Context, table, name string, excludeID int64) (bool, error) {
	var count int
	query := `SELECT COUNT(1) FROM ` + table + ` WHERE name = ? AND id != ?`
	if err := s.db.QueryRowContext(ctx, query, name, excludeID).Scan(&count); err != nil {
		return false, fmt.Errorf("check %s name: %w", table, err)
	}
	return count > 0, nil
}

const selectStake = `SELECT s.id, s.name, s.area_id, COALESCE(a.name, ''), s.created_at, COUNT(w.id)
    FROM stakes s
    LEFT JOIN areas a ON a.id = s.area_id
    LEFT JOIN wards w ON w.stake_id = s.id`

const selectWard = `SELECT w.id, w.name, w.stake_id, COALESCE(st.name, ''), w.created_at
    FROM wards w LEFT JOIN stakes st ON st.id = w.stake_id`

func scanArea(scanner interface{ Scan(dest ...any) error }) (*Area, error) {
	var (
		area       Area
		createdRaw string
	)
	if err := scanner.Scan(&area.ID, &area.Name, &createdRaw, &area.StakeCount); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		area.CreatedAt = created
	}
	return &area, nil
}

func scanStake(scanner interface{ Scan(dest ...any) error }) (*Stake, error) {
	var (
		stake      Stake
		areaID     sql.NullInt64
		createdRaw string
	)
	if err := scanner.Scan(&stake.ID, &stake.Name, &areaID, &stake.AreaName, &createdRaw, &stake.WardCount); err != nil {
		return nil, err
	}
	stake.AreaID = areaID.Int64
	if created, err := parseTimeString(createdRaw); err == nil {
		stake.CreatedAt = created
	}
	return &stake, nil
}

func scanWard(scanner interface{ Scan(dest ...any) error }) (*Ward, error) {
	var (
		ward       Ward
		stakeID    sql.NullInt64
		createdRaw string
	)
	if err := scanner.Scan(&ward.ID, &ward.Name, &stakeID, &ward.StakeName, &createdRaw); err != nil {
		return nil, err
	}
	ward.StakeID = stakeID.Int64
	if created, err := parseTimeString(createdRaw); err == nil {
		ward.CreatedAt = created
	}
	return &ward, nil
}
