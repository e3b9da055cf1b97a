package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"innario/internal/auth"
)

// CreateUserParams carries the fields for a new account. The password must
// already be hashed.
type CreateUserParams struct {
	Username       string
	Email          string
	HashedPassword string
	FullName       string
	Role           auth.Role
	AreaID         int64
	StakeID        int64
	WardIDs        []int64
}

// CreateUser inserts a new account. Organization references are kept only
// when they match the role: an area for area managers, a stake for stake
// managers, ward assignments for ward users.
func (s *Store) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	username := normalizeUsername(params.Username)
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if username == "" {
		return nil, errors.New("username is required")
	}
	if email == "" {
		return nil, errors.New("email is required")
	}
	if params.HashedPassword == "" {
		return nil, errors.New("hashed password is required")
	}
	if !params.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", params.Role)
	}

	if taken, err := s.usernameTaken(ctx, username, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("username %q: %w", username, ErrConflict)
	}
	if taken, err := s.emailTaken(ctx, email, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("email %q: %w", email, ErrConflict)
	}

	var (
		areaID  int64
		stakeID int64
		wardIDs []int64
	)
	switch params.Role {
	case auth.RoleAreaManager:
		areaID = params.AreaID
	case auth.RoleStakeManager:
		stakeID = params.StakeID
	case auth.RoleWardUser:
		wardIDs = params.WardIDs
	}
	if areaID != 0 {
		if _, err := s.GetArea(ctx, areaID); err != nil {
			return nil, err
		}
	}
	if stakeID != 0 {
		if _, err := s.GetStake(ctx, stakeID); err != nil {
			return nil, err
		}
	}

	now := timestamp(time.Now())
	var userID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO users (username, email, hashed_password, full_name, role, is_active, area_id, stake_id, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?, ?)`,
			username, email, params.HashedPassword, strings.TrimSpace(params.FullName),
			params.Role.String(), nullableID(areaID), nullableID(stakeID), now, now,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("user %q: %w", username, ErrConflict)
			}
			return fmt.Errorf("insert user: %w", err)
		}
		userID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		return s.replaceAssignments(ctx, tx, userID, wardIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, userID)
}

// GetUser fetches a user by identifier, ward assignments included.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.WardIDs, err = s.assignedWardIDs(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByUsername fetches a user by login name. Lookups are
// case-insensitive because usernames are stored lowercase.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	normalized := normalizeUsername(username)
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.username = ?`, normalized)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", normalized, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	if user.WardIDs, err = s.assignedWardIDs(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns every account ordered by username, ward assignments
// included.
func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	return s.listUsersWhere(ctx, "")
}

// VisibleUsers lists the accounts a manager is allowed to administer.
// Superadmins see everyone. Area managers see accounts tied to their
// area directly, through a stake in the area, or through a ward
// assignment inside the area. Stake managers see the equivalent slice
// of their stake. Ward users cannot list accounts at all.
func (s *Store) VisibleUsers(ctx context.Context, viewer *User) ([]*User, error) {
	switch viewer.Role {
	case auth.RoleSuperadmin:
		return s.listUsersWhere(ctx, "")
	case auth.RoleAreaManager:
		if viewer.AreaID == 0 {
			return []*User{}, nil
		}
		where := `WHERE u.area_id = ?
			OR u.stake_id IN (SELECT id FROM stakes WHERE area_id = ?)
			OR u.id IN (
				SELECT a.user_id FROM user_ward_assignments a
				JOIN wards w ON w.id = a.ward_id
				JOIN stakes s ON s.id = w.stake_id
				WHERE s.area_id = ?)`
		return s.listUsersWhere(ctx, where, viewer.AreaID, viewer.AreaID, viewer.AreaID)
	case auth.RoleStakeManager:
		if viewer.StakeID == 0 {
			return []*User{}, nil
		}
		where := `WHERE u.stake_id = ?
			OR u.id IN (
				SELECT a.user_id FROM user_ward_assignments a
				JOIN wards w ON w.id = a.ward_id
				WHERE w.stake_id = ?)`
		return s.listUsersWhere(ctx, where, viewer.StakeID, viewer.StakeID)
	default:
		return nil, fmt.Errorf("role %q cannot list users", viewer.Role)
	}
}

func (s *Store) listUsersWhere(ctx context.Context, where string, args ...any) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users u `
	if where != "" {
		query += where + " "
	}
	query += `ORDER BY u.username`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*User{}
	byID := make(map[int64]*User)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		user.WardIDs = []int64{}
		users = append(users, user)
		byID[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	assignments, err := s.db.QueryContext(ctx,
		`SELECT user_id, ward_id FROM user_ward_assignments ORDER BY user_id, ward_id`)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer assignments.Close()
	for assignments.Next() {
		var userID, wardID int64
		if err := assignments.Scan(&userID, &wardID); err != nil {
			return nil, err
		}
		if user, ok := byID[userID]; ok {
			user.WardIDs = append(user.WardIDs, wardID)
		}
	}
	return users, assignments.Err()
}

// UpdateUser persists the mutable account fields: email, full name, password
// hash, role, active flag, and the role-scoped organization references. The
// username never changes.
func (s *Store) UpdateUser(ctx context.Context, user *User) error {
	if user == nil {
		return errors.New("user is nil")
	}
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" {
		return errors.New("email is required")
	}
	if !user.Role.Valid() {
		return fmt.Errorf("unknown role %q", user.Role)
	}
	if taken, err := s.emailTaken(ctx, email, user.ID); err != nil {
		return err
	} else if taken {
		return fmt.Errorf("email %q: %w", email, ErrConflict)
	}

	areaID, stakeID := int64(0), int64(0)
	switch user.Role {
	case auth.RoleAreaManager:
		areaID = user.AreaID
	case auth.RoleStakeManager:
		stakeID = user.StakeID
	}
	if areaID != 0 {
		if _, err := s.GetArea(ctx, areaID); err != nil {
			return err
		}
	}
	if stakeID != 0 {
		if _, err := s.GetStake(ctx, stakeID); err != nil {
			return err
		}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET email = ?, hashed_password = ?, full_name = ?, role = ?, is_active = ?, area_id = ?, stake_id = ?, updated_at = ?
         WHERE id = ?`,
		email, user.HashedPassword, strings.TrimSpace(user.FullName), user.Role.String(),
		boolToInt(user.Active), nullableID(areaID), nullableID(stakeID), timestamp(time.Now()), user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %q: %w", email, ErrConflict)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("user %d: %w", user.ID, ErrNotFound)
	}
	user.Email = email
	user.AreaID = areaID
	user.StakeID = stakeID
	return nil
}

// DeleteUser removes an account; ward assignments cascade.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// AssignWards replaces a user's ward assignments with the given set.
func (s *Store) AssignWards(ctx context.Context, userID int64, wardIDs []int64) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.replaceAssignments(ctx, tx, userID, wardIDs)
	})
}

func (s *Store) replaceAssignments(ctx context.Context, tx *sql.Tx, userID int64, wardIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_ward_assignments WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	now := timestamp(time.Now())
	seen := make(map[int64]struct{}, len(wardIDs))
	for _, wardID := range wardIDs {
		if _, dup := seen[wardID]; dup {
			continue
		}
		seen[wardID] = struct{}{}
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM wards WHERE id = ?`, wardID).Scan(&exists); err != nil {
			return fmt.Errorf("check ward: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("ward %d: %w", wardID, ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_ward_assignments (user_id, ward_id, created_at) VALUES (?, ?, ?)`,
			userID, wardID, now,
		); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}
	return nil
}

// VisibleWardIDs resolves which wards a user may act on. The all flag is set
// for superadmins, who see every ward without enumeration.
func (s *Store) VisibleWardIDs(ctx context.Context, user *User) (ids []int64, all bool, err error) {
	if user == nil {
		return nil, false, errors.New("user is nil")
	}
	switch user.Role {
	case auth.RoleSuperadmin:
		return nil, true, nil
	case auth.RoleAreaManager:
		if user.AreaID == 0 {
			return []int64{}, false, nil
		}
		ids, err = s.collectIDs(ctx,
			`SELECT w.id FROM wards w JOIN stakes s ON s.id = w.stake_id WHERE s.area_id = ? ORDER BY w.id`,
			user.AreaID)
	case auth.RoleStakeManager:
		if user.StakeID == 0 {
			return []int64{}, false, nil
		}
		ids, err = s.collectIDs(ctx, `SELECT id FROM wards WHERE stake_id = ? ORDER BY id`, user.StakeID)
	case auth.RoleWardUser:
		ids, err = s.assignedWardIDs(ctx, user.ID)
	default:
		return nil, false, fmt.Errorf("unknown role %q", user.Role)
	}
	if err != nil {
		return nil, false, err
	}
	return ids, false, nil
}

func (s *Store) assignedWardIDs(ctx context.Context, userID int64) ([]int64, error) {
	return s.collectIDs(ctx,
		`SELECT ward_id FROM user_ward_assignments WHERE user_id = ? ORDER BY ward_id`, userID)
}

func (s *Store) collectIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("collect ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) usernameTaken(ctx context.Context, username string, excludeID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE username = ? AND id != ?`, username, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return count > 0, nil
}

func (s *Store) emailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE email = ? AND id != ?`, email, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return count > 0, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

const userColumns = `u.id, u.username, u.email, u.hashed_password, u.full_name, u.role, u.is_active, u.area_id, u.stake_id, u.created_at, u.updated_at`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*User, error) {
	var (
		user       User
		role       string
		active     int
		areaID     sql.NullInt64
		stakeID    sql.NullInt64
		createdRaw string
		updatedRaw string
	)
	err := scanner.Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword,
		&user.FullName, &role, &active, &areaID, &stakeID, &createdRaw, &updatedRaw)
	if err != nil {
		return nil, err
	}
	user.Role = auth.Role(role)
	user.Active = active != 0
	user.AreaID = areaID.Int64
	user.StakeID = stakeID.Int64
	if created, err := parseTimeString(createdRaw); err == nil {
		user.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		user.UpdatedAt = updated
	}
	return &user, nil
}
