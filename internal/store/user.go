package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kev405/toolflow-backend/types"
)

// UserRepository handles persistence for users and their role associations.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, last_name, username, email, phone, password_hash, status, created_at, created_by, updated_at, updated_by`

func scanUser(row interface{ Scan(...any) error }) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.LastName,
		&user.Username,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Status,
		&user.CreatedAt,
		&user.CreatedBy,
		&user.UpdatedAt,
		&user.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByUsername resolves an active account by username. Inactive (soft
// deleted) users are invisible to lookups.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND status = TRUE`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

// ExistsByUsername reports whether any user, active or not, holds the
// username. Registration checks uniqueness across all users.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts the user and its role associations in one transaction.
func (r *UserRepository) Create(ctx context.Context, user types.User, roles []types.Role) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.User{}, err
	}
	defer tx.Rollback()

	const insertUser = `
		INSERT INTO users (name, last_name, username, email, phone, password_hash, status, created_at, created_by, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		insertUser,
		user.Name,
		user.LastName,
		user.Username,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Status,
		user.CreatedAt,
		user.CreatedBy,
		user.UpdatedAt,
		user.UpdatedBy,
	).Scan(&user.ID); err != nil {
		return types.User{}, translateError(err)
	}

	if err := insertRoles(ctx, tx, user.ID, roles, user.CreatedAt, user.CreatedBy); err != nil {
		return types.User{}, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return types.User{}, translateError(err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	user.UpdatedAt = time.Now()

	const query = `
		UPDATE users
		SET name = $1,
			last_name = $2,
			username = $3,
			email = $4,
			phone = $5,
			updated_at = $6,
			updated_by = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Name,
		user.LastName,
		user.Username,
		user.Email,
		user.Phone,
		user.UpdatedAt,
		user.UpdatedBy,
		user.ID,
	)
	if err != nil {
		return types.User{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, err
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

// SoftDelete marks the user inactive. Rows are never physically removed.
func (r *UserRepository) SoftDelete(ctx context.Context, id int64) error {
	const query = `UPDATE users SET status = FALSE, updated_at = $1 WHERE id = $2 AND status = TRUE`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// RolesByUserID returns the user's current role set.
func (r *UserRepository) RolesByUserID(ctx context.Context, userID int64) ([]types.Role, error) {
	const query = `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []types.Role
	for rows.Next() {
		var role types.Role
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// ReplaceRoles swaps the user's full role set: all previous associations are
// deleted and the new set inserted inside a single transaction.
func (r *UserRepository) ReplaceRoles(ctx context.Context, userID int64, roles []types.Role, actorID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return err
	}
	if err := insertRoles(ctx, tx, userID, roles, time.Now(), actorID); err != nil {
		return err
	}
	return tx.Commit()
}

func insertRoles(ctx context.Context, tx *sql.Tx, userID int64, roles []types.Role, createdAt time.Time, createdBy int64) error {
	const query = `
		INSERT INTO user_roles (user_id, role, created_at, created_by)
		VALUES ($1, $2, $3, $4)`
	for _, role := range roles {
		if _, err := tx.ExecContext(ctx, query, userID, string(role), createdAt, createdBy); err != nil {
			return err
		}
	}
	return nil
}

// Searchable and sortable user columns. Requests naming anything else are
// rejected before any SQL is built.
var userSearchColumns = map[string]struct{}{
	"id":        {},
	"username":  {},
	"name":      {},
	"last_name": {},
	"email":     {},
}

// ValidUserColumn reports whether column may be used for search or sort.
func ValidUserColumn(column string) bool {
	_, ok := userSearchColumns[strings.ToLower(column)]
	return ok
}

// UserPage describes pagination, sorting and filtering for user listings.
// Columns must be pre-validated with ValidUserColumn.
type UserPage struct {
	Offset       int
	Limit        int
	SortColumn   string
	SortDesc     bool
	Search       string
	SearchColumn string
}

// List returns a page of active users and the total count of matches.
func (r *UserRepository) List(ctx context.Context, page UserPage) ([]types.User, int, error) {
	if page.Offset < 0 {
		page.Offset = 0
	}
	if page.Limit < 1 {
		page.Limit = 10
	}
	sortColumn := strings.ToLower(page.SortColumn)
	if !ValidUserColumn(sortColumn) {
		sortColumn = "name"
	}
	direction := "ASC"
	if page.SortDesc {
		direction = "DESC"
	}

	where := `WHERE status = TRUE`
	args := []any{}
	if page.Search != "" && ValidUserColumn(page.SearchColumn) {
		where += fmt.Sprintf(` AND CAST(%s AS TEXT) ILIKE $1`, strings.ToLower(page.SearchColumn))
		args = append(args, "%"+page.Search+"%")
	}

	countQuery := `SELECT COUNT(1) FROM users ` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(
		`SELECT %s FROM users %s ORDER BY %s %s OFFSET $%d LIMIT $%d`,
		userColumns, where, sortColumn, direction, len(args)+1, len(args)+2,
	)
	args = append(args, page.Offset, page.Limit)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]types.User, 0, page.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
