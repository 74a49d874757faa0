package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store on the login database.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const userColumns = `id, username, display_name, role, status, permissions, legacy, created_at, updated_at`

func (s *PGStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+`, password_hash from users where username = $1`,
		strings.TrimSpace(username),
	)
	var (
		u           User
		permissions []byte
	)
	if err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Role, &u.Status,
		&permissions, &u.Legacy, &u.CreatedAt, &u.UpdatedAt, &u.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Permissions = ParsePermissions(permissions)
	return &u, nil
}

func (s *PGStore) Find(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where id = $1`, id,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *PGStore) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+userColumns+` from users order by id asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (s *PGStore) Create(ctx context.Context, u *User, digest string) (int64, error) {
	row := s.db.QueryRowContext(ctx,
		`insert into users(username, display_name, role, status, permissions, password_hash, legacy)
		 values($1,$2,$3,$4,$5,$6,false)
		 returning id`,
		u.Username, u.DisplayName, u.Role, u.Status, EncodePermissions(u.Permissions), digest,
	)
	var id int64
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

func (s *PGStore) UpdateAccess(ctx context.Context, id int64, status string, perms PermissionSet) error {
	res, err := s.db.ExecContext(ctx,
		`update users set status = $1, permissions = $2, updated_at = now() where id = $3`,
		status, EncodePermissions(perms), id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u           User
		permissions []byte
	)
	if err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Role, &u.Status,
		&permissions, &u.Legacy, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Permissions = ParsePermissions(permissions)
	return &u, nil
}
