package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contacts-book/internal/model"
)

const userColumns = "id, username, email, password, refresh_token, created_at"

const insertUser = `
	INSERT INTO users (username, email, password)
	VALUES (:username, :email, :password)`

// mysqlDuplicateEntry is the server error number for a violated unique key.
const mysqlDuplicateEntry = 1062

// UserStore reads and writes user accounts.
type UserStore struct {
	db *sqlx.DB
}

// NewUserStore returns a store working on the given database handle.
func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// GetByEmail returns the user with the given email address, or nil if there is none.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, model.NewStorageError("get user", err)
	}
	return &user, nil
}

// Create inserts a user whose password has already been hashed. A second account for the same
// email address fails with model.ErrConflict.
func (s *UserStore) Create(ctx context.Context, u model.NewUser) (*model.User, error) {
	var created model.User
	err := withTx(ctx, s.db, "create user", func(tx *sqlx.Tx) error {
		result, err := tx.NamedExecContext(ctx, insertUser, u)
		if err != nil {
			var mysqlErr *mysql.MySQLError
			if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
				return fmt.Errorf("email %s: %w", u.Email, model.ErrConflict)
			}
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		return tx.GetContext(ctx, &created, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateRefreshToken overwrites the stored refresh token of the user. A nil token clears it.
func (s *UserStore) UpdateRefreshToken(ctx context.Context, user *model.User, token *string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET refresh_token = ? WHERE id = ?`, token, user.Id)
	if err != nil {
		return model.NewStorageError("update refresh token", err)
	}
	user.RefreshToken = token
	return nil
}
