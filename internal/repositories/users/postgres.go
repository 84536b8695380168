package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"filevault/internal/common"
	"filevault/internal/dbx"
	"filevault/internal/models"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

// PostgresRepository implements account storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, password_salt)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, password_salt, created_at`

	var created models.User
	err := r.db.QueryRowContext(ctx, query, user.Email, user.PasswordHash, user.PasswordSalt).
		Scan(&created.ID, &created.Email, &created.PasswordHash, &created.PasswordSalt, &created.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%s: %w", user.Email, common.ErrEmailAlreadyExists)
		}
		return nil, fmt.Errorf("%w: insert user: %v", common.ErrCollaborator, err)
	}
	return &created, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, password_hash, password_salt, created_at FROM users WHERE email=$1`

	var user models.User
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &user.PasswordSalt, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, common.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: select user: %v", common.ErrCollaborator, err)
	}
	return &user, nil
}
