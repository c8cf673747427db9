package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/covault-pay/covault/internal/contact"
	"github.com/covault-pay/covault/internal/wallet"
)

var (
	// ErrNotRegistered means no account exists for the contact or id.
	ErrNotRegistered = errors.New("contact is not registered")

	// ErrDuplicateRegistration means the contact already has an account.
	ErrDuplicateRegistration = errors.New("contact already registered")
)

// Repository is the user directory: lookup and insert of account
// records keyed by contact or id.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByContact(ctx context.Context, c string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	UpdatePassword(ctx context.Context, id string, hash []byte) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user directory.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user. A unique violation on the contact column
// maps to ErrDuplicateRegistration.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, contact, contact_kind, password_hash, invite_code, sign_strategy, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		userID, user.Contact, user.ContactKind.String(), user.PasswordHash, user.InviteCode, user.SignStrategy.String(), user.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateRegistration
	}
	return err
}

// FindByContact fetches a user by their registered contact.
func (r *PostgresRepository) FindByContact(ctx context.Context, c string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, contact, contact_kind, password_hash, invite_code, sign_strategy, created_at
        FROM users WHERE contact = $1`, c)
	return scanUser(row)
}

// FindByID fetches a user by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotRegistered
	}
	row := r.db.QueryRow(ctx, `SELECT id, contact, contact_kind, password_hash, invite_code, sign_strategy, created_at
        FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotRegistered
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotRegistered
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		user      User
		id        uuid.UUID
		kind      string
		strategy  string
		createdAt time.Time
	)
	if err := row.Scan(&id, &user.Contact, &kind, &user.PasswordHash, &user.InviteCode, &strategy, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotRegistered
		}
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	user.ContactKind = contact.Classify(user.Contact)
	parsed, err := wallet.ParseSignStrategy(strategy)
	if err != nil {
		return User{}, err
	}
	user.SignStrategy = parsed
	return user, nil
}
