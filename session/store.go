// Package session implements the auth token store: a two-state machine
// (Anonymous or Authenticated) holding the bearer token and user identity.
// It is the single piece of client state that survives process restarts,
// persisted to a local SQLite database.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/cloudshare/cloudshare-go/dbx"
	"github.com/cloudshare/cloudshare-go/models"
	"github.com/cloudshare/cloudshare-go/session/migrations"
)

// State of the session store.
type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

const (
	keyToken     = "token"
	keyUserID    = "user_id"
	keyUserEmail = "user_email"
)

// Store holds the current session in memory and mirrors every transition to
// the database, so a restarted client resumes in the same state.
//
// Transitions: Set moves the store to Authenticated, Clear back to Anonymous.
// Clear is called on explicit logout and whenever any endpoint answers
// unauthorized.
type Store struct {
	db *sql.DB

	mu    sync.RWMutex
	token string
	user  models.User
	state State
}

// Open opens (creating if needed) the session database at dsn, applies the
// embedded migrations, and loads the persisted session.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate session db: %w", err)
	}

	s := &Store{db: db, state: StateAnonymous}
	if err := s.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *Store) load(ctx context.Context) error {
	repo := newSQLiteRepository(s.db)

	token, ok, err := repo.Get(ctx, keyToken)
	if err != nil {
		return err
	}
	if !ok || token == "" {
		return nil
	}
	userID, _, err := repo.Get(ctx, keyUserID)
	if err != nil {
		return err
	}
	email, _, err := repo.Get(ctx, keyUserEmail)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = models.User{UserID: userID, Email: email}
	s.state = StateAuthenticated
	s.mu.Unlock()
	return nil
}

// Set stores the credentials returned by a successful login or register and
// moves the store to Authenticated. Token and user are written atomically.
func (s *Store) Set(ctx context.Context, token string, user models.User) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := newSQLiteRepository(tx)
		if err := repo.Set(ctx, keyToken, token); err != nil {
			return err
		}
		if err := repo.Set(ctx, keyUserID, user.UserID); err != nil {
			return err
		}
		return repo.Set(ctx, keyUserEmail, user.Email)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.state = StateAuthenticated
	s.mu.Unlock()
	return nil
}

// Clear wipes the persisted session and moves the store to Anonymous. Both
// token and user end up absent.
func (s *Store) Clear(ctx context.Context) error {
	repo := newSQLiteRepository(s.db)
	if err := repo.Clear(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.user = models.User{}
	s.state = StateAnonymous
	s.mu.Unlock()
	return nil
}

// Token returns the current bearer token, if any.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// User returns the current user identity, if any.
func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.state == StateAuthenticated
}

// State returns the current store state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ExpiresAt reports the bearer token's expiry, decoded without signature
// verification from its JWT exp claim. Opaque non-JWT tokens and tokens
// without exp report no expiry.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token, ok := s.Token()
	if !ok {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the stored token carries an exp claim in the past.
// A token with no decodable expiry is never considered expired locally; the
// server stays authoritative for it.
func (s *Store) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return ok && !exp.After(now)
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
