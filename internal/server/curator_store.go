package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Curators author question sets and create games; a game's adminId is the
// identity of whoever created it.

var errNoCuratorSession = errors.New("no valid curator session")

const curatorCookieName = "curator_session"

type curatorSession struct {
	CuratorID string
	Email     string
}

type curatorDoc struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

type curatorSessionDoc struct {
	ID        string `json:"id"`
	CuratorID string `json:"curatorId"`
	Email     string `json:"email"`
}

// CuratorStore keeps curator accounts and their sessions as JSONB documents
// in the same database as the games.
type CuratorStore struct {
	db *sql.DB
}

func NewCuratorStore(ctx context.Context, db *sql.DB) (*CuratorStore, error) {
	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS curators (
			id    TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			data  JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS curator_sessions (
			id   TEXT PRIMARY KEY,
			data JSONB NOT NULL
		)`,
	} {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return nil, fmt.Errorf("creating table: %w", err)
		}
	}
	return &CuratorStore{db: db}, nil
}

// CreateCurator registers an account with a bcrypt-hashed password.
func (s *CuratorStore) CreateCurator(ctx context.Context, email, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	c := curatorDoc{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO curators (id, email, data) VALUES (?, ?, jsonb(?))`,
		c.ID, c.Email, string(data))
	return c.ID, err
}

// Authenticate checks email/password and returns the curator id.
func (s *CuratorStore) Authenticate(ctx context.Context, email, password string) (string, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM curators WHERE email = ?`, email,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errNoCuratorSession
	}
	if err != nil {
		return "", err
	}
	var c curatorDoc
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		return "", errNoCuratorSession
	}
	return c.ID, nil
}

func (s *CuratorStore) CreateSession(ctx context.Context, curatorID string) (string, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM curators WHERE id = ?`, curatorID,
	).Scan(&data)
	if err != nil {
		return "", err
	}
	var c curatorDoc
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return "", err
	}

	sessionID := uuid.NewString()
	sessData, err := json.Marshal(curatorSessionDoc{
		ID:        sessionID,
		CuratorID: curatorID,
		Email:     c.Email,
	})
	if err != nil {
		return "", err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO curator_sessions (id, data) VALUES (?, jsonb(?))`,
		sessionID, string(sessData))
	return sessionID, err
}

func (s *CuratorStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM curator_sessions WHERE id = ?`, sessionID)
	return err
}

func (s *CuratorStore) CuratorFromSession(ctx context.Context, sessionID string) (curatorSession, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM curator_sessions WHERE id = ?`, sessionID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return curatorSession{}, errNoCuratorSession
	}
	if err != nil {
		return curatorSession{}, err
	}
	var cs curatorSessionDoc
	if err := json.Unmarshal([]byte(data), &cs); err != nil {
		return curatorSession{}, err
	}
	return curatorSession{CuratorID: cs.CuratorID, Email: cs.Email}, nil
}

// HasCurators reports whether any account exists (used by the demo seed).
func (s *CuratorStore) HasCurators(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM curators`).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
