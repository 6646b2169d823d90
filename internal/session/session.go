// Package session persists the wizard state of each browser session.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-enrollment/pkg/state"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session: not found")

// Session is one browser session: its id, the CSRF token embedded in every
// form, and the state tree of the funnel.
type Session struct {
	ID        string
	CSRFToken string
	State     state.AppState
}

// Store loads and saves sessions.
type Store interface {
	Load(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, s Session) error
	Delete(ctx context.Context, id string) error
}

// New returns a session with a fresh id, token and initial state.
func New() Session {
	return Session{
		ID:        uuid.NewString(),
		CSRFToken: newToken(),
		State:     state.InitialState(),
	}
}

// ValidID reports whether id looks like an id issued by New. Anything else
// is never looked up.
func ValidID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.Version() == 4
}

type record struct {
	CSRFToken string          `json:"csrf"`
	State     json.RawMessage `json:"state"`
}

func encode(s Session) ([]byte, error) {
	raw, err := state.Marshal(s.State)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	data, err := json.Marshal(record{CSRFToken: s.CSRFToken, State: raw})
	if err != nil {
		return nil, fmt.Errorf("session: encode: %w", err)
	}
	return data, nil
}

func decode(id string, data []byte) (Session, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Session{}, fmt.Errorf("session: decode: %w", err)
	}
	st, err := state.Unmarshal(rec.State)
	if err != nil {
		return Session{}, fmt.Errorf("session: %w", err)
	}
	return Session{ID: id, CSRFToken: rec.CSRFToken, State: st}, nil
}

func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return uuid.NewString()
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
