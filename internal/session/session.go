// Package session binds a browser to its editor session. The cookie holds
// a random token; Valkey maps the token to the editor session id and the
// catalog entry it was opened from, so a reload can resume the canvas.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "mc_editor"

	// DefaultTTL is how long a binding lives in Valkey before automatic expiry.
	DefaultTTL = 7 * 24 * time.Hour

	keyPrefix = "editor:"

	// idLength is the byte length of the random token (32 bytes = 64 hex chars).
	idLength = 32
)

// Data is the payload stored per cookie.
type Data struct {
	EditorID  string    `json:"editor_id"`
	CatalogID string    `json:"catalog_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages cookie bindings in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a store backed by the given Valkey client. secure marks
// the cookie Secure, which production deployments behind TLS want.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{
		client: client,
		ttl:    DefaultTTL,
		secure: secure,
	}
}

// Create stores data under a fresh token and sets the cookie. Returns the token.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	data.CreatedAt = time.Now()
	if err := s.put(ctx, token, data); err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})

	return token, nil
}

// Get returns the binding for the request cookie and pushes its expiry
// another TTL out, so an editor in daily use never loses the canvas.
// Returns nil if there is no binding or the cookie is malformed.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	token, ok := cookieToken(r)
	if !ok {
		return nil, nil
	}

	payload, err := s.client.GetEx(ctx, keyPrefix+token, s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	return &data, nil
}

// Destroy removes the binding and expires the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, ok := cookieToken(r)
	if !ok {
		return nil
	}

	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return nil
}

func (s *Store) put(ctx context.Context, token string, data *Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}

// cookieToken returns the cookie value if it has the shape of a token
// this store issued.
func cookieToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || len(cookie.Value) != idLength*2 {
		return "", false
	}
	if _, err := hex.DecodeString(cookie.Value); err != nil {
		return "", false
	}
	return cookie.Value, true
}

func generateToken() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
