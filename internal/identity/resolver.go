package identity

import (
	"context"
	"errors"
	"fmt"

	"chat-realtime-api/internal/auth"
	"chat-realtime-api/internal/cache"
	"chat-realtime-api/internal/models"
	"chat-realtime-api/internal/store"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// AuthenticationError means a connection or request could not be tied to a
// local user. Callers must refuse it; the reason is for logs only.
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return "authentication failed: " + e.Reason
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// UserRecord is the minimal identity attached to an authenticated connection.
type UserRecord struct {
	ID       string
	Username string
}

// TokenValidator verifies an access token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// UserFinder looks up the local user for an external identity.
type UserFinder interface {
	FindUserByExternalID(ctx context.Context, externalID string) (*models.User, error)
}

// Resolver turns a bearer token into a verified local user.
type Resolver struct {
	tokens TokenValidator
	users  UserFinder
	cache  *cache.TTLCache[string, UserRecord]
	group  singleflight.Group
	log    *zap.Logger
}

// NewResolver builds a Resolver. Positive lookups are cached for the
// lifetime of c; pass a cache with a short TTL.
func NewResolver(tokens TokenValidator, users UserFinder, c *cache.TTLCache[string, UserRecord], log *zap.Logger) *Resolver {
	return &Resolver{tokens: tokens, users: users, cache: c, log: log}
}

// Resolve authenticates token. Every failure, including storage faults, is
// reported as *AuthenticationError.
func (r *Resolver) Resolve(ctx context.Context, token string) (*UserRecord, error) {
	if token == "" {
		return nil, &AuthenticationError{Reason: "missing token"}
	}

	claims, err := r.tokens.ValidateToken(token)
	if err != nil {
		return nil, &AuthenticationError{Reason: "invalid token", Err: err}
	}
	externalID := claims.ExternalID()

	if rec, ok := r.cache.Get(externalID); ok {
		return &rec, nil
	}

	// the shared load must not fail for every waiter when the first caller goes away
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do(externalID, func() (interface{}, error) {
		u, err := r.users.FindUserByExternalID(loadCtx, externalID)
		if err != nil {
			return nil, err
		}
		rec := UserRecord{ID: u.ID, Username: u.Username}
		r.cache.Set(externalID, rec)
		return rec, nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &AuthenticationError{Reason: "unknown user"}
		}
		r.log.Error("identity lookup failed", zap.String("external_id", externalID), zap.Error(err))
		return nil, &AuthenticationError{Reason: "lookup failed", Err: err}
	}

	rec := v.(UserRecord)
	return &rec, nil
}
