package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrTokenAcquisition means the provider never produced a delivery
	// token despite retries. Notifications stay off; nothing else is
	// affected.
	ErrTokenAcquisition = errors.New("could not acquire delivery token")

	// ErrTokenDelivery means a token was acquired but the backend
	// rejected or never received it.
	ErrTokenDelivery = errors.New("could not deliver token to backend")
)

// TokenSource exposes the current session token. An empty string means
// no session.
type TokenSource interface {
	Token() string
}

// TokenSink delivers an acquired push token to the backend.
type TokenSink interface {
	RegisterPushToken(ctx context.Context, token string) error
}

// Registrar ties this installation's delivery token to the signed-in
// account. Registration is best-effort: callers log failures and move
// on, since the rest of the client works without push.
type Registrar struct {
	sessions TokenSource
	provider Provider
	sink     TokenSink
	ready    <-chan struct{}
	log      *slog.Logger

	attempts   int
	retryDelay time.Duration
	readyWait  time.Duration
}

// NewRegistrar creates a registrar. ready is the worker's readiness
// channel; token acquisition does not start before it closes, so the
// token handed to the backend always has a live subscription behind it.
func NewRegistrar(sessions TokenSource, provider Provider, sink TokenSink, ready <-chan struct{}, log *slog.Logger) *Registrar {
	return &Registrar{
		sessions:   sessions,
		provider:   provider,
		sink:       sink,
		ready:      ready,
		log:        log,
		attempts:   3,
		retryDelay: time.Second,
		readyWait:  10 * time.Second,
	}
}

// Register acquires a delivery token and posts it to the backend under
// the current session. Safe to call repeatedly; the backend upserts.
//
// Without a session, or without a push provider, Register returns
// ("", nil) immediately and performs no network traffic at all.
func (r *Registrar) Register(ctx context.Context) (string, error) {
	if r.sessions.Token() == "" {
		r.log.Debug("push registration skipped: no session")
		return "", nil
	}
	if r.provider == nil {
		r.log.Debug("push registration skipped: no provider configured")
		return "", nil
	}

	select {
	case <-r.ready:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(r.readyWait):
		r.log.Warn("push registration skipped: worker not ready", "waited", r.readyWait)
		return "", nil
	}

	token, err := r.acquireToken(ctx)
	if err != nil {
		return "", err
	}

	if err := r.sink.RegisterPushToken(ctx, token); err != nil {
		return "", fmt.Errorf("%w: %s", ErrTokenDelivery, err)
	}
	r.log.Info("push token registered")
	return token, nil
}

// acquireToken asks the provider for a token, pausing between attempts.
func (r *Registrar) acquireToken(ctx context.Context) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		token, err := r.provider.Token(ctx)
		if err == nil && token != "" {
			return token, nil
		}
		if err == nil {
			err = errors.New("provider returned an empty token")
		}
		lastErr = err
		r.log.Warn("delivery token attempt failed", "attempt", attempt, "error", err)

		if attempt == r.attempts {
			break
		}
		select {
		case <-time.After(r.retryDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("%w after %d attempts: %s", ErrTokenAcquisition, r.attempts, lastErr)
}
