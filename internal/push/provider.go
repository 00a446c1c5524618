package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/parkwatch/parkwatch/pkg/domain"
)

// Provider is the opaque push capability: obtain a delivery token for
// this installation, and receive messages addressed to it.
type Provider interface {
	// Token returns the delivery token identifying this installation.
	// The token is stable across calls absent a forced refresh.
	Token(ctx context.Context) (string, error)
	// Subscribe opens the message stream. The channel closes when the
	// context is canceled or the stream breaks.
	Subscribe(ctx context.Context) (<-chan domain.Message, error)
	// Invalidate releases this installation's delivery token so the
	// gateway stops routing messages to it. Called on logout;
	// failures are tolerated.
	Invalidate(ctx context.Context) error
}

// StreamProvider implements Provider against a push gateway: tokens are
// issued over HTTP with the VAPID public key, messages arrive over a
// websocket stream authorized by the token.
type StreamProvider struct {
	gatewayURL string
	vapidKey   string
	clientID   string
	httpClient *http.Client
	dialer     *websocket.Dialer
	log        *slog.Logger
}

// NewStreamProvider creates a provider for the given gateway. Each
// process gets a fresh client identity; the gateway maps it to a stable
// delivery token.
func NewStreamProvider(gatewayURL, vapidKey string, log *slog.Logger) *StreamProvider {
	return &StreamProvider{
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		vapidKey:   vapidKey,
		clientID:   uuid.NewString(),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		dialer:     websocket.DefaultDialer,
		log:        log,
	}
}

// Token requests a delivery token from the gateway.
func (p *StreamProvider) Token(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"vapid_key": p.vapidKey,
		"client_id": p.clientID,
	})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.gatewayURL+"/token", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request delivery token: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16)) //nolint:errcheck // best-effort read for error message
		return "", fmt.Errorf("token endpoint returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if result.Token == "" {
		return "", fmt.Errorf("token endpoint returned an empty token")
	}
	return result.Token, nil
}

// Invalidate asks the gateway to drop the delivery token for this
// installation. A token the gateway never issued is not an error.
func (p *StreamProvider) Invalidate(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"vapid_key": p.vapidKey,
		"client_id": p.clientID,
	})
	if err != nil {
		return fmt.Errorf("marshal invalidation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, p.gatewayURL+"/token", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create invalidation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invalidate delivery token: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("token invalidation returned HTTP %d", resp.StatusCode)
	}
}

// Subscribe dials the gateway's message stream and decodes messages
// until the context is canceled or the connection drops.
func (p *StreamProvider) Subscribe(ctx context.Context) (<-chan domain.Message, error) {
	token, err := p.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	wsURL, err := toWebsocketURL(p.gatewayURL + "/subscribe")
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := p.dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("dial message stream: %w", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close() //nolint:errcheck
	}

	ch := make(chan domain.Message)
	go func() {
		<-ctx.Done()
		conn.Close() //nolint:errcheck // unblocks the read loop
	}()
	go func() {
		defer close(ch)
		defer conn.Close() //nolint:errcheck
		for {
			var msg domain.Message
			if err := conn.ReadJSON(&msg); err != nil {
				if ctx.Err() == nil {
					p.log.Warn("message stream closed", "error", err)
				}
				return
			}
			select {
			case ch <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func toWebsocketURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse gateway URL: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported gateway scheme %q", u.Scheme)
	}
	return u.String(), nil
}
