package push

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/parkwatch/parkwatch/pkg/domain"
)

type fakeTokenSource struct {
	token string
}

func (f *fakeTokenSource) Token() string { return f.token }

// providerStub satisfies Provider with scripted Token behavior. The
// stream side is a plain channel the test writes to.
type providerStub struct {
	mu            sync.Mutex
	token         string
	failAll       bool
	failFirst     int // fail this many calls before succeeding
	tokenCalls    int
	invalidations int
	stream        chan domain.Message
}

func (p *providerStub) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	call := p.tokenCalls
	p.tokenCalls++
	if p.failAll || call < p.failFirst {
		return "", errors.New("gateway unavailable")
	}
	return p.token, nil
}

func (p *providerStub) Subscribe(ctx context.Context) (<-chan domain.Message, error) {
	if p.stream == nil {
		p.stream = make(chan domain.Message)
	}
	return p.stream, nil
}

func (p *providerStub) Invalidate(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invalidations++
	return nil
}

type fakeSink struct {
	mu     sync.Mutex
	tokens []string
	err    error
}

func (f *fakeSink) RegisterPushToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return f.err
}

func (f *fakeSink) registered() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func newTestRegistrar(sessions TokenSource, provider Provider, sink TokenSink, ready <-chan struct{}) *Registrar {
	r := NewRegistrar(sessions, provider, sink, ready, discardLogger())
	r.retryDelay = 10 * time.Millisecond
	r.readyWait = 50 * time.Millisecond
	return r
}

func TestRegisterWithoutSession(t *testing.T) {
	provider := &providerStub{}
	sink := &fakeSink{}
	r := newTestRegistrar(&fakeTokenSource{token: ""}, provider, sink, closedChan())

	token, err := r.Register(context.Background())
	if err != nil {
		t.Fatalf("Register() error = %v, want nil", err)
	}
	if token != "" {
		t.Errorf("Register() token = %q, want empty", token)
	}
	if provider.tokenCalls != 0 {
		t.Errorf("provider.Token called %d times without a session, want 0", provider.tokenCalls)
	}
	if len(sink.registered()) != 0 {
		t.Errorf("backend contacted %d times without a session, want 0", len(sink.registered()))
	}
}

func TestRegisterWithoutProvider(t *testing.T) {
	sink := &fakeSink{}
	r := newTestRegistrar(&fakeTokenSource{token: "jwt"}, nil, sink, closedChan())

	token, err := r.Register(context.Background())
	if err != nil || token != "" {
		t.Fatalf("Register() = (%q, %v), want (\"\", nil)", token, err)
	}
	if len(sink.registered()) != 0 {
		t.Errorf("backend contacted without a provider")
	}
}

func TestRegisterSuccess(t *testing.T) {
	sink := &fakeSink{}
	r := newTestRegistrar(
		&fakeTokenSource{token: "jwt"},
		&providerStub{token: "device-token-1"},
		sink,
		closedChan(),
	)

	token, err := r.Register(context.Background())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if token != "device-token-1" {
		t.Errorf("Register() token = %q, want device-token-1", token)
	}
	got := sink.registered()
	if len(got) != 1 || got[0] != "device-token-1" {
		t.Errorf("backend received %v, want [device-token-1]", got)
	}
}

func TestRegisterRetriesThenGivesUp(t *testing.T) {
	provider := &providerStub{failAll: true}
	sink := &fakeSink{}
	r := newTestRegistrar(&fakeTokenSource{token: "jwt"}, provider, sink, closedChan())

	start := time.Now()
	_, err := r.Register(context.Background())
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTokenAcquisition) {
		t.Fatalf("Register() error = %v, want ErrTokenAcquisition", err)
	}
	if provider.tokenCalls != 3 {
		t.Errorf("provider.Token called %d times, want 3", provider.tokenCalls)
	}
	// Two pauses between three attempts.
	if elapsed < 2*r.retryDelay {
		t.Errorf("Register() returned after %v, want at least %v of retry pauses", elapsed, 2*r.retryDelay)
	}
	if len(sink.registered()) != 0 {
		t.Errorf("backend contacted despite acquisition failure")
	}
}

func TestRegisterRecoversOnSecondAttempt(t *testing.T) {
	provider := &providerStub{failFirst: 1, token: "device-token-2"}
	sink := &fakeSink{}
	r := newTestRegistrar(&fakeTokenSource{token: "jwt"}, provider, sink, closedChan())

	token, err := r.Register(context.Background())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if token != "device-token-2" {
		t.Errorf("Register() token = %q", token)
	}
	if provider.tokenCalls != 2 {
		t.Errorf("provider.Token called %d times, want 2", provider.tokenCalls)
	}
}

func TestRegisterDeliveryFailure(t *testing.T) {
	sink := &fakeSink{err: errors.New("HTTP 500")}
	r := newTestRegistrar(
		&fakeTokenSource{token: "jwt"},
		&providerStub{token: "device-token-3"},
		sink,
		closedChan(),
	)

	_, err := r.Register(context.Background())
	if !errors.Is(err, ErrTokenDelivery) {
		t.Fatalf("Register() error = %v, want ErrTokenDelivery", err)
	}
}

func TestRegisterWaitsForWorker(t *testing.T) {
	ready := make(chan struct{})
	provider := &providerStub{token: "device-token-4"}
	sink := &fakeSink{}
	r := newTestRegistrar(&fakeTokenSource{token: "jwt"}, provider, sink, ready)

	// Worker never becomes ready: registration is skipped, not failed.
	token, err := r.Register(context.Background())
	if err != nil || token != "" {
		t.Fatalf("Register() = (%q, %v), want skip", token, err)
	}
	if provider.tokenCalls != 0 {
		t.Errorf("provider.Token called before worker readiness")
	}

	close(ready)
	token, err = r.Register(context.Background())
	if err != nil {
		t.Fatalf("Register() after readiness: %v", err)
	}
	if token != "device-token-4" {
		t.Errorf("Register() token = %q", token)
	}
}

func TestRegisterCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRegistrar(&fakeTokenSource{token: "jwt"}, &providerStub{failAll: true}, &fakeSink{}, make(chan struct{}))
	_, err := r.Register(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Register() error = %v, want context.Canceled", err)
	}
}
