package intercept

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrUnknownAlias is returned when waiting on an alias never registered.
var ErrUnknownAlias = errors.New("intercept: unknown alias")

// Exchange is one completed request/response pair seen by the browser.
type Exchange struct {
	Method string
	URL    string
	Status int
	At     time.Time
}

// TimeoutError reports that no matching exchange arrived in time.
type TimeoutError struct {
	Alias   string
	Pattern string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("intercept: timed out after %s waiting for @%s (%s)", e.Timeout, e.Alias, e.Pattern)
}

// StatusError reports an exchange whose status differs from the expected one.
type StatusError struct {
	Alias    string
	Exchange Exchange
	Want     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("intercept: @%s %s %s returned %d, want %d",
		e.Alias, e.Exchange.Method, e.Exchange.URL, e.Exchange.Status, e.Want)
}

type alias struct {
	name    string
	method  string
	pattern *Pattern
	queue   []Exchange
	ready   chan struct{} // closed and replaced on every append
}

// Registry binds aliases to URL patterns and queues matching exchanges.
// Observe may be called from any goroutine.
type Registry struct {
	mu      sync.Mutex
	aliases map[string]*alias
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{aliases: make(map[string]*alias)}
}

// Intercept registers alias for requests with the given method ("" or "*"
// for any) whose URL matches glob. Only exchanges observed after
// registration are captured. Registering an existing alias replaces it.
func (r *Registry) Intercept(method, glob, name string) error {
	name = strings.TrimPrefix(name, "@")
	if name == "" {
		return fmt.Errorf("intercept: empty alias for %s", glob)
	}
	p, err := Compile(glob)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.aliases[name]; ok {
		close(old.ready)
	} else {
		r.order = append(r.order, name)
	}
	r.aliases[name] = &alias{
		name:    name,
		method:  strings.ToUpper(method),
		pattern: p,
		ready:   make(chan struct{}),
	}
	return nil
}

// Observe records an exchange against every alias it matches.
func (r *Registry) Observe(ex Exchange) {
	if ex.At.IsZero() {
		ex.At = time.Now()
	}
	method := strings.ToUpper(ex.Method)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range r.order {
		a := r.aliases[name]
		if a.method != "" && a.method != "*" && a.method != method {
			continue
		}
		if !a.pattern.Match(ex.URL) {
			continue
		}
		a.queue = append(a.queue, ex)
		close(a.ready)
		a.ready = make(chan struct{})
	}
}

// Wait returns the next unconsumed exchange for alias, blocking until one
// arrives, timeout elapses or ctx is done.
func (r *Registry) Wait(ctx context.Context, name string, timeout time.Duration) (Exchange, error) {
	name = strings.TrimPrefix(name, "@")
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		r.mu.Lock()
		a, ok := r.aliases[name]
		if !ok {
			r.mu.Unlock()
			return Exchange{}, fmt.Errorf("%w: @%s", ErrUnknownAlias, name)
		}
		if len(a.queue) > 0 {
			ex := a.queue[0]
			a.queue = a.queue[1:]
			r.mu.Unlock()
			return ex, nil
		}
		ready, pattern := a.ready, a.pattern.String()
		r.mu.Unlock()

		select {
		case <-ready:
		case <-timer.C:
			return Exchange{}, &TimeoutError{Alias: name, Pattern: pattern, Timeout: timeout}
		case <-ctx.Done():
			return Exchange{}, ctx.Err()
		}
	}
}

// ExpectStatus waits for the next exchange on alias and checks its status.
func (r *Registry) ExpectStatus(ctx context.Context, name string, status int, timeout time.Duration) (Exchange, error) {
	ex, err := r.Wait(ctx, name, timeout)
	if err != nil {
		return ex, err
	}
	if ex.Status != status {
		return ex, &StatusError{Alias: strings.TrimPrefix(name, "@"), Exchange: ex, Want: status}
	}
	return ex, nil
}

// Pending returns how many captured exchanges alias still holds.
func (r *Registry) Pending(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.aliases[strings.TrimPrefix(name, "@")]; ok {
		return len(a.queue)
	}
	return 0
}

// Aliases returns registered alias names in registration order.
func (r *Registry) Aliases() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}
