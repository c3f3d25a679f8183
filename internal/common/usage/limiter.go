// internal/common/usage/limiter.go
package usage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"nexsupply-workers/internal/common/config"
)

const (
	ReasonAnonymousLimit     = "anonymous_daily_limit"
	ReasonAuthenticatedLimit = "authenticated_daily_limit"

	counterTTL = 48 * time.Hour
)

// Decision is the outcome of a quota check for one identity and day.
type Decision struct {
	Allowed       bool   `json:"allowed"`
	Reason        string `json:"reason,omitempty"`
	Identifier    string `json:"identifier"`
	Authenticated bool   `json:"authenticated"`
	Count         int64  `json:"count"`
	Limit         int64  `json:"limit"`
	Remaining     int64  `json:"remaining"`
	Date          string `json:"date"`
}

// Limiter enforces per-identity daily request quotas.
type Limiter struct {
	store     Store
	anonLimit int64
	authLimit int64
	location  *time.Location
	now       func() time.Time
}

func NewLimiter(store Store, cfg config.UsageConfig) (*Limiter, error) {
	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load usage timezone %q: %w", tz, err)
	}
	return &Limiter{
		store:     store,
		anonLimit: int64(cfg.AnonymousDailyLimit),
		authLimit: int64(cfg.AuthenticatedDailyLimit),
		location:  loc,
		now:       time.Now,
	}, nil
}

// WithClock replaces the time source.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Check consumes one request from the identity's daily allowance. A denied
// request does not consume anything.
func (l *Limiter) Check(ctx context.Context, identifier string, authenticated bool) (*Decision, error) {
	d, err := l.Peek(ctx, identifier, authenticated)
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		return d, nil
	}

	count, err := l.store.Increment(ctx, l.key(identifier, d.Date), counterTTL)
	if err != nil {
		return nil, err
	}
	// a concurrent request may have taken the last slot
	if count > d.Limit {
		d.Allowed = false
		d.Reason = reasonFor(authenticated)
	}
	d.Count = count
	d.Remaining = remaining(d.Limit, count)
	return d, nil
}

// Peek reports the current state without consuming.
func (l *Limiter) Peek(ctx context.Context, identifier string, authenticated bool) (*Decision, error) {
	date := l.today()
	raw, ok, err := l.store.Get(ctx, l.key(identifier, date))
	if err != nil {
		return nil, err
	}

	var count int64
	if ok {
		if count, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("corrupt usage counter for %s: %w", identifier, err)
		}
	}

	limit := l.limitFor(authenticated)
	d := &Decision{
		Allowed:       count < limit,
		Identifier:    identifier,
		Authenticated: authenticated,
		Count:         count,
		Limit:         limit,
		Remaining:     remaining(limit, count),
		Date:          date,
	}
	if !d.Allowed {
		d.Reason = reasonFor(authenticated)
	}
	return d, nil
}

// Key returns today's counter key for the identity.
func (l *Limiter) Key(identifier string) string {
	return l.key(identifier, l.today())
}

func (l *Limiter) key(identifier, date string) string {
	return "usage:" + identifier + ":" + date
}

func (l *Limiter) today() string {
	return l.now().In(l.location).Format("20060102")
}

func (l *Limiter) limitFor(authenticated bool) int64 {
	if authenticated {
		return l.authLimit
	}
	return l.anonLimit
}

func reasonFor(authenticated bool) string {
	if authenticated {
		return ReasonAuthenticatedLimit
	}
	return ReasonAnonymousLimit
}

func remaining(limit, count int64) int64 {
	if count >= limit {
		return 0
	}
	return limit - count
}
