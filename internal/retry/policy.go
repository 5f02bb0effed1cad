// Package retry decides how long to wait between lookups of something that appears
// asynchronously, such as the running job in the workflow jobs listing.
package retry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/workflow-telemetry/internal/errors"
)

// Backoff names how the delay grows between lookups.
type Backoff string

const (
	BackoffFixed       Backoff = "fixed"
	BackoffLinear      Backoff = "linear"
	BackoffExponential Backoff = "exponential"
)

// ParseBackoff accepts a backoff name in any case. Empty input selects fixed.
func ParseBackoff(raw string) (Backoff, error) {
	b := Backoff(strings.ToLower(strings.TrimSpace(raw)))
	switch b {
	case "":
		return BackoffFixed, nil
	case BackoffFixed, BackoffLinear, BackoffExponential:
		return b, nil
	}
	return "", errors.ValidationFailed("backoff",
		fmt.Sprintf("unknown backoff %q, expected fixed, linear or exponential", raw))
}

// Policy is immutable after construction.
type Policy struct {
	Backoff  Backoff
	Interval time.Duration // delay before the first retry
	Ceiling  time.Duration // no delay exceeds this
	Retries  int           // lookups after the first one
}

// DefaultPolicy polls once per second for up to ten lookups, which is how long a
// freshly started job may take to show up in the jobs listing.
func DefaultPolicy() Policy {
	return Policy{Backoff: BackoffFixed, Interval: time.Second, Ceiling: time.Second, Retries: 9}
}

// NewPolicy fills a policy from configured values. Non-positive durations, negative
// retries and unknown backoffs keep the defaults. The ceiling never drops below the
// interval.
func NewPolicy(backoff Backoff, interval, ceiling time.Duration, retries int) Policy {
	p := DefaultPolicy()
	if b, err := ParseBackoff(string(backoff)); err == nil {
		p.Backoff = b
	}
	if interval > 0 {
		p.Interval = interval
	}
	if ceiling > 0 {
		p.Ceiling = ceiling
	}
	p.Ceiling = max(p.Ceiling, p.Interval)
	if retries >= 0 {
		p.Retries = retries
	}
	return p
}

// Attempts is the total number of lookups the policy allows.
func (p Policy) Attempts() int { return p.Retries + 1 }

// Delay returns the pause before retry n, counting from 1.
func (p Policy) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	d := p.Interval
	switch p.Backoff {
	case BackoffLinear:
		d *= time.Duration(n)
	case BackoffExponential:
		if n > 32 {
			return p.Ceiling
		}
		d <<= n - 1
	}
	if d <= 0 {
		return p.Ceiling
	}
	return min(d, p.Ceiling)
}

// Budget is the longest a caller sleeps when every retry is used.
func (p Policy) Budget() time.Duration {
	var total time.Duration
	for n := 1; n <= p.Retries; n++ {
		total += p.Delay(n)
	}
	return total
}

// Wait sleeps for Delay(n) unless ctx ends first.
func (p Policy) Wait(ctx context.Context, n int) error {
	d := p.Delay(n)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p Policy) Validate() error {
	switch {
	case p.Interval <= 0:
		return errors.ValidationFailed("interval", "must be positive")
	case p.Ceiling < p.Interval:
		return errors.ValidationFailed("ceiling", "must not be below the interval")
	case p.Retries < 0:
		return errors.ValidationFailed("retries", "must not be negative")
	}
	if _, err := ParseBackoff(string(p.Backoff)); err != nil {
		return err
	}
	return nil
}
