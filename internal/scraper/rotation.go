package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/spfc-calendar/internal/logger"
)

// quotaMarkers identify errors caused by an exhausted or unpaid credential.
var quotaMarkers = []string{
	"payment required",
	"insufficient credits",
	"credit",
	"402",
}

// IsQuotaError reports whether err means the credential is out of credits.
// Such errors are not retried with the same credential.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

type rotationState int

const (
	stateTryCredential rotationState = iota
	stateExhausted
	stateSuccess
	stateAllFailed
)

func (s rotationState) String() string {
	switch s {
	case stateTryCredential:
		return "try_credential"
	case stateExhausted:
		return "exhausted"
	case stateSuccess:
		return "success"
	case stateAllFailed:
		return "all_failed"
	default:
		return fmt.Sprintf("rotationState(%d)", int(s))
	}
}

// rotation walks the credentials in order. Each credential gets up to
// maxRetries calls spaced by retryDelay; a quota error skips straight to the
// next one.
type rotation struct {
	credentials []string
	maxRetries  int
	retryDelay  time.Duration
	extract     func(ctx context.Context, apiKey string) ([]byte, error)

	state   rotationState
	index   int
	attempt int
	body    []byte
	lastErr error
}

func newRotation(credentials []string, maxRetries int, retryDelay time.Duration, extract func(context.Context, string) ([]byte, error)) *rotation {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &rotation{
		credentials: credentials,
		maxRetries:  maxRetries,
		retryDelay:  retryDelay,
		extract:     extract,
		state:       stateTryCredential,
	}
}

// run drives the state machine to Success or AllFailed. On failure the last
// upstream error is returned, or ErrAllCredentialsFailed if none was recorded.
func (r *rotation) run(ctx context.Context) ([]byte, error) {
	for {
		switch r.state {
		case stateTryCredential:
			if r.index >= len(r.credentials) {
				r.state = stateAllFailed
				continue
			}
			r.tryCredential(ctx)

		case stateExhausted:
			r.index++
			r.state = stateTryCredential

		case stateSuccess:
			return r.body, nil

		case stateAllFailed:
			if r.lastErr == nil {
				return nil, ErrAllCredentialsFailed
			}
			return nil, r.lastErr
		}
	}
}

// tryCredential retries the current credential with a constant delay until
// it succeeds, hits a quota error or runs out of attempts, then picks the
// next state. A done context ends the whole rotation.
func (r *rotation) tryCredential(ctx context.Context) {
	r.attempt = 0

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(r.retryDelay), uint64(r.maxRetries-1)),
		ctx,
	)

	notify := func(err error, wait time.Duration) {
		logger.Info("Waiting before retrying credential", logger.Fields{
			"credential": r.label(),
			"wait":       wait.String(),
		})
	}

	err := backoff.RetryNotify(func() error { return r.call(ctx) }, policy, notify)

	switch {
	case err == nil:
		r.state = stateSuccess
	case ctx.Err() != nil:
		r.lastErr = ctx.Err()
		r.state = stateAllFailed
	default:
		r.state = stateExhausted
	}
}

// call makes one upstream attempt with the current credential. Quota errors
// are returned as permanent so the credential is not retried.
func (r *rotation) call(ctx context.Context) error {
	r.attempt++
	logger.Info("Calling Firecrawl", logger.Fields{
		"credential": r.label(),
		"attempt":    fmt.Sprintf("%d/%d", r.attempt, r.maxRetries),
	})

	logger.IncrCounter("firecrawl.calls")
	start := time.Now()
	body, err := r.extract(ctx, r.credentials[r.index])
	logger.RecordTiming("firecrawl.extract", time.Since(start))

	if err == nil {
		r.body = body
		return nil
	}

	r.lastErr = err

	if IsQuotaError(err) {
		logger.IncrCounter("firecrawl.quota_errors")
		logger.Warn("Credential out of credits, rotating", logger.Fields{
			"credential": r.label(),
			"error":      err.Error(),
		})
		return backoff.Permanent(err)
	}

	logger.IncrCounter("firecrawl.errors")
	logger.Warn("Firecrawl attempt failed", logger.Fields{
		"credential": r.label(),
		"attempt":    fmt.Sprintf("%d/%d", r.attempt, r.maxRetries),
		"error":      err.Error(),
	})
	return err
}

// label names the current credential by position, never by value.
func (r *rotation) label() string {
	return fmt.Sprintf("%d/%d", r.index+1, len(r.credentials))
}
