package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ActionCreateBooking is the action name POST /bookings is counted under.
const ActionCreateBooking = "create_booking"

// UnknownIdentifier is used when the caller's address cannot be determined.
const UnknownIdentifier = "unknown"

var (
	ErrLimitExceeded = errors.New("rate limit exceeded")
	ErrUnknownAction = errors.New("no rate limit policy for action")
)

// BackendError means the counter store could not answer. Callers must deny.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("rate limit backend: %v", e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Policy is a maximum count within a trailing window.
type Policy struct {
	Max    int
	Window time.Duration
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Count      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether identifier may perform action now.
type Limiter interface {
	Allow(ctx context.Context, identifier, action string) (Decision, error)
}

// slidingWindowScript trims the window, then admits and records the hit only if
// the count is below max. It runs atomically inside Redis, so concurrent callers
// sharing an identifier cannot both take the last admission.
//
// KEYS[1] window key; ARGV: now ms, window ms, max, member.
// Returns {allowed, count, oldest ms}.
var slidingWindowScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
local count = redis.call('ZCARD', KEYS[1])
if count >= max then
  local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
  local oldestScore = now
  if oldest[2] then oldestScore = tonumber(oldest[2]) end
  return {0, count, oldestScore}
end
redis.call('ZADD', KEYS[1], now, ARGV[4])
redis.call('PEXPIRE', KEYS[1], window)
return {1, count + 1, now}
`)

// RedisLimiter is a sliding-window limiter keyed by (identifier, action).
type RedisLimiter struct {
	client   *redis.Client
	policies map[string]Policy
	timeout  time.Duration
	prefix   string
	now      func() time.Time
}

// NewRedisLimiter builds a limiter. timeout bounds each check; zero means no
// extra bound beyond the caller's context.
func NewRedisLimiter(client *redis.Client, policies map[string]Policy, timeout time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		policies: policies,
		timeout:  timeout,
		prefix:   "ratelimit",
		now:      time.Now,
	}
}

func (l *RedisLimiter) key(identifier, action string) string {
	return l.prefix + ":" + action + ":" + identifier
}

// Allow records and admits the hit, or denies it. Any store failure is
// returned as *BackendError with a denied decision.
func (l *RedisLimiter) Allow(ctx context.Context, identifier, action string) (Decision, error) {
	policy, ok := l.policies[action]
	if !ok || policy.Max <= 0 || policy.Window <= 0 {
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		identifier = UnknownIdentifier
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	now := l.now().UnixMilli()
	windowMS := policy.Window.Milliseconds()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	res, err := slidingWindowScript.Run(ctx, l.client, []string{l.key(identifier, action)},
		now, windowMS, policy.Max, member).Result()
	if err != nil {
		return Decision{}, &BackendError{Err: err}
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 3 {
		return Decision{}, &BackendError{Err: fmt.Errorf("unexpected script reply %v", res)}
	}
	allowed, _ := vals[0].(int64)
	count, _ := vals[1].(int64)
	oldest, _ := vals[2].(int64)

	d := Decision{
		Allowed:   allowed == 1,
		Count:     int(count),
		Remaining: policy.Max - int(count),
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.RetryAfter = time.Duration(oldest+windowMS-now) * time.Millisecond
		if d.RetryAfter < 0 {
			d.RetryAfter = 0
		}
	}
	return d, nil
}

// Enforce runs one check and turns a denial into ErrLimitExceeded.
func Enforce(ctx context.Context, l Limiter, identifier, action string) (Decision, error) {
	d, err := l.Allow(ctx, identifier, action)
	if err != nil {
		return d, err
	}
	if !d.Allowed {
		return d, ErrLimitExceeded
	}
	return d, nil
}
