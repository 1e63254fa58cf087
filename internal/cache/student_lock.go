package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultLockTTL       = 30 * time.Second
	defaultLockRetryWait = 50 * time.Millisecond
	studentLockPrefix    = "lock:student:"
)

var ErrLockNotHeld = errors.New("student lock not held")

// releaseScript deletes the lease only if it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lease only if it still carries our token
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type keyedLock struct {
	sem  chan struct{}
	refs int
}

// StudentLocker serializes match writes per student. Within a process a keyed
// mutex is used; with a redis client a SET NX PX lease also excludes other
// workers. The lease is renewed every ttl/3 until the lock is released.
type StudentLocker struct {
	client     *redis.Client
	ttl        time.Duration
	retryWait  time.Duration
	renewEvery time.Duration

	mu    sync.Mutex
	locks map[uint]*keyedLock
}

func NewStudentLocker(client *redis.Client, ttl time.Duration) *StudentLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	renewEvery := ttl / 3
	if renewEvery <= 0 {
		renewEvery = ttl
	}
	return &StudentLocker{
		client:     client,
		ttl:        ttl,
		retryWait:  defaultLockRetryWait,
		renewEvery: renewEvery,
		locks:      make(map[uint]*keyedLock),
	}
}

// Lock blocks until the student's lock is held or ctx is done. The returned
// function releases it and must be called exactly once.
func (l *StudentLocker) Lock(ctx context.Context, studentID uint) (func(), error) {
	entry := l.acquireEntry(studentID)

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.releaseEntry(studentID, entry, false)
		return nil, fmt.Errorf("failed to lock student %d: %w", studentID, ctx.Err())
	}

	if l.client == nil {
		return func() { l.releaseEntry(studentID, entry, true) }, nil
	}

	token, err := l.acquireLease(ctx, studentID)
	if err != nil {
		l.releaseEntry(studentID, entry, true)
		return nil, err
	}

	renewCtx, stopRenew := context.WithCancel(context.Background())
	renewDone := make(chan struct{})
	go l.renewLease(renewCtx, studentID, token, renewDone)

	return func() {
		stopRenew()
		<-renewDone

		// Release even if the caller's context was cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.releaseLease(releaseCtx, studentID, token); err != nil {
			slog.Warn("Failed to release student lease", "student_profile_id", studentID, "error", err)
		}
		l.releaseEntry(studentID, entry, true)
	}, nil
}

func (l *StudentLocker) acquireEntry(studentID uint) *keyedLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[studentID]
	if !ok {
		entry = &keyedLock{sem: make(chan struct{}, 1)}
		l.locks[studentID] = entry
	}
	entry.refs++
	return entry
}

func (l *StudentLocker) releaseEntry(studentID uint, entry *keyedLock, held bool) {
	if held {
		<-entry.sem
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, studentID)
	}
}

func (l *StudentLocker) acquireLease(ctx context.Context, studentID uint) (string, error) {
	key := leaseKey(studentID)
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryWait)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("failed to acquire lease for student %d: %w", studentID, err)
		}
		if ok {
			return token, nil
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("failed to acquire lease for student %d: %w", studentID, ctx.Err())
		case <-ticker.C:
		}
	}
}

// renewLease keeps the lease alive until ctx is cancelled or the lease is lost
func (l *StudentLocker) renewLease(ctx context.Context, studentID uint, token string, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.renewEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		renewed, err := renewScript.Run(ctx, l.client, []string{leaseKey(studentID)}, token, l.ttl.Milliseconds()).Int()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("Failed to renew student lease", "student_profile_id", studentID, "error", err)
			continue
		}
		if renewed == 0 {
			slog.Error("Student lease lost", "student_profile_id", studentID)
			return
		}
	}
}

func (l *StudentLocker) releaseLease(ctx context.Context, studentID uint, token string) error {
	deleted, err := releaseScript.Run(ctx, l.client, []string{leaseKey(studentID)}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to release lease for student %d: %w", studentID, err)
	}
	if deleted == 0 {
		return ErrLockNotHeld
	}
	return nil
}

func leaseKey(studentID uint) string {
	return fmt.Sprintf("%s%d", studentLockPrefix, studentID)
}
