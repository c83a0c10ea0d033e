// Package vote maintains the one-active-vote-per-user-per-target rule and
// keeps the denormalized up/down counters consistent with the vote rows.
package vote

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/westeroschronicles/chronicle/internal/model"
	"github.com/westeroschronicles/chronicle/internal/store"
)

// Direction of a vote click.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("invalid vote direction: %q", s)
	}
}

// Result reports the state after a cast.
type Result struct {
	UserVote  int `json:"user_vote"`
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Score     int `json:"score"`
}

const lockStripes = 64

// Ledger serializes the read-modify-write inside Cast per (user, target)
// pair with striped locks, so a user's rapid clicks on one story apply in
// issuance order. Votes by different users only ever touch the counters
// through relative adjustments, so they cannot lose each other's updates.
type Ledger struct {
	store Storage
	locks [lockStripes]sync.Mutex
}

// Storage is the slice of the store the ledger needs.
type Storage interface {
	store.VoteStore
	store.CounterStore
}

func NewLedger(st Storage) *Ledger {
	return &Ledger{store: st}
}

func (l *Ledger) lockFor(userID, targetType, targetID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(targetType))
	h.Write([]byte{0})
	h.Write([]byte(targetID))
	return &l.locks[h.Sum32()%lockStripes]
}

// Cast applies one click with toggle semantics: clicking the active
// direction clears the vote, clicking the other direction flips it in one
// step. Returns store.ErrNotFound when the target does not exist; nothing is
// mutated in that case.
func (l *Ledger) Cast(ctx context.Context, userID, targetType, targetID string, dir Direction) (Result, error) {
	mu := l.lockFor(userID, targetType, targetID)
	mu.Lock()
	defer mu.Unlock()

	// Existence check before any mutation.
	if _, _, err := l.store.GetCounters(ctx, targetType, targetID); err != nil {
		return Result{}, err
	}

	previous := 0
	if v, err := l.store.GetVote(ctx, userID, targetType, targetID); err == nil {
		previous = v.Value
	} else if !errors.Is(err, store.ErrNotFound) {
		return Result{}, err
	}

	next := nextValue(previous, dir)

	if next == 0 {
		if err := l.store.DeleteVote(ctx, userID, targetType, targetID); err != nil {
			return Result{}, err
		}
	} else {
		v := model.Vote{
			UserID:     userID,
			TargetType: targetType,
			TargetID:   targetID,
			Value:      next,
			CreatedAt:  time.Now(),
		}
		if err := l.store.UpsertVote(ctx, v); err != nil {
			return Result{}, err
		}
	}

	dUp, dDown := counterDelta(previous, next)
	if dUp != 0 || dDown != 0 {
		if err := l.store.AdjustCounters(ctx, targetType, targetID, dUp, dDown); err != nil {
			return Result{}, err
		}
	}

	up, down, err := l.store.GetCounters(ctx, targetType, targetID)
	if err != nil {
		return Result{}, err
	}
	return Result{UserVote: next, Upvotes: up, Downvotes: down, Score: up - down}, nil
}

// nextValue implements the toggle rule.
func nextValue(previous int, dir Direction) int {
	switch dir {
	case Up:
		if previous == 1 {
			return 0
		}
		return 1
	case Down:
		if previous == -1 {
			return 0
		}
		return -1
	}
	return previous
}

// counterDelta undoes previous's contribution and applies next's.
func counterDelta(previous, next int) (dUp, dDown int) {
	if previous == 1 {
		dUp--
	}
	if previous == -1 {
		dDown--
	}
	if next == 1 {
		dUp++
	}
	if next == -1 {
		dDown++
	}
	return dUp, dDown
}

// ScoreAndVote reads the current counters and the user's active vote.
// userID may be empty for anonymous readers.
func (l *Ledger) ScoreAndVote(ctx context.Context, userID, targetType, targetID string) (Result, error) {
	up, down, err := l.store.GetCounters(ctx, targetType, targetID)
	if err != nil {
		return Result{}, err
	}
	res := Result{Upvotes: up, Downvotes: down, Score: up - down}
	if userID == "" {
		return res, nil
	}
	v, err := l.store.GetVote(ctx, userID, targetType, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return res, nil
		}
		return Result{}, err
	}
	res.UserVote = v.Value
	return res, nil
}

// Recompute rebuilds a target's counters from the vote rows. The stored
// counters are a cache of that sum; this is the repair path when they drift.
func (l *Ledger) Recompute(ctx context.Context, targetType, targetID string) (Result, error) {
	up, down, err := l.store.CountVotes(ctx, targetType, targetID)
	if err != nil {
		return Result{}, err
	}
	if err := l.store.SetCounters(ctx, targetType, targetID, up, down); err != nil {
		return Result{}, err
	}
	return Result{Upvotes: up, Downvotes: down, Score: up - down}, nil
}
