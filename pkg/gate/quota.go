package gate

import (
	"context"
	"sync"
	"time"

	"gitlab.com/tozd/go/errors"
)

// 📊 Usage is the quota state after a successful Take
type Usage struct {
	Used    int
	Limit   int
	ResetAt time.Time
}

// Remaining returns how many documents may still be processed today
func (u Usage) Remaining() int {
	if u.Limit <= 0 {
		return -1
	}
	return max(u.Limit-u.Used, 0)
}

// 🔢 Quota counts documents per client and day
type Quota interface {
	// Take consumes one unit for client or fails with ErrQuotaExceeded
	Take(ctx context.Context, client string) (Usage, error)
}

// day returns the UTC day key of t and the start of the next day
func day(t time.Time) (string, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start.Format(time.DateOnly), start.AddDate(0, 0, 1)
}

type dailyCount struct {
	day  string
	used int
}

// DailyQuota is an in-memory quota that resets at UTC midnight
type DailyQuota struct {
	limit int
	now   func() time.Time

	mu     sync.Mutex
	counts map[string]dailyCount
}

// NewDailyQuota creates a quota of limit documents per day. A nil clock
// uses time.Now, a limit below 1 never rejects.
func NewDailyQuota(limit int, now func() time.Time) *DailyQuota {
	if now == nil {
		now = time.Now
	}
	return &DailyQuota{limit: limit, now: now, counts: make(map[string]dailyCount)}
}

func (q *DailyQuota) Take(ctx context.Context, client string) (Usage, error) {
	today, reset := day(q.now())

	q.mu.Lock()
	defer q.mu.Unlock()

	c := q.counts[client]
	if c.day != today {
		c = dailyCount{day: today}
	}

	if q.limit > 0 && c.used >= q.limit {
		return Usage{Used: c.used, Limit: q.limit, ResetAt: reset},
			errors.Errorf("%w: %d/%d used, resets at %s", ErrQuotaExceeded, c.used, q.limit, reset.Format(time.RFC3339))
	}

	c.used++
	q.counts[client] = c
	return Usage{Used: c.used, Limit: q.limit, ResetAt: reset}, nil
}
