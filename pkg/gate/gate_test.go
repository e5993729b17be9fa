package gate

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestGate_Admit(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		req     Request
		wantErr error
	}{
		{
			name: "docx_admitted",
			req:  Request{Filename: "report.DOCX", Size: 1024},
		},
		{
			name:    "unknown_extension",
			req:     Request{Filename: "script.exe", Size: 10},
			wantErr: ErrExtension,
		},
		{
			name:    "no_extension",
			req:     Request{Filename: "README", Size: 10},
			wantErr: ErrExtension,
		},
		{
			name:    "empty_document",
			req:     Request{Filename: "a.pdf", Size: 0},
			wantErr: ErrEmpty,
		},
		{
			name:    "too_large",
			opts:    Options{MaxBytes: 100},
			req:     Request{Filename: "a.pdf", Size: 101},
			wantErr: ErrTooLarge,
		},
		{
			name: "at_size_limit",
			opts: Options{MaxBytes: 100},
			req:  Request{Filename: "a.pdf", Size: 100},
		},
		{
			name:    "custom_allow_list",
			opts:    Options{Extensions: []string{"txt"}},
			req:     Request{Filename: "a.pdf", Size: 1},
			wantErr: ErrExtension,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket, err := New(tt.opts).Admit(context.Background(), tt.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.True(t, errors.Is(err, ErrRejected))
				assert.False(t, ticket.Valid())
				return
			}
			require.NoError(t, err)
			assert.True(t, ticket.Valid())
			assert.Equal(t, tt.req.Filename, ticket.Filename())
			assert.Equal(t, tt.req.Size, ticket.Size())
		})
	}
}

func TestGate_QuotaOnlyConsumedForAdmittedDocuments(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	q := NewDailyQuota(2, clock.now)
	g := New(Options{Quota: q})

	_, err := g.Admit(ctx, Request{Filename: "bad.exe", Size: 1, Client: "alice"})
	require.Error(t, err)

	first, err := g.Admit(ctx, Request{Filename: "a.docx", Size: 1, Client: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Usage().Used)
	assert.Equal(t, 1, first.Usage().Remaining())

	_, err = g.Admit(ctx, Request{Filename: "b.docx", Size: 1, Client: "alice"})
	require.NoError(t, err)

	_, err = g.Admit(ctx, Request{Filename: "c.docx", Size: 1, Client: "alice"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))

	_, err = g.Admit(ctx, Request{Filename: "c.docx", Size: 1, Client: "bob"})
	require.NoError(t, err, "quota is per client")
}

func TestDailyQuota_ResetsAtMidnightUTC(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)}
	q := NewDailyQuota(1, clock.now)

	u, err := q.Take(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), u.ResetAt)

	u, err = q.Take(ctx, "")
	require.Error(t, err)
	assert.Equal(t, 0, u.Remaining())

	clock.t = clock.t.Add(2 * time.Minute)
	u, err = q.Take(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, u.Used)
}

func TestDailyQuota_Unlimited(t *testing.T) {
	q := NewDailyQuota(0, nil)
	for range 10 {
		u, err := q.Take(context.Background(), "x")
		require.NoError(t, err)
		assert.Equal(t, -1, u.Remaining())
	}
}

func TestSQLiteQuota(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "quota.db")
	clock := &fakeClock{t: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)}

	q, err := OpenSQLiteQuota(ctx, path, 2, clock.now)
	require.NoError(t, err)

	u, err := q.Take(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, u.Used)
	require.NoError(t, q.Close())

	// usage survives reopening the store
	q, err = OpenSQLiteQuota(ctx, path, 2, clock.now)
	require.NoError(t, err)
	defer q.Close()

	u, err = q.Take(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, u.Used)

	_, err = q.Take(ctx, "alice")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuotaExceeded))

	clock.t = clock.t.AddDate(0, 0, 1)
	u, err = q.Take(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, u.Used)

	pruned, err := q.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)
}

func TestSQLiteQuota_InMemory(t *testing.T) {
	ctx := context.Background()
	q, err := OpenSQLiteQuota(ctx, ":memory:", 1, nil)
	require.NoError(t, err)
	defer q.Close()

	_, err = q.Take(ctx, "")
	require.NoError(t, err)
	_, err = q.Take(ctx, "")
	assert.True(t, errors.Is(err, ErrQuotaExceeded))
}

func TestGate_FormatCheckRunsBeforeQuota(t *testing.T) {
	ctx := context.Background()
	quota := NewDailyQuota(1, nil)
	g := New(Options{
		Quota: quota,
		Check: func(ext string, data []byte) error {
			if ext == ".pdf" && string(data[:4]) != "%PDF" {
				return errors.New("missing pdf header")
			}
			return nil
		},
	})

	_, err := g.Admit(ctx, Request{Filename: "a.pdf", Size: 4, Data: []byte("PK\x03\x04")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormat))
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Contains(t, err.Error(), "missing pdf header")

	ticket, err := g.Admit(ctx, Request{Filename: "b.pdf", Size: 8, Data: []byte("%PDF-1.7")})
	require.NoError(t, err, "a refused document must not spend quota")
	assert.Equal(t, 1, ticket.Usage().Used)
}
