package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForStatus(t *testing.T, q *Queue, id string, want Status) Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if j, ok := q.Get(id); ok && j.Status == want {
			return j
		}
		time.Sleep(5 * time.Millisecond)
	}
	j, _ := q.Get(id)
	t.Fatalf("job %s never reached %s (last: %s)", id, want, j.Status)
	return Job{}
}

func TestQueue_RunsJob(t *testing.T) {
	q := NewQueue(context.Background(), 2, 8)
	defer q.Close()

	id, err := q.Submit(func(ctx context.Context) (any, error) {
		return "done", nil
	})
	require.NoError(t, err)

	j := waitForStatus(t, q, id, StatusCompleted)
	assert.Equal(t, "done", j.Result)
	assert.False(t, j.SubmittedAt.IsZero())
	assert.False(t, j.StartedAt.IsZero())
	assert.False(t, j.FinishedAt.IsZero())
	assert.Empty(t, j.Error)
}

func TestQueue_RecordsFailure(t *testing.T) {
	q := NewQueue(context.Background(), 1, 8)
	defer q.Close()

	id, err := q.Submit(func(ctx context.Context) (any, error) {
		return nil, eris.New("scrape exploded")
	})
	require.NoError(t, err)

	j := waitForStatus(t, q, id, StatusFailed)
	assert.Contains(t, j.Error, "scrape exploded")
	assert.Nil(t, j.Result)
}

func TestQueue_UnknownJob(t *testing.T) {
	q := NewQueue(context.Background(), 1, 8)
	defer q.Close()

	_, ok := q.Get("nope")
	assert.False(t, ok)
}

func TestQueue_FullRejectsSubmit(t *testing.T) {
	q := NewQueue(context.Background(), 1, 1)
	defer q.Close()

	block := make(chan struct{})
	_, err := q.Submit(func(ctx context.Context) (any, error) {
		<-block
		return nil, nil
	})
	require.NoError(t, err)

	// One slot in the channel plus the blocked worker; fill the slot.
	var full error
	for i := 0; i < 3; i++ {
		if _, err := q.Submit(func(ctx context.Context) (any, error) { return nil, nil }); err != nil {
			full = err
			break
		}
	}
	assert.ErrorIs(t, full, ErrQueueFull)
	close(block)
}

func TestQueue_CloseDrainsAndRejects(t *testing.T) {
	q := NewQueue(context.Background(), 2, 8)

	var mu sync.Mutex
	ran := 0
	var ids []string
	for i := 0; i < 5; i++ {
		id, err := q.Submit(func(ctx context.Context) (any, error) {
			mu.Lock()
			ran++
			mu.Unlock()
			return nil, nil
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, q.Close())

	mu.Lock()
	assert.Equal(t, 5, ran)
	mu.Unlock()
	for _, id := range ids {
		j, ok := q.Get(id)
		require.True(t, ok)
		assert.Equal(t, StatusCompleted, j.Status)
	}

	_, err := q.Submit(func(ctx context.Context) (any, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrClosed)
}
