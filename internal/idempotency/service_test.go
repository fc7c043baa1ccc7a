package idempotency

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_MissThenHitReturnsCachedPayload(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	calls := 0

	fn := func() (int, []byte, error) {
		calls++
		return 201, []byte(`{"id":"r1"}`), nil
	}

	status1, body1, err := svc.Execute(ctx, "k1", fn)
	require.NoError(t, err)
	assert.Equal(t, 201, status1)
	assert.Equal(t, `{"id":"r1"}`, string(body1))

	status2, body2, err := svc.Execute(ctx, "k1", fn)
	require.NoError(t, err)
	assert.Equal(t, status1, status2)
	assert.Equal(t, body1, body2)
	assert.Equal(t, 1, calls, "second call with the same key must not re-invoke fn")
}

func TestService_NonSuccessResponsesAreNotCached(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	calls := 0

	fn := func() (int, []byte, error) {
		calls++
		return 409, []byte(`{"error":"no_capacity"}`), nil
	}

	svc.Execute(ctx, "k1", fn)
	svc.Execute(ctx, "k1", fn)
	assert.Equal(t, 2, calls, "non-2xx responses must not be cached")
}

func TestService_EmptyKeyAlwaysExecutes(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	calls := 0

	fn := func() (int, []byte, error) {
		calls++
		return 201, nil, nil
	}

	svc.Execute(ctx, "", fn)
	svc.Execute(ctx, "", fn)
	assert.Equal(t, 2, calls)
}

func TestService_ConcurrentSameKeyOneWinner(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := 0; i < 10; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, body, err := svc.Execute(ctx, "race", func() (int, []byte, error) {
				return 201, []byte{byte('0' + i)}, nil
			})
			require.NoError(t, err)
			results[i] = string(body)
		}()
	}
	wg.Wait()

	first := results[0]
	for _, r := range results {
		assert.Equal(t, first, r, "all concurrent callers with the same key must see the same winning payload")
	}
}
