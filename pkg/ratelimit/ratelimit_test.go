package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCounter struct {
	mock.Mock
}

func (m *mockCounter) CountAccessLogsSince(ctx context.Context, ipAddress string, since time.Time) (int64, error) {
	args := m.Called(ctx, ipAddress, since)
	return args.Get(0).(int64), args.Error(1)
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name  string
		count int64
		want  bool
	}{
		{"no requests", 0, false},
		{"below limit", 4, false},
		{"at limit", 5, true},
		{"above limit", 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := &mockCounter{}
			counter.On("CountAccessLogsSince", mock.Anything, "10.0.0.1", fixedNow.Add(-time.Minute)).Return(tt.count, nil)

			l := New(counter, DefaultPolicy).WithClock(func() time.Time { return fixedNow })

			limited, err := l.IsRateLimited(context.Background(), "10.0.0.1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, limited)
			counter.AssertExpectations(t)
		})
	}
}

func TestCheckUsesWindow(t *testing.T) {
	counter := &mockCounter{}
	counter.On("CountAccessLogsSince", mock.Anything, "::1", fixedNow.Add(-10*time.Second)).Return(int64(1), nil)

	l := New(counter, DefaultPolicy).WithClock(func() time.Time { return fixedNow })

	limited, err := l.Check(context.Background(), "::1", 2, 10*time.Second)
	require.NoError(t, err)
	assert.False(t, limited)
	counter.AssertExpectations(t)
}

func TestCheckDisabledLimit(t *testing.T) {
	counter := &mockCounter{}
	l := New(counter, Policy{Limit: 0, Window: time.Minute})

	limited, err := l.IsRateLimited(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, limited)
	counter.AssertNotCalled(t, "CountAccessLogsSince", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckCounterError(t *testing.T) {
	counter := &mockCounter{}
	counter.On("CountAccessLogsSince", mock.Anything, "10.0.0.1", mock.Anything).Return(int64(0), errors.New("connection refused"))

	l := New(counter, DefaultPolicy)

	limited, err := l.IsRateLimited(context.Background(), "10.0.0.1")
	assert.False(t, limited)
	assert.ErrorContains(t, err, "connection refused")
}

func TestSetPolicy(t *testing.T) {
	counter := &mockCounter{}
	counter.On("CountAccessLogsSince", mock.Anything, "10.0.0.1", fixedNow.Add(-time.Hour)).Return(int64(5), nil)

	l := New(counter, DefaultPolicy).WithClock(func() time.Time { return fixedNow })
	l.SetPolicy(Policy{Limit: 10, Window: time.Hour})

	assert.Equal(t, Policy{Limit: 10, Window: time.Hour}, l.Policy())

	limited, err := l.IsRateLimited(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, limited)
}

func TestSetPolicyConcurrent(t *testing.T) {
	counter := &mockCounter{}
	counter.On("CountAccessLogsSince", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	l := New(counter, DefaultPolicy)

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			l.SetPolicy(Policy{Limit: n, Window: time.Minute})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = l.IsRateLimited(context.Background(), "10.0.0.1")
		}()
	}
	wg.Wait()

	assert.Equal(t, time.Minute, l.Policy().Window)
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "5 per 1m0s", DefaultPolicy.String())
}
