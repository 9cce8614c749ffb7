package pager

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_WalksUntilShortPage(t *testing.T) {
	var seen []Position
	sizes := []int{2, 2, 1}
	c := NewCursor(2, func(_ context.Context, pos Position, _ int) (int, Position, error) {
		seen = append(seen, pos)
		i := len(seen)
		return sizes[i-1], Position{LastCreatedAt: "t", LastPostID: int64(10 - i)}, nil
	})
	ctx := context.Background()

	for c.HasMore() {
		require.NoError(t, c.Next(ctx))
	}
	require.ErrorIs(t, c.Next(ctx), ErrExhausted)

	assert.Equal(t, []Position{{}, {"t", 9}, {"t", 8}}, seen)
	assert.Equal(t, Position{"t", 7}, c.Position())

	c.Reset()
	assert.True(t, c.HasMore())
	assert.Equal(t, Position{}, c.Position())
}

func TestCursor_EmptyNextCursorStops(t *testing.T) {
	c := NewCursor(2, func(context.Context, Position, int) (int, Position, error) {
		return 2, Position{}, nil
	})
	require.NoError(t, c.Next(context.Background()))
	assert.False(t, c.HasMore())
}

func TestCursor_ErrorKeepsPosition(t *testing.T) {
	boom := errors.New("boom")
	fail := true
	c := NewCursor(1, func(context.Context, Position, int) (int, Position, error) {
		if fail {
			return 0, Position{}, boom
		}
		return 1, Position{LastPostID: 3}, nil
	})
	ctx := context.Background()

	require.ErrorIs(t, c.Next(ctx), boom)
	assert.True(t, c.HasMore())
	assert.False(t, c.Loading())

	fail = false
	require.NoError(t, c.Next(ctx))
	assert.Equal(t, int64(3), c.Position().LastPostID)
}

func TestCursor_BusyWhileLoading(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := NewCursor(1, func(context.Context, Position, int) (int, Position, error) {
		close(started)
		<-release
		return 1, Position{LastPostID: 1}, nil
	})

	done := make(chan error)
	go func() { done <- c.Next(context.Background()) }()
	<-started

	assert.True(t, c.Loading())
	require.ErrorIs(t, c.Next(context.Background()), ErrBusy)
	close(release)
	require.NoError(t, <-done)
}

func TestPages(t *testing.T) {
	var pages []int
	p := NewPages(2, func(_ context.Context, page, _ int) (int, int64, error) {
		pages = append(pages, page)
		if page == 3 {
			return 1, 5, nil
		}
		return 2, 5, nil
	})
	ctx := context.Background()

	for p.HasMore() {
		require.NoError(t, p.Next(ctx))
	}
	assert.Equal(t, []int{1, 2, 3}, pages)
	assert.Equal(t, 3, p.Page())
	assert.EqualValues(t, 5, p.Total())
	require.ErrorIs(t, p.Next(ctx), ErrExhausted)

	p.Reset()
	assert.Zero(t, p.Page())
	assert.True(t, p.HasMore())
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.size), "total=%d size=%d", tt.total, tt.size)
	}
}
