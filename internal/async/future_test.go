package async

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGo_ResolvesWithResult(t *testing.T) {
	want := errors.New("boom")
	f := Go(func() error { return want })
	assert.ErrorIs(t, f.Wait(context.Background()), want)
	assert.ErrorIs(t, f.Err(), want)
}

func TestNew_FirstResolutionWins(t *testing.T) {
	f, resolve := New()
	assert.NoError(t, f.Err())
	resolve(nil)
	resolve(errors.New("late"))
	require.NoError(t, f.Wait(context.Background()))
}

func TestWait_ContextCanceled(t *testing.T) {
	f, _ := New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.Wait(ctx), context.DeadlineExceeded)
}

func TestThen_RunsAfterResolution(t *testing.T) {
	f, resolve := New()
	seen := make(chan error, 1)
	next := f.Then(func(err error) { seen <- err })

	select {
	case <-seen:
		t.Fatal("continuation ran before resolution")
	case <-time.After(10 * time.Millisecond):
	}

	want := errors.New("failed")
	resolve(want)
	assert.ErrorIs(t, <-seen, want)
	assert.ErrorIs(t, next.Wait(context.Background()), want)
}

func TestResolved(t *testing.T) {
	f := Resolved(nil)
	select {
	case <-f.Done():
	default:
		t.Fatal("resolved future must be done")
	}
}
