package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/lightrest/internal/gamesapi"
)

func TestAsync_Wait(t *testing.T) {
	client := newGamesClient(t)
	ctx := context.Background()

	call := Async(ctx, func(ctx context.Context) (gamesapi.Game, int, error) {
		return Get[gamesapi.Game](ctx, client, "games/1", nil)
	})
	game, status, err := call.Wait()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, gamesapi.Seed, game)

	select {
	case <-call.Done():
	default:
		t.Fatal("Done not closed after Wait returned")
	}

	// Waiting again returns the same outcome.
	again, _, _ := call.Wait()
	assert.Equal(t, game, again)
}

func TestGoSend(t *testing.T) {
	client := newGamesClient(t)
	ctx := context.Background()

	text, status, err := client.GoSend(ctx, NewRequest(MethodGet, "games/1")).Wait()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `{"id":1,"title":"elden ring"}`, text)

	game, _, err := GoSendAs[gamesapi.Game](ctx, client, NewRequest(MethodGet, "games/1")).Wait()
	require.NoError(t, err)
	assert.Equal(t, gamesapi.Seed, game)
}

func TestAsync_ConcurrentCalls(t *testing.T) {
	client := newGamesClient(t)
	ctx := context.Background()

	const n = 20
	calls := make([]*Call[gamesapi.Game], n)
	for i := range calls {
		calls[i] = GoSendAs[gamesapi.Game](ctx, client, NewRequest(MethodGet, "games/1"))
	}

	var wg sync.WaitGroup
	for _, call := range calls {
		wg.Add(1)
		go func(call *Call[gamesapi.Game]) {
			defer wg.Done()
			game, status, err := call.Wait()
			assert.NoError(t, err)
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, gamesapi.Seed, game)
		}(call)
	}
	wg.Wait()
}

func TestAsync_WaitContextAndCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := MustNew()
	callCtx, cancel := context.WithCancel(context.Background())
	call := client.GoSend(callCtx, NewRequest(MethodGet, server.URL))

	waitCtx, stop := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer stop()
	_, _, err := call.WaitContext(waitCtx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	cancel()
	_, status, err := call.Wait()
	var cerr *CancellationError
	require.True(t, errors.As(err, &cerr))
	assert.Zero(t, status)
}
