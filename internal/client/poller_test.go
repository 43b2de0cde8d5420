package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestUnreadPollerStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&polls, 1)
		if n == 2 {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": int(n)})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	defer c.Close()
	c.Session().Set("tok", "student", nil)

	counts := make(chan int, 16)
	p := &UnreadPoller{Client: c, Interval: 10 * time.Millisecond, OnCount: func(n int) {
		select {
		case counts <- n:
		default:
		}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := p.Start(ctx)

	// The failed second poll does not stop polling.
	require.Equal(t, 1, <-counts)
	require.Equal(t, 3, <-counts)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(3))
}

func TestUnreadPollerSkipsWithoutSession(t *testing.T) {
	defer goleak.VerifyNone(t)

	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&polls, 1)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	(&UnreadPoller{Client: c, Interval: 5 * time.Millisecond}).Run(ctx)

	assert.Equal(t, int32(0), atomic.LoadInt32(&polls))
}
