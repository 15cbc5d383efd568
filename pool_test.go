package redisdns

import (
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPoolProcessesSubmittedConnections(t *testing.T) {
	var processed atomic.Int32
	var wg sync.WaitGroup
	p := NewPool(2, 4, func(conn net.Conn) {
		defer wg.Done()
		processed.Add(1)
		conn.Close()
	})
	p.Start()
	defer p.Stop()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		c1, c2 := net.Pipe()
		c2.Close()
		require.NoError(t, p.Submit(c1))
	}
	wg.Wait()
	require.Equal(t, int32(4), processed.Load())
}

func TestPoolSubmitAfterStopErrors(t *testing.T) {
	p := NewPool(1, 1, func(conn net.Conn) { conn.Close() })
	p.Start()
	p.Stop()

	c1, c2 := net.Pipe()
	defer c2.Close()
	err := p.Submit(c1)
	require.ErrorIs(t, err, ErrPoolStopped)
	c1.Close()
}

func TestPoolStopWaitsForInFlightWork(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	p := NewPool(1, 1, func(conn net.Conn) {
		close(started)
		<-release
		conn.Close()
	})
	p.Start()

	c1, c2 := net.Pipe()
	defer c2.Close()
	require.NoError(t, p.Submit(c1))
	<-started

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Stop returned before in-flight work finished")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	<-done
}
