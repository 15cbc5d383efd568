package redisdns

import (
	"bufio"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	snapPath := t.TempDir() + "/dump.my_rdb"
	ds := NewDatastore(0)
	srv := NewServer(ds, ServerOptions{
		Addr:             "127.0.0.1:0",
		SnapshotPath:     snapPath,
		SnapshotInterval: time.Hour,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	var addr string
	require.Eventually(t, func() bool {
		a, ok := srv.Addr()
		if !ok {
			return false
		}
		addr = a
		return true
	}, time.Second, time.Millisecond)

	t.Cleanup(func() {
		srv.Stop()
		os.Remove(snapPath)
		select {
		case <-errCh:
		case <-time.After(time.Second):
		}
	})
	return srv, addr
}

func TestServerPingPong(t *testing.T) {
	_, addr := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("PING\r\n"))
	require.NoError(t, err)

	reply, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "+PONG\r\n", reply)
}

func TestServerSetGetOverWire(t *testing.T) {
	_, addr := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	r := bufio.NewReader(conn)
	_, err = conn.Write([]byte("*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n"))
	require.NoError(t, err)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "+OK\r\n", line)

	_, err = conn.Write([]byte("*2\r\n$3\r\nGET\r\n$1\r\nk\r\n"))
	require.NoError(t, err)
	header, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "$1\r\n", header)
}

func TestServerProtocolErrorKeepsConnectionOpen(t *testing.T) {
	_, addr := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	r := bufio.NewReader(conn)
	_, err = conn.Write([]byte("*bogus\r\n"))
	require.NoError(t, err)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.True(t, len(line) > 0 && line[0] == '-')

	_, err = conn.Write([]byte("PING\r\n"))
	require.NoError(t, err)
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "+PONG\r\n", line)
}

func TestServerFinalSnapshotOnStop(t *testing.T) {
	snapPath := t.TempDir() + "/dump.my_rdb"
	ds := NewDatastore(0)
	ds.Set("k", []byte("v"), 0)
	srv := NewServer(ds, ServerOptions{Addr: "127.0.0.1:0", SnapshotPath: snapPath})

	go srv.Start()
	require.Eventually(t, func() bool {
		_, ok := srv.Addr()
		return ok
	}, time.Second, time.Millisecond)

	require.NoError(t, srv.Stop())

	loaded := NewDatastore(0)
	require.NoError(t, loaded.LoadFromFile(snapPath))
	val, ok := loaded.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("v"), val)
}
