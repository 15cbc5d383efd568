package redisdns

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func dispatchTokens(d *Dispatcher, tokens ...string) Reply {
	b := make([][]byte, len(tokens))
	for i, t := range tokens {
		b[i] = []byte(t)
	}
	return d.Dispatch(b)
}

func TestDispatchPing(t *testing.T) {
	d := NewDispatcher(NewDatastore(0))
	require.Equal(t, SimpleString("PONG"), dispatchTokens(d, "PING"))
	require.Equal(t, NewBulkString([]byte("hi")), dispatchTokens(d, "PING", "hi"))
}

func TestDispatchIsCaseInsensitive(t *testing.T) {
	d := NewDispatcher(NewDatastore(0))
	require.Equal(t, SimpleString("PONG"), dispatchTokens(d, "ping"))
}

func TestDispatchEmptyCommand(t *testing.T) {
	d := NewDispatcher(NewDatastore(0))
	reply := d.Dispatch(nil)
	_, ok := reply.(ErrorReply)
	require.True(t, ok)
}

func TestDispatchUnknownCommand(t *testing.T) {
	d := NewDispatcher(NewDatastore(0))
	reply := dispatchTokens(d, "NOPE")
	_, ok := reply.(ErrorReply)
	require.True(t, ok)
}

func TestDispatchWrongArity(t *testing.T) {
	d := NewDispatcher(NewDatastore(0))
	reply := dispatchTokens(d, "GET")
	_, ok := reply.(ErrorReply)
	require.True(t, ok)
}

func TestDispatchSetGet(t *testing.T) {
	d := NewDispatcher(NewDatastore(0))
	require.Equal(t, SimpleString("OK"), dispatchTokens(d, "SET", "k", "v"))
	require.Equal(t, NewBulkString([]byte("v")), dispatchTokens(d, "GET", "k"))
}

func TestDispatchGetMissingReturnsNilBulk(t *testing.T) {
	d := NewDispatcher(NewDatastore(0))
	require.Equal(t, NilBulk, dispatchTokens(d, "GET", "missing"))
}

func TestDispatchDelCountsRemoved(t *testing.T) {
	d := NewDispatcher(NewDatastore(0))
	dispatchTokens(d, "SET", "a", "1")
	dispatchTokens(d, "SET", "b", "1")
	reply := dispatchTokens(d, "DEL", "a", "b", "c")
	require.Equal(t, Integer(2), reply)
}

func TestDispatchHMSetOddArgsErrors(t *testing.T) {
	d := NewDispatcher(NewDatastore(0))
	reply := dispatchTokens(d, "HMSET", "h", "f1", "v1", "f2")
	_, ok := reply.(ErrorReply)
	require.True(t, ok)
}

func TestDispatchExpireReturnsOK(t *testing.T) {
	d := NewDispatcher(NewDatastore(0))
	dispatchTokens(d, "SET", "k", "v")
	require.Equal(t, SimpleString("OK"), dispatchTokens(d, "EXPIRE", "k", "1"))
}

func TestDispatchExpireMissingKeyErrors(t *testing.T) {
	d := NewDispatcher(NewDatastore(0))
	reply := dispatchTokens(d, "EXPIRE", "missing", "1")
	_, ok := reply.(ErrorReply)
	require.True(t, ok)
}

func TestDispatchListRoundTrip(t *testing.T) {
	d := NewDispatcher(NewDatastore(0))
	dispatchTokens(d, "RPUSH", "l", "a")
	dispatchTokens(d, "RPUSH", "l", "b")
	require.Equal(t, Integer(2), dispatchTokens(d, "LLEN", "l"))
	require.Equal(t, NewBulkString([]byte("a")), dispatchTokens(d, "LPOP", "l"))
}
