package redisdns

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadCommandArray(t *testing.T) {
	raw := "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"
	rr := NewRequestReader(strings.NewReader(raw), 0)
	tokens, err := rr.ReadCommand()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("SET"), []byte("foo"), []byte("bar")}, tokens)
}

func TestReadCommandInline(t *testing.T) {
	rr := NewRequestReader(strings.NewReader("PING\r\n"), 0)
	tokens, err := rr.ReadCommand()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("PING")}, tokens)
}

func TestReadCommandRejectsOversizedBulk(t *testing.T) {
	raw := "*1\r\n$100\r\n"
	rr := NewRequestReader(strings.NewReader(raw), 10)
	_, err := rr.ReadCommand()
	require.Error(t, err)
	require.IsType(t, ProtocolError{}, err)
}

func TestReadCommandMultipleRequestsOnOneStream(t *testing.T) {
	raw := "*1\r\n$4\r\nPING\r\n*1\r\n$4\r\nPING\r\n"
	rr := NewRequestReader(strings.NewReader(raw), 0)
	for i := 0; i < 2; i++ {
		tokens, err := rr.ReadCommand()
		require.NoError(t, err)
		require.Equal(t, [][]byte{[]byte("PING")}, tokens)
	}
}

func TestWriteReplyTypes(t *testing.T) {
	cases := []struct {
		reply Reply
		want  string
	}{
		{SimpleString("OK"), "+OK\r\n"},
		{ErrorReply("bad"), "-bad\r\n"},
		{Integer(42), ":42\r\n"},
		{NewBulkString([]byte("hi")), "$2\r\nhi\r\n"},
		{NilBulk, "$-1\r\n"},
		{BulkStringArray([]byte("a"), []byte("b")), "*2\r\n$1\r\na\r\n$1\r\nb\r\n"},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		w := bufio.NewWriter(&buf)
		require.NoError(t, WriteReply(w, c.reply))
		require.Equal(t, c.want, buf.String())
	}
}
