package redisdns

import (
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// handlerFunc executes one already-arity-checked command against ds and
// returns the reply to write back. args excludes the command name itself.
type handlerFunc func(ds *Datastore, args [][]byte) Reply

// command describes one entry in the dispatch table: its handler and the
// arity bounds args must satisfy. maxArity < 0 means unbounded.
type command struct {
	minArity int
	maxArity int
	handler  handlerFunc
}

// Dispatcher turns framed requests into Datastore calls and RESP replies.
// It holds no state of its own beyond the table and the Datastore it was
// built against, so one Dispatcher can be shared by every connection.
type Dispatcher struct {
	ds    *Datastore
	table map[string]command
}

// NewDispatcher builds a Dispatcher wired to ds, with every command this
// server understands registered in its table.
func NewDispatcher(ds *Datastore) *Dispatcher {
	d := &Dispatcher{ds: ds}
	d.table = map[string]command{
		"PING":     {0, 1, cmdPing},
		"ECHO":     {1, 1, cmdEcho},
		"FLUSHALL": {0, 0, cmdFlushAll},
		"SET":      {2, 3, cmdSet},
		"GET":      {1, 1, cmdGet},
		"KEYS":     {0, 0, cmdKeys},
		"TYPE":     {1, 1, cmdType},
		"DEL":      {1, -1, cmdDel},
		"UNLINK":   {1, -1, cmdDel},
		"EXPIRE":   {2, 2, cmdExpire},
		"RENAME":   {2, 2, cmdRename},
		"LLEN":     {1, 1, cmdLLen},
		"LPUSH":    {2, 2, cmdLPush},
		"RPUSH":    {2, 2, cmdRPush},
		"LPOP":     {1, 1, cmdLPop},
		"RPOP":     {1, 1, cmdRPop},
		"LREM":     {3, 3, cmdLRem},
		"LINDEX":   {2, 2, cmdLIndex},
		"LSET":     {3, 3, cmdLSet},
		"HSET":     {3, 3, cmdHSet},
		"HGET":     {2, 2, cmdHGet},
		"HEXISTS":  {2, 2, cmdHExists},
		"HDEL":     {2, 2, cmdHDel},
		"HGETALL":  {1, 1, cmdHGetAll},
		"HKEYS":    {1, 1, cmdHKeys},
		"HVALS":    {1, 1, cmdHVals},
		"HLEN":     {1, 1, cmdHLen},
		"HMSET":    {3, -1, cmdHMSet},
	}
	return d
}

// Dispatch runs the 5-step command algorithm against tokens: empty-command
// check, name uppercasing, arity check, handler invocation, and
// unknown-command fallback. It never returns an error; every outcome,
// including a malformed request, is rendered as a Reply.
func (d *Dispatcher) Dispatch(tokens [][]byte) Reply {
	if len(tokens) == 0 {
		err := NewProtocolError("empty command")
		Log.WithError(err).Debug("dispatch rejected")
		return ErrorReplyFromError(err)
	}
	name := strings.ToUpper(string(tokens[0]))
	args := tokens[1:]
	Log.WithFields(logrus.Fields{"command": name, "args": len(args)}).Trace("dispatching command")

	cmd, ok := d.table[name]
	if !ok {
		err := NewArgumentError(name, "unknown command")
		Log.WithError(err).Debug("dispatch rejected")
		return ErrorReplyFromError(err)
	}
	if len(args) < cmd.minArity || (cmd.maxArity >= 0 && len(args) > cmd.maxArity) {
		err := NewArgumentError(name, "wrong number of arguments")
		Log.WithError(err).Debug("dispatch rejected")
		return ErrorReplyFromError(err)
	}
	reply := cmd.handler(d.ds, args)
	if errReply, ok := reply.(ErrorReply); ok {
		Log.WithFields(logrus.Fields{"command": name, "error": string(errReply)}).Debug("dispatch handler error")
	}
	return reply
}

func cmdPing(ds *Datastore, args [][]byte) Reply {
	if len(args) == 1 {
		return NewBulkString(args[0])
	}
	return SimpleString("PONG")
}

func cmdEcho(ds *Datastore, args [][]byte) Reply {
	return NewBulkString(args[0])
}

func cmdFlushAll(ds *Datastore, args [][]byte) Reply {
	ds.FlushAll()
	return SimpleString("OK")
}

func cmdSet(ds *Datastore, args [][]byte) Reply {
	var ttl int64
	if len(args) == 3 {
		n, err := strconv.ParseInt(string(args[2]), 10, 64)
		if err != nil || n < 0 {
			return ErrorReplyFromError(NewArgumentError("SET", "invalid TTL"))
		}
		ttl = n
	}
	ds.Set(string(args[0]), args[1], secondsToDuration(ttl))
	return SimpleString("OK")
}

func secondsToDuration(sec int64) time.Duration {
	if sec <= 0 {
		return 0
	}
	return time.Duration(sec) * time.Second
}

func cmdGet(ds *Datastore, args [][]byte) Reply {
	val, ok := ds.Get(string(args[0]))
	if !ok {
		return NilBulk
	}
	return NewBulkString(val)
}

func cmdKeys(ds *Datastore, args [][]byte) Reply {
	return BulkStringArray(ds.Keys()...)
}

func cmdType(ds *Datastore, args [][]byte) Reply {
	return SimpleString(ds.Type(string(args[0])))
}

func cmdDel(ds *Datastore, args [][]byte) Reply {
	var n int64
	for _, a := range args {
		if ds.Del(string(a)) {
			n++
		}
	}
	return Integer(n)
}

func cmdExpire(ds *Datastore, args [][]byte) Reply {
	sec, err := strconv.Atoi(string(args[1]))
	if err != nil {
		return ErrorReplyFromError(NewArgumentError("EXPIRE", "invalid seconds"))
	}
	if err := ds.Expire(string(args[0]), sec); err != nil {
		return ErrorReplyFromError(err)
	}
	return SimpleString("OK")
}

func cmdRename(ds *Datastore, args [][]byte) Reply {
	if err := ds.Rename(string(args[0]), string(args[1])); err != nil {
		return ErrorReplyFromError(err)
	}
	return SimpleString("OK")
}

func cmdLLen(ds *Datastore, args [][]byte) Reply {
	return Integer(ds.LLen(string(args[0])))
}

func cmdLPush(ds *Datastore, args [][]byte) Reply {
	return Integer(ds.LPush(string(args[0]), args[1]))
}

func cmdRPush(ds *Datastore, args [][]byte) Reply {
	return Integer(ds.RPush(string(args[0]), args[1]))
}

func cmdLPop(ds *Datastore, args [][]byte) Reply {
	val, ok := ds.LPop(string(args[0]))
	if !ok {
		return NilBulk
	}
	return NewBulkString(val)
}

func cmdRPop(ds *Datastore, args [][]byte) Reply {
	val, ok := ds.RPop(string(args[0]))
	if !ok {
		return NilBulk
	}
	return NewBulkString(val)
}

func cmdLRem(ds *Datastore, args [][]byte) Reply {
	count, err := strconv.Atoi(string(args[1]))
	if err != nil {
		return ErrorReplyFromError(NewArgumentError("LREM", "invalid count"))
	}
	return Integer(ds.LRem(string(args[0]), count, args[2]))
}

func cmdLIndex(ds *Datastore, args [][]byte) Reply {
	i, err := strconv.Atoi(string(args[1]))
	if err != nil {
		return ErrorReplyFromError(NewArgumentError("LINDEX", "invalid index"))
	}
	val, ok := ds.LIndex(string(args[0]), i)
	if !ok {
		return NilBulk
	}
	return NewBulkString(val)
}

func cmdLSet(ds *Datastore, args [][]byte) Reply {
	i, err := strconv.Atoi(string(args[1]))
	if err != nil {
		return ErrorReplyFromError(NewArgumentError("LSET", "invalid index"))
	}
	if err := ds.LSet(string(args[0]), i, args[2]); err != nil {
		return ErrorReplyFromError(err)
	}
	return SimpleString("OK")
}

func cmdHSet(ds *Datastore, args [][]byte) Reply {
	return Integer(ds.HSet(string(args[0]), string(args[1]), args[2]))
}

func cmdHGet(ds *Datastore, args [][]byte) Reply {
	val, ok := ds.HGet(string(args[0]), string(args[1]))
	if !ok {
		return NilBulk
	}
	return NewBulkString(val)
}

func cmdHExists(ds *Datastore, args [][]byte) Reply {
	if ds.HExists(string(args[0]), string(args[1])) {
		return Integer(1)
	}
	return Integer(0)
}

func cmdHDel(ds *Datastore, args [][]byte) Reply {
	return Integer(ds.HDel(string(args[0]), string(args[1])))
}

func cmdHGetAll(ds *Datastore, args [][]byte) Reply {
	fields, values := ds.HGetAll(string(args[0]))
	out := make(Array, 0, len(fields)*2)
	for i := range fields {
		out = append(out, NewBulkString(fields[i]), NewBulkString(values[i]))
	}
	return out
}

func cmdHKeys(ds *Datastore, args [][]byte) Reply {
	return BulkStringArray(ds.HKeys(string(args[0]))...)
}

func cmdHVals(ds *Datastore, args [][]byte) Reply {
	return BulkStringArray(ds.HVals(string(args[0]))...)
}

func cmdHLen(ds *Datastore, args [][]byte) Reply {
	return Integer(ds.HLen(string(args[0])))
}

func cmdHMSet(ds *Datastore, args [][]byte) Reply {
	rest := args[1:]
	if len(rest)%2 != 0 {
		return ErrorReplyFromError(NewArgumentError("HMSET", "wrong number of arguments"))
	}
	fields := make(map[string][]byte, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		fields[string(rest[i])] = rest[i+1]
	}
	ds.HMSet(string(args[0]), fields)
	return SimpleString("OK")
}
