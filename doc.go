/*
Package redisdns implements an in-memory key-value server that speaks a
Redis-compatible wire protocol (a RESP subset) and governs eviction with
an Adaptive Predictive Cache: a per-key scoring engine that blends
recency, frequency, and remaining TTL into a single score used to pick
eviction candidates once the store exceeds its configured capacity.

There are four fundamental types of object in this package.

Datastore

The Datastore holds three typed key spaces (string, list, hash), enforces
TTL expiration on read, and keeps the total key count under its capacity
by consulting the APC on every growing mutation.

APC

The APC (Adaptive Predictive Cache) owns no value data, only per-key
access/TTL metadata, and nominates eviction candidates by score.

Dispatcher

The Dispatcher maps a parsed RESP token vector to a Datastore method call
and formats the result back into a RESP reply.

Server and Pool

The Server owns the listening socket and hands accepted connections to a
fixed-size Pool of workers, each of which serially executes commands
against the shared Datastore for the lifetime of its connection.

	ds := redisdns.NewDatastore(10000)
	srv := redisdns.NewServer(ds, redisdns.ServerOptions{Addr: ":6379"})
	panic(srv.Start())
*/
package redisdns
