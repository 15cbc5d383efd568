package redisdns

import "fmt"

// Listener is the interface the connection Server satisfies so it can be
// started and stopped uniformly regardless of transport.
type Listener interface {
	Start() error
	Stop() error
	fmt.Stringer
}
