package redisdns

import (
	"expvar"
	"fmt"
)

// getVarInt returns the named *expvar.Int under the "redisdns" namespace,
// creating it on first use so repeated calls for the same path are safe.
func getVarInt(base, id, name string) *expvar.Int {
	fullname := fmt.Sprintf("redisdns.%s.%s.%s", base, id, name)
	if v := expvar.Get(fullname); v != nil {
		return v.(*expvar.Int)
	}
	return expvar.NewInt(fullname)
}
