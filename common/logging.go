package common

import "github.com/ethereum/go-ethereum/log"

// NewLogger returns a logger tagged with the owning component's name, e.g.
// NewLogger("cache/token"). Every long-lived component in this module holds
// one of these rather than calling the package-level log.* functions
// directly, so that multi-component log output stays attributable.
func NewLogger(component string) log.Logger {
	return log.New("component", component)
}
