// Package common holds the small cross-cutting helpers every other package
// in this module needs: address normalization and router allow-list checks.
package common

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress lowercases a hex address string the way every persisted
// row and every bus envelope in this system expects it. An empty or
// malformed string normalizes to "" so callers can treat it as absent.
func NormalizeAddress(addr string) string {
	if !common.IsHexAddress(addr) {
		return ""
	}
	return strings.ToLower(common.HexToAddress(addr).Hex())
}

// AddressesEqual compares two hex address strings case-insensitively,
// tolerating missing "0x" prefixes and mixed case.
func AddressesEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(NormalizeAddress(a), NormalizeAddress(b))
}

// AllowList is a case-insensitive set of router addresses.
type AllowList struct {
	set map[string]struct{}
}

// NewAllowList builds an AllowList from raw address strings, normalizing
// each one. Malformed entries are dropped silently; callers are expected to
// validate configuration separately at startup.
func NewAllowList(addrs []string) *AllowList {
	al := &AllowList{set: make(map[string]struct{}, len(addrs))}
	for _, a := range addrs {
		if n := NormalizeAddress(a); n != "" {
			al.set[n] = struct{}{}
		}
	}
	return al
}

// Contains reports whether addr (in any case) is a member of the list.
func (al *AllowList) Contains(addr string) bool {
	if al == nil {
		return false
	}
	_, ok := al.set[NormalizeAddress(addr)]
	return ok
}

// Addresses returns the normalized members in unspecified order.
func (al *AllowList) Addresses() []string {
	out := make([]string, 0, len(al.set))
	for a := range al.set {
		out = append(out, a)
	}
	return out
}

// ZeroAddress is the canonical "no binding" sentinel used by factory/pool
// lookups: a pool or factory address of all zero bytes means "confirmed
// absent", never a real contract.
var ZeroAddress = strings.ToLower(common.Address{}.Hex())

// IsZeroAddress reports whether addr, once normalized, is the zero address.
func IsZeroAddress(addr string) bool {
	n := NormalizeAddress(addr)
	return n == "" || n == ZeroAddress
}
