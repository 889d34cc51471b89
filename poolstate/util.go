package poolstate

import (
	"github.com/ethereum/go-ethereum/common"

	mcommon "github.com/shadowline/mevwatch/common"
)

func addressString(v interface{}) string {
	a, ok := v.(common.Address)
	if !ok {
		return ""
	}
	return mcommon.NormalizeAddress(a.Hex())
}
