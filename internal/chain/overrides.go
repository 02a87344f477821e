package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Overrides carries optional per-run transaction parameters. A nil GasPrice
// defers to the node's suggested price.
type Overrides struct {
	GasPrice *big.Int // wei
}

// GasPriceHex returns the override as hex wei, or "" when unset. This is the
// form recorded in deployment manifests.
func (o Overrides) GasPriceHex() string {
	if o.GasPrice == nil {
		return ""
	}
	return hexutil.EncodeBig(o.GasPrice)
}
