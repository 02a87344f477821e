package deploy

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/iotex-liquity/deployer/configs"
	"github.com/iotex-liquity/deployer/internal/chain"
	"github.com/iotex-liquity/deployer/internal/networks"
)

type (
	// Params are the per-invocation deployment options. The two *bool fields
	// are tri-state: nil means the caller did not pass the flag.
	Params struct {
		Network           configs.NetworkName
		Channel           string
		GasPrice          string // decimal Gwei, "" when unset
		UseRealPriceFeed  *bool
		CreateUniswapPair *bool
	}

	// resolved is the output of the defaulting/validation pipeline: every
	// optional field decided, every capability checked, before any
	// transaction is submitted.
	resolved struct {
		useRealPriceFeed bool
		createPair       bool
		wiotx            common.Address
		dexFactory       common.Address
		overrides        chain.Overrides
	}
)

// resolveParams runs the ordered defaulting and validation pipeline.
// Configuration errors returned here always fire before any deployment call.
func resolveParams(params Params) (resolved, error) {
	var res resolved

	if params.UseRealPriceFeed != nil {
		res.useRealPriceFeed = *params.UseRealPriceFeed
	} else {
		res.useRealPriceFeed = params.Network == networks.Production
	}

	if res.useRealPriceFeed && !networks.HasOracles(params.Network) {
		return resolved{}, fmt.Errorf("network %s has no known price oracles; cannot use real price feed", params.Network)
	}

	res.createPair = params.CreateUniswapPair != nil && *params.CreateUniswapPair
	if res.createPair {
		if !networks.HasWrappedIOTX(params.Network) {
			return resolved{}, fmt.Errorf("network %s has no known wrapped IOTX token; cannot create uniswap pair", params.Network)
		}
		res.wiotx = networks.WIOTXAddress(params.Network)
		res.dexFactory = networks.DEXFactoryAddress(params.Network)
	}

	if params.GasPrice != "" {
		wei, err := GweiToWei(params.GasPrice)
		if err != nil {
			return resolved{}, err
		}
		res.overrides.GasPrice = wei
	}

	return res, nil
}

// GweiToWei converts a decimal Gwei amount to wei. Fractional Gwei is
// accepted as long as it scales to a whole number of wei.
func GweiToWei(gwei string) (*big.Int, error) {
	amount, ok := new(big.Rat).SetString(gwei)
	if !ok {
		return nil, fmt.Errorf("invalid gas price %q: not a decimal number", gwei)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("invalid gas price %q: must be positive", gwei)
	}

	wei := new(big.Rat).Mul(amount, new(big.Rat).SetInt64(1_000_000_000))
	if !wei.IsInt() {
		return nil, fmt.Errorf("invalid gas price %q: below 1 wei resolution", gwei)
	}

	return wei.Num(), nil
}
