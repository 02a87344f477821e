package deploy

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotex-liquity/deployer/configs"
	"github.com/iotex-liquity/deployer/internal/chain"
	"github.com/iotex-liquity/deployer/internal/networks"
)

func boolPtr(v bool) *bool { return &v }

func TestGweiToWei(t *testing.T) {
	wei, err := GweiToWei("20")
	require.NoError(t, err)
	require.Equal(t, big.NewInt(20_000_000_000), wei)
	require.Equal(t, "0x4a817c800", chain.Overrides{GasPrice: wei}.GasPriceHex())

	wei, err = GweiToWei("1.5")
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1_500_000_000), wei)
}

func TestGweiToWeiRejectsInvalid(t *testing.T) {
	for _, input := range []string{"", "abc", "-1", "0", "0.0000000001"} {
		_, err := GweiToWei(input)
		require.Error(t, err, "input %q", input)
	}
}

func TestResolveParamsDefaultsRealFeedOnMainnetOnly(t *testing.T) {
	res, err := resolveParams(Params{Network: configs.NetworkNameMainnet})
	require.NoError(t, err)
	require.True(t, res.useRealPriceFeed)

	res, err = resolveParams(Params{Network: configs.NetworkNameTestnet})
	require.NoError(t, err)
	require.False(t, res.useRealPriceFeed)

	res, err = resolveParams(Params{Network: configs.NetworkNameDev})
	require.NoError(t, err)
	require.False(t, res.useRealPriceFeed)
}

func TestResolveParamsRejectsRealFeedWithoutOracles(t *testing.T) {
	_, err := resolveParams(Params{
		Network:          configs.NetworkNameDev,
		UseRealPriceFeed: boolPtr(true),
	})
	require.ErrorContains(t, err, "dev")
	require.ErrorContains(t, err, "price oracles")
}

func TestResolveParamsRejectsPairWithoutWIOTX(t *testing.T) {
	_, err := resolveParams(Params{
		Network:           configs.NetworkNameDev,
		CreateUniswapPair: boolPtr(true),
	})
	require.ErrorContains(t, err, "dev")
	require.ErrorContains(t, err, "wrapped IOTX")
}

func TestResolveParamsResolvesPairAddresses(t *testing.T) {
	res, err := resolveParams(Params{
		Network:           configs.NetworkNameTestnet,
		CreateUniswapPair: boolPtr(true),
	})
	require.NoError(t, err)
	require.True(t, res.createPair)
	require.Equal(t, networks.WIOTXAddress(configs.NetworkNameTestnet), res.wiotx)
	require.Equal(t, networks.DEXFactoryAddress(configs.NetworkNameTestnet), res.dexFactory)
}

func TestResolveParamsExplicitFalseOverridesMainnetDefault(t *testing.T) {
	res, err := resolveParams(Params{
		Network:          configs.NetworkNameMainnet,
		UseRealPriceFeed: boolPtr(false),
	})
	require.NoError(t, err)
	require.False(t, res.useRealPriceFeed)
}

func TestResolveParamsGasPrice(t *testing.T) {
	res, err := resolveParams(Params{Network: configs.NetworkNameTestnet, GasPrice: "20"})
	require.NoError(t, err)
	require.Equal(t, "0x4a817c800", res.overrides.GasPriceHex())

	res, err = resolveParams(Params{Network: configs.NetworkNameTestnet})
	require.NoError(t, err)
	require.Empty(t, res.overrides.GasPriceHex())
}
