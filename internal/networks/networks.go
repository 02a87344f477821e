package networks

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/iotex-liquity/deployer/configs"
)

type (
	// Network is the fully resolved connection record for one target chain.
	Network struct {
		Name     configs.NetworkName
		RPCURL   string
		ChainID  uint64
		Accounts []*ecdsa.PrivateKey
	}

	// OraclePair holds the on-chain price oracles for a network.
	// PriceOracle is the primary feed, FallbackOracle the secondary source
	// consumed through the adapter contract.
	OraclePair struct {
		PriceOracle    common.Address
		FallbackOracle common.Address
	}

	Registry struct {
		networks map[configs.NetworkName]Network
	}
)

// Production is the network on which useRealPriceFeed defaults to true.
const Production = configs.NetworkNameMainnet

var oracleAddresses = map[configs.NetworkName]OraclePair{
	configs.NetworkNameMainnet: {
		PriceOracle:    common.HexToAddress("0x89a9b66cd7691b82b229ddeda1cb56fbcdccccc1"),
		FallbackOracle: common.HexToAddress("0xb2b7c8bbe80869d4cb2a598e5cd8bb631cfcf4ae"),
	},
	configs.NetworkNameTestnet: {
		PriceOracle:    common.HexToAddress("0x63e2e2b1438eac0d9ecfe21ba935ae72f8cdef60"),
		FallbackOracle: common.HexToAddress("0xd2c2a4f9a5bd09a0b17f4c6bb203c5ba32e30ccd"),
	},
}

var wiotxAddresses = map[configs.NetworkName]common.Address{
	configs.NetworkNameMainnet: common.HexToAddress("0xa00744882684c3e4747faefd68d283ea44099d03"),
	configs.NetworkNameTestnet: common.HexToAddress("0xff5fae9fe685b90841275e32c348dc4426190db0"),
}

// dexFactoryAddresses is keyed identically to wiotxAddresses: creating the
// PUSD/WIOTX pair needs both, so HasWrappedIOTX gates both lookups.
var dexFactoryAddresses = map[configs.NetworkName]common.Address{
	configs.NetworkNameMainnet: common.HexToAddress("0xda257f22663636e05d931fd056875aee5be8b611"),
	configs.NetworkNameTestnet: common.HexToAddress("0x6dcd7b7b08acf5ab7d5bd0272cf10ee6a2c2d611"),
}

// HasOracles reports whether the network has known price-oracle contracts.
func HasOracles(name configs.NetworkName) bool {
	_, ok := oracleAddresses[name]
	return ok
}

// HasWrappedIOTX reports whether the network has a known wrapped-IOTX token
// (and the matching DEX factory) for pair creation.
func HasWrappedIOTX(name configs.NetworkName) bool {
	_, ok := wiotxAddresses[name]
	return ok
}

// OracleAddresses returns the oracle pair for a network. Callers must check
// HasOracles first; an unlisted network here is a bug, not an input error.
func OracleAddresses(name configs.NetworkName) OraclePair {
	pair, ok := oracleAddresses[name]
	if !ok {
		panic(fmt.Sprintf("networks: no oracle addresses for %q", name))
	}
	return pair
}

// WIOTXAddress returns the wrapped-IOTX token address. Callers must check
// HasWrappedIOTX first.
func WIOTXAddress(name configs.NetworkName) common.Address {
	addr, ok := wiotxAddresses[name]
	if !ok {
		panic(fmt.Sprintf("networks: no wiotx address for %q", name))
	}
	return addr
}

// DEXFactoryAddress returns the mimo factory address. Callers must check
// HasWrappedIOTX first.
func DEXFactoryAddress(name configs.NetworkName) common.Address {
	addr, ok := dexFactoryAddresses[name]
	if !ok {
		panic(fmt.Sprintf("networks: no dex factory address for %q", name))
	}
	return addr
}

// NewRegistry resolves every configured network into a connection record.
// The account lists are assembled once here and never mutated.
func NewRegistry(cfg configs.Config) (*Registry, error) {
	deployer, err := ParsePrivateKey(cfg.DeployerPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse deployer private key: %w", err)
	}

	resolved := make(map[configs.NetworkName]Network, len(cfg.Networks))
	for name, network := range cfg.Networks {
		accounts := []*ecdsa.PrivateKey{deployer}
		if name == configs.NetworkNameDev {
			accounts, err = devAccounts(deployer, network.Accounts)
			if err != nil {
				return nil, fmt.Errorf("failed to build dev accounts: %w", err)
			}
		}

		resolved[name] = Network{
			Name:     name,
			RPCURL:   network.RPCURL,
			ChainID:  uint64(network.ChainID),
			Accounts: accounts,
		}
	}

	return &Registry{networks: resolved}, nil
}

// Lookup returns the resolved record for a network name.
func (r *Registry) Lookup(name configs.NetworkName) (Network, error) {
	network, ok := r.networks[name]
	if !ok {
		return Network{}, fmt.Errorf("unknown network: %s", name)
	}
	return network, nil
}

// Deployer returns the account that signs every deployment transaction.
func (n Network) Deployer() *ecdsa.PrivateKey {
	return n.Accounts[0]
}

// DeployerAddress derives the deployer's address.
func (n Network) DeployerAddress() common.Address {
	return crypto.PubkeyToAddress(n.Accounts[0].PublicKey)
}
