package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/iotex-liquity/deployer/configs"
)

type (
	ContractName string

	// Artifact is a compiled contract ready for deployment.
	Artifact struct {
		ABI      abi.ABI
		RawABI   string
		Bytecode []byte
	}

	// Source resolves contract artifacts by name and carries the build tag
	// stamped into deployment manifests. The source is chosen once at startup
	// and passed by reference; it is never re-selected per contract.
	Source interface {
		Artifact(name ContractName) (Artifact, error)
		Version() string
	}
)

const (
	ContractNamePriceFeed          ContractName = "PriceFeed"
	ContractNamePriceFeedTestnet   ContractName = "PriceFeedTestnet"
	ContractNameSortedTroves       ContractName = "SortedTroves"
	ContractNameTroveManager       ContractName = "TroveManager"
	ContractNameActivePool         ContractName = "ActivePool"
	ContractNameStabilityPool      ContractName = "StabilityPool"
	ContractNameGasPool            ContractName = "GasPool"
	ContractNameDefaultPool        ContractName = "DefaultPool"
	ContractNameCollSurplusPool    ContractName = "CollSurplusPool"
	ContractNameBorrowerOperations ContractName = "BorrowerOperations"
	ContractNameHintHelpers        ContractName = "HintHelpers"
	ContractNamePUSDToken          ContractName = "PUSDToken"
	ContractNameMultiTroveGetter   ContractName = "MultiTroveGetter"
	ContractNameOracleAdapter      ContractName = "OracleAdapter"
)

// ErrNotFound reports a contract name absent from the selected source.
var ErrNotFound = errors.New("contract artifact not found")

// Select picks the artifact source resolved from startup configuration:
// a pinned live release bundle, or the local build directory.
func Select(cfg configs.Config) (Source, error) {
	if cfg.Live {
		return LoadLiveBundle(cfg.LiveBundle)
	}
	return NewLocalDir(cfg.ArtifactsDir), nil
}

// parseArtifact decodes the {abi, bytecode} pair shared by the live bundle
// and local hardhat artifact formats.
func parseArtifact(name string, rawABI json.RawMessage, bytecodeHex string) (Artifact, error) {
	parsedABI, err := abi.JSON(strings.NewReader(string(rawABI)))
	if err != nil {
		return Artifact{}, fmt.Errorf("failed to parse ABI for %s: %w", name, err)
	}

	bytecode := common.FromHex(bytecodeHex)
	if len(bytecode) == 0 {
		return Artifact{}, fmt.Errorf("empty bytecode for %s", name)
	}

	return Artifact{
		ABI:      parsedABI,
		RawABI:   string(rawABI),
		Bytecode: bytecode,
	}, nil
}
