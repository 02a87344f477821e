package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/iotex-liquity/deployer/internal/artifacts"
	"github.com/iotex-liquity/deployer/internal/chain"
	"github.com/iotex-liquity/deployer/internal/logger"
	"github.com/iotex-liquity/deployer/internal/manifest"
)

type (
	// txRunner is the transaction surface the protocol deployer needs.
	// *chain.Client satisfies it; tests substitute a fake.
	txRunner interface {
		Deploy(ctx context.Context, name string, artifact artifacts.Artifact, overrides chain.Overrides, constructorArgs ...any) (common.Address, common.Hash, error)
		Transact(ctx context.Context, name string, address common.Address, contractABI abi.ABI, overrides chain.Overrides, method string, args ...any) (common.Hash, error)
		Call(ctx context.Context, address common.Address, contractABI abi.ABI, method string, results *[]any, args ...any) error
		ChainID() uint64
		Address() common.Address
	}

	// CoreInput parameterizes one full protocol deployment.
	CoreInput struct {
		UseTestPriceFeed bool
		IsDev            bool
		CreatePair       bool
		WIOTX            common.Address
		DEXFactory       common.Address
		Overrides        chain.Overrides
	}

	// CoreDeployer runs the multi-contract constructor sequence and the
	// post-deployment address wiring. It either returns a complete record or
	// an error; no partial record is surfaced.
	CoreDeployer interface {
		DeployProtocol(ctx context.Context, in CoreInput) (*manifest.Record, error)
	}

	// ProtocolDeployer is the production CoreDeployer backed by a chain client.
	ProtocolDeployer struct {
		runner txRunner
		source artifacts.Source
		logger *slog.Logger
	}

	// contractRef marks a plan argument to be replaced by the address of a
	// previously deployed contract.
	contractRef artifacts.ContractName

	deployStep struct {
		name artifacts.ContractName
		args []any
	}

	connectStep struct {
		contract artifacts.ContractName
		method   string
		args     []any
	}
)

// pairContractKey is the manifest key for the PUSD/WIOTX liquidity pair.
// The pair is created on the network's DEX factory, not deployed from our
// artifacts, so there is no matching artifact name.
const pairContractKey = "PUSDWIOTXPair"

const dexFactoryABIJSON = `[
	{"type":"function","name":"createPair","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"outputs":[{"name":"pair","type":"address"}],"stateMutability":"nonpayable"},
	{"type":"function","name":"getPair","inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"outputs":[{"name":"pair","type":"address"}],"stateMutability":"view"}
]`

var dexFactoryABI = mustABI(dexFactoryABIJSON)

func mustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("deploy: invalid built-in ABI: %v", err))
	}
	return parsed
}

func NewProtocolDeployer(runner txRunner, source artifacts.Source) *ProtocolDeployer {
	return &ProtocolDeployer{
		runner: runner,
		source: source,
		logger: logger.Named("protocol_deployer"),
	}
}

// priceFeedContract picks the feed variant for the run.
func priceFeedContract(useTestPriceFeed bool) artifacts.ContractName {
	if useTestPriceFeed {
		return artifacts.ContractNamePriceFeedTestnet
	}
	return artifacts.ContractNamePriceFeed
}

// deployPlan is the constructor sequence in dependency order: PUSDToken and
// MultiTroveGetter take addresses of earlier contracts as constructor args.
func deployPlan(feed artifacts.ContractName) []deployStep {
	return []deployStep{
		{name: feed},
		{name: artifacts.ContractNameSortedTroves},
		{name: artifacts.ContractNameTroveManager},
		{name: artifacts.ContractNameActivePool},
		{name: artifacts.ContractNameStabilityPool},
		{name: artifacts.ContractNameGasPool},
		{name: artifacts.ContractNameDefaultPool},
		{name: artifacts.ContractNameCollSurplusPool},
		{name: artifacts.ContractNameBorrowerOperations},
		{name: artifacts.ContractNameHintHelpers},
		{name: artifacts.ContractNamePUSDToken, args: []any{
			contractRef(artifacts.ContractNameTroveManager),
			contractRef(artifacts.ContractNameStabilityPool),
			contractRef(artifacts.ContractNameBorrowerOperations),
		}},
		{name: artifacts.ContractNameMultiTroveGetter, args: []any{
			contractRef(artifacts.ContractNameTroveManager),
			contractRef(artifacts.ContractNameSortedTroves),
		}},
	}
}

// connectPlan is the address-wiring sequence run after all constructors have
// confirmed. The real PriceFeed's own setAddresses is driven by the oracle
// wiring step, not here.
func connectPlan(feed artifacts.ContractName, sortedTrovesSize *big.Int) []connectStep {
	return []connectStep{
		{artifacts.ContractNameSortedTroves, "setParams", []any{
			sortedTrovesSize,
			contractRef(artifacts.ContractNameTroveManager),
			contractRef(artifacts.ContractNameBorrowerOperations),
		}},
		{artifacts.ContractNameTroveManager, "setAddresses", []any{
			contractRef(artifacts.ContractNameBorrowerOperations),
			contractRef(artifacts.ContractNameActivePool),
			contractRef(artifacts.ContractNameDefaultPool),
			contractRef(artifacts.ContractNameStabilityPool),
			contractRef(artifacts.ContractNameGasPool),
			contractRef(artifacts.ContractNameCollSurplusPool),
			contractRef(feed),
			contractRef(artifacts.ContractNamePUSDToken),
			contractRef(artifacts.ContractNameSortedTroves),
		}},
		{artifacts.ContractNameBorrowerOperations, "setAddresses", []any{
			contractRef(artifacts.ContractNameTroveManager),
			contractRef(artifacts.ContractNameActivePool),
			contractRef(artifacts.ContractNameDefaultPool),
			contractRef(artifacts.ContractNameStabilityPool),
			contractRef(artifacts.ContractNameGasPool),
			contractRef(artifacts.ContractNameCollSurplusPool),
			contractRef(feed),
			contractRef(artifacts.ContractNameSortedTroves),
			contractRef(artifacts.ContractNamePUSDToken),
		}},
		{artifacts.ContractNameStabilityPool, "setAddresses", []any{
			contractRef(artifacts.ContractNameBorrowerOperations),
			contractRef(artifacts.ContractNameTroveManager),
			contractRef(artifacts.ContractNameActivePool),
			contractRef(artifacts.ContractNamePUSDToken),
			contractRef(artifacts.ContractNameSortedTroves),
			contractRef(feed),
		}},
		{artifacts.ContractNameActivePool, "setAddresses", []any{
			contractRef(artifacts.ContractNameBorrowerOperations),
			contractRef(artifacts.ContractNameTroveManager),
			contractRef(artifacts.ContractNameStabilityPool),
			contractRef(artifacts.ContractNameDefaultPool),
		}},
		{artifacts.ContractNameDefaultPool, "setAddresses", []any{
			contractRef(artifacts.ContractNameTroveManager),
			contractRef(artifacts.ContractNameActivePool),
		}},
		{artifacts.ContractNameCollSurplusPool, "setAddresses", []any{
			contractRef(artifacts.ContractNameBorrowerOperations),
			contractRef(artifacts.ContractNameTroveManager),
			contractRef(artifacts.ContractNameActivePool),
		}},
		{artifacts.ContractNameHintHelpers, "setAddresses", []any{
			contractRef(artifacts.ContractNameSortedTroves),
			contractRef(artifacts.ContractNameTroveManager),
		}},
	}
}

// DeployProtocol deploys the PUSD contract suite, wires the contracts
// together, and optionally creates the PUSD/WIOTX pair. Every transaction is
// confirmed before the next is submitted.
func (d *ProtocolDeployer) DeployProtocol(ctx context.Context, in CoreInput) (*manifest.Record, error) {
	feed := priceFeedContract(in.UseTestPriceFeed)

	d.logger.
		With("price_feed", feed).
		With("is_dev", in.IsDev).
		With("create_pair", in.CreatePair).
		Info("deploying protocol contracts")

	addresses := make(map[artifacts.ContractName]common.Address)
	record := &manifest.Record{
		ChainID:   d.runner.ChainID(),
		Deployer:  d.runner.Address().Hex(),
		Contracts: make(map[string]manifest.ContractRecord),
	}

	for _, step := range deployPlan(feed) {
		artifact, err := d.source.Artifact(step.name)
		if err != nil {
			return nil, err
		}

		args, err := resolveArgs(step.args, addresses)
		if err != nil {
			return nil, fmt.Errorf("constructor args for %s: %w", step.name, err)
		}

		address, txHash, err := d.runner.Deploy(ctx, string(step.name), artifact, in.Overrides, args...)
		if err != nil {
			return nil, err
		}

		addresses[step.name] = address
		record.Contracts[string(step.name)] = manifest.ContractRecord{
			Address: address.Hex(),
			TxHash:  txHash.Hex(),
		}
	}

	// Dev chains get a small sorted list to keep insertion gas low.
	sortedTrovesSize := big.NewInt(1_000_000)
	if in.IsDev {
		sortedTrovesSize = big.NewInt(1_000)
	}

	for _, step := range connectPlan(feed, sortedTrovesSize) {
		artifact, err := d.source.Artifact(step.contract)
		if err != nil {
			return nil, err
		}

		args, err := resolveArgs(step.args, addresses)
		if err != nil {
			return nil, fmt.Errorf("args for %s.%s: %w", step.contract, step.method, err)
		}

		if _, err := d.runner.Transact(ctx, string(step.contract), addresses[step.contract], artifact.ABI, in.Overrides, step.method, args...); err != nil {
			return nil, err
		}
	}

	if in.CreatePair {
		if err := d.ensurePair(ctx, in, addresses[artifacts.ContractNamePUSDToken], record); err != nil {
			return nil, err
		}
	}

	d.logger.With("contracts", len(record.Contracts)).Info("protocol contracts deployed and wired")

	return record, nil
}

// ensurePair creates the PUSD/WIOTX pair on the DEX factory unless one
// already exists, then records the pair address.
func (d *ProtocolDeployer) ensurePair(ctx context.Context, in CoreInput, pusdToken common.Address, record *manifest.Record) error {
	existing, err := d.pairAddress(ctx, in, pusdToken)
	if err != nil {
		return err
	}

	if existing != (common.Address{}) {
		d.logger.With("pair", existing.Hex()).Info("liquidity pair already exists")
		record.Contracts[pairContractKey] = manifest.ContractRecord{Address: existing.Hex()}
		return nil
	}

	txHash, err := d.runner.Transact(ctx, "DEXFactory", in.DEXFactory, dexFactoryABI, in.Overrides, "createPair", pusdToken, in.WIOTX)
	if err != nil {
		return err
	}

	pair, err := d.pairAddress(ctx, in, pusdToken)
	if err != nil {
		return err
	}
	if pair == (common.Address{}) {
		return fmt.Errorf("createPair confirmed but factory reports no pair for PUSD/WIOTX")
	}

	record.Contracts[pairContractKey] = manifest.ContractRecord{
		Address: pair.Hex(),
		TxHash:  txHash.Hex(),
	}

	return nil
}

func (d *ProtocolDeployer) pairAddress(ctx context.Context, in CoreInput, pusdToken common.Address) (common.Address, error) {
	var results []any
	if err := d.runner.Call(ctx, in.DEXFactory, dexFactoryABI, "getPair", &results, pusdToken, in.WIOTX); err != nil {
		return common.Address{}, fmt.Errorf("failed to query pair address: %w", err)
	}
	if len(results) != 1 {
		return common.Address{}, fmt.Errorf("unexpected getPair result arity %d", len(results))
	}
	pair, ok := results[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected getPair result type %T", results[0])
	}
	return pair, nil
}

// resolveArgs replaces contractRef placeholders with deployed addresses.
// Referencing a contract that has not been deployed yet is a plan bug.
func resolveArgs(args []any, addresses map[artifacts.ContractName]common.Address) ([]any, error) {
	if len(args) == 0 {
		return nil, nil
	}

	resolved := make([]any, len(args))
	for i, arg := range args {
		ref, ok := arg.(contractRef)
		if !ok {
			resolved[i] = arg
			continue
		}
		address, ok := addresses[artifacts.ContractName(ref)]
		if !ok {
			return nil, fmt.Errorf("references %s before it is deployed", ref)
		}
		resolved[i] = address
	}

	return resolved, nil
}
