package deploy

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/iotex-liquity/deployer/configs"
	"github.com/iotex-liquity/deployer/internal/artifacts"
	"github.com/iotex-liquity/deployer/internal/chain"
	"github.com/iotex-liquity/deployer/internal/manifest"
	"github.com/iotex-liquity/deployer/internal/networks"
)

type fakeCore struct {
	calls  int
	input  CoreInput
	record *manifest.Record
	err    error
}

func (c *fakeCore) DeployProtocol(_ context.Context, input CoreInput) (*manifest.Record, error) {
	c.calls++
	c.input = input
	if c.err != nil {
		return nil, c.err
	}
	return c.record, nil
}

type fakeWirer struct {
	calls   int
	network configs.NetworkName
	adapter common.Address
	err     error
}

func (w *fakeWirer) Wire(_ context.Context, record *manifest.Record, network configs.NetworkName, _ chain.Overrides) error {
	w.calls++
	w.network = network
	if w.err != nil {
		return w.err
	}
	record.Contracts[string(artifacts.ContractNameOracleAdapter)] = manifest.ContractRecord{
		Address: w.adapter.Hex(),
		TxHash:  common.BigToHash(common.Big1).Hex(),
	}
	return nil
}

func coreRecord(feed artifacts.ContractName) *manifest.Record {
	return &manifest.Record{
		ChainID:  4690,
		Deployer: "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		Contracts: map[string]manifest.ContractRecord{
			string(feed): {
				Address: "0x0000000000000000000000000000000000000001",
				TxHash:  "0x0000000000000000000000000000000000000000000000000000000000000001",
			},
			string(artifacts.ContractNamePUSDToken): {
				Address: "0x0000000000000000000000000000000000000002",
				TxHash:  "0x0000000000000000000000000000000000000000000000000000000000000002",
			},
		},
	}
}

func testNetwork(name configs.NetworkName) networks.Network {
	return networks.Network{Name: name, RPCURL: "http://localhost:8545", ChainID: 4690}
}

func readManifest(t *testing.T, path string) manifest.Record {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var record manifest.Record
	require.NoError(t, json.Unmarshal(data, &record))
	return record
}

func TestOrchestratorValidatesBeforeDeploying(t *testing.T) {
	dir := t.TempDir()
	core := &fakeCore{record: coreRecord(artifacts.ContractNamePriceFeed)}
	orch := NewOrchestrator(fakeSource{}, core, &fakeWirer{}, manifest.NewWriter(dir))

	_, err := orch.Deploy(context.Background(), testNetwork(configs.NetworkNameDev), Params{
		Channel:          "ci",
		UseRealPriceFeed: boolPtr(true),
	})
	require.ErrorContains(t, err, "price oracles")
	require.Zero(t, core.calls, "validation failures must abort before any deployment")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "nothing may be persisted")
}

func TestOrchestratorWiresOraclesAndPersists(t *testing.T) {
	dir := t.TempDir()
	adapter := common.HexToAddress("0x00000000000000000000000000000000000000ad")
	core := &fakeCore{record: coreRecord(artifacts.ContractNamePriceFeed)}
	wirer := &fakeWirer{adapter: adapter}
	orch := NewOrchestrator(fakeSource{version: "1.4.0"}, core, wirer, manifest.NewWriter(dir))

	record, err := orch.Deploy(context.Background(), testNetwork(configs.NetworkNameTestnet), Params{
		Channel:          "ci",
		UseRealPriceFeed: boolPtr(true),
	})
	require.NoError(t, err)

	require.False(t, core.input.UseTestPriceFeed)
	require.Equal(t, 1, wirer.calls)
	require.Equal(t, configs.NetworkNameTestnet, wirer.network)
	require.Equal(t, manifest.OracleStatusWired, record.OracleStatus)

	persisted := readManifest(t, filepath.Join(dir, "ci", "testnet.json"))
	require.Equal(t, "testnet", persisted.Network)
	require.Equal(t, "1.4.0", persisted.Version)
	require.Equal(t, manifest.OracleStatusWired, persisted.OracleStatus)
	require.Equal(t, adapter.Hex(), persisted.Contracts[string(artifacts.ContractNameOracleAdapter)].Address)
}

func TestOrchestratorSkipsWiringWithoutRealFeed(t *testing.T) {
	dir := t.TempDir()
	core := &fakeCore{record: coreRecord(artifacts.ContractNamePriceFeedTestnet)}
	wirer := &fakeWirer{}
	orch := NewOrchestrator(fakeSource{}, core, wirer, manifest.NewWriter(dir))

	record, err := orch.Deploy(context.Background(), testNetwork(configs.NetworkNameTestnet), Params{Channel: "ci"})
	require.NoError(t, err)

	require.True(t, core.input.UseTestPriceFeed)
	require.Zero(t, wirer.calls)
	require.Empty(t, record.OracleStatus)

	persisted := readManifest(t, filepath.Join(dir, "ci", "testnet.json"))
	require.NotContains(t, persisted.Contracts, string(artifacts.ContractNameOracleAdapter))
}

func TestOrchestratorPersistsPendingOnWiringFailure(t *testing.T) {
	dir := t.TempDir()
	core := &fakeCore{record: coreRecord(artifacts.ContractNamePriceFeed)}
	wirer := &fakeWirer{err: context.DeadlineExceeded}
	orch := NewOrchestrator(fakeSource{}, core, wirer, manifest.NewWriter(dir))

	_, err := orch.Deploy(context.Background(), testNetwork(configs.NetworkNameTestnet), Params{
		Channel:          "release",
		UseRealPriceFeed: boolPtr(true),
	})
	require.ErrorContains(t, err, "oracle wiring failed")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	persisted := readManifest(t, filepath.Join(dir, "release", "testnet.json"))
	require.Equal(t, manifest.OracleStatusPending, persisted.OracleStatus)
	require.Contains(t, persisted.Contracts, string(artifacts.ContractNamePriceFeed))
}

func TestOrchestratorRejectsInconsistentFeedRecord(t *testing.T) {
	dir := t.TempDir()
	// Core claims the test feed even though the real feed was requested.
	core := &fakeCore{record: coreRecord(artifacts.ContractNamePriceFeedTestnet)}
	wirer := &fakeWirer{}
	orch := NewOrchestrator(fakeSource{}, core, wirer, manifest.NewWriter(dir))

	_, err := orch.Deploy(context.Background(), testNetwork(configs.NetworkNameMainnet), Params{Channel: "ci"})
	require.ErrorContains(t, err, "internal inconsistency")
	require.Zero(t, wirer.calls)
}

func TestOrchestratorStampsGasPrice(t *testing.T) {
	dir := t.TempDir()
	core := &fakeCore{record: coreRecord(artifacts.ContractNamePriceFeedTestnet)}
	orch := NewOrchestrator(fakeSource{}, core, &fakeWirer{}, manifest.NewWriter(dir))

	record, err := orch.Deploy(context.Background(), testNetwork(configs.NetworkNameTestnet), Params{
		Channel:  "ci",
		GasPrice: "20",
	})
	require.NoError(t, err)
	require.Equal(t, "0x4a817c800", record.GasPrice)
	require.Equal(t, "0x4a817c800", core.input.Overrides.GasPriceHex())
}

func TestOrchestratorWritesSummary(t *testing.T) {
	dir := t.TempDir()
	core := &fakeCore{record: coreRecord(artifacts.ContractNamePriceFeedTestnet)}
	orch := NewOrchestrator(fakeSource{}, core, &fakeWirer{}, manifest.NewWriter(dir))

	_, err := orch.Deploy(context.Background(), testNetwork(configs.NetworkNameTestnet), Params{Channel: "ci"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "ci", "testnet.yaml"))
	require.NoError(t, err)
	require.Contains(t, string(data), "rpc-url: http://localhost:8545")
	require.Contains(t, string(data), string(artifacts.ContractNamePUSDToken))
}
