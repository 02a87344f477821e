package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iotex-liquity/deployer/configs"
)

const erc20ABI = `[{"type":"function","name":"balanceOf","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}]`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadLiveBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	writeFile(t, path, `{
  "version": "1.4.0",
  "contracts": {
    "PUSDToken": {"abi": `+erc20ABI+`, "bytecode": "0x6080604052"}
  }
}`)

	bundle, err := LoadLiveBundle(path)
	require.NoError(t, err)
	require.Equal(t, "1.4.0", bundle.Version())

	artifact, err := bundle.Artifact(ContractNamePUSDToken)
	require.NoError(t, err)
	require.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52}, artifact.Bytecode)
	require.Contains(t, artifact.RawABI, "balanceOf")
	require.Contains(t, artifact.ABI.Methods, "balanceOf")
}

func TestLoadLiveBundleRequiresVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	writeFile(t, path, `{"contracts": {}}`)

	_, err := LoadLiveBundle(path)
	require.ErrorContains(t, err, "no version")
}

func TestLiveBundleUnknownContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	writeFile(t, path, `{"version": "1.4.0", "contracts": {}}`)

	bundle, err := LoadLiveBundle(path)
	require.NoError(t, err)

	_, err = bundle.Artifact(ContractNameTroveManager)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoadLiveBundleRejectsEmptyBytecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.json")
	writeFile(t, path, `{
  "version": "1.4.0",
  "contracts": {
    "GasPool": {"abi": [], "bytecode": "0x"}
  }
}`)

	_, err := LoadLiveBundle(path)
	require.ErrorContains(t, err, "empty bytecode")
}

func TestLocalDirLoadsHardhatArtifacts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "GasPool.json"), `{"abi": `+erc20ABI+`, "bytecode": "0x6001"}`)

	local := NewLocalDir(dir)

	artifact, err := local.Artifact(ContractNameGasPool)
	require.NoError(t, err)
	require.Equal(t, []byte{0x60, 0x01}, artifact.Bytecode)

	// Cached after the first read: deleting the file must not matter.
	require.NoError(t, os.Remove(filepath.Join(dir, "GasPool.json")))
	_, err = local.Artifact(ContractNameGasPool)
	require.NoError(t, err)

	_, err = local.Artifact(ContractNameTroveManager)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalDirVersion(t *testing.T) {
	dir := t.TempDir()
	local := NewLocalDir(dir)
	require.Equal(t, "local", local.Version())

	writeFile(t, filepath.Join(dir, "version"), "1.4.0-rc1\n")
	require.Equal(t, "1.4.0-rc1", local.Version())

	writeFile(t, filepath.Join(dir, "version"), "  \n")
	require.Equal(t, "local", local.Version())
}

func TestSelectPicksSourceFromConfig(t *testing.T) {
	dir := t.TempDir()
	bundlePath := filepath.Join(dir, "bundle.json")
	writeFile(t, bundlePath, `{"version": "1.4.0", "contracts": {}}`)

	source, err := Select(configs.Config{Live: true, LiveBundle: bundlePath})
	require.NoError(t, err)
	require.IsType(t, &LiveBundle{}, source)
	require.Equal(t, "1.4.0", source.Version())

	source, err = Select(configs.Config{ArtifactsDir: dir})
	require.NoError(t, err)
	require.IsType(t, &LocalDir{}, source)
	require.Equal(t, "local", source.Version())
}
