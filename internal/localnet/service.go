package localnet

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/iotex-liquity/deployer/configs"
	"github.com/iotex-liquity/deployer/internal/localnet/docker"
	"github.com/iotex-liquity/deployer/internal/logger"
	"github.com/iotex-liquity/deployer/internal/networks"
)

const (
	imageTag       = "iotex-liquity-devchain:local"
	ganacheVersion = "v7.9.2"
	chainPort      = 8545
	workDir        = ".localnet"
	dockerfileName = "Dockerfile"
)

//go:embed devchain.Dockerfile
var devchainDockerfile []byte

// oneIOTX is the wei value of one IOTX.
var oneIOTX = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Service manages the dev chain container the "dev" network points at.
type Service struct {
	docker *docker.Client
	logger *slog.Logger
}

func NewService(dockerClient *docker.Client) *Service {
	return &Service{
		docker: dockerClient,
		logger: logger.Named("localnet"),
	}
}

// Up builds the pinned dev chain image if needed and starts it with the
// resolved dev account set funded at genesis.
func (s *Service) Up(ctx context.Context, cfg configs.Config) error {
	if err := s.ensureImage(ctx); err != nil {
		return err
	}

	registry, err := networks.NewRegistry(cfg)
	if err != nil {
		return err
	}
	dev, err := registry.Lookup(configs.NetworkNameDev)
	if err != nil {
		return err
	}

	balance := new(big.Int).Mul(big.NewInt(int64(cfg.Localnet.BalanceIOTX)), oneIOTX)

	cmd := []string{
		"--server.host", "0.0.0.0",
		"--chain.chainId", fmt.Sprintf("%d", dev.ChainID),
	}
	for _, account := range dev.Accounts {
		key := hexutil.Encode(crypto.FromECDSA(account))
		cmd = append(cmd, "--wallet.accounts", fmt.Sprintf("%s,%s", key, balance.String()))
	}

	s.logger.
		With("accounts", len(dev.Accounts)).
		With("port", cfg.Localnet.Port).
		Info("starting dev chain")

	if _, err := s.docker.StartDetached(ctx, docker.StartOptions{
		Image: imageTag,
		Name:  cfg.Localnet.ContainerName,
		Cmd:   cmd,
		Ports: map[int]int{cfg.Localnet.Port: chainPort},
	}); err != nil {
		return err
	}

	if err := waitForRPC(ctx, fmt.Sprintf("http://localhost:%d", cfg.Localnet.Port)); err != nil {
		return err
	}

	s.logger.Info("dev chain is up")

	return nil
}

// Down removes the dev chain container. Missing container is fine.
func (s *Service) Down(ctx context.Context, cfg configs.Config) error {
	if err := s.docker.Remove(ctx, cfg.Localnet.ContainerName); err != nil {
		return err
	}
	s.logger.Info("dev chain removed")
	return nil
}

// ensureImage builds the dev chain image from the embedded Dockerfile unless
// it already exists. The Dockerfile is materialized into a scratch build
// context because the docker build API consumes a tar of a directory.
func (s *Service) ensureImage(ctx context.Context) error {
	exists, err := s.docker.ImageExists(ctx, imageTag)
	if err != nil {
		return fmt.Errorf("failed to check image %s: %w", imageTag, err)
	}
	if exists {
		s.logger.With("image", imageTag).Info("image already exists")
		return nil
	}

	buildDir := filepath.Join(workDir, "devchain")
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return fmt.Errorf("failed to create build context dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(buildDir, dockerfileName), devchainDockerfile, 0644); err != nil {
		return fmt.Errorf("failed to write dockerfile: %w", err)
	}

	version := ganacheVersion
	s.logger.With("image", imageTag).With("ganache_version", version).Info("building image")

	return s.docker.BuildImage(ctx, dockerfileName, buildDir, imageTag, map[string]*string{
		"GANACHE_VERSION": &version,
	})
}

func waitForRPC(ctx context.Context, url string) error {
	for range 60 {
		client, err := ethclient.DialContext(ctx, url)
		if err == nil {
			_, err = client.BlockNumber(ctx)
			client.Close()
			if err == nil {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}

	return fmt.Errorf("timed out waiting for RPC at %s", url)
}
