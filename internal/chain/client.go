package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/iotex-liquity/deployer/internal/artifacts"
	"github.com/iotex-liquity/deployer/internal/logger"
)

// txTimeout bounds a single submit-and-confirm cycle.
const txTimeout = 2 * time.Minute

// Client submits transactions from a single signer. All operations wait for
// confirmation before returning, so the signer's nonce stream advances
// strictly one transaction at a time.
type Client struct {
	eth     *ethclient.Client
	chainID *big.Int
	key     *ecdsa.PrivateKey
	address common.Address
	logger  *slog.Logger
}

// Dial connects to an RPC endpoint and fetches its chain ID.
func Dial(ctx context.Context, rpcURL string, key *ecdsa.PrivateKey) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", rpcURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	return &Client{
		eth:     eth,
		chainID: chainID,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		logger:  logger.Named("chain_client"),
	}, nil
}

func (c *Client) Close() {
	c.eth.Close()
}

// ChainID returns the connected chain's ID.
func (c *Client) ChainID() uint64 {
	return c.chainID.Uint64()
}

// Address returns the signer address.
func (c *Client) Address() common.Address {
	return c.address
}

func (c *Client) transactor(ctx context.Context, overrides Overrides) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	gasPrice := overrides.GasPrice
	if gasPrice == nil {
		gasPrice, err = c.eth.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get gas price: %w", err)
		}
	}

	auth.Context = ctx
	auth.GasPrice = gasPrice

	return auth, nil
}

// Deploy submits a contract creation and waits until it is mined.
func (c *Client) Deploy(ctx context.Context, name string, artifact artifacts.Artifact, overrides Overrides, constructorArgs ...any) (common.Address, common.Hash, error) {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	auth, err := c.transactor(ctx, overrides)
	if err != nil {
		return common.Address{}, common.Hash{}, err
	}

	address, tx, _, err := bind.DeployContract(auth, artifact.ABI, artifact.Bytecode, c.eth, constructorArgs...)
	if err != nil {
		return common.Address{}, common.Hash{}, fmt.Errorf("failed to deploy %s: %w", name, err)
	}

	c.logger.
		With("contract", name).
		With("address", address.Hex()).
		With("tx_hash", tx.Hash().Hex()).
		Info("contract deployment transaction sent")

	if err := c.waitMined(ctx, name, tx); err != nil {
		return common.Address{}, common.Hash{}, err
	}

	return address, tx.Hash(), nil
}

// Transact calls a state-changing method on a deployed contract and waits
// until it is mined.
func (c *Client) Transact(ctx context.Context, name string, address common.Address, contractABI abi.ABI, overrides Overrides, method string, args ...any) (common.Hash, error) {
	ctx, cancel := context.WithTimeout(ctx, txTimeout)
	defer cancel()

	auth, err := c.transactor(ctx, overrides)
	if err != nil {
		return common.Hash{}, err
	}

	bound := bind.NewBoundContract(address, contractABI, c.eth, c.eth, c.eth)
	tx, err := bound.Transact(auth, method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to call %s.%s: %w", name, method, err)
	}

	c.logger.
		With("contract", name).
		With("method", method).
		With("tx_hash", tx.Hash().Hex()).
		Info("transaction sent")

	if err := c.waitMined(ctx, fmt.Sprintf("%s.%s", name, method), tx); err != nil {
		return common.Hash{}, err
	}

	return tx.Hash(), nil
}

// Call executes a read-only method on a deployed contract.
func (c *Client) Call(ctx context.Context, address common.Address, contractABI abi.ABI, method string, results *[]any, args ...any) error {
	bound := bind.NewBoundContract(address, contractABI, c.eth, c.eth, c.eth)
	if err := bound.Call(&bind.CallOpts{Context: ctx}, results, method, args...); err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	return nil
}

func (c *Client) waitMined(ctx context.Context, what string, tx *types.Transaction) error {
	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return fmt.Errorf("failed to wait for %s: %w", what, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%s failed with status %d (tx %s)", what, receipt.Status, tx.Hash().Hex())
	}
	return nil
}
