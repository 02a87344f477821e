package networks

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// richPrivateKey is the well-known first account of the dev chain image.
// It is pre-funded at genesis and usable by anyone; never use it off-dev.
const richPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// ParsePrivateKey decodes a hex secp256k1 key, with or without 0x prefix.
func ParsePrivateKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}

// devAccounts assembles the dev network account list: the deployer key, the
// well-known rich key, then freshly generated keys up to total. The generated
// keys are new on every process start.
func devAccounts(deployer *ecdsa.PrivateKey, total int) ([]*ecdsa.PrivateKey, error) {
	if total < 2 {
		return nil, fmt.Errorf("dev network needs at least 2 accounts, got %d", total)
	}

	rich, err := ParsePrivateKey(richPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rich account key: %w", err)
	}

	accounts := make([]*ecdsa.PrivateKey, 0, total)
	accounts = append(accounts, deployer, rich)
	for i := 2; i < total; i++ {
		key, err := crypto.GenerateKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate account %d: %w", i, err)
		}
		accounts = append(accounts, key)
	}

	return accounts, nil
}
