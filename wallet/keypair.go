package wallet

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

const KindKeypair = "keypair"

var log = logrus.WithField("module", "wallet")

// KeypairProvider signs with a local Solana CLI keypair.
type KeypairProvider struct {
	key solana.PrivateKey
}

func NewKeypairProvider(key solana.PrivateKey) *KeypairProvider {
	return &KeypairProvider{key: key}
}

// LoadKeypairProvider reads a keypair file in the solana-keygen JSON format.
func LoadKeypairProvider(path string) (*KeypairProvider, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load keypair %s: %w", path, err)
	}
	return NewKeypairProvider(key), nil
}

// KeypairLookup exposes the keypair at path as a provider. A missing or
// unreadable file means no provider is installed.
func KeypairLookup(path string) Lookup {
	return func() (Provider, bool) {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, false
		}
		p, err := LoadKeypairProvider(path)
		if err != nil {
			log.WithError(err).Warn("Keypair file present but unusable")
			return nil, false
		}
		return p, true
	}
}

func (k *KeypairProvider) Kind() string {
	return KindKeypair
}

func (k *KeypairProvider) Connect(ctx context.Context) (solana.PublicKey, error) {
	if err := ctx.Err(); err != nil {
		return solana.PublicKey{}, err
	}
	return k.key.PublicKey(), nil
}

func (k *KeypairProvider) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	owner := k.key.PublicKey()
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(owner) {
			return &k.key
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sign transaction: %w", err)
	}
	return tx, nil
}
