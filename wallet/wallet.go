package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrProviderNotFound = errors.New("wallet provider not found")
	ErrWrongProvider    = errors.New("wallet provider is not the expected kind")
	ErrUserRejected     = errors.New("request rejected by the user")
	ErrNoPublicKey      = errors.New("wallet did not return a public key")
)

// Provider is a wallet able to expose its public key and sign transactions.
type Provider interface {
	Kind() string
	Connect(ctx context.Context) (solana.PublicKey, error)
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
}

// Lookup returns the provider supplied by the host environment, if any.
type Lookup func() (Provider, bool)

// Static returns a Lookup that always yields p.
func Static(p Provider) Lookup {
	return func() (Provider, bool) {
		return p, p != nil
	}
}

// Resolve looks up the provider and checks it is of the expected kind.
func Resolve(lookup Lookup, kind string) (Provider, error) {
	if lookup == nil {
		return nil, ErrProviderNotFound
	}
	p, ok := lookup()
	if !ok || p == nil {
		return nil, ErrProviderNotFound
	}
	if kind != "" && p.Kind() != kind {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongProvider, p.Kind(), kind)
	}
	return p, nil
}

// Connect resolves the provider and returns its active public key.
func Connect(ctx context.Context, lookup Lookup, kind string) (Provider, solana.PublicKey, error) {
	p, err := Resolve(lookup, kind)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}
	key, err := p.Connect(ctx)
	if err != nil {
		return nil, solana.PublicKey{}, fmt.Errorf("connect wallet: %w", err)
	}
	if key.IsZero() {
		return nil, solana.PublicKey{}, ErrNoPublicKey
	}
	return p, key, nil
}
