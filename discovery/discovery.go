package discovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/safwentrabelsi/spl-approval-revoker/chain"
	"github.com/safwentrabelsi/spl-approval-revoker/types"
	"github.com/sirupsen/logrus"
)

// ErrAccessDenied means the RPC endpoint refused or throttled the request.
var ErrAccessDenied = errors.New("rpc access denied or rate limited")

var log = logrus.WithField("module", "discovery")

type TokenAccountsGetter interface {
	GetTokenAccounts(ctx context.Context, owner solana.PublicKey) ([]chain.TokenAccount, error)
}

type Fetcher struct {
	chain TokenAccountsGetter
}

func NewFetcher(chain TokenAccountsGetter) *Fetcher {
	return &Fetcher{chain: chain}
}

// FetchDelegatedTokens returns the token accounts of owner that have a
// delegate, in the order the node returned them.
func (f *Fetcher) FetchDelegatedTokens(ctx context.Context, owner solana.PublicKey) ([]types.Token, error) {
	accounts, err := f.chain.GetTokenAccounts(ctx, owner)
	if err != nil {
		if chain.IsAccessDenied(err) {
			return nil, fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
		return nil, fmt.Errorf("fetch token accounts: %w", err)
	}

	tokens := FilterDelegated(accounts)
	log.Infof("Found %d delegated tokens out of %d token accounts", len(tokens), len(accounts))
	return tokens, nil
}

// FilterDelegated keeps the accounts whose delegate is set.
func FilterDelegated(accounts []chain.TokenAccount) []types.Token {
	tokens := make([]types.Token, 0, len(accounts))
	for _, acc := range accounts {
		info := acc.Info
		if info.Delegate == nil {
			continue
		}
		token := types.Token{
			Mint:     info.Mint,
			Delegate: *info.Delegate,
			Owner:    info.Owner,
			Account:  acc.Address,
			Decimals: info.TokenAmount.Decimals,
		}
		if info.DelegatedAmount != nil {
			token.DelegatedAmount = info.DelegatedAmount.Amount
			token.Decimals = info.DelegatedAmount.Decimals
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// Demo mints returned by MockTokens.
const (
	MockMint1 = "MockMint1"
	MockMint2 = "MockMint2"
	MockMint3 = "MockMint3"
)

// MockTokens returns fixed demo delegations.
func MockTokens() []types.Token {
	return []types.Token{
		{Mint: MockMint1, Delegate: "Delegate1", DelegatedAmount: "1000", Owner: "Owner1"},
		{Mint: MockMint2, Delegate: "Delegate2", DelegatedAmount: "500", Owner: "Owner2"},
		{Mint: MockMint3, Delegate: "Delegate3", DelegatedAmount: "2000", Owner: "Owner3"},
	}
}
