package discovery

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/safwentrabelsi/spl-approval-revoker/chain"
	"github.com/safwentrabelsi/spl-approval-revoker/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockChain struct {
	mock.Mock
}

func (m *mockChain) GetTokenAccounts(ctx context.Context, owner solana.PublicKey) ([]chain.TokenAccount, error) {
	args := m.Called(ctx, owner)
	accounts, _ := args.Get(0).([]chain.TokenAccount)
	return accounts, args.Error(1)
}

func strPtr(s string) *string {
	return &s
}

func account(address, mint string, delegate *string, amount string) chain.TokenAccount {
	info := chain.TokenAccountInfo{
		Mint:        mint,
		Owner:       "Owner1",
		State:       "initialized",
		Delegate:    delegate,
		TokenAmount: chain.TokenAmount{Amount: "9000", Decimals: 3},
	}
	if delegate != nil {
		info.DelegatedAmount = &chain.TokenAmount{Amount: amount, Decimals: 3}
	}
	return chain.TokenAccount{Address: address, Info: info}
}

func TestFetchDelegatedTokens(t *testing.T) {
	owner := solana.SystemProgramID

	t.Run("Three accounts, one without delegate", func(t *testing.T) {
		c := new(mockChain)
		c.On("GetTokenAccounts", mock.Anything, owner).Return([]chain.TokenAccount{
			account("Acc1", "MintA", strPtr("DelegateA"), "100"),
			account("Acc2", "MintB", nil, ""),
			account("Acc3", "MintC", strPtr("DelegateC"), "18446744073709551615"),
		}, nil)

		tokens, err := NewFetcher(c).FetchDelegatedTokens(context.Background(), owner)
		require.NoError(t, err)
		assert.Equal(t, []types.Token{
			{Mint: "MintA", Delegate: "DelegateA", DelegatedAmount: "100", Owner: "Owner1", Account: "Acc1", Decimals: 3},
			{Mint: "MintC", Delegate: "DelegateC", DelegatedAmount: "18446744073709551615", Owner: "Owner1", Account: "Acc3", Decimals: 3},
		}, tokens)
		c.AssertExpectations(t)
	})

	t.Run("No delegated accounts", func(t *testing.T) {
		c := new(mockChain)
		c.On("GetTokenAccounts", mock.Anything, owner).Return([]chain.TokenAccount{
			account("Acc1", "MintA", nil, ""),
		}, nil)

		tokens, err := NewFetcher(c).FetchDelegatedTokens(context.Background(), owner)
		require.NoError(t, err)
		assert.NotNil(t, tokens)
		assert.Empty(t, tokens)
	})

	t.Run("Access denied", func(t *testing.T) {
		c := new(mockChain)
		c.On("GetTokenAccounts", mock.Anything, owner).Return(nil, errors.New("rpc call getTokenAccountsByOwner() status code: 403"))

		_, err := NewFetcher(c).FetchDelegatedTokens(context.Background(), owner)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("Other failure", func(t *testing.T) {
		c := new(mockChain)
		c.On("GetTokenAccounts", mock.Anything, owner).Return(nil, errors.New("connection refused"))

		_, err := NewFetcher(c).FetchDelegatedTokens(context.Background(), owner)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrAccessDenied)
		assert.EqualError(t, err, "fetch token accounts: connection refused")
	})
}

func TestFilterDelegated_ExcludesEveryUndelegatedAccount(t *testing.T) {
	var accounts []chain.TokenAccount
	for i := 0; i < 20; i++ {
		if i%3 == 0 {
			accounts = append(accounts, account("Acc", "Mint", nil, ""))
		} else {
			accounts = append(accounts, account("Acc", "Mint", strPtr("D"), "1"))
		}
	}

	tokens := FilterDelegated(accounts)
	assert.Len(t, tokens, 13)
	for _, tok := range tokens {
		assert.NotEmpty(t, tok.Delegate)
	}
}

func TestMockTokens(t *testing.T) {
	tokens := MockTokens()
	require.Len(t, tokens, 3)
	assert.Equal(t, "MockMint1", tokens[0].Mint)
	assert.Equal(t, "2000", tokens[2].DelegatedAmount)
}
