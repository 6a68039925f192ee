package revoke

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/safwentrabelsi/spl-approval-revoker/chain"
	"github.com/safwentrabelsi/spl-approval-revoker/types"
	"github.com/safwentrabelsi/spl-approval-revoker/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockChain struct {
	mock.Mock
}

func (m *mockChain) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	args := m.Called(ctx)
	return args.Get(0).(solana.Hash), args.Error(1)
}

func (m *mockChain) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(solana.Signature), args.Error(1)
}

func (m *mockChain) WaitForConfirmation(ctx context.Context, signature solana.Signature) error {
	return m.Called(ctx, signature).Error(0)
}

func newKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func delegatedTokens(t *testing.T, owner solana.PublicKey, n int) []types.Token {
	out := make([]types.Token, n)
	for i := range out {
		out[i] = types.Token{
			Mint:            newKey(t).PublicKey().String(),
			Delegate:        newKey(t).PublicKey().String(),
			DelegatedAmount: "1000",
			Owner:           owner.String(),
			Account:         newKey(t).PublicKey().String(),
		}
	}
	return out
}

func assertRevokeInstructions(t *testing.T, tx *solana.Transaction, owner solana.PublicKey, selected []types.Token) {
	t.Helper()
	require.Len(t, tx.Message.Instructions, len(selected))
	assert.Equal(t, owner, tx.Message.AccountKeys[0], "owner pays the fee")
	for i, ci := range tx.Message.Instructions {
		program := tx.Message.AccountKeys[ci.ProgramIDIndex]
		assert.Equal(t, solana.TokenProgramID, program)
		require.NotEmpty(t, ci.Data)
		assert.Equal(t, token.Instruction_Revoke, ci.Data[0])
		require.Len(t, ci.Accounts, 2)
		assert.Equal(t, selected[i].Account, tx.Message.AccountKeys[ci.Accounts[0]].String())
		assert.Equal(t, owner, tx.Message.AccountKeys[ci.Accounts[1]])
	}
}

func TestBuildTransaction(t *testing.T) {
	owner := newKey(t).PublicKey()
	selected := delegatedTokens(t, owner, 3)

	tx, err := BuildTransaction(selected, owner, solana.Hash{9})
	require.NoError(t, err)
	assertRevokeInstructions(t, tx, owner, selected)
	assert.Equal(t, solana.Hash{9}, tx.Message.RecentBlockhash)

	_, err = BuildTransaction(nil, owner, solana.Hash{9})
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = BuildTransaction([]types.Token{{Mint: "MockMint1"}}, owner, solana.Hash{9})
	assert.EqualError(t, err, "token MockMint1: missing token account address")

	_, err = BuildTransaction([]types.Token{{Mint: "MockMint1", Account: "not-base58!"}}, owner, solana.Hash{9})
	assert.Error(t, err)
}

func TestRevoke_EmptySelection(t *testing.T) {
	c := new(mockChain)
	lookupCalled := false
	lookup := func() (wallet.Provider, bool) {
		lookupCalled = true
		return nil, false
	}

	_, err := NewRevoker(c, lookup, wallet.KindKeypair).Revoke(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptySelection)
	assert.False(t, lookupCalled)
	c.AssertNotCalled(t, "GetLatestBlockhash", mock.Anything)
	c.AssertNotCalled(t, "SendTransaction", mock.Anything, mock.Anything)
}

func TestRevoke_TwoTokens(t *testing.T) {
	key := newKey(t)
	owner := key.PublicKey()
	selected := delegatedTokens(t, owner, 2)
	sig := solana.Signature{1, 2, 3}

	c := new(mockChain)
	var submitted *solana.Transaction
	c.On("GetLatestBlockhash", mock.Anything).Return(solana.Hash{4}, nil).Once()
	c.On("SendTransaction", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		submitted = args.Get(1).(*solana.Transaction)
	}).Return(sig, nil).Once()
	c.On("WaitForConfirmation", mock.Anything, sig).Return(nil).Once()

	revoker := NewRevoker(c, wallet.Static(wallet.NewKeypairProvider(key)), wallet.KindKeypair)
	result, err := revoker.Revoke(context.Background(), selected)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Count())
	assert.Equal(t, sig, result.Signature)
	assert.Equal(t, owner, result.Owner)
	assert.Equal(t, []string{selected[0].Mint, selected[1].Mint}, result.Mints)

	require.NotNil(t, submitted)
	assertRevokeInstructions(t, submitted, owner, selected)
	assert.NoError(t, submitted.VerifySignatures())
	c.AssertExpectations(t)
}

func TestRevoke_Failures(t *testing.T) {
	key := newKey(t)
	owner := key.PublicKey()
	selected := delegatedTokens(t, owner, 1)
	sig := solana.Signature{7}

	tests := []struct {
		name     string
		lookup   wallet.Lookup
		prepare  func(*mockChain)
		expected error
	}{
		{
			name:     "Provider absent",
			lookup:   func() (wallet.Provider, bool) { return nil, false },
			prepare:  func(c *mockChain) {},
			expected: wallet.ErrProviderNotFound,
		},
		{
			name: "Signature rejected",
			lookup: wallet.Confirming(wallet.Static(wallet.NewKeypairProvider(key)), func(ctx context.Context, s string) (bool, error) {
				return false, nil
			}),
			prepare: func(c *mockChain) {
				c.On("GetLatestBlockhash", mock.Anything).Return(solana.Hash{4}, nil)
			},
			expected: wallet.ErrUserRejected,
		},
		{
			name:   "Blockhash failure",
			lookup: wallet.Static(wallet.NewKeypairProvider(key)),
			prepare: func(c *mockChain) {
				c.On("GetLatestBlockhash", mock.Anything).Return(solana.Hash{}, errors.New("node down"))
			},
		},
		{
			name:   "Submission failure",
			lookup: wallet.Static(wallet.NewKeypairProvider(key)),
			prepare: func(c *mockChain) {
				c.On("GetLatestBlockhash", mock.Anything).Return(solana.Hash{4}, nil)
				c.On("SendTransaction", mock.Anything, mock.Anything).Return(solana.Signature{}, errors.New("preflight failed"))
			},
		},
		{
			name:   "Confirmation timeout",
			lookup: wallet.Static(wallet.NewKeypairProvider(key)),
			prepare: func(c *mockChain) {
				c.On("GetLatestBlockhash", mock.Anything).Return(solana.Hash{4}, nil)
				c.On("SendTransaction", mock.Anything, mock.Anything).Return(sig, nil)
				c.On("WaitForConfirmation", mock.Anything, sig).Return(chain.ErrConfirmationTimeout)
			},
			expected: chain.ErrConfirmationTimeout,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := new(mockChain)
			tc.prepare(c)

			_, err := NewRevoker(c, tc.lookup, wallet.KindKeypair).Revoke(context.Background(), selected)
			require.Error(t, err)
			if tc.expected != nil {
				assert.ErrorIs(t, err, tc.expected)
			}
			c.AssertExpectations(t)
		})
	}
}
