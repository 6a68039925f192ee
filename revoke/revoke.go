package revoke

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/safwentrabelsi/spl-approval-revoker/types"
	"github.com/safwentrabelsi/spl-approval-revoker/wallet"
	"github.com/sirupsen/logrus"
)

// ErrEmptySelection is returned when there is nothing to revoke. No network call is made.
var ErrEmptySelection = errors.New("no tokens selected")

var log = logrus.WithField("module", "revoke")

type Chain interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	WaitForConfirmation(ctx context.Context, signature solana.Signature) error
}

// Result describes a confirmed revocation batch.
type Result struct {
	Signature solana.Signature
	Owner     solana.PublicKey
	Mints     []string
}

// Count is the number of revoked delegations.
func (r Result) Count() int {
	return len(r.Mints)
}

type Revoker struct {
	chain  Chain
	lookup wallet.Lookup
	kind   string
}

func NewRevoker(chain Chain, lookup wallet.Lookup, kind string) *Revoker {
	return &Revoker{
		chain:  chain,
		lookup: lookup,
		kind:   kind,
	}
}

// Revoke removes the delegate of every selected token in one transaction.
// The transaction is atomic: either every delegation is revoked or none is.
func (r *Revoker) Revoke(ctx context.Context, selected []types.Token) (Result, error) {
	if len(selected) == 0 {
		return Result{}, ErrEmptySelection
	}

	provider, owner, err := wallet.Connect(ctx, r.lookup, r.kind)
	if err != nil {
		return Result{}, err
	}

	blockhash, err := r.chain.GetLatestBlockhash(ctx)
	if err != nil {
		return Result{}, err
	}

	tx, err := BuildTransaction(selected, owner, blockhash)
	if err != nil {
		return Result{}, err
	}

	signed, err := provider.SignTransaction(ctx, tx)
	if err != nil {
		return Result{}, fmt.Errorf("sign revocation: %w", err)
	}

	sig, err := r.chain.SendTransaction(ctx, signed)
	if err != nil {
		return Result{}, err
	}

	if err := r.chain.WaitForConfirmation(ctx, sig); err != nil {
		return Result{}, err
	}

	mints := make([]string, len(selected))
	for i, t := range selected {
		mints[i] = t.Mint
	}
	log.WithField("signature", sig.String()).Infof("Revoked %d delegations for %s", len(mints), owner)
	return Result{Signature: sig, Owner: owner, Mints: mints}, nil
}

// BuildTransaction creates one unsigned transaction paid by owner with a
// Revoke instruction per token, in the given order.
func BuildTransaction(selected []types.Token, owner solana.PublicKey, blockhash solana.Hash) (*solana.Transaction, error) {
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}

	instructions := make([]solana.Instruction, 0, len(selected))
	for _, t := range selected {
		if t.Account == "" {
			return nil, fmt.Errorf("token %s: missing token account address", t.Mint)
		}
		source, err := solana.PublicKeyFromBase58(t.Account)
		if err != nil {
			return nil, fmt.Errorf("token %s: invalid token account %q: %w", t.Mint, t.Account, err)
		}
		instructions = append(instructions, token.NewRevokeInstruction(source, owner, nil).Build())
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(owner))
	if err != nil {
		return nil, fmt.Errorf("build revocation transaction: %w", err)
	}
	return tx, nil
}
