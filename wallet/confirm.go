package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/manifoldco/promptui"
)

// Confirmer asks the user to approve a signing request described by summary.
type Confirmer func(ctx context.Context, summary string) (bool, error)

// ConfirmingProvider asks for approval before every signature, like a wallet popup.
type ConfirmingProvider struct {
	Provider
	confirm Confirmer
}

func NewConfirmingProvider(p Provider, confirm Confirmer) *ConfirmingProvider {
	return &ConfirmingProvider{Provider: p, confirm: confirm}
}

// Confirming wraps every provider returned by lookup.
func Confirming(lookup Lookup, confirm Confirmer) Lookup {
	return func() (Provider, bool) {
		p, ok := lookup()
		if !ok {
			return nil, false
		}
		return NewConfirmingProvider(p, confirm), true
	}
}

func (c *ConfirmingProvider) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	summary := fmt.Sprintf("Sign transaction with %d instruction(s)", len(tx.Message.Instructions))
	ok, err := c.confirm(ctx, summary)
	if err != nil {
		return nil, fmt.Errorf("confirm signature: %w", err)
	}
	if !ok {
		return nil, ErrUserRejected
	}
	return c.Provider.SignTransaction(ctx, tx)
}

// PromptConfirmer asks on the terminal with a y/N prompt.
func PromptConfirmer(ctx context.Context, summary string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     summary,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	if errors.Is(err, promptui.ErrAbort) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
