package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/safwentrabelsi/spl-approval-revoker/config"
	"github.com/sirupsen/logrus"
)

var (
	// ErrTransactionFailed is returned when the cluster reports an execution error for a submitted transaction.
	ErrTransactionFailed = errors.New("transaction failed on chain")
	// ErrConfirmationTimeout is returned when a transaction does not reach the submit commitment in time.
	ErrConfirmationTimeout = errors.New("transaction not confirmed before timeout")

	errPending = errors.New("signature not yet at requested commitment")
)

var log = logrus.WithField("module", "chain")

// TokenAmount is the jsonParsed representation of an SPL amount.
type TokenAmount struct {
	Amount         string `json:"amount"`
	Decimals       uint8  `json:"decimals"`
	UIAmountString string `json:"uiAmountString"`
}

// TokenAccountInfo is the parsed info of an SPL token account. Delegate is nil when no delegate is set.
type TokenAccountInfo struct {
	Mint            string       `json:"mint"`
	Owner           string       `json:"owner"`
	State           string       `json:"state"`
	Delegate        *string      `json:"delegate,omitempty"`
	DelegatedAmount *TokenAmount `json:"delegatedAmount,omitempty"`
	TokenAmount     TokenAmount  `json:"tokenAmount"`
}

// TokenAccount is a token account address with its parsed info.
type TokenAccount struct {
	Address string
	Info    TokenAccountInfo
}

type parsedAccountData struct {
	Program string `json:"program"`
	Parsed  struct {
		Type string           `json:"type"`
		Info TokenAccountInfo `json:"info"`
	} `json:"parsed"`
}

type ChainInterface interface {
	GetTokenAccounts(ctx context.Context, owner solana.PublicKey) ([]TokenAccount, error)
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	WaitForConfirmation(ctx context.Context, signature solana.Signature) error
}

var _ ChainInterface = (*Client)(nil)

// Client talks to a Solana JSON-RPC endpoint. Every call is a single attempt.
type Client struct {
	rpc                 *rpc.Client
	timeout             time.Duration
	discoveryCommitment rpc.CommitmentType
	submitCommitment    rpc.CommitmentType
	confirmTimeout      time.Duration
	pollInterval        time.Duration
}

func NewClient(cfg *config.RPCConfig) *Client {
	return &Client{
		rpc:                 rpc.New(cfg.GetURL()),
		timeout:             cfg.GetTimeout(),
		discoveryCommitment: rpc.CommitmentType(cfg.GetDiscoveryCommitment()),
		submitCommitment:    rpc.CommitmentType(cfg.GetSubmitCommitment()),
		confirmTimeout:      cfg.GetConfirmTimeout(),
		pollInterval:        cfg.GetConfirmPollInterval(),
	}
}

func (c *Client) Close() error {
	return c.rpc.Close()
}

// GetTokenAccounts lists the token-program accounts owned by owner in the order returned by the node.
func (c *Client) GetTokenAccounts(ctx context.Context, owner solana.PublicKey) ([]TokenAccount, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	programID := solana.TokenProgramID
	out, err := c.rpc.GetTokenAccountsByOwner(
		ctx,
		owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{
			Commitment: c.discoveryCommitment,
			Encoding:   solana.EncodingJSONParsed,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner: %w", err)
	}

	accounts := make([]TokenAccount, 0, len(out.Value))
	for _, keyed := range out.Value {
		if keyed == nil || keyed.Account.Data == nil {
			continue
		}
		var data parsedAccountData
		if err := json.Unmarshal(keyed.Account.Data.GetRawJSON(), &data); err != nil {
			return nil, fmt.Errorf("decode token account %s: %w", keyed.Pubkey, err)
		}
		accounts = append(accounts, TokenAccount{
			Address: keyed.Pubkey.String(),
			Info:    data.Parsed.Info,
		})
	}
	log.Debugf("Fetched %d token accounts for %s", len(accounts), owner)
	return accounts, nil
}

func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.rpc.GetLatestBlockhash(ctx, c.submitCommitment)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("getLatestBlockhash: %w", err)
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, errors.New("getLatestBlockhash: empty response")
	}
	return out.Value.Blockhash, nil
}

// SendTransaction submits the serialized signed transaction.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("serialize transaction: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sig, err := c.rpc.SendRawTransactionWithOpts(ctx, raw, rpc.TransactionOpts{
		PreflightCommitment: c.submitCommitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sendTransaction: %w", err)
	}
	log.Infof("Submitted transaction %s", sig)
	return sig, nil
}

// WaitForConfirmation polls the signature status until it reaches the submit
// commitment, the cluster reports an error, or the confirm timeout elapses.
// A failing status request aborts the wait.
func (c *Client) WaitForConfirmation(ctx context.Context, signature solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	err := retry.Do(
		func() error {
			out, err := c.rpc.GetSignatureStatuses(ctx, false, signature)
			if err != nil {
				return fmt.Errorf("getSignatureStatuses: %w", err)
			}
			if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
				return errPending
			}
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err)
			}
			if !reached(status.ConfirmationStatus, c.submitCommitment) {
				return errPending
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(c.pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errPending)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Tracef("Waiting for %s (poll %d)", signature, n+1)
		}),
	)
	if err == nil {
		log.Infof("Transaction %s reached %s", signature, c.submitCommitment)
		return nil
	}
	if errors.Is(err, errPending) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", ErrConfirmationTimeout, signature, c.confirmTimeout)
	}
	return err
}

var commitmentRank = map[string]int{
	string(rpc.CommitmentProcessed): 1,
	string(rpc.CommitmentConfirmed): 2,
	string(rpc.CommitmentFinalized): 3,
}

func reached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	got, ok := commitmentRank[string(status)]
	if !ok {
		return false
	}
	return got >= commitmentRank[string(want)]
}

// IsAccessDenied reports whether err was caused by the endpoint refusing the
// request (HTTP 403) or throttling it (HTTP 429).
func IsAccessDenied(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *jsonrpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code == http.StatusForbidden || httpErr.Code == http.StatusTooManyRequests
	}
	msg := err.Error()
	return strings.Contains(msg, "403") || strings.Contains(msg, "429")
}
