package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/safwentrabelsi/spl-approval-revoker/discovery"
	"github.com/safwentrabelsi/spl-approval-revoker/metrics"
	"github.com/safwentrabelsi/spl-approval-revoker/notify"
	"github.com/safwentrabelsi/spl-approval-revoker/revoke"
	"github.com/safwentrabelsi/spl-approval-revoker/selection"
	"github.com/safwentrabelsi/spl-approval-revoker/store"
	"github.com/safwentrabelsi/spl-approval-revoker/types"
	"github.com/safwentrabelsi/spl-approval-revoker/wallet"
	"github.com/sirupsen/logrus"
)

var (
	ErrBusy         = errors.New("operation already in progress")
	ErrNotConnected = errors.New("wallet not connected")
	ErrUnknownMint  = errors.New("mint is not in the token list")
)

// User-facing messages.
const (
	MsgNotConnected     = "Wallet not connected."
	MsgNoDelegations    = "You have no delegated tokens."
	MsgAccessDenied     = "Access error: the RPC endpoint refused the request or the request limit was exceeded. Try again later or configure another RPC url."
	MsgSelectToRevoke   = "Select at least one token to revoke its approval."
	MsgMockLoaded       = "Mock token data loaded!"
	msgErrorPrefix      = "Error: "
	msgConnectedFormat  = "Wallet connected: %s"
	msgFoundFormat      = "Found %d delegated tokens."
	msgRevokedFormat    = "Revoked approvals for %d tokens."
	receiptSaveWarnings = "Failed to save revocation receipt"
)

type Op string

const (
	OpConnect Op = "connect"
	OpFetch   Op = "fetch"
	OpRevoke  Op = "revoke"
)

var log = logrus.WithField("module", "session")

type Discoverer interface {
	FetchDelegatedTokens(ctx context.Context, owner solana.PublicKey) ([]types.Token, error)
}

type Revoker interface {
	Revoke(ctx context.Context, selected []types.Token) (revoke.Result, error)
}

// Options wires the session collaborators. Store and Metrics are optional.
type Options struct {
	Lookup    wallet.Lookup
	Kind      string
	Discovery Discoverer
	Revoker   Revoker
	Notifier  notify.Notifier
	Store     store.Storer
	Metrics   metrics.Recorder
}

// Snapshot is a read-only view of the session for rendering.
type Snapshot struct {
	Connected bool          `json:"connected"`
	PublicKey string        `json:"publicKey,omitempty"`
	Tokens    []types.Token `json:"tokens"`
	Selected  []types.Token `json:"selected"`
	Busy      map[Op]bool   `json:"busy"`
}

func (s Snapshot) IsSelected(mint string) bool {
	for _, t := range s.Selected {
		if t.Mint == mint {
			return true
		}
	}
	return false
}

// AllSelected reports whether every displayed token is selected.
func (s Snapshot) AllSelected() bool {
	return len(s.Tokens) > 0 && len(s.Selected) == len(s.Tokens)
}

// CanRevoke reports whether the revoke action is enabled.
func (s Snapshot) CanRevoke() bool {
	return len(s.Selected) > 0 && !s.Busy[OpRevoke]
}

// Session holds the state of one user: connection, displayed tokens and selection.
// Each operation kind runs at most once at a time.
type Session struct {
	opts Options

	mu        sync.Mutex
	publicKey *solana.PublicKey
	tokens    []types.Token
	selection *selection.Set
	busy      map[Op]bool
}

func New(opts Options) *Session {
	if opts.Store == nil {
		opts.Store = store.NopStore{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	return &Session{
		opts:      opts,
		tokens:    []types.Token{},
		selection: selection.New(),
		busy:      map[Op]bool{},
	}
}

func (s *Session) begin(op Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[op] {
		return fmt.Errorf("%w: %s", ErrBusy, op)
	}
	s.busy[op] = true
	return nil
}

func (s *Session) end(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, op)
}

func (s *Session) notifyError(err error) {
	s.opts.Notifier.Notify(notify.Error, msgErrorPrefix+err.Error())
}

// ConnectWallet connects the provider and records its public key.
func (s *Session) ConnectWallet(ctx context.Context) error {
	if err := s.begin(OpConnect); err != nil {
		return err
	}
	defer s.end(OpConnect)

	_, key, err := wallet.Connect(ctx, s.opts.Lookup, s.opts.Kind)
	if err != nil {
		log.WithError(err).Error("Wallet connection failed")
		s.notifyError(err)
		return err
	}

	s.mu.Lock()
	s.publicKey = &key
	s.mu.Unlock()

	s.opts.Notifier.Notify(notify.Success, fmt.Sprintf(msgConnectedFormat, key))
	return nil
}

// TryReconnect connects silently when a provider of the expected kind is
// present. Failures are only logged.
func (s *Session) TryReconnect(ctx context.Context) bool {
	if err := s.begin(OpConnect); err != nil {
		return false
	}
	defer s.end(OpConnect)

	_, key, err := wallet.Connect(ctx, s.opts.Lookup, s.opts.Kind)
	if err != nil {
		log.WithError(err).Debug("No wallet to reconnect")
		return false
	}
	s.mu.Lock()
	s.publicKey = &key
	s.mu.Unlock()
	log.Infof("Reconnected wallet %s", key)
	return true
}

// FetchDelegatedTokens refreshes the displayed token list for the connected key.
// The selection is reduced to the mints still present.
func (s *Session) FetchDelegatedTokens(ctx context.Context) ([]types.Token, error) {
	s.mu.Lock()
	key := s.publicKey
	s.mu.Unlock()
	if key == nil {
		s.opts.Notifier.Notify(notify.Error, MsgNotConnected)
		return nil, ErrNotConnected
	}

	if err := s.begin(OpFetch); err != nil {
		return nil, err
	}
	defer s.end(OpFetch)

	tokens, err := s.opts.Discovery.FetchDelegatedTokens(ctx, *key)
	if err != nil {
		log.WithError(err).Error("Failed to fetch delegated tokens")
		if errors.Is(err, discovery.ErrAccessDenied) {
			s.opts.Metrics.Discovery(metrics.AccessDenied)
			s.opts.Notifier.Notify(notify.Error, MsgAccessDenied)
		} else {
			s.opts.Metrics.Discovery(metrics.Failed)
			s.notifyError(err)
		}
		return nil, err
	}

	s.setTokens(tokens)

	if len(tokens) == 0 {
		s.opts.Metrics.Discovery(metrics.Empty)
		s.opts.Notifier.Notify(notify.Info, MsgNoDelegations)
	} else {
		s.opts.Metrics.Discovery(metrics.OK)
		s.opts.Notifier.Notify(notify.Success, fmt.Sprintf(msgFoundFormat, len(tokens)))
	}
	return tokens, nil
}

// LoadMockTokens displays fixed demo delegations. It is refused while a
// search is in flight, since the search result would replace them.
func (s *Session) LoadMockTokens() ([]types.Token, error) {
	if err := s.begin(OpFetch); err != nil {
		return nil, err
	}
	defer s.end(OpFetch)

	tokens := discovery.MockTokens()
	s.setTokens(tokens)
	s.opts.Notifier.Notify(notify.Success, MsgMockLoaded)
	return tokens, nil
}

func (s *Session) setTokens(tokens []types.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append([]types.Token{}, tokens...)
	s.selection.Reconcile(s.tokens)
}

// Toggle selects or deselects the displayed token with the given mint.
func (s *Session) Toggle(mint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if t.Mint == mint {
			s.selection.Toggle(t)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownMint, mint)
}

// SelectAll selects every displayed token when checked and clears the selection otherwise.
func (s *Session) SelectAll(checked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.SelectAll(checked, s.tokens)
}

// RevokeSelected revokes every selected delegation in one transaction. On
// success the revoked mints leave the selection and the token list is left as
// is: the caller must fetch again to see the updated state.
func (s *Session) RevokeSelected(ctx context.Context) (revoke.Result, error) {
	s.mu.Lock()
	selected := s.selection.Tokens()
	s.mu.Unlock()
	if len(selected) == 0 {
		s.opts.Notifier.Notify(notify.Info, MsgSelectToRevoke)
		return revoke.Result{}, revoke.ErrEmptySelection
	}

	if err := s.begin(OpRevoke); err != nil {
		return revoke.Result{}, err
	}
	defer s.end(OpRevoke)

	result, err := s.opts.Revoker.Revoke(ctx, selected)
	if err != nil {
		log.WithError(err).Error("Revocation failed")
		s.opts.Metrics.Revocation(metrics.Failed, 0)
		s.notifyError(err)
		return revoke.Result{}, err
	}

	s.mu.Lock()
	s.selection.Remove(result.Mints...)
	s.mu.Unlock()

	s.opts.Metrics.Revocation(metrics.OK, result.Count())
	s.opts.Notifier.Notify(notify.Success, fmt.Sprintf(msgRevokedFormat, result.Count()))

	receipt := types.Receipt{
		ID:          uuid.NewString(),
		Signature:   result.Signature.String(),
		Owner:       result.Owner.String(),
		Mints:       result.Mints,
		Count:       result.Count(),
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.opts.Store.SaveReceipt(ctx, receipt); err != nil {
		log.WithError(err).WithField("signature", receipt.Signature).Error(receiptSaveWarnings)
	}
	return result, nil
}

// Receipts lists the revocations recorded for the connected key.
func (s *Session) Receipts(ctx context.Context) ([]types.Receipt, error) {
	s.mu.Lock()
	key := s.publicKey
	s.mu.Unlock()
	if key == nil {
		return nil, ErrNotConnected
	}
	return s.opts.Store.GetReceipts(ctx, key.String())
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Connected: s.publicKey != nil,
		Tokens:    append([]types.Token{}, s.tokens...),
		Selected:  s.selection.Tokens(),
		Busy:      make(map[Op]bool, len(s.busy)),
	}
	if s.publicKey != nil {
		snap.PublicKey = s.publicKey.String()
	}
	for op, busy := range s.busy {
		snap.Busy[op] = busy
	}
	return snap
}
