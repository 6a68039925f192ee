package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/safwentrabelsi/spl-approval-revoker/chain"
	"github.com/safwentrabelsi/spl-approval-revoker/config"
	"github.com/safwentrabelsi/spl-approval-revoker/discovery"
	"github.com/safwentrabelsi/spl-approval-revoker/metrics"
	"github.com/safwentrabelsi/spl-approval-revoker/notify"
	"github.com/safwentrabelsi/spl-approval-revoker/revoke"
	"github.com/safwentrabelsi/spl-approval-revoker/session"
	"github.com/safwentrabelsi/spl-approval-revoker/store"
	"github.com/safwentrabelsi/spl-approval-revoker/wallet"
	log "github.com/sirupsen/logrus"
)

const (
	feedSize       = 50
	defaultLogFile = "revoker.log"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setupLogging applies the configured level. When toFile is set, or a log
// file is configured, output goes to that file instead of stderr.
func setupLogging(cfg *config.LogConfig, toFile bool) (io.Closer, error) {
	logLevel, err := log.ParseLevel(cfg.GetLevel())
	if err != nil {
		return nil, fmt.Errorf("invalid log level in the config: %w", err)
	}
	log.SetLevel(logLevel)

	path := cfg.GetFile()
	if path == "" && toFile {
		path = defaultLogFile
	}
	if path == "" {
		return nopCloser{}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}

type application struct {
	client  *chain.Client
	store   store.Storer
	feed    *notify.Feed
	session *session.Session
}

// newApplication wires the session. confirm enables the terminal signing
// prompt when the config asks for it; it must stay off under the TUI.
func newApplication(cfg *config.Config, recorder metrics.Recorder, confirm bool) (*application, error) {
	lookup := wallet.KeypairLookup(cfg.Wallet.GetKeypairPath())
	if confirm && cfg.Wallet.GetConfirmSigning() {
		lookup = wallet.Confirming(lookup, wallet.PromptConfirmer)
	}

	st, err := store.New(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize receipt store: %w", err)
	}

	client := chain.NewClient(cfg.RPC)
	feed := notify.NewFeed(feedSize)
	kind := cfg.Wallet.GetKind()

	return &application{
		client: client,
		store:  st,
		feed:   feed,
		session: session.New(session.Options{
			Lookup:    lookup,
			Kind:      kind,
			Discovery: discovery.NewFetcher(client),
			Revoker:   revoke.NewRevoker(client, lookup, kind),
			Notifier:  feed,
			Store:     st,
			Metrics:   recorder,
		}),
	}, nil
}

func (a *application) Close() {
	if err := a.store.Close(); err != nil {
		log.Errorf("Failed to close receipt store: %v", err)
	}
	if err := a.client.Close(); err != nil {
		log.Errorf("Failed to close RPC client: %v", err)
	}
}
