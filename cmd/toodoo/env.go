package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nhle/too-doo/internal/analytics"
	"github.com/nhle/too-doo/internal/auth"
	"github.com/nhle/too-doo/internal/capture"
	"github.com/nhle/too-doo/internal/credential"
	"github.com/nhle/too-doo/internal/logging"
	"github.com/nhle/too-doo/internal/model"
	"github.com/nhle/too-doo/internal/notes"
	"github.com/nhle/too-doo/internal/store"
	jobs "github.com/nhle/too-doo/internal/sync"
)

// errSignedOut is returned by commands that need an account when no
// valid session is stored.
var errSignedOut = errors.New("not signed in, run 'toodoo login' first")

// env holds the dependencies shared by every subcommand.
type env struct {
	cfg       *model.AppConfig
	logger    *logging.Logger
	store     *store.SQLStore
	notes     *notes.Service
	analytics *analytics.Service
	auth      *auth.Service
	creds     *credential.Store
}

// logTo selects where a command writes its logs. The terminal UI owns
// the screen, so it logs to a file next to the configuration.
type logTo int

const (
	logStderr logTo = iota
	logFile
)

// setup loads configuration and opens the store and services.
func setup(ctx context.Context, dest logTo) (*env, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logCfg, err := logging.ParseConfig(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}
	if dest == logFile {
		logCfg.Paths = []string{filepath.Join(filepath.Dir(configPath), "toodoo.log")}
	}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	s, err := store.Open(ctx, cfg.Database)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("opening %s store: %w", cfg.Database.Driver, err)
	}

	e := &env{
		cfg:       cfg,
		logger:    logger,
		store:     s,
		notes:     notes.NewService(s, logger),
		analytics: analytics.NewService(s, logger),
		auth:      auth.NewService(s, logger, cfg.Server.SessionTTL),
	}
	return e, nil
}

// Close releases the store and flushes logs.
func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn(context.Background(), "closing store failed", zap.Error(err))
	}
	_ = e.logger.Sync()
}

// credentials opens the keyring on first use.
func (e *env) credentials() (*credential.Store, error) {
	if e.creds != nil {
		return e.creds, nil
	}
	c, err := credential.Open()
	if err != nil {
		return nil, err
	}
	e.creds = c
	return c, nil
}

// enableOAuth configures the OAuth provider, taking the client secret
// from the keyring when the config file leaves it empty.
func (e *env) enableOAuth() error {
	oc := e.cfg.OAuth
	if !oc.Enabled() {
		return nil
	}
	if oc.ClientSecret == "" {
		creds, err := e.credentials()
		if err != nil {
			return err
		}
		secret, err := creds.Get(credential.OAuthClientSecretKey)
		if err != nil && !errors.Is(err, credential.ErrNotFound) {
			return err
		}
		oc.ClientSecret = secret
	}
	e.auth.WithOAuth(oc)
	return nil
}

// currentUser resolves the account behind the stored session token.
func (e *env) currentUser(ctx context.Context) (*model.User, error) {
	creds, err := e.credentials()
	if err != nil {
		return nil, err
	}
	token, err := creds.SessionToken()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, errSignedOut
	}
	user, err := e.auth.CurrentUser(ctx, token)
	if errors.Is(err, auth.ErrNoSession) {
		return nil, errSignedOut
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// newPoller registers the background jobs. Mail capture is only
// registered for the configured account; pass "" to register it
// regardless of who is signed in.
func (e *env) newPoller(ctx context.Context, userEmail string) *jobs.Poller {
	p := jobs.New(e.logger)
	p.Register(analytics.NewAggregator(e.store, e.logger, e.cfg.Aggregation.Weeks), e.cfg.Aggregation.Interval)
	p.Register(auth.NewSessionPruner(e.auth), e.cfg.Aggregation.Interval)

	mc := e.cfg.Mail
	if !mc.Enabled {
		return p
	}
	if userEmail != "" && !strings.EqualFold(userEmail, mc.UserEmail) {
		return p
	}
	password, err := e.mailPassword()
	if err != nil {
		e.logger.Warn(ctx, "mail capture disabled", zap.Error(err))
		return p
	}
	mb := capture.NewIMAPClient(mc.Host, mc.Port, mc.Username, password, mc.Mailbox, mc.TLS)
	p.Register(capture.NewJob(mb, e.notes, e.store, mc.UserEmail, e.logger), mc.PollInterval)
	return p
}

func (e *env) mailPassword() (string, error) {
	creds, err := e.credentials()
	if err != nil {
		return "", err
	}
	return creds.Get(model.MailPasswordKey)
}
