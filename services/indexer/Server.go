// Package indexer is the long-running service: it opens the ledger store, builds the
// ledger on it and serves the ledger over HTTP.
package indexer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/services/indexer/httpimpl"
	"github.com/bsv-blockchain/utxoindexer/services/ledger"
	"github.com/bsv-blockchain/utxoindexer/services/validator"
	"github.com/bsv-blockchain/utxoindexer/settings"
	ledgerstore "github.com/bsv-blockchain/utxoindexer/stores/ledger"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger/factory"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/bsv-blockchain/utxoindexer/util/health"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	logger         ulogger.Logger
	settings       *settings.Settings
	store          ledgerstore.Store
	ledger         *ledger.Ledger
	httpServer     *httpimpl.HTTP
	validatorOpts  []validator.Option
	externalHealth func(ctx context.Context, checkLiveness bool) (int, string, error)
}

// NewServer creates the service. A nil store is opened from the ledgerstore setting in Init.
func NewServer(logger ulogger.Logger, tSettings *settings.Settings, store ledgerstore.Store, opts ...validator.Option) *Server {
	return &Server{
		logger:        logger,
		settings:      tSettings,
		store:         store,
		validatorOpts: opts,
	}
}

// SetHealthHandler makes /health report fn, typically the service manager aggregate,
// instead of the ledger alone.
func (s *Server) SetHealthHandler(fn func(ctx context.Context, checkLiveness bool) (int, string, error)) {
	s.externalHealth = fn
}

func (s *Server) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	if checkLiveness {
		return http.StatusOK, "OK", nil
	}

	var checks []health.Check

	if s.ledger != nil {
		checks = append(checks, health.Check{Name: "Ledger", Check: s.ledger.Health})
	}

	if s.httpServer != nil && s.httpServer.Addr() != nil {
		checks = append(checks, health.Check{
			Name:  "HTTPServer",
			Check: health.CheckHTTPServer(fmt.Sprintf("http://%s", s.httpServer.Addr()), "/alive"),
		})
	}

	return health.CheckAll(ctx, checkLiveness, checks)
}

func (s *Server) Init(ctx context.Context) (err error) {
	if s.store == nil {
		if s.store, err = factory.NewStore(ctx, s.logger, s.settings, "indexer"); err != nil {
			return errors.NewServiceError("error creating ledger store", err)
		}
	}

	s.ledger = ledger.New(s.logger, s.settings, s.store, s.validatorOpts...)

	if s.httpServer, err = httpimpl.New(s.logger, s.settings, s.ledger); err != nil {
		return errors.NewServiceError("error creating http server", err)
	}

	if s.externalHealth != nil {
		s.httpServer.SetHealthFunc(s.externalHealth)
	}

	return nil
}

// Start serves HTTP until ctx is done.
func (s *Server) Start(ctx context.Context, readyCh chan<- struct{}) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.httpServer.Start(ctx, s.settings.Indexer.HTTPListenAddress, readyCh); err != nil {
			s.logger.Errorf("[Indexer] error in http server: %v", err)
			return err
		}

		return nil
	})

	return g.Wait()
}

func (s *Server) Stop(ctx context.Context) error {
	var err error

	if s.httpServer != nil {
		if stopErr := s.httpServer.Stop(ctx); stopErr != nil {
			err = errors.NewServiceError("error stopping http server", stopErr)
		}
	}

	if s.store != nil {
		if closeErr := s.store.Close(); closeErr != nil && err == nil {
			err = errors.NewStorageError("error closing ledger store", closeErr)
		}
	}

	return err
}

// Addr is the bound HTTP address once Start reported ready.
func (s *Server) Addr() string {
	if s.httpServer == nil || s.httpServer.Addr() == nil {
		return ""
	}

	return s.httpServer.Addr().String()
}
