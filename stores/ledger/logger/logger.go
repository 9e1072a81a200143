// Package logger decorates a ledger store so that every call is logged with its caller.
package logger

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/bsv-blockchain/utxoindexer/stores/ledger"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
)

type Store struct {
	logger ulogger.Logger
	store  ledger.Store
}

func New(logger ulogger.Logger, store ledger.Store) *Store {
	return &Store{
		logger: logger,
		store:  store,
	}
}

func caller() string {
	var callers []string

	for i := 0; i < 3; i++ {
		pc, file, line, ok := runtime.Caller(2 + i)
		if !ok {
			break
		}

		// keep the package directory and file name only
		file = filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file))

		funcPaths := strings.Split(runtime.FuncForPC(pc).Name(), "/")

		callers = append(callers, fmt.Sprintf("called from %s: %s:%d", funcPaths[len(funcPaths)-1], file, line))
	}

	return strings.Join(callers, ",")
}

func (s *Store) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	status, details, err := s.store.Health(ctx, checkLiveness)
	s.logger.Infof("[LedgerStore][logger][Health] status %d details %s err %v : %s", status, details, err, caller())

	return status, details, err
}

func (s *Store) GetBestHeight(ctx context.Context) (uint32, error) {
	height, err := s.store.GetBestHeight(ctx)
	s.logger.Infof("[LedgerStore][logger][GetBestHeight] %d err %v : %s", height, err, caller())

	return height, err
}

func (s *Store) GetUTXO(ctx context.Context, outpoint model.Outpoint) (*model.UTXO, error) {
	utxo, err := s.store.GetUTXO(ctx, outpoint)
	s.logger.Infof("[LedgerStore][logger][GetUTXO] outpoint %s utxo %+v err %v : %s", outpoint, utxo, err, caller())

	return utxo, err
}

func (s *Store) GetUTXOsByAddress(ctx context.Context, address string) ([]*model.UTXO, error) {
	utxos, err := s.store.GetUTXOsByAddress(ctx, address)
	s.logger.Infof("[LedgerStore][logger][GetUTXOsByAddress] address %s count %d err %v : %s", address, len(utxos), err, caller())

	return utxos, err
}

func (s *Store) GetBalance(ctx context.Context, address string) (uint64, error) {
	balance, err := s.store.GetBalance(ctx, address)
	s.logger.Infof("[LedgerStore][logger][GetBalance] address %s balance %d err %v : %s", address, balance, err, caller())

	return balance, err
}

func (s *Store) GetBlockByHeight(ctx context.Context, height uint32) (*model.BlockRecord, error) {
	block, err := s.store.GetBlockByHeight(ctx, height)
	s.logger.Infof("[LedgerStore][logger][GetBlockByHeight] height %d block %v err %v : %s", height, block, err, caller())

	return block, err
}

func (s *Store) Update(ctx context.Context, fn func(unit ledger.UnitOfWork) error) error {
	start := time.Now()
	err := s.store.Update(ctx, fn)
	s.logger.Infof("[LedgerStore][logger][Update] took %s err %v : %s", time.Since(start), err, caller())

	return err
}

func (s *Store) Close() error {
	err := s.store.Close()
	s.logger.Infof("[LedgerStore][logger][Close] err %v : %s", err, caller())

	return err
}
