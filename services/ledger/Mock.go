package ledger

import (
	"context"

	"github.com/bsv-blockchain/utxoindexer/model"
	"github.com/stretchr/testify/mock"
)

// Mock implements Interface for transport tests.
type Mock struct {
	mock.Mock
}

func (m *Mock) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	args := m.Called(ctx, checkLiveness)

	return args.Int(0), args.String(1), args.Error(2)
}

func (m *Mock) SubmitBlock(ctx context.Context, block *model.Block) (uint32, error) {
	args := m.Called(ctx, block)

	return args.Get(0).(uint32), args.Error(1)
}

func (m *Mock) RollbackTo(ctx context.Context, height int64) (uint32, error) {
	args := m.Called(ctx, height)

	return args.Get(0).(uint32), args.Error(1)
}

func (m *Mock) QueryBalance(ctx context.Context, address string) (uint64, error) {
	args := m.Called(ctx, address)

	return args.Get(0).(uint64), args.Error(1)
}

func (m *Mock) GetBestHeight(ctx context.Context) (uint32, error) {
	args := m.Called(ctx)

	return args.Get(0).(uint32), args.Error(1)
}

func (m *Mock) GetBlock(ctx context.Context, height uint32) (*model.BlockRecord, error) {
	args := m.Called(ctx, height)

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*model.BlockRecord), args.Error(1)
}

func (m *Mock) GetUTXOs(ctx context.Context, address string) ([]*model.UTXO, error) {
	args := m.Called(ctx, address)

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*model.UTXO), args.Error(1)
}

func (m *Mock) GetUTXO(ctx context.Context, outpoint model.Outpoint) (*model.UTXO, error) {
	args := m.Called(ctx, outpoint)

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*model.UTXO), args.Error(1)
}
