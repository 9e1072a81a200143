package model

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/utxoindexer/errors"
)

type Block struct {
	ID           string         `json:"id"`
	Height       uint32         `json:"height"`
	Transactions []*Transaction `json:"transactions"`
}

// NewBlockFromBytes decodes a JSON encoded block.
func NewBlockFromBytes(blockBytes []byte) (*Block, error) {
	block := &Block{}

	if err := json.Unmarshal(blockBytes, block); err != nil {
		return nil, errors.NewInvalidArgumentError("failed to decode block", err)
	}

	return block, nil
}

// NewBlock builds a block at the given height and fills in its id.
func NewBlock(height uint32, txs ...*Transaction) *Block {
	b := &Block{
		Height:       height,
		Transactions: txs,
	}
	b.ID = ComputeBlockID(height, b.TxIDs())

	return b
}

func (b *Block) Bytes() ([]byte, error) {
	return json.Marshal(b)
}

// TxIDs returns the transaction ids in block order.
func (b *Block) TxIDs() []string {
	ids := make([]string, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		if tx == nil {
			ids = append(ids, "")
			continue
		}

		ids = append(ids, tx.ID)
	}

	return ids
}

func (b *Block) String() string {
	return b.ID + "@" + strconv.FormatUint(uint64(b.Height), 10)
}

// ComputeBlockID returns the lowercase hex SHA-256 of the decimal height followed
// by the transaction ids, concatenated without a delimiter.
func ComputeBlockID(height uint32, txIDs []string) string {
	var sb strings.Builder

	sb.WriteString(strconv.FormatUint(uint64(height), 10))

	for _, id := range txIDs {
		sb.WriteString(id)
	}

	hash := chainhash.HashH([]byte(sb.String()))

	// chainhash.Hash.String() reverses the bytes, the id is the digest in natural order
	return hex.EncodeToString(hash[:])
}

// BlockRecord is a stored block as returned by the ledger store.
type BlockRecord struct {
	ID     string   `json:"id"`
	Height uint32   `json:"height"`
	TxIDs  []string `json:"txIds"`

	// Supply is the value created by all blocks up to and including this one. It equals the
	// total of the unspent outputs while this block is the best block.
	Supply uint64 `json:"supply"`
}
