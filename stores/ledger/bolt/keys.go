package bolt

import (
	"bytes"
	"encoding/binary"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/model"
)

var (
	bucketBlocks       = []byte("blocks")       // height -> model.BlockRecord
	bucketBlockIDs     = []byte("blockIDs")     // block id -> height
	bucketTransactions = []byte("transactions") // tx id -> txRecord
	bucketUtxos        = []byte("utxos")        // outpoint -> model.UTXO
	bucketAddress      = []byte("address")      // address height outpoint -> nil, unspent only
	bucketSpentBy      = []byte("spentBy")      // spending tx id outpoint -> nil
	bucketCreatedAt    = []byte("createdAt")    // height outpoint -> nil

	allBuckets = [][]byte{
		bucketBlocks,
		bucketBlockIDs,
		bucketTransactions,
		bucketUtxos,
		bucketAddress,
		bucketSpentBy,
		bucketCreatedAt,
	}
)

// txRecord is the stored form of an accepted transaction.
type txRecord struct {
	BlockID  string `json:"blockId"`
	Height   uint32 `json:"height"`
	Position int    `json:"position"`
}

// heightKey encodes h big endian so that cursors walk blocks in height order.
func heightKey(h uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, h)

	return b
}

func parseHeight(k []byte) uint32 {
	return binary.BigEndian.Uint32(k)
}

// appendString writes s with a uvarint length prefix. Strings may contain any byte, so
// the length, not a separator, marks where they end and no encoded string is a prefix
// of another.
func appendString(b []byte, s string) []byte {
	b = binary.AppendUvarint(b, uint64(len(s)))
	return append(b, s...)
}

func outpointKey(o model.Outpoint) []byte {
	b := appendString(make([]byte, 0, len(o.TxID)+6), o.TxID)
	return binary.BigEndian.AppendUint32(b, o.Index)
}

// parseOutpointKey decodes a key built by outpointKey.
func parseOutpointKey(k []byte) (model.Outpoint, error) {
	n, w := binary.Uvarint(k)
	if w <= 0 || n > uint64(len(k)) || uint64(len(k)-w) != n+4 {
		return model.Outpoint{}, errors.NewStorageError("malformed outpoint key %x", k)
	}

	return model.Outpoint{
		TxID:  string(k[w : w+int(n)]),
		Index: binary.BigEndian.Uint32(k[w+int(n):]),
	}, nil
}

func addressPrefix(address string) []byte {
	return appendString(nil, address)
}

func addressKey(u *model.UTXO) []byte {
	k := addressPrefix(u.Address)
	k = append(k, heightKey(u.CreatedAtHeight)...)

	return append(k, outpointKey(u.Outpoint())...)
}

// outpointFromAddressKey strips the address prefix and creation height.
func outpointFromAddressKey(prefix, k []byte) (model.Outpoint, error) {
	if len(k) < len(prefix)+4 {
		return model.Outpoint{}, errors.NewStorageError("malformed address key %x", k)
	}

	return parseOutpointKey(k[len(prefix)+4:])
}

func spentByPrefix(spendingTxID string) []byte {
	return appendString(nil, spendingTxID)
}

func spentByKey(spendingTxID string, o model.Outpoint) []byte {
	return append(spentByPrefix(spendingTxID), outpointKey(o)...)
}

func createdAtKey(u *model.UTXO) []byte {
	return append(heightKey(u.CreatedAtHeight), outpointKey(u.Outpoint())...)
}

func hasPrefix(k, prefix []byte) bool {
	return k != nil && bytes.HasPrefix(k, prefix)
}
