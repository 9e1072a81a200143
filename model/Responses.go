package model

// Bodies of the indexer API responses, shared by the server and the client.

type SubmitBlockResponse struct {
	ID     string `json:"id"`
	Height uint32 `json:"height"`
}

type BalanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

type HeightResponse struct {
	Height uint32 `json:"height"`
}

type UTXOsResponse struct {
	Address string  `json:"address"`
	Balance uint64  `json:"balance"`
	UTXOs   []*UTXO `json:"utxos"`
}
