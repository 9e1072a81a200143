// Package errors provides the coded error taxonomy used throughout the indexer.
package errors

// IsValidationError reports whether err was caused by the client: a block or
// transaction that fails the ledger rules, or a malformed request.
// Validation errors never leave partial state behind.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}

	var tErr *Error
	if !As(err, &tErr) {
		return false
	}

	switch tErr.Code() {
	case ERR_INVALID_ARGUMENT,
		ERR_BLOCK_INVALID_HEIGHT,
		ERR_BLOCK_INVALID_ID,
		ERR_TX_INVALID,
		ERR_TX_UNBALANCED,
		ERR_UTXO_NOT_FOUND,
		ERR_ROLLBACK_TARGET_INVALID:
		return true
	}

	return false
}

// IsConflictError reports whether err is a uniqueness or spend conflict detected
// by the store while committing a unit of work.
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}

	return Is(err, ErrBlockExists) || Is(err, ErrUtxoSpent)
}

// IsStateError reports whether err is an infrastructure fault rather than a
// rejection of client input.
func IsStateError(err error) bool {
	return err != nil && !IsValidationError(err)
}
