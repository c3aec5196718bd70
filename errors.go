package sparseindex

import "errors"

// Sentinel errors returned by index operations. Each maps to exactly
// one failure mode so callers can branch on errors.Is without
// inspecting messages.
var (
	// ErrBlockIDExists is returned by AddBlock and ApplyUpdates when the
	// supplied block id is already registered in the index.
	ErrBlockIDExists = errors.New("sparseindex: block id already registered")

	// ErrBlockIDDoesNotExist is returned by SetCount when the block id
	// has no entry in the index.
	ErrBlockIDDoesNotExist = errors.New("sparseindex: block id not registered")

	// ErrCountsNotSet is returned by ToReader when commit is attempted
	// before every block has had SetCount called on it.
	ErrCountsNotSet = errors.New("sparseindex: counts not set for every block")

	// ErrCorruptSnapshot is returned by DeserializeReader when the decoded
	// bytes are not a well-formed, correctly-ordered snapshot.
	ErrCorruptSnapshot = errors.New("sparseindex: corrupt snapshot")

	// ErrChecksumMismatch is returned by DeserializeReader when the envelope
	// checksum does not match its payload.
	ErrChecksumMismatch = errors.New("sparseindex: snapshot checksum mismatch")
)
