package locktime

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// Threshold is the nLockTime value from which on a lock time is interpreted
// as a UNIX timestamp instead of a block height.
const Threshold = txscript.LockTimeThreshold

// Absolute is a raw transaction nLockTime value. Whether it is a height or a
// timestamp depends on which side of Threshold it falls.
type Absolute uint32

// AbsoluteFromTx returns the lock time of the transaction.
func AbsoluteFromTx(tx *wire.MsgTx) Absolute {
	return Absolute(tx.LockTime)
}

// IsTimeBased returns true if the value is a UNIX timestamp.
func (a Absolute) IsTimeBased() bool {
	return a >= Threshold
}

// IsHeightBased returns true if the value is a block height. Zero, meaning no
// lock at all, is height based.
func (a Absolute) IsHeightBased() bool {
	return a < Threshold
}

// Consensus returns the value as serialized in a transaction.
func (a Absolute) Consensus() uint32 {
	return uint32(a)
}
