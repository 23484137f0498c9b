package truststore

import (
	"encoding/binary"
	"fmt"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	host "github.com/cosmos/ibc-lightctx/modules/core/24-host"
)

const KeyIterateConsensusStatePrefix = "iterateConsensusStates"

var (
	// KeyProcessedTime is appended to consensus state key to store the processed time
	KeyProcessedTime = []byte("/processedTime")
	// KeyProcessedHeight is appended to consensus state key to store the processed height
	KeyProcessedHeight = []byte("/processedHeight")
)

// heightLen is the length of a height encoded by bigEndianHeightBytes.
const heightLen = 16

func bigEndianHeightBytes(height clienttypes.Height) []byte {
	heightBytes := make([]byte, heightLen)
	binary.BigEndian.PutUint64(heightBytes, height.GetRevisionNumber())
	binary.BigEndian.PutUint64(heightBytes[8:], height.GetRevisionHeight())
	return heightBytes
}

func heightFromBigEndian(bz []byte) (clienttypes.Height, error) {
	if len(bz) != heightLen {
		return clienttypes.Height{}, fmt.Errorf("invalid iteration key length %d, expected %d", len(bz), heightLen)
	}
	return clienttypes.NewHeight(binary.BigEndian.Uint64(bz), binary.BigEndian.Uint64(bz[8:])), nil
}

// ProcessedTimeKey returns the key under which the processed time will be stored in the client store.
func ProcessedTimeKey(height clienttypes.Height) []byte {
	return append(host.ConsensusStateKey(height), KeyProcessedTime...)
}

// ProcessedHeightKey returns the key under which the processed height will be stored in the client store.
func ProcessedHeightKey(height clienttypes.Height) []byte {
	return append(host.ConsensusStateKey(height), KeyProcessedHeight...)
}

// IterationKey returns the key under which the consensus state key will be stored.
// The iteration key is a BigEndian representation of the consensus state key to support efficient iteration.
func IterationKey(height clienttypes.Height) []byte {
	heightBytes := bigEndianHeightBytes(height)
	return append([]byte(KeyIterateConsensusStatePrefix), heightBytes...)
}
