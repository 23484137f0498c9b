package truststore

import (
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
)

// Codec (de)serialises the client and consensus states kept by a Store. The
// Store is agnostic to the concrete light client types, each client type
// supplies its own Codec.
type Codec interface {
	MarshalClientState(clientState exported.ClientState) ([]byte, error)
	UnmarshalClientState(bz []byte) (exported.ClientState, error)

	MarshalConsensusState(consensusState exported.ConsensusState) ([]byte, error)
	UnmarshalConsensusState(bz []byte) (exported.ConsensusState, error)
}
