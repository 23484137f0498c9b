package tendermint

import (
	"bytes"
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	tmbytes "github.com/tendermint/tendermint/libs/bytes"
	tmtypes "github.com/tendermint/tendermint/types"
	"gopkg.in/yaml.v2"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/ibc-lightctx/modules/core/23-commitment/types"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
)

var _ exported.ConsensusState = (*ConsensusState)(nil)

// ConsensusState defines the consensus state from Tendermint.
type ConsensusState struct {
	// timestamp that corresponds to the block height in which the ConsensusState
	// was stored.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	// commitment root (i.e app hash)
	Root               commitmenttypes.MerkleRoot `json:"root" yaml:"root"`
	NextValidatorsHash tmbytes.HexBytes           `json:"next_validators_hash" yaml:"next_validators_hash"`
}

// NewConsensusState creates a new ConsensusState instance.
func NewConsensusState(
	timestamp time.Time, root commitmenttypes.MerkleRoot, nextValsHash tmbytes.HexBytes,
) *ConsensusState {
	return &ConsensusState{
		Timestamp:          timestamp,
		Root:               root,
		NextValidatorsHash: nextValsHash,
	}
}

// ClientType returns Tendermint
func (ConsensusState) ClientType() string {
	return exported.Tendermint
}

// GetRoot returns the commitment Root for the specific
func (cs ConsensusState) GetRoot() exported.Root {
	return cs.Root
}

// GetTimestamp returns block time in nanoseconds of the header that created consensus state
func (cs ConsensusState) GetTimestamp() uint64 {
	return uint64(cs.Timestamp.UnixNano())
}

// String returns the consensus state encoded as yaml.
func (cs ConsensusState) String() string {
	out, _ := yaml.Marshal(cs)
	return string(out)
}

// Equal reports whether both consensus states commit to the same root, time
// and next validator set. Timestamps are compared as instants.
func (cs ConsensusState) Equal(other *ConsensusState) bool {
	if other == nil {
		return false
	}
	return cs.Timestamp.Equal(other.Timestamp) &&
		bytes.Equal(cs.Root.GetHash(), other.Root.GetHash()) &&
		bytes.Equal(cs.NextValidatorsHash, other.NextValidatorsHash)
}

// ValidateBasic defines a basic validation for the tendermint consensus state.
// NOTE: ProcessedTimestamp may be zero if this is an initial consensus state passed in by relayer
// as opposed to a consensus state constructed by the chain.
func (cs ConsensusState) ValidateBasic() error {
	if cs.Root.Empty() {
		return sdkerrors.Wrap(clienttypes.ErrInvalidConsensus, "root cannot be empty")
	}
	if err := tmtypes.ValidateHash(cs.NextValidatorsHash); err != nil {
		return sdkerrors.Wrap(err, "next validators hash is invalid")
	}
	if cs.Timestamp.Unix() <= 0 {
		return sdkerrors.Wrap(clienttypes.ErrInvalidConsensus, "timestamp must be a positive Unix time")
	}
	return nil
}
