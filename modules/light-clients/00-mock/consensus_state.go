package mock

import (
	commitmenttypes "github.com/cosmos/ibc-lightctx/modules/core/23-commitment/types"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
)

var _ exported.ConsensusState = (*ConsensusState)(nil)

// ConsensusState is the mock consensus state. Its root is an arbitrary hash.
type ConsensusState struct {
	Timestamp uint64                     `json:"timestamp"`
	Root      commitmenttypes.MerkleRoot `json:"root"`
}

func (m *ConsensusState) ClientType() string {
	return ModuleName
}

func (m *ConsensusState) GetRoot() exported.Root {
	return m.Root
}

func (m *ConsensusState) GetTimestamp() uint64 {
	return m.Timestamp
}

func (m *ConsensusState) ValidateBasic() error {
	return nil
}
