package mock

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	tmjson "github.com/tendermint/tendermint/libs/json"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
)

// Codec encodes the mock client and consensus states as JSON.
type Codec struct{}

func (Codec) MarshalClientState(clientState exported.ClientState) ([]byte, error) {
	cs, ok := clientState.(*ClientState)
	if !ok {
		return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidClientType, "expected %T, got %T", &ClientState{}, clientState)
	}
	return tmjson.Marshal(cs)
}

func (Codec) UnmarshalClientState(bz []byte) (exported.ClientState, error) {
	var cs ClientState
	if err := tmjson.Unmarshal(bz, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}

func (Codec) MarshalConsensusState(consensusState exported.ConsensusState) ([]byte, error) {
	cs, ok := consensusState.(*ConsensusState)
	if !ok {
		return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidConsensus, "expected %T, got %T", &ConsensusState{}, consensusState)
	}
	return tmjson.Marshal(cs)
}

func (Codec) UnmarshalConsensusState(bz []byte) (exported.ConsensusState, error) {
	var cs ConsensusState
	if err := tmjson.Unmarshal(bz, &cs); err != nil {
		return nil, err
	}
	return &cs, nil
}
