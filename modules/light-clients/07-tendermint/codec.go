package tendermint

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	tmjson "github.com/tendermint/tendermint/libs/json"

	"github.com/cosmos/ibc-lightctx/modules/core/02-client/truststore"
	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
)

var _ truststore.Codec = Codec{}

// Codec encodes tendermint client states, consensus states and client messages
// with the tendermint JSON encoding, which is also used by the tendermint RPC.
type Codec struct{}

// MarshalClientState implements truststore.Codec.
func (Codec) MarshalClientState(clientState exported.ClientState) ([]byte, error) {
	cs, ok := clientState.(*ClientState)
	if !ok {
		return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidClientType, "expected %T, got %T", &ClientState{}, clientState)
	}
	return tmjson.Marshal(cs)
}

// UnmarshalClientState implements truststore.Codec.
func (Codec) UnmarshalClientState(bz []byte) (exported.ClientState, error) {
	var clientState ClientState
	if err := tmjson.Unmarshal(bz, &clientState); err != nil {
		return nil, sdkerrors.Wrap(clienttypes.ErrFailedClientStateCodec, err.Error())
	}
	return &clientState, nil
}

// MarshalConsensusState implements truststore.Codec.
func (Codec) MarshalConsensusState(consensusState exported.ConsensusState) ([]byte, error) {
	cs, ok := consensusState.(*ConsensusState)
	if !ok {
		return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidConsensus, "expected %T, got %T", &ConsensusState{}, consensusState)
	}
	return tmjson.Marshal(cs)
}

// UnmarshalConsensusState implements truststore.Codec.
func (Codec) UnmarshalConsensusState(bz []byte) (exported.ConsensusState, error) {
	var consensusState ConsensusState
	if err := tmjson.Unmarshal(bz, &consensusState); err != nil {
		return nil, sdkerrors.Wrap(clienttypes.ErrFailedConsensusStateCodec, err.Error())
	}
	return &consensusState, nil
}

// MarshalHeader encodes a header as indented JSON.
func (Codec) MarshalHeader(header *Header) ([]byte, error) {
	return tmjson.MarshalIndent(header, "", "  ")
}

// UnmarshalHeader decodes a header encoded by MarshalHeader.
func (Codec) UnmarshalHeader(bz []byte) (*Header, error) {
	var header Header
	if err := tmjson.Unmarshal(bz, &header); err != nil {
		return nil, sdkerrors.Wrap(clienttypes.ErrInvalidHeader, err.Error())
	}
	return &header, nil
}

// MarshalMisbehaviour encodes misbehaviour as indented JSON.
func (Codec) MarshalMisbehaviour(misbehaviour *Misbehaviour) ([]byte, error) {
	return tmjson.MarshalIndent(misbehaviour, "", "  ")
}

// UnmarshalMisbehaviour decodes misbehaviour encoded by MarshalMisbehaviour.
func (Codec) UnmarshalMisbehaviour(bz []byte) (*Misbehaviour, error) {
	var misbehaviour Misbehaviour
	if err := tmjson.Unmarshal(bz, &misbehaviour); err != nil {
		return nil, sdkerrors.Wrap(clienttypes.ErrInvalidMisbehaviour, err.Error())
	}
	return &misbehaviour, nil
}
