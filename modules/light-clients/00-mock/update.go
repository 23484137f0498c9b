package mock

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	host "github.com/cosmos/ibc-lightctx/modules/core/24-host"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
)

// ErrInvalidClientMsg is returned for client messages that are not a MockHeader.
var ErrInvalidClientMsg = sdkerrors.Register(ModuleName, 2, "invalid client message")

// VerifyClientMessage checks if the clientMsg is the correct type and verifies the message
func VerifyClientMessage(clientMsg exported.ClientMessage) error {
	_, ok := clientMsg.(*MockHeader)
	if !ok {
		return sdkerrors.Wrapf(ErrInvalidClientMsg, "invalid client message type %T", clientMsg)
	}

	return nil
}

// UpdateState moves the client of clientID to the header height and stores a
// consensus state with the header timestamp, recording host metadata.
func UpdateState(ctx exported.ClientExecutionContext, clientID string, clientMsg exported.ClientMessage) ([]clienttypes.Height, error) {
	mockHeader, ok := clientMsg.(*MockHeader)
	if !ok {
		return nil, sdkerrors.Wrapf(ErrInvalidClientMsg, "invalid client message type %T", clientMsg)
	}

	clientState, err := ctx.ClientStateMut(clientID)
	if err != nil {
		return nil, err
	}
	cs, ok := clientState.(*ClientState)
	if !ok {
		return nil, sdkerrors.Wrapf(clienttypes.ErrInvalidClientType, "expected %T, got %T", &ClientState{}, clientState)
	}

	hostTime, err := ctx.HostTimestamp()
	if err != nil {
		return nil, err
	}
	hostHeight, err := ctx.HostHeight()
	if err != nil {
		return nil, err
	}

	updated := *cs
	if mockHeader.Height.GT(updated.LatestHeight) {
		updated.LatestHeight = mockHeader.Height
	}

	consensusState := &ConsensusState{
		Timestamp: mockHeader.Timestamp,
	}

	if err := ctx.StoreConsensusState(host.NewClientConsensusStatePath(clientID, mockHeader.Height), consensusState); err != nil {
		return nil, err
	}
	if err := ctx.StoreUpdateMeta(clientID, mockHeader.Height, hostTime, hostHeight); err != nil {
		return nil, err
	}
	if err := ctx.StoreClientState(host.NewClientStatePath(clientID), &updated); err != nil {
		return nil, err
	}

	return []clienttypes.Height{mockHeader.Height}, nil
}
