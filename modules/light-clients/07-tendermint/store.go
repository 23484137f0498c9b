package tendermint

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	host "github.com/cosmos/ibc-lightctx/modules/core/24-host"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
)

// getClientState retrieves the client state of clientID from the context and
// asserts it is a tendermint client state.
func getClientState(ctx exported.ClientValidationContext, clientID string) (*ClientState, error) {
	clientStateI, err := ctx.ClientState(clientID)
	if err != nil {
		return nil, err
	}

	clientState, ok := clientStateI.(*ClientState)
	if !ok {
		return nil, sdkerrors.Wrapf(
			clienttypes.ErrInvalidClientType,
			"invalid client type %T, expected %T", clientStateI, &ClientState{},
		)
	}
	return clientState, nil
}

// GetConsensusState retrieves the consensus state of clientID at height from the
// context. An error is returned if the consensus state does not exist.
func GetConsensusState(ctx exported.ClientValidationContext, clientID string, height clienttypes.Height) (*ConsensusState, error) {
	consensusStateI, err := ctx.ConsensusState(host.NewClientConsensusStatePath(clientID, height))
	if err != nil {
		return nil, err
	}

	return asConsensusState(consensusStateI)
}

// GetPreviousConsensusState returns the consensus state at the highest height
// lower than or equal to the given height.
func GetPreviousConsensusState(ctx exported.ExtClientValidationContext, clientID string, height clienttypes.Height) (*ConsensusState, bool, error) {
	consensusStateI, found, err := ctx.PrevConsensusState(clientID, height)
	if err != nil || !found {
		return nil, false, err
	}

	consensusState, err := asConsensusState(consensusStateI)
	if err != nil {
		return nil, false, err
	}
	return consensusState, true, nil
}

// GetNextConsensusState returns the consensus state at the lowest height
// greater than or equal to the given height.
func GetNextConsensusState(ctx exported.ExtClientValidationContext, clientID string, height clienttypes.Height) (*ConsensusState, bool, error) {
	consensusStateI, found, err := ctx.NextConsensusState(clientID, height)
	if err != nil || !found {
		return nil, false, err
	}

	consensusState, err := asConsensusState(consensusStateI)
	if err != nil {
		return nil, false, err
	}
	return consensusState, true, nil
}

func asConsensusState(consensusStateI exported.ConsensusState) (*ConsensusState, error) {
	consensusState, ok := consensusStateI.(*ConsensusState)
	if !ok {
		return nil, sdkerrors.Wrapf(
			clienttypes.ErrInvalidConsensus,
			"invalid consensus type %T, expected %T", consensusStateI, &ConsensusState{},
		)
	}
	return consensusState, nil
}

// setConsensusMetadata records the host time as processed time and the host
// height as processed height of the consensus state at height.
func setConsensusMetadata(ctx exported.ClientExecutionContext, clientID string, height clienttypes.Height) error {
	hostTime, err := ctx.HostTimestamp()
	if err != nil {
		return err
	}
	hostHeight, err := ctx.HostHeight()
	if err != nil {
		return err
	}
	return ctx.StoreUpdateMeta(clientID, height, hostTime, hostHeight)
}

// deleteConsensusState removes the consensus state of clientID at height
// together with its metadata.
func deleteConsensusState(ctx exported.ClientExecutionContext, clientID string, height clienttypes.Height) error {
	if err := ctx.DeleteConsensusState(host.NewClientConsensusStatePath(clientID, height)); err != nil {
		return err
	}
	return ctx.DeleteUpdateMeta(clientID, height)
}
