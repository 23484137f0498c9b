package tendermint

import (
	"reflect"
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	host "github.com/cosmos/ibc-lightctx/modules/core/24-host"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
)

// CheckSubstituteAndUpdateState will try to update the client with the state of the
// substitute.
//
// The following must always be true:
//	- The substitute client is the same type as the subject client
//	- The subject and substitute client states match in all parameters (expect frozen height, latest height, and chain-id)
//	- The substitute client is Active
//
// A Frozen subject is only recovered if AllowUpdateAfterMisbehaviour is set, in
// which case it is unfrozen by resetting the FrozenHeight to the zero Height. An
// Expired subject is only recovered if AllowUpdateAfterExpiry is set. Active
// subjects cannot be recovered.
func (cs ClientState) CheckSubstituteAndUpdateState(
	ctx exported.ClientExecutionContext, subjectClientID, substituteClientID string,
	substituteClient exported.ClientState,
) error {
	substituteClientState, ok := substituteClient.(*ClientState)
	if !ok {
		return sdkerrors.Wrapf(
			clienttypes.ErrInvalidClient, "expected type %T, got %T", &ClientState{}, substituteClient,
		)
	}

	if !IsMatchingClientState(cs, *substituteClientState) {
		return sdkerrors.Wrap(clienttypes.ErrInvalidSubstitute, "subject client state does not match substitute client state")
	}

	if status := substituteClientState.Status(ctx, substituteClientID); status != exported.Active {
		return sdkerrors.Wrapf(clienttypes.ErrClientNotActive, "substitute client is not Active, status is %s", status)
	}

	switch cs.Status(ctx, subjectClientID) {

	case exported.Frozen:
		if !cs.AllowUpdateAfterMisbehaviour {
			return sdkerrors.Wrap(clienttypes.ErrInvalidSubstitute, "client is not allowed to be unfrozen")
		}

		// unfreeze the client
		cs.FrozenHeight = clienttypes.ZeroHeight()

	case exported.Expired:
		if !cs.AllowUpdateAfterExpiry {
			return sdkerrors.Wrap(clienttypes.ErrInvalidSubstitute, "client is not allowed to be unexpired")
		}

	default:
		return sdkerrors.Wrap(clienttypes.ErrInvalidSubstitute, "client cannot be updated with proposal")
	}

	// copy consensus states and processed time from substitute to subject
	// starting from initial height and ending on the latest height (inclusive)
	height := substituteClientState.GetLatestHeight()

	consensusState, err := GetConsensusState(ctx, substituteClientID, height)
	if err != nil {
		return sdkerrors.Wrap(err, "unable to retrieve latest consensus state for substitute client")
	}

	processedTime, processedHeight, err := ctx.ClientUpdateMeta(substituteClientID, height)
	if err != nil {
		return sdkerrors.Wrap(err, "unable to retrieve processed time for substitute client latest height")
	}

	if err := ctx.StoreConsensusState(host.NewClientConsensusStatePath(subjectClientID, height), consensusState); err != nil {
		return err
	}
	if err := ctx.StoreUpdateMeta(subjectClientID, height, processedTime, processedHeight); err != nil {
		return err
	}

	cs.LatestHeight = substituteClientState.LatestHeight
	cs.ChainId = substituteClientState.ChainId

	// no validation is necessary since the substitute is verified to be Active
	cs.TrustingPeriod = substituteClientState.TrustingPeriod

	return ctx.StoreClientState(host.NewClientStatePath(subjectClientID), &cs)
}

// IsMatchingClientState returns true if all the client state parameters match
// except for frozen height, latest height, trusting period and chain-id.
func IsMatchingClientState(subject, substitute ClientState) bool {
	// zero out parameters which do not need to match
	subject.LatestHeight = clienttypes.ZeroHeight()
	subject.FrozenHeight = clienttypes.ZeroHeight()
	subject.TrustingPeriod = time.Duration(0)
	substitute.LatestHeight = clienttypes.ZeroHeight()
	substitute.FrozenHeight = clienttypes.ZeroHeight()
	substitute.TrustingPeriod = time.Duration(0)
	subject.ChainId = ""
	substitute.ChainId = ""

	return reflect.DeepEqual(subject, substitute)
}
