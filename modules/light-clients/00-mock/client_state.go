package mock

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
)

// ModuleName is the client type of the mock light client.
const ModuleName = "00-mock"

var _ exported.ClientState = (*ClientState)(nil)

// ClientState is a light client state that trusts every header it is given.
type ClientState struct {
	LatestHeight clienttypes.Height `json:"latest_height"`
	Frozen       bool               `json:"frozen"`
}

// NewClientState returns a mock client state at the given height.
func NewClientState(height clienttypes.Height) *ClientState {
	return &ClientState{LatestHeight: height}
}

func (cs *ClientState) ClientType() string {
	return ModuleName
}

func (cs *ClientState) GetLatestHeight() clienttypes.Height {
	return cs.LatestHeight
}

func (cs *ClientState) Validate() error {
	if cs.LatestHeight.IsZero() {
		return sdkerrors.Wrap(clienttypes.ErrInvalidHeight, "latest height cannot be zero")
	}
	return nil
}
