package mock

import (
	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
)

var _ exported.ClientMessage = (*MockHeader)(nil)

// MockHeader moves a mock client to Height.
type MockHeader struct {
	Height    clienttypes.Height
	Timestamp uint64
}

func (m *MockHeader) ClientType() string {
	return ModuleName
}

func (m *MockHeader) ValidateBasic() error {
	return nil
}
