package exported

import (
	"time"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	host "github.com/cosmos/ibc-lightctx/modules/core/24-host"
)

// ClientValidationContext is the read-only view of the trusted client state that a
// light client consumes while verifying client messages.
type ClientValidationContext interface {
	// ClientState returns the client state of clientID. ErrClientNotFound is
	// returned if the client was never initialised.
	ClientState(clientID string) (ClientState, error)

	// ConsensusState returns the consensus state stored under path. It fails with
	// ErrConsensusStateNotFound when the client exists but has no consensus state
	// at the requested height.
	ConsensusState(path host.ClientConsensusStatePath) (ConsensusState, error)

	// ClientUpdateMeta returns the host timestamp and host height recorded when the
	// consensus state at height was stored.
	ClientUpdateMeta(clientID string, height clienttypes.Height) (time.Time, clienttypes.Height, error)
}

// ExtClientValidationContext extends ClientValidationContext with the host facts and
// ordered consensus state lookups required for expiry and misbehaviour checks.
type ExtClientValidationContext interface {
	ClientValidationContext

	// HostTimestamp returns the current time of the host running the light client.
	HostTimestamp() (time.Time, error)

	// HostHeight returns the current height of the host running the light client.
	HostHeight() (clienttypes.Height, error)

	// ConsensusStateHeights returns every height with a stored consensus state, ascending.
	ConsensusStateHeights(clientID string) ([]clienttypes.Height, error)

	// NextConsensusState returns the consensus state at the smallest stored height
	// greater than or equal to height.
	NextConsensusState(clientID string, height clienttypes.Height) (ConsensusState, bool, error)

	// PrevConsensusState returns the consensus state at the largest stored height
	// less than or equal to height.
	PrevConsensusState(clientID string, height clienttypes.Height) (ConsensusState, bool, error)
}

// ClientExecutionContext is the read-write view of the trusted client state used
// by a light client when applying state transitions.
type ClientExecutionContext interface {
	ExtClientValidationContext

	// ClientStateMut returns the client state of clientID for modification. The
	// returned value is a copy; changes take effect through StoreClientState.
	ClientStateMut(clientID string) (ClientState, error)

	StoreClientState(path host.ClientStatePath, clientState ClientState) error
	StoreConsensusState(path host.ClientConsensusStatePath, consensusState ConsensusState) error
	DeleteConsensusState(path host.ClientConsensusStatePath) error

	StoreUpdateMeta(clientID string, height clienttypes.Height, hostTimestamp time.Time, hostHeight clienttypes.Height) error
	DeleteUpdateMeta(clientID string, height clienttypes.Height) error
}
