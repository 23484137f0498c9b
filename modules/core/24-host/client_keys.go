package host

import (
	"fmt"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
)

// KeyClientStorePrefix defines the store key prefix for IBC clients
var KeyClientStorePrefix = []byte("clients")

const (
	KeyClientState          = "clientState"
	KeyConsensusStatePrefix = "consensusStates"
)

// FullClientPath returns the full path of a specific client path in the format:
// "clients/{clientID}/{path}" as a string.
func FullClientPath(clientID string, path string) string {
	return fmt.Sprintf("%s/%s/%s", KeyClientStorePrefix, clientID, path)
}

// ClientStorePrefix returns the prefix under which every key of a single client
// is stored: "clients/{clientID}/".
func ClientStorePrefix(clientID string) []byte {
	return []byte(fmt.Sprintf("%s/%s/", KeyClientStorePrefix, clientID))
}

// ICS02
// The following paths are the keys to the store as defined in https://github.com/cosmos/ibc/tree/master/spec/core/ics-002-client-semantics#path-space

// FullClientStatePath takes a client identifier and returns a Path under which to store a
// particular client state
func FullClientStatePath(clientID string) string {
	return FullClientPath(clientID, KeyClientState)
}

// ClientStateKey returns a store key under which a particular client state is stored
// in a client prefixed store
func ClientStateKey() []byte {
	return []byte(KeyClientState)
}

// FullConsensusStatePath takes a client identifier and returns a Path under which to
// store the consensus state of a client.
func FullConsensusStatePath(clientID string, height clienttypes.Height) string {
	return FullClientPath(clientID, ConsensusStatePath(height))
}

// ConsensusStatePath returns the suffix store key for the consensus state at a
// particular height stored in a client prefixed store.
func ConsensusStatePath(height clienttypes.Height) string {
	return fmt.Sprintf("%s/%s", KeyConsensusStatePrefix, height)
}

// ConsensusStateKey returns the store key for a the consensus state of a particular
// client stored in a client prefixed store.
func ConsensusStateKey(height clienttypes.Height) []byte {
	return []byte(ConsensusStatePath(height))
}

// ClientStatePath identifies the client state of a single client.
type ClientStatePath struct {
	ClientID string
}

// NewClientStatePath returns the path of the client state of clientID.
func NewClientStatePath(clientID string) ClientStatePath {
	return ClientStatePath{ClientID: clientID}
}

// String returns the full store path of the client state.
func (p ClientStatePath) String() string {
	return FullClientStatePath(p.ClientID)
}

// ClientConsensusStatePath identifies the consensus state of a client at a height.
type ClientConsensusStatePath struct {
	ClientID       string
	RevisionNumber uint64
	RevisionHeight uint64
}

// NewClientConsensusStatePath returns the path of the consensus state of clientID at height.
func NewClientConsensusStatePath(clientID string, height clienttypes.Height) ClientConsensusStatePath {
	return ClientConsensusStatePath{
		ClientID:       clientID,
		RevisionNumber: height.RevisionNumber,
		RevisionHeight: height.RevisionHeight,
	}
}

// Leaf returns the height the path points at.
func (p ClientConsensusStatePath) Leaf() clienttypes.Height {
	return clienttypes.NewHeight(p.RevisionNumber, p.RevisionHeight)
}

// String returns the full store path of the consensus state.
func (p ClientConsensusStatePath) String() string {
	return FullConsensusStatePath(p.ClientID, p.Leaf())
}
