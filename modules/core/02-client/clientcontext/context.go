package clientcontext

import (
	"time"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/cosmos/ibc-lightctx/modules/core/02-client/truststore"
	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	host "github.com/cosmos/ibc-lightctx/modules/core/24-host"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
)

var _ exported.ClientExecutionContext = (*Context)(nil)

// Context exposes a trust store to light clients through the validation and
// execution interfaces of the exported package. It is the only writer of the
// store it wraps.
type Context struct {
	store    *truststore.Store
	hostInfo HostInfo
	logger   log.Logger
}

// NewContext returns a Context over store. A nil hostInfo defaults to a
// LocalHost at DefaultHostHeight and a nil logger discards all output.
func NewContext(store *truststore.Store, hostInfo HostInfo, logger log.Logger) *Context {
	if hostInfo == nil {
		hostInfo = NewLocalHost(DefaultHostHeight)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Context{
		store:    store,
		hostInfo: hostInfo,
		logger:   logger.With("module", "clientcontext"),
	}
}

// Logger returns the module logger.
func (c *Context) Logger() log.Logger {
	return c.logger
}

// ClientState implements ClientValidationContext.
func (c *Context) ClientState(clientID string) (exported.ClientState, error) {
	return c.store.GetClientState(clientID)
}

// ConsensusState implements ClientValidationContext.
func (c *Context) ConsensusState(path host.ClientConsensusStatePath) (exported.ConsensusState, error) {
	return c.store.GetConsensusState(path.ClientID, path.Leaf())
}

// ClientUpdateMeta implements ClientValidationContext.
func (c *Context) ClientUpdateMeta(clientID string, height clienttypes.Height) (time.Time, clienttypes.Height, error) {
	return c.store.GetUpdateMeta(clientID, height)
}

// HostTimestamp implements ExtClientValidationContext.
func (c *Context) HostTimestamp() (time.Time, error) {
	return c.hostInfo.Timestamp()
}

// HostHeight implements ExtClientValidationContext.
func (c *Context) HostHeight() (clienttypes.Height, error) {
	return c.hostInfo.Height()
}

// ConsensusStateHeights implements ExtClientValidationContext.
func (c *Context) ConsensusStateHeights(clientID string) ([]clienttypes.Height, error) {
	return c.store.GetHeights(clientID)
}

// NextConsensusState implements ExtClientValidationContext.
func (c *Context) NextConsensusState(clientID string, height clienttypes.Height) (exported.ConsensusState, bool, error) {
	return c.store.GetAdjacentConsensusState(clientID, height, truststore.Next)
}

// PrevConsensusState implements ExtClientValidationContext.
func (c *Context) PrevConsensusState(clientID string, height clienttypes.Height) (exported.ConsensusState, bool, error) {
	return c.store.GetAdjacentConsensusState(clientID, height, truststore.Previous)
}

// ClientStateMut implements ClientExecutionContext. Client states are values:
// the result is replaced wholesale through StoreClientState or UpdateClientState.
func (c *Context) ClientStateMut(clientID string) (exported.ClientState, error) {
	return c.store.GetClientState(clientID)
}

// UpdateClientState replaces the client state of clientID with the result of
// fn in a single transaction.
func (c *Context) UpdateClientState(clientID string, fn func(exported.ClientState) (exported.ClientState, error)) error {
	if err := c.store.Update(clientID, fn); err != nil {
		return err
	}
	c.logger.Debug("client state updated", "client-id", clientID)
	return nil
}

// StoreClientState implements ClientExecutionContext.
func (c *Context) StoreClientState(path host.ClientStatePath, clientState exported.ClientState) error {
	if err := c.store.SetClientState(path.ClientID, clientState); err != nil {
		return err
	}
	c.logger.Debug("client state stored", "client-id", path.ClientID, "height", clientState.GetLatestHeight().String())
	return nil
}

// StoreConsensusState implements ClientExecutionContext.
func (c *Context) StoreConsensusState(path host.ClientConsensusStatePath, consensusState exported.ConsensusState) error {
	if err := c.store.SetConsensusState(path.ClientID, path.Leaf(), consensusState); err != nil {
		return err
	}
	c.logger.Debug("consensus state stored", "client-id", path.ClientID, "height", path.Leaf().String())
	return nil
}

// DeleteConsensusState implements ClientExecutionContext. The update metadata
// of the height is removed together with the consensus state.
func (c *Context) DeleteConsensusState(path host.ClientConsensusStatePath) error {
	if err := c.store.DeleteConsensusState(path.ClientID, path.Leaf()); err != nil {
		return err
	}
	c.logger.Debug("consensus state deleted", "client-id", path.ClientID, "height", path.Leaf().String())
	return nil
}

// StoreUpdateMeta implements ClientExecutionContext.
func (c *Context) StoreUpdateMeta(clientID string, height clienttypes.Height, hostTimestamp time.Time, hostHeight clienttypes.Height) error {
	return c.store.SetUpdateMeta(clientID, height, hostTimestamp, hostHeight)
}

// DeleteUpdateMeta implements ClientExecutionContext.
func (c *Context) DeleteUpdateMeta(clientID string, height clienttypes.Height) error {
	return c.store.DeleteUpdateMeta(clientID, height)
}
