package ibctesting

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/cosmos/ibc-lightctx/modules/core/02-client/clientcontext"
	"github.com/cosmos/ibc-lightctx/modules/core/02-client/truststore"
	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	ibctm "github.com/cosmos/ibc-lightctx/modules/light-clients/07-tendermint"
)

// Endpoint is a tendermint light client of a TestChain. The client state lives in
// an in-memory trust store and the host clock follows the chain time.
type Endpoint struct {
	TB testing.TB

	Chain        *TestChain
	ClientID     string
	ClientConfig *TendermintConfig

	Host    *TestHost
	Store   *truststore.Store
	Context *clientcontext.Context
	Module  *ibctm.LightClientModule
}

// NewEndpoint constructs a new endpoint tracking chain under FirstClientID. The
// client is not created until CreateClient is called.
func NewEndpoint(tb testing.TB, chain *TestChain) *Endpoint {
	logger := log.TestingLogger()
	host := NewTestHost(chain.CurrentTime)
	store := truststore.NewMemStore(ibctm.Codec{})
	ctx := clientcontext.NewContext(store, host, logger)

	return &Endpoint{
		TB:           tb,
		Chain:        chain,
		ClientID:     FirstClientID,
		ClientConfig: NewTendermintConfig(),
		Host:         host,
		Store:        store,
		Context:      ctx,
		Module:       ibctm.NewLightClientModule(ctx, logger),
	}
}

// NewDefaultEndpoint creates a chain with a single validator and returns an
// endpoint tracking it.
func NewDefaultEndpoint(tb testing.TB) *Endpoint {
	chain := NewTestChain(tb, DefaultChainID, 1, DefaultTime())
	return NewEndpoint(tb, chain)
}

// CreateClient commits blocks on the chain until DefaultLatestHeight is reached and
// initializes the client from the last header.
func (endpoint *Endpoint) CreateClient() error {
	for endpoint.Chain.LastHeight().LT(DefaultLatestHeight) {
		endpoint.Chain.NextBlock()
	}
	endpoint.syncHost()

	clientState := endpoint.ClientConfig.ClientState(endpoint.Chain.ChainID, endpoint.Chain.LastHeight())
	return endpoint.Module.Initialize(endpoint.ClientID, clientState, endpoint.Chain.ConsensusState())
}

// UpdateClient produces a new block on the chain and updates the client to it,
// trusting the latest height of the client.
func (endpoint *Endpoint) UpdateClient() error {
	endpoint.Chain.NextBlock()

	header, err := endpoint.Chain.ConstructUpdateTMClientHeader(endpoint.Module.LatestHeight(endpoint.ClientID))
	if err != nil {
		return err
	}
	endpoint.syncHost()

	_, err = endpoint.Module.UpdateClient(endpoint.ClientID, header)
	return err
}

// GetClientState returns the stored tendermint client state.
func (endpoint *Endpoint) GetClientState() *ibctm.ClientState {
	clientState, err := endpoint.Store.GetClientState(endpoint.ClientID)
	require.NoError(endpoint.TB, err)

	tmClientState, ok := clientState.(*ibctm.ClientState)
	require.True(endpoint.TB, ok)
	return tmClientState
}

// SetClientState replaces the stored client state.
func (endpoint *Endpoint) SetClientState(clientState *ibctm.ClientState) {
	require.NoError(endpoint.TB, endpoint.Store.SetClientState(endpoint.ClientID, clientState))
}

// GetConsensusState returns the stored tendermint consensus state at height.
func (endpoint *Endpoint) GetConsensusState(height clienttypes.Height) (*ibctm.ConsensusState, error) {
	consensusState, err := endpoint.Store.GetConsensusState(endpoint.ClientID, height)
	if err != nil {
		return nil, err
	}

	tmConsensusState, ok := consensusState.(*ibctm.ConsensusState)
	require.True(endpoint.TB, ok)
	return tmConsensusState, nil
}

// syncHost moves the host clock to the chain time and the host forward by one block.
func (endpoint *Endpoint) syncHost() {
	endpoint.Host.SetTime(endpoint.Chain.CurrentTime)
	endpoint.Host.IncrementHeight(1)
}
