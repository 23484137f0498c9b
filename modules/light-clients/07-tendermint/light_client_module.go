package tendermint

import (
	"sync"

	metrics "github.com/armon/go-metrics"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/tendermint/tendermint/libs/log"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/ibc-lightctx/modules/core/23-commitment/types"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
	ibcmetrics "github.com/cosmos/ibc-lightctx/modules/core/metrics"
)

// LightClientModule drives the 07-tendermint client over an execution context.
// Every state transition runs under a single lock so that a header verified
// against the trusted state is applied to that same state.
type LightClientModule struct {
	mtx    sync.Mutex
	ctx    exported.ClientExecutionContext
	logger log.Logger
}

// NewLightClientModule creates and returns a new 07-tendermint LightClientModule.
// A nil logger discards all output.
func NewLightClientModule(ctx exported.ClientExecutionContext, logger log.Logger) *LightClientModule {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &LightClientModule{
		ctx:    ctx,
		logger: logger.With("module", ModuleName),
	}
}

// Logger returns the module logger.
func (l *LightClientModule) Logger() log.Logger {
	return l.logger
}

// Initialize performs basic validation of the provided client and consensus states and
// calls into the clientState.initialize method.
func (l *LightClientModule) Initialize(clientID string, clientState *ClientState, consensusState *ConsensusState) error {
	if clientState == nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidClient, "client state cannot be nil")
	}
	if err := clientState.Validate(); err != nil {
		return err
	}
	if consensusState == nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidConsensus, "consensus state cannot be nil")
	}
	if err := consensusState.ValidateBasic(); err != nil {
		return err
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	if err := clientState.initialize(l.ctx, clientID, consensusState); err != nil {
		return err
	}

	l.logger.Info("client created at height", "client-id", clientID, "height", clientState.GetLatestHeight().String())

	defer telemetry.IncrCounterWithLabels(
		[]string{"ibc", "client", "create"},
		1,
		[]metrics.Label{telemetry.NewLabel(ibcmetrics.LabelClientType, exported.Tendermint)},
	)

	return nil
}

// UpdateClient verifies the client message against the trusted state and applies it.
// Misbehaviour freezes the client. Otherwise the consensus heights stored by the
// update are returned.
func (l *LightClientModule) UpdateClient(clientID string, clientMsg exported.ClientMessage) ([]clienttypes.Height, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if status := l.Status(clientID); status != exported.Active {
		return nil, sdkerrors.Wrapf(clienttypes.ErrClientNotActive, "cannot update client (%s) with status %s", clientID, status)
	}

	if err := l.VerifyClientMessage(clientID, clientMsg); err != nil {
		return nil, err
	}

	foundMisbehaviour, err := l.CheckForMisbehaviour(clientID, clientMsg)
	if err != nil {
		return nil, err
	}
	if foundMisbehaviour {
		if err := l.UpdateStateOnMisbehaviour(clientID, clientMsg); err != nil {
			return nil, err
		}

		l.logger.Info("client frozen due to misbehaviour", "client-id", clientID)

		defer telemetry.IncrCounterWithLabels(
			[]string{"ibc", "client", "misbehaviour"},
			1,
			[]metrics.Label{
				telemetry.NewLabel(ibcmetrics.LabelClientType, exported.Tendermint),
				telemetry.NewLabel(ibcmetrics.LabelClientID, clientID),
				telemetry.NewLabel(ibcmetrics.LabelMsgType, "update"),
			},
		)

		return nil, nil
	}

	consensusHeights, err := l.UpdateState(clientID, clientMsg)
	if err != nil {
		return nil, err
	}

	l.logger.Info("client state updated", "client-id", clientID, "heights", consensusHeights)

	defer telemetry.IncrCounterWithLabels(
		[]string{"ibc", "client", "update"},
		1,
		[]metrics.Label{
			telemetry.NewLabel(ibcmetrics.LabelClientType, exported.Tendermint),
			telemetry.NewLabel(ibcmetrics.LabelClientID, clientID),
			telemetry.NewLabel(ibcmetrics.LabelUpdateType, "msg"),
		},
	)

	return consensusHeights, nil
}

// VerifyClientMessage obtains the client state associated with the client identifier and calls into the clientState.VerifyClientMessage method.
func (l *LightClientModule) VerifyClientMessage(clientID string, clientMsg exported.ClientMessage) error {
	clientState, err := getClientState(l.ctx, clientID)
	if err != nil {
		return err
	}

	return clientState.VerifyClientMessage(l.ctx, clientID, clientMsg)
}

// CheckForMisbehaviour obtains the client state associated with the client identifier and calls into the clientState.CheckForMisbehaviour method.
func (l *LightClientModule) CheckForMisbehaviour(clientID string, clientMsg exported.ClientMessage) (bool, error) {
	clientState, err := getClientState(l.ctx, clientID)
	if err != nil {
		return false, err
	}

	return clientState.CheckForMisbehaviour(l.ctx, clientID, clientMsg)
}

// UpdateStateOnMisbehaviour obtains the client state associated with the client identifier and calls into the clientState.UpdateStateOnMisbehaviour method.
func (l *LightClientModule) UpdateStateOnMisbehaviour(clientID string, clientMsg exported.ClientMessage) error {
	clientState, err := getClientState(l.ctx, clientID)
	if err != nil {
		return err
	}

	return clientState.UpdateStateOnMisbehaviour(l.ctx, clientID, clientMsg)
}

// UpdateState obtains the client state associated with the client identifier and calls into the clientState.UpdateState method.
func (l *LightClientModule) UpdateState(clientID string, clientMsg exported.ClientMessage) ([]clienttypes.Height, error) {
	clientState, err := getClientState(l.ctx, clientID)
	if err != nil {
		return nil, err
	}

	return clientState.UpdateState(l.ctx, clientID, clientMsg)
}

// VerifyMembership obtains the client state associated with the client identifier and calls into the clientState.verifyMembership method.
func (l *LightClientModule) VerifyMembership(
	clientID string,
	height clienttypes.Height,
	delayTimePeriod uint64,
	delayBlockPeriod uint64,
	proof commitmenttypes.MerkleProof,
	path exported.Path,
	value []byte,
) error {
	clientState, err := getClientState(l.ctx, clientID)
	if err != nil {
		return err
	}

	return clientState.verifyMembership(l.ctx, clientID, height, delayTimePeriod, delayBlockPeriod, proof, path, value)
}

// VerifyNonMembership obtains the client state associated with the client identifier and calls into the clientState.verifyNonMembership method.
func (l *LightClientModule) VerifyNonMembership(
	clientID string,
	height clienttypes.Height,
	delayTimePeriod uint64,
	delayBlockPeriod uint64,
	proof commitmenttypes.MerkleProof,
	path exported.Path,
) error {
	clientState, err := getClientState(l.ctx, clientID)
	if err != nil {
		return err
	}

	return clientState.verifyNonMembership(l.ctx, clientID, height, delayTimePeriod, delayBlockPeriod, proof, path)
}

// Status obtains the client state associated with the client identifier and calls into the clientState.Status method.
func (l *LightClientModule) Status(clientID string) exported.Status {
	clientState, err := getClientState(l.ctx, clientID)
	if err != nil {
		return exported.Unknown
	}

	return clientState.Status(l.ctx, clientID)
}

// LatestHeight returns the latest height for the client state for the given client identifier.
// If no client is present for the provided client identifier a zero value height is returned.
func (l *LightClientModule) LatestHeight(clientID string) clienttypes.Height {
	clientState, err := getClientState(l.ctx, clientID)
	if err != nil {
		return clienttypes.ZeroHeight()
	}

	return clientState.LatestHeight
}

// TimestampAtHeight obtains the client state associated with the client identifier and calls into the clientState.GetTimestampAtHeight method.
func (l *LightClientModule) TimestampAtHeight(clientID string, height clienttypes.Height) (uint64, error) {
	clientState, err := getClientState(l.ctx, clientID)
	if err != nil {
		return 0, err
	}

	return clientState.GetTimestampAtHeight(l.ctx, clientID, height)
}

// RecoverClient replaces the state of a frozen or expired subject client with the
// state of an active substitute client. The substitute must be a tendermint client
// at a height greater than the subject.
func (l *LightClientModule) RecoverClient(clientID, substituteClientID string) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if status := l.Status(clientID); status == exported.Active {
		return sdkerrors.Wrapf(clienttypes.ErrInvalidSubstitute, "cannot recover %s subject client", exported.Active)
	}

	clientState, err := getClientState(l.ctx, clientID)
	if err != nil {
		return err
	}

	substituteClient, err := getClientState(l.ctx, substituteClientID)
	if err != nil {
		return err
	}

	if clientState.LatestHeight.GTE(substituteClient.LatestHeight) {
		return sdkerrors.Wrapf(
			clienttypes.ErrInvalidHeight,
			"subject client state latest height is greater or equal to substitute client state latest height (%s >= %s)",
			clientState.LatestHeight, substituteClient.LatestHeight,
		)
	}

	if err := clientState.CheckSubstituteAndUpdateState(l.ctx, clientID, substituteClientID, substituteClient); err != nil {
		return err
	}

	l.logger.Info("client recovered", "client-id", clientID)

	defer telemetry.IncrCounterWithLabels(
		[]string{"ibc", "client", "update"},
		1,
		[]metrics.Label{
			telemetry.NewLabel(ibcmetrics.LabelClientType, exported.Tendermint),
			telemetry.NewLabel(ibcmetrics.LabelClientID, clientID),
			telemetry.NewLabel(ibcmetrics.LabelUpdateType, "recovery"),
		},
	)

	return nil
}
