package ibctesting

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/crypto/tmhash"
	tmtypes "github.com/tendermint/tendermint/types"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	ibctm "github.com/cosmos/ibc-lightctx/modules/light-clients/07-tendermint"
)

// TestChain is a counterparty tendermint chain simulated in memory. Each call to
// NextBlock produces a header signed by the current validator set.
type TestChain struct {
	TB testing.TB

	ChainID     string
	CurrentTime time.Time

	Vals     *tmtypes.ValidatorSet
	NextVals *tmtypes.ValidatorSet
	Signers  map[string]tmtypes.PrivValidator

	// AppHash is committed to by the next block. A nil AppHash commits to a
	// digest of the block height.
	AppHash []byte

	LastHeader *ibctm.Header

	nextValsAtHeight map[int64]*tmtypes.ValidatorSet
}

// NewTestChain initializes a chain with numValidators validators of equal power. The
// chain starts at height zero and time now.
func NewTestChain(tb testing.TB, chainID string, numValidators int, now time.Time) *TestChain {
	tb.Helper()
	require.Greater(tb, numValidators, 0)

	signers := make(map[string]tmtypes.PrivValidator, numValidators)
	validators := make([]*tmtypes.Validator, 0, numValidators)
	for i := 0; i < numValidators; i++ {
		privVal := tmtypes.NewMockPV()
		pubKey, err := privVal.GetPubKey()
		require.NoError(tb, err)

		val := tmtypes.NewValidator(pubKey, DefaultValidatorPower)
		validators = append(validators, val)
		signers[val.Address.String()] = privVal
	}

	valSet := tmtypes.NewValidatorSet(validators)

	return &TestChain{
		TB:               tb,
		ChainID:          chainID,
		CurrentTime:      now.UTC(),
		Vals:             valSet,
		NextVals:         valSet,
		Signers:          signers,
		nextValsAtHeight: make(map[int64]*tmtypes.ValidatorSet),
	}
}

// LastHeight returns the height of the last header, or the zero height if no
// block was produced yet.
func (chain *TestChain) LastHeight() clienttypes.Height {
	if chain.LastHeader == nil {
		return clienttypes.ZeroHeight()
	}
	return chain.LastHeader.GetHeight()
}

// NextBlock advances the chain time by TimeIncrement and produces the header of
// the next height with nil trusted fields. The next validator set becomes the
// validator set of the following block.
func (chain *TestChain) NextBlock() {
	height := int64(chain.LastHeight().RevisionHeight) + 1
	chain.CurrentTime = chain.CurrentTime.Add(TimeIncrement)

	chain.LastHeader = chain.CreateTMClientHeader(
		chain.ChainID, height, clienttypes.ZeroHeight(), chain.CurrentTime,
		chain.Vals, chain.NextVals, nil, chain.Signers,
	)
	chain.nextValsAtHeight[height] = chain.NextVals

	chain.Vals = chain.NextVals
	chain.AppHash = nil
}

// CommitNBlocks produces n blocks.
func (chain *TestChain) CommitNBlocks(n uint64) {
	for i := uint64(0); i < n; i++ {
		chain.NextBlock()
	}
}

// GetTrustedValidators returns the validator set committed to as next validators
// by the header at trustedHeight.
func (chain *TestChain) GetTrustedValidators(trustedHeight clienttypes.Height) (*tmtypes.ValidatorSet, bool) {
	vals, ok := chain.nextValsAtHeight[int64(trustedHeight.RevisionHeight)]
	return vals, ok
}

// ConstructUpdateTMClientHeader returns a copy of the last header with the trusted
// fields set for an update from trustedHeight.
func (chain *TestChain) ConstructUpdateTMClientHeader(trustedHeight clienttypes.Height) (*ibctm.Header, error) {
	require.NotNil(chain.TB, chain.LastHeader)
	require.False(chain.TB, trustedHeight.IsZero())

	trustedVals, ok := chain.GetTrustedValidators(trustedHeight)
	if !ok {
		return nil, fmt.Errorf("could not retrieve trusted validators at trustedHeight: %s", trustedHeight)
	}

	header := *chain.LastHeader
	header.TrustedHeight = trustedHeight
	header.TrustedValidators = trustedVals
	return &header, nil
}

// ConsensusState returns the consensus state committed to by the last header.
func (chain *TestChain) ConsensusState() *ibctm.ConsensusState {
	require.NotNil(chain.TB, chain.LastHeader)
	return chain.LastHeader.ConsensusState()
}

func (chain *TestChain) appHash(height int64) []byte {
	if chain.AppHash != nil {
		return chain.AppHash
	}
	return tmhash.Sum([]byte(fmt.Sprintf("app_hash_%d", height)))
}
