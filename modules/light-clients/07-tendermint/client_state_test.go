package tendermint_test

import (
	"errors"
	"time"

	ics23 "github.com/confio/ics23/go"

	"github.com/cosmos/ibc-lightctx/modules/core/02-client/clientcontext"
	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/ibc-lightctx/modules/core/23-commitment/types"
	host "github.com/cosmos/ibc-lightctx/modules/core/24-host"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
	ibctm "github.com/cosmos/ibc-lightctx/modules/light-clients/07-tendermint"
	ibctesting "github.com/cosmos/ibc-lightctx/testing"
)

const (
	// Do not change the length of these variables
	fiftyCharChainID    = "12345678901234567890123456789012345678901234567890"
	fiftyOneCharChainID = "123456789012345678901234567890123456789012345678901"
)

var errMetaUnreadable = errors.New("update metadata unreadable")

// unreadableMetaContext fails every update metadata read with errMetaUnreadable.
type unreadableMetaContext struct {
	*clientcontext.Context
}

func (unreadableMetaContext) ClientUpdateMeta(string, clienttypes.Height) (time.Time, clienttypes.Height, error) {
	return time.Time{}, clienttypes.Height{}, errMetaUnreadable
}

func (s *TendermintTestSuite) TestValidate() {
	testCases := []struct {
		name        string
		clientState *ibctm.ClientState
		expPass     bool
	}{
		{
			name:        "valid client",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     true,
		},
		{
			name:        "valid client with nil upgrade path",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs(), nil, false, false),
			expPass:     true,
		},
		{
			name:        "invalid chainID",
			clientState: ibctm.NewClientState("  ", ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     false,
		},
		{
			// NOTE: if this test fails, the code must account for the change in chainID length across tendermint versions!
			// Do not only fix the test, fix the code!
			// https://github.com/cosmos/ibc-go/issues/177
			name:        "valid chainID - chainID validation failed for chainID of length 50! ",
			clientState: ibctm.NewClientState(fiftyCharChainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     true,
		},
		{
			// NOTE: if this test fails, the code must account for the change in chainID length across tendermint versions!
			// Do not only fix the test, fix the code!
			// https://github.com/cosmos/ibc-go/issues/177
			name:        "invalid chainID - chainID validation did not fail for chainID of length 51! ",
			clientState: ibctm.NewClientState(fiftyOneCharChainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     false,
		},
		{
			name:        "invalid trust level",
			clientState: ibctm.NewClientState(chainID, ibctm.Fraction{Numerator: 0, Denominator: 1}, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     false,
		},
		{
			name:        "invalid zero trusting period",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, 0, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     false,
		},
		{
			name:        "invalid negative trusting period",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, -1, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     false,
		},
		{
			name:        "invalid zero unbonding period",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, 0, maxClockDrift, height, commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     false,
		},
		{
			name:        "invalid zero max clock drift",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, 0, height, commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     false,
		},
		{
			name:        "invalid revision number",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, clienttypes.NewHeight(1, 1), commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     false,
		},
		{
			name:        "valid revision number in chain id format",
			clientState: ibctm.NewClientState(chainIDRevision1, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, newClientHeight, commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     true,
		},
		{
			name:        "invalid revision number for chain id in revision format",
			clientState: ibctm.NewClientState(chainIDRevision0, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, newClientHeight, commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     false,
		},
		{
			name:        "chain id revision overflowing uint64 is revision 0",
			clientState: ibctm.NewClientState("ibc-99999999999999999999", ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     true,
		},
		{
			name:        "revision number for chain id with overflowing revision",
			clientState: ibctm.NewClientState("ibc-99999999999999999999", ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, newClientHeight, commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     false,
		},
		{
			name:        "invalid revision height",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, clienttypes.ZeroHeight(), commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     false,
		},
		{
			name:        "trusting period not less than unbonding period",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, ubdPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs(), upgradePath, false, false),
			expPass:     false,
		},
		{
			name:        "proof specs is nil",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, nil, upgradePath, false, false),
			expPass:     false,
		},
		{
			name:        "proof specs contains nil",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, []*ics23.ProofSpec{ics23.TendermintSpec, nil}, upgradePath, false, false),
			expPass:     false,
		},
		{
			name:        "invalid upgrade path",
			clientState: ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs(), invalidUpgradePath, false, false),
			expPass:     false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			err := tc.clientState.Validate()
			if tc.expPass {
				s.Require().NoError(err, tc.name)
			} else {
				s.Require().Error(err, tc.name)
			}
		})
	}
}

func (s *TendermintTestSuite) TestStatus() {
	testCases := []struct {
		name      string
		malleate  func()
		expStatus exported.Status
	}{
		{"client is active", func() {}, exported.Active},
		{"client is frozen", func() {
			clientState := s.endpoint.GetClientState()
			clientState.FrozenHeight = clienttypes.NewHeight(0, 1)
			s.endpoint.SetClientState(clientState)
		}, exported.Frozen},
		{"frozen takes precedence over expired", func() {
			clientState := s.endpoint.GetClientState()
			clientState.FrozenHeight = clienttypes.NewHeight(0, 1)
			s.endpoint.SetClientState(clientState)

			s.endpoint.Host.IncrementTime(ibctesting.TrustingPeriod)
		}, exported.Frozen},
		{"client status without consensus state", func() {
			clientState := s.endpoint.GetClientState()
			clientState.LatestHeight = clientState.LatestHeight.Increment()
			s.endpoint.SetClientState(clientState)
		}, exported.Expired},
		{"client status is expired", func() {
			s.endpoint.Host.IncrementTime(ibctesting.TrustingPeriod)
		}, exported.Expired},
		{"client is active just before the trusting period ends", func() {
			s.endpoint.Host.IncrementTime(ibctesting.TrustingPeriod - time.Nanosecond)
		}, exported.Active},
		{"host clock is unavailable", func() {
			s.endpoint.Host.SetTime(time.Time{})
		}, exported.Unknown},
		{"client does not exist", func() {
			s.endpoint.ClientID = ibctesting.SecondClientID
		}, exported.Unknown},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest()

			tc.malleate()

			status := s.endpoint.Module.Status(s.endpoint.ClientID)
			s.Require().Equal(tc.expStatus, status)
		})
	}
}

func (s *TendermintTestSuite) TestGetTimestampAtHeight() {
	var heightToQuery clienttypes.Height

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success", func() {}, nil,
		},
		{
			"failure: consensus state not found for height", func() {
				heightToQuery = heightToQuery.Increment()
			}, clienttypes.ErrConsensusStateNotFound,
		},
		{
			"failure: client does not exist", func() {
				s.endpoint.ClientID = ibctesting.SecondClientID
			}, clienttypes.ErrClientNotFound,
		},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest()
			heightToQuery = s.endpoint.GetClientState().LatestHeight

			tc.malleate()

			timestamp, err := s.endpoint.Module.TimestampAtHeight(s.endpoint.ClientID, heightToQuery)

			if tc.expErr == nil {
				s.Require().NoError(err)

				expTimestamp := uint64(s.chain.LastHeader.GetTime().UnixNano())
				s.Require().Equal(expTimestamp, timestamp)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (s *TendermintTestSuite) TestLatestHeight() {
	s.Require().Equal(ibctesting.DefaultLatestHeight, s.endpoint.Module.LatestHeight(s.endpoint.ClientID))

	s.Require().NoError(s.endpoint.UpdateClient())
	s.Require().Equal(s.chain.LastHeight(), s.endpoint.Module.LatestHeight(s.endpoint.ClientID))

	s.Require().True(s.endpoint.Module.LatestHeight(ibctesting.SecondClientID).IsZero())
}

func (s *TendermintTestSuite) TestZeroCustomFields() {
	clientState := ibctm.NewClientState(chainID, ibctm.DefaultTrustLevel, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs(), upgradePath, true, true)
	clientState.FrozenHeight = ibctm.FrozenHeight

	zeroed := clientState.ZeroCustomFields()
	s.Require().Equal(clientState.ChainId, zeroed.ChainId)
	s.Require().Equal(clientState.UnbondingPeriod, zeroed.UnbondingPeriod)
	s.Require().Equal(clientState.LatestHeight, zeroed.LatestHeight)
	s.Require().Equal(clientState.ProofSpecs, zeroed.ProofSpecs)
	s.Require().Equal(clientState.UpgradePath, zeroed.UpgradePath)
	s.Require().Zero(zeroed.TrustingPeriod)
	s.Require().Zero(zeroed.MaxClockDrift)
	s.Require().True(zeroed.FrozenHeight.IsZero())
	s.Require().False(zeroed.AllowUpdateAfterExpiry)
	s.Require().False(zeroed.AllowUpdateAfterMisbehaviour)
}

// TestVerifyMembership verifies packet commitments proven against the app hash of
// a header the client was updated to.
func (s *TendermintTestSuite) TestVerifyMembership() {
	var (
		proofStore       *ibctesting.ProofStore
		proof            commitmenttypes.MerkleProof
		proofHeight      clienttypes.Height
		path             exported.Path
		value            []byte
		delayTimePeriod  uint64
		delayBlockPeriod uint64
	)

	key := host.PacketCommitmentPath("transfer", "channel-0", 1)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"successful membership verification", func() {}, nil,
		},
		{
			"delay time period has passed", func() {
				delayTimePeriod = uint64(time.Hour.Nanoseconds())
				s.endpoint.Host.IncrementTime(time.Hour)
			}, nil,
		},
		{
			"delay time period has not passed", func() {
				delayTimePeriod = uint64(time.Hour.Nanoseconds())
			}, ibctm.ErrDelayPeriodNotPassed,
		},
		{
			"delay block period has passed", func() {
				delayBlockPeriod = 5
				s.endpoint.Host.IncrementHeight(5)
			}, nil,
		},
		{
			"delay block period has not passed", func() {
				delayBlockPeriod = 5
				s.endpoint.Host.IncrementHeight(4)
			}, ibctm.ErrDelayPeriodNotPassed,
		},
		{
			"latest client height < height", func() {
				proofHeight = proofHeight.Increment()
			}, clienttypes.ErrInvalidHeight,
		},
		{
			"consensus state not found for the proof height", func() {
				proofHeight = clienttypes.NewHeight(0, proofHeight.RevisionHeight-2)
			}, clienttypes.ErrConsensusStateNotFound,
		},
		{
			"processed time not found with a delay time period", func() {
				s.Require().NoError(s.endpoint.Store.DeleteUpdateMeta(s.endpoint.ClientID, proofHeight))
				delayTimePeriod = 1
			}, ibctm.ErrProcessedTimeNotFound,
		},
		{
			"processed height not found with a delay block period", func() {
				s.Require().NoError(s.endpoint.Store.DeleteUpdateMeta(s.endpoint.ClientID, proofHeight))
				delayBlockPeriod = 1
			}, ibctm.ErrProcessedHeightNotFound,
		},
		{
			"update metadata read fails with a delay period", func() {
				s.endpoint.Module = ibctm.NewLightClientModule(unreadableMetaContext{s.endpoint.Context}, nil)
				delayTimePeriod = 1
			}, errMetaUnreadable,
		},
		{
			"invalid value", func() {
				value = []byte("invalid value")
			}, commitmenttypes.ErrInvalidProof,
		},
		{
			"proof verification fails against a different root", func() {
				proofHeight = clienttypes.NewHeight(0, proofHeight.RevisionHeight-1)
			}, commitmenttypes.ErrInvalidProof,
		},
		{
			"proof of a different key", func() {
				other := host.PacketCommitmentPath("transfer", "channel-0", 2)
				proof = proofStore.QueryProof(other)
			}, commitmenttypes.ErrInvalidProof,
		},
		{
			"empty proof", func() {
				proof = commitmenttypes.MerkleProof{}
			}, commitmenttypes.ErrInvalidMerkleProof,
		},
		{
			"client does not exist", func() {
				s.endpoint.ClientID = ibctesting.SecondClientID
			}, clienttypes.ErrClientNotFound,
		},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest() // reset
			delayTimePeriod, delayBlockPeriod = 0, 0

			proofStore = ibctesting.NewProofStore(s.T(), ibctesting.DefaultPrefix)
			value = []byte("commitment")
			proofStore.Set(key, value)
			proofStore.Set(host.PacketCommitmentPath("transfer", "channel-0", 2), []byte("other"))
			s.chain.AppHash = proofStore.Commit()
			s.Require().NoError(s.endpoint.UpdateClient())

			proofHeight = s.endpoint.GetClientState().LatestHeight
			proof = proofStore.QueryProof(key)

			merklePath, err := commitmenttypes.ApplyPrefix(proofStore.Prefix(), commitmenttypes.NewMerklePath(key))
			s.Require().NoError(err)
			path = merklePath

			tc.malleate()

			err = s.endpoint.Module.VerifyMembership(s.endpoint.ClientID, proofHeight, delayTimePeriod, delayBlockPeriod, proof, path, value)

			if tc.expErr == nil {
				s.Require().NoError(err)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (s *TendermintTestSuite) TestVerifyNonMembership() {
	var (
		proofStore  *ibctesting.ProofStore
		proof       commitmenttypes.MerkleProof
		proofHeight clienttypes.Height
		path        exported.Path
	)

	committed := host.PacketCommitmentPath("transfer", "channel-0", 1)
	absent := host.PacketCommitmentPath("transfer", "channel-0", 3)

	testCases := []struct {
		name     string
		malleate func()
		expPass  bool
	}{
		{
			"successful non-membership verification", func() {}, true,
		},
		{
			"key is present in the store", func() {
				proof = proofStore.QueryProof(committed)

				merklePath, err := commitmenttypes.ApplyPrefix(proofStore.Prefix(), commitmenttypes.NewMerklePath(committed))
				s.Require().NoError(err)
				path = merklePath
			}, false,
		},
		{
			"latest client height < height", func() {
				proofHeight = proofHeight.Increment()
			}, false,
		},
		{
			"invalid proof", func() {
				proof = commitmenttypes.MerkleProof{}
			}, false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest() // reset

			proofStore = ibctesting.NewProofStore(s.T(), ibctesting.DefaultPrefix)
			proofStore.Set(committed, []byte("commitment"))
			proofStore.Set(host.PacketCommitmentPath("transfer", "channel-0", 5), []byte("other"))
			s.chain.AppHash = proofStore.Commit()
			s.Require().NoError(s.endpoint.UpdateClient())

			proofHeight = s.endpoint.GetClientState().LatestHeight
			proof = proofStore.QueryProof(absent)

			merklePath, err := commitmenttypes.ApplyPrefix(proofStore.Prefix(), commitmenttypes.NewMerklePath(absent))
			s.Require().NoError(err)
			path = merklePath

			tc.malleate()

			err = s.endpoint.Module.VerifyNonMembership(s.endpoint.ClientID, proofHeight, 0, 0, proof, path)

			if tc.expPass {
				s.Require().NoError(err)
			} else {
				s.Require().Error(err)
			}
		})
	}
}
