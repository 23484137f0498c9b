package tendermint_test

import (
	"time"

	tmtypes "github.com/tendermint/tendermint/types"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/ibc-lightctx/modules/core/23-commitment/types"
	ibctm "github.com/cosmos/ibc-lightctx/modules/light-clients/07-tendermint"
	mock "github.com/cosmos/ibc-lightctx/modules/light-clients/00-mock"
	ibctesting "github.com/cosmos/ibc-lightctx/testing"
)

func (s *TendermintTestSuite) TestVerifyHeader() {
	var header *ibctm.Header

	// Setup different validators and signers for testing different types of updates
	altVal, altPrivVal := s.newAltValidator(100)
	// Create alternative validator set with only altVal, invalid update (too much change in valSet)
	altValSet := tmtypes.NewValidatorSet([]*tmtypes.Validator{altVal})
	altSigners := getAltSigners(altVal, altPrivVal)

	testCases := []struct {
		name     string
		malleate func()
		expPass  bool
	}{
		{
			name:     "success",
			malleate: func() {},
			expPass:  true,
		},
		{
			name: "successful verify header: header with future height",
			malleate: func() {
				trustedHeight := s.endpoint.GetClientState().LatestHeight
				trustedVals, found := s.chain.GetTrustedValidators(trustedHeight)
				s.Require().True(found)

				header = s.chain.CreateTMClientHeader(s.chain.ChainID, int64(trustedHeight.RevisionHeight)+5, trustedHeight, s.chain.CurrentTime, s.chain.Vals, s.chain.NextVals, trustedVals, s.chain.Signers)
			},
			expPass: true,
		},
		{
			name: "successful verify header: header with future height and different validator set",
			malleate: func() {
				trustedHeight := s.endpoint.GetClientState().LatestHeight
				trustedVals, found := s.chain.GetTrustedValidators(trustedHeight)
				s.Require().True(found)

				bothValSet, bothSigners := getBothSigners(s, altVal, altPrivVal)

				header = s.chain.CreateTMClientHeader(s.chain.ChainID, int64(trustedHeight.RevisionHeight)+5, trustedHeight, s.chain.CurrentTime, bothValSet, bothValSet, trustedVals, bothSigners)
			},
			expPass: true,
		},
		{
			name: "unsuccessful updates, passed in incorrect trusted validators for given consensus state",
			malleate: func() {
				trustedHeight := s.endpoint.GetClientState().LatestHeight
				bothValSet, bothSigners := getBothSigners(s, altVal, altPrivVal)

				header = s.chain.CreateTMClientHeader(s.chain.ChainID, int64(trustedHeight.RevisionHeight)+1, trustedHeight, s.chain.CurrentTime, bothValSet, bothValSet, bothValSet, bothSigners)
			},
			expPass: false,
		},
		{
			name: "unsuccessful verify header with next height: update header mismatches nextValSetHash",
			malleate: func() {
				trustedHeight := s.endpoint.GetClientState().LatestHeight
				trustedVals, found := s.chain.GetTrustedValidators(trustedHeight)
				s.Require().True(found)

				// this will err as altValSet.Hash() != consState.NextValidatorsHash
				header = s.chain.CreateTMClientHeader(s.chain.ChainID, int64(trustedHeight.RevisionHeight)+1, trustedHeight, s.chain.CurrentTime, altValSet, altValSet, trustedVals, altSigners)
			},
			expPass: false,
		},
		{
			name: "unsuccessful update with future height: too much change in validator set",
			malleate: func() {
				trustedHeight := s.endpoint.GetClientState().LatestHeight
				trustedVals, found := s.chain.GetTrustedValidators(trustedHeight)
				s.Require().True(found)

				header = s.chain.CreateTMClientHeader(s.chain.ChainID, int64(trustedHeight.RevisionHeight)+5, trustedHeight, s.chain.CurrentTime, altValSet, altValSet, trustedVals, altSigners)
			},
			expPass: false,
		},
		{
			name: "unsuccessful verify header: header height revision and trusted height revision mismatch",
			malleate: func() {
				trustedHeight := s.endpoint.GetClientState().LatestHeight

				// chain id in revision format parses to revision 1
				header = s.chain.CreateTMClientHeader("ibc-1", 3, trustedHeight, s.chain.CurrentTime, s.chain.Vals, s.chain.NextVals, s.chain.Vals, s.chain.Signers)
			},
			expPass: false,
		},
		{
			name: "unsuccessful verify header: header height < consensus height",
			malleate: func() {
				trustedHeight := s.endpoint.GetClientState().LatestHeight

				header = s.chain.CreateTMClientHeader(s.chain.ChainID, int64(trustedHeight.RevisionHeight)-1, trustedHeight, s.chain.CurrentTime, s.chain.Vals, s.chain.NextVals, s.chain.Vals, s.chain.Signers)
			},
			expPass: false,
		},
		{
			name: "unsuccessful verify header: trusted consensus state does not exist",
			malleate: func() {
				trustedHeight := clienttypes.NewHeight(0, 3)

				header = s.chain.CreateTMClientHeader(s.chain.ChainID, int64(s.chain.LastHeight().RevisionHeight), trustedHeight, s.chain.CurrentTime, s.chain.Vals, s.chain.NextVals, s.chain.Vals, s.chain.Signers)
			},
			expPass: false,
		},
		{
			name: "unsuccessful verify header: nil trusted validators",
			malleate: func() {
				header.TrustedValidators = nil
			},
			expPass: false,
		},
		{
			name: "unsuccessful verify header: header from another chain",
			malleate: func() {
				trustedHeight := s.endpoint.GetClientState().LatestHeight

				header = s.chain.CreateTMClientHeader("other-chain", int64(trustedHeight.RevisionHeight)+1, trustedHeight, s.chain.CurrentTime, s.chain.Vals, s.chain.NextVals, s.chain.Vals, s.chain.Signers)
			},
			expPass: false,
		},
		{
			name: "unsuccessful verify header: header timestamp is beyond the max clock drift",
			malleate: func() {
				trustedHeight := s.endpoint.GetClientState().LatestHeight
				timestamp := s.chain.CurrentTime.Add(ibctesting.MaxClockDrift).Add(time.Minute)

				header = s.chain.CreateTMClientHeader(s.chain.ChainID, int64(trustedHeight.RevisionHeight)+1, trustedHeight, timestamp, s.chain.Vals, s.chain.NextVals, s.chain.Vals, s.chain.Signers)
			},
			expPass: false,
		},
		{
			name: "unsuccessful verify header: trusting period has passed",
			malleate: func() {
				s.endpoint.Host.IncrementTime(ibctesting.TrustingPeriod)
			},
			expPass: false,
		},
		{
			name: "unsuccessful verify header: header commit is not signed by the validator set",
			malleate: func() {
				header.Commit.Signatures[0].Signature = make([]byte, len(header.Commit.Signatures[0].Signature))
			},
			expPass: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest() // reset

			s.chain.NextBlock()
			var err error
			header, err = s.chain.ConstructUpdateTMClientHeader(s.endpoint.GetClientState().LatestHeight)
			s.Require().NoError(err)
			s.endpoint.Host.SetTime(s.chain.CurrentTime)

			tc.malleate()

			err = s.endpoint.Module.VerifyClientMessage(s.endpoint.ClientID, header)

			if tc.expPass {
				s.Require().NoError(err, tc.name)
			} else {
				s.Require().Error(err)
			}
		})
	}
}

// TestVerifyHeaderNonAdjacent verifies a header several hundred blocks ahead of
// the trusted height, signed by the trusted validator set.
func (s *TendermintTestSuite) TestVerifyHeaderNonAdjacent() {
	now := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	chain := ibctesting.NewTestChain(s.T(), ibctesting.DefaultChainID, 1, now)
	endpoint := ibctesting.NewEndpoint(s.T(), chain)
	endpoint.Host.SetTime(now)

	trustedHeight := clienttypes.NewHeight(0, 6)
	clientState := endpoint.ClientConfig.ClientState(chain.ChainID, trustedHeight)
	consensusState := ibctm.NewConsensusState(
		now.Add(-time.Hour), commitmenttypes.NewMerkleRoot([]byte("hash")), chain.Vals.Hash(),
	)
	s.Require().NoError(endpoint.Module.Initialize(endpoint.ClientID, clientState, consensusState))

	header := chain.CreateTMClientHeader(chain.ChainID, 500, trustedHeight, now, chain.Vals, chain.Vals, chain.Vals, chain.Signers)
	s.Require().NoError(endpoint.Module.VerifyClientMessage(endpoint.ClientID, header))

	// the same header fails once the trusted consensus state is past the trusting period
	endpoint.Host.SetTime(now.Add(ibctesting.TrustingPeriod))
	s.Require().Error(endpoint.Module.VerifyClientMessage(endpoint.ClientID, header))
}

func (s *TendermintTestSuite) TestVerifyClientMessageInvalidType() {
	err := s.endpoint.Module.VerifyClientMessage(s.endpoint.ClientID, &mock.MockHeader{Height: clienttypes.NewHeight(0, 10)})
	s.Require().ErrorIs(err, clienttypes.ErrInvalidClientType)

	err = s.endpoint.Module.VerifyClientMessage(ibctesting.SecondClientID, s.header)
	s.Require().ErrorIs(err, clienttypes.ErrClientNotFound)
}

func (s *TendermintTestSuite) TestUpdateState() {
	var (
		clientMsg      *ibctm.Header
		clientState    *ibctm.ClientState
		expectedHeight clienttypes.Height
		pruneHeight    clienttypes.Height
		expectedLatest clienttypes.Height
	)

	testCases := []struct {
		name      string
		malleate  func()
		expResult func()
	}{
		{
			"success with height later than latest height", func() {
				s.chain.NextBlock()
				header, err := s.chain.ConstructUpdateTMClientHeader(clientState.LatestHeight)
				s.Require().NoError(err)
				clientMsg = header

				expectedHeight = header.GetHeight()
				expectedLatest = header.GetHeight()
			}, func() {
				consensusState, err := s.endpoint.GetConsensusState(expectedHeight)
				s.Require().NoError(err)
				s.Require().True(consensusState.Equal(clientMsg.ConsensusState()))
			},
		},
		{
			"success with height earlier than latest height", func() {
				// commit a block so the pre-existing consensus state is not the latest
				s.Require().NoError(s.endpoint.UpdateClient())
				s.chain.CommitNBlocks(2)
				s.Require().NoError(s.endpoint.UpdateClient())

				clientState = s.endpoint.GetClientState()
				expectedLatest = clientState.LatestHeight

				// a height skipped during bisection
				header := s.chain.CreateTMClientHeader(
					s.chain.ChainID, int64(expectedLatest.RevisionHeight)-1, clienttypes.NewHeight(0, 6),
					s.chain.CurrentTime.Add(-ibctesting.TimeIncrement), s.chain.Vals, s.chain.NextVals, s.chain.Vals, s.chain.Signers,
				)
				clientMsg = header
				expectedHeight = header.GetHeight()
			}, func() {
				_, err := s.endpoint.GetConsensusState(expectedHeight)
				s.Require().NoError(err)
			},
		},
		{
			"success with duplicate header", func() {
				s.Require().NoError(s.endpoint.UpdateClient())
				clientState = s.endpoint.GetClientState()

				header, err := s.chain.ConstructUpdateTMClientHeader(clienttypes.NewHeight(0, 6))
				s.Require().NoError(err)
				clientMsg = header

				expectedHeight = header.GetHeight()
				expectedLatest = clientState.LatestHeight
			}, func() {
				consensusState, err := s.endpoint.GetConsensusState(expectedHeight)
				s.Require().NoError(err)
				s.Require().True(consensusState.Equal(clientMsg.ConsensusState()))
			},
		},
		{
			"success with pruned consensus state", func() {
				pruneHeight = clientState.LatestHeight

				s.chain.NextBlock()
				header, err := s.chain.ConstructUpdateTMClientHeader(clientState.LatestHeight)
				s.Require().NoError(err)
				clientMsg = header

				expectedHeight = header.GetHeight()
				expectedLatest = header.GetHeight()

				// the consensus state at the creation height expires
				s.endpoint.Host.IncrementTime(ibctesting.TrustingPeriod)
			}, func() {
				_, err := s.endpoint.GetConsensusState(pruneHeight)
				s.Require().ErrorIs(err, clienttypes.ErrConsensusStateNotFound)

				_, _, err = s.endpoint.Context.ClientUpdateMeta(s.endpoint.ClientID, pruneHeight)
				s.Require().ErrorIs(err, clienttypes.ErrUpdateMetadataNotFound)

				_, err = s.endpoint.GetConsensusState(expectedHeight)
				s.Require().NoError(err)
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest() // reset
			pruneHeight = clienttypes.ZeroHeight()
			clientState = s.endpoint.GetClientState()

			tc.malleate()

			heights, err := s.endpoint.Module.UpdateState(s.endpoint.ClientID, clientMsg)
			s.Require().NoError(err)
			s.Require().Equal([]clienttypes.Height{expectedHeight}, heights)

			newClientState := s.endpoint.GetClientState()
			s.Require().Equal(expectedLatest, newClientState.LatestHeight)

			processedTime, processedHeight, err := s.endpoint.Context.ClientUpdateMeta(s.endpoint.ClientID, expectedHeight)
			s.Require().NoError(err)
			s.Require().False(processedTime.IsZero())
			s.Require().False(processedHeight.IsZero())

			tc.expResult()
		})
	}
}

func (s *TendermintTestSuite) TestUpdateStateOnMisbehaviourMessage() {
	misbehaviour := ibctm.NewMisbehaviour(s.endpoint.ClientID, s.header, s.header)

	// a misbehaviour message does not update any consensus state
	heights, err := s.endpoint.Module.UpdateState(s.endpoint.ClientID, misbehaviour)
	s.Require().NoError(err)
	s.Require().Empty(heights)

	s.Require().NoError(s.endpoint.Module.UpdateStateOnMisbehaviour(s.endpoint.ClientID, misbehaviour))

	clientState := s.endpoint.GetClientState()
	s.Require().Equal(ibctm.FrozenHeight, clientState.FrozenHeight)
}

func (s *TendermintTestSuite) TestPruneOnlyOldestConsensusState() {
	s.Require().NoError(s.endpoint.UpdateClient())
	s.Require().NoError(s.endpoint.UpdateClient())

	heights, err := s.endpoint.Store.GetHeights(s.endpoint.ClientID)
	s.Require().NoError(err)
	s.Require().Len(heights, 3)

	// every stored consensus state expires, but each update prunes only the oldest
	s.endpoint.Host.IncrementTime(ibctesting.TrustingPeriod + time.Hour)

	s.chain.NextBlock()
	header, err := s.chain.ConstructUpdateTMClientHeader(heights[2])
	s.Require().NoError(err)

	_, err = s.endpoint.Module.UpdateState(s.endpoint.ClientID, header)
	s.Require().NoError(err)

	remaining, err := s.endpoint.Store.GetHeights(s.endpoint.ClientID)
	s.Require().NoError(err)
	s.Require().Equal(append(append([]clienttypes.Height{}, heights[1:]...), header.GetHeight()), remaining)
}
