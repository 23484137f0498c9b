package tendermint_test

import (
	"time"

	tmtypes "github.com/tendermint/tendermint/types"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
	ibctm "github.com/cosmos/ibc-lightctx/modules/light-clients/07-tendermint"
)

func (s *TendermintTestSuite) TestGetHeight() {
	header := s.chain.LastHeader
	s.Require().NotEqual(uint64(0), header.GetHeight().RevisionHeight)
	s.Require().Equal(s.chain.LastHeight(), header.GetHeight())
}

func (s *TendermintTestSuite) TestGetTime() {
	header := s.chain.LastHeader
	s.Require().NotEqual(time.Time{}, header.GetTime())
	s.Require().Equal(s.chain.CurrentTime, header.GetTime())
}

func (s *TendermintTestSuite) TestHeaderValidateBasic() {
	var header *ibctm.Header

	testCases := []struct {
		name     string
		malleate func()
		expPass  bool
	}{
		{"valid header", func() {}, true},
		{"header is nil", func() {
			header.Header = nil
		}, false},
		{"signed header is nil", func() {
			header.SignedHeader = nil
		}, false},
		{"commit height is negative", func() {
			header.Commit.Height = -1
		}, false},
		{"signed header failed tendermint ValidateBasic", func() {
			header.Commit.Height = header.Commit.Height + 1
		}, false},
		{"header signed for another chain", func() {
			header.Header.ChainID = chainIDRevision1
		}, false},
		{"trusted height is equal to header height", func() {
			header.TrustedHeight = header.GetHeight()
		}, false},
		{"validator set nil", func() {
			header.ValidatorSet = nil
		}, false},
		{"validator set failed basic validation", func() {
			header.ValidatorSet = &tmtypes.ValidatorSet{Validators: []*tmtypes.Validator{{VotingPower: -1}}}
		}, false},
		{"header validator hash does not equal hash of validator set", func() {
			altVal, _ := s.newAltValidator(10)
			header.ValidatorSet = tmtypes.NewValidatorSet([]*tmtypes.Validator{altVal})
		}, false},
	}

	for _, tc := range testCases {
		tc := tc
		s.Run(tc.name, func() {
			s.SetupTest()

			// a fresh header whose pointers are not shared with the suite chain
			header = s.chain.CreateTMClientHeader(chainID, int64(height.RevisionHeight), clienttypes.NewHeight(0, height.RevisionHeight-1), s.headerTime, s.valSet, s.valSet, s.valSet, s.signers)

			tc.malleate()

			s.Require().Equal(exported.Tendermint, header.ClientType())
			err := header.ValidateBasic()

			if tc.expPass {
				s.Require().NoError(err)
			} else {
				s.Require().Error(err)
			}
		})
	}
}

func (s *TendermintTestSuite) TestHeaderConsensusState() {
	header := s.chain.LastHeader
	consensusState := header.ConsensusState()

	s.Require().Equal(header.GetTime(), consensusState.Timestamp)
	s.Require().Equal([]byte(header.Header.AppHash), consensusState.Root.GetHash())
	s.Require().Equal(header.Header.NextValidatorsHash, consensusState.NextValidatorsHash)
	s.Require().NoError(consensusState.ValidateBasic())
}
