/*
This file contains the variables, constants, and default values
used in the testing package and commonly defined in tests.
*/
package ibctesting

import (
	"time"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	ibctm "github.com/cosmos/ibc-lightctx/modules/light-clients/07-tendermint"
)

const (
	// DefaultChainID is the chain id of the counterparty used by default.
	DefaultChainID = "ibc-0"

	// FirstClientID is the identifier given to the first client created in a test.
	FirstClientID = "07-tendermint-0"
	// SecondClientID is the identifier given to the second client created in a test.
	SecondClientID = "07-tendermint-1"

	// Default params constants used to create a TM client
	TrustingPeriod  time.Duration = time.Hour * 24 * 365 * 5
	UnbondingPeriod time.Duration = TrustingPeriod + time.Second
	MaxClockDrift   time.Duration = time.Second * 40

	// TimeIncrement is the time a TestChain advances per block.
	TimeIncrement = time.Second * 5

	// DefaultValidatorPower is the voting power of every validator created by a TestChain.
	DefaultValidatorPower int64 = 10

	// DefaultPrefix is the store key under which packet commitments are proven.
	DefaultPrefix = "ibc"
)

var (
	DefaultTrustLevel = ibctm.DefaultTrustLevel

	// DefaultLatestHeight is the latest height of a freshly created client.
	DefaultLatestHeight = clienttypes.NewHeight(0, 6)

	UpgradePath = []string{"upgrade", "upgradedIBCState"}

	// DefaultHostHeight is the height reported by a TestHost.
	DefaultHostHeight = clienttypes.NewHeight(0, 1)
)

// DefaultTime returns the time a TestChain starts at unless a test picks its own.
func DefaultTime() time.Time {
	return time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
}
