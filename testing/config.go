package ibctesting

import (
	"time"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/ibc-lightctx/modules/core/23-commitment/types"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
	ibctm "github.com/cosmos/ibc-lightctx/modules/light-clients/07-tendermint"
)

type ClientConfig interface {
	GetClientType() string
}

type TendermintConfig struct {
	TrustLevel                   ibctm.Fraction
	TrustingPeriod               time.Duration
	UnbondingPeriod              time.Duration
	MaxClockDrift                time.Duration
	AllowUpdateAfterExpiry       bool
	AllowUpdateAfterMisbehaviour bool
}

func NewTendermintConfig() *TendermintConfig {
	return &TendermintConfig{
		TrustLevel:                   DefaultTrustLevel,
		TrustingPeriod:               TrustingPeriod,
		UnbondingPeriod:              UnbondingPeriod,
		MaxClockDrift:                MaxClockDrift,
		AllowUpdateAfterExpiry:       true,
		AllowUpdateAfterMisbehaviour: true,
	}
}

func (tmcfg *TendermintConfig) GetClientType() string {
	return exported.Tendermint
}

// ClientState builds a tendermint client state for chainID at height from the config.
func (tmcfg *TendermintConfig) ClientState(chainID string, height clienttypes.Height) *ibctm.ClientState {
	return ibctm.NewClientState(
		chainID, tmcfg.TrustLevel, tmcfg.TrustingPeriod, tmcfg.UnbondingPeriod, tmcfg.MaxClockDrift,
		height, commitmenttypes.GetSDKSpecs(), UpgradePath,
		tmcfg.AllowUpdateAfterExpiry, tmcfg.AllowUpdateAfterMisbehaviour,
	)
}
