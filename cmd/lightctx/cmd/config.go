package cmd

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/ibc-lightctx/modules/core/23-commitment/types"
	ibctm "github.com/cosmos/ibc-lightctx/modules/light-clients/07-tendermint"
)

// Client parameter keys. They are read from the parameters file and from
// LIGHTCTX_ prefixed environment variables, e.g. LIGHTCTX_CHAIN_ID.
const (
	keyChainID                      = "chain_id"
	keyTrustLevel                   = "trust_level"
	keyTrustingPeriod               = "trusting_period"
	keyUnbondingPeriod              = "unbonding_period"
	keyMaxClockDrift                = "max_clock_drift"
	keyLatestHeight                 = "latest_height"
	keyUpgradePath                  = "upgrade_path"
	keyAllowUpdateAfterExpiry       = "allow_update_after_expiry"
	keyAllowUpdateAfterMisbehaviour = "allow_update_after_misbehaviour"
)

const (
	defaultChainID        = "ibc-0"
	defaultTrustingPeriod = 5 * 365 * 24 * time.Hour
	defaultMaxClockDrift  = 40 * time.Second
	defaultClientID       = "07-tendermint-0"
)

var (
	defaultLatestHeight = clienttypes.NewHeight(0, 6)
	defaultUpgradePath  = []string{"upgrade", "upgradedIBCState"}
)

func setClientDefaults(v *viper.Viper) {
	v.SetDefault(keyChainID, defaultChainID)
	v.SetDefault(keyTrustLevel, ibctm.DefaultTrustLevel.String())
	v.SetDefault(keyTrustingPeriod, defaultTrustingPeriod)
	v.SetDefault(keyUnbondingPeriod, defaultTrustingPeriod+time.Second)
	v.SetDefault(keyMaxClockDrift, defaultMaxClockDrift)
	v.SetDefault(keyLatestHeight, defaultLatestHeight.String())
	v.SetDefault(keyUpgradePath, defaultUpgradePath)
	v.SetDefault(keyAllowUpdateAfterExpiry, true)
	v.SetDefault(keyAllowUpdateAfterMisbehaviour, true)
}

// loadClientState builds the client state of the verified chain from the
// parameters file (yaml, json or toml), the environment and the defaults, in
// that order of precedence.
func loadClientState(v *viper.Viper) (*ibctm.ClientState, error) {
	if path := v.GetString(flagParams); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(ErrSerialization, "reading client parameters %s: %v", path, err)
		}
	}

	trustLevel, err := parseFraction(v.GetString(keyTrustLevel))
	if err != nil {
		return nil, err
	}

	latestHeight, err := clienttypes.ParseHeight(v.GetString(keyLatestHeight))
	if err != nil {
		return nil, err
	}

	clientState := ibctm.NewClientState(
		v.GetString(keyChainID), trustLevel,
		v.GetDuration(keyTrustingPeriod), v.GetDuration(keyUnbondingPeriod), v.GetDuration(keyMaxClockDrift),
		latestHeight, commitmenttypes.GetSDKSpecs(), v.GetStringSlice(keyUpgradePath),
		v.GetBool(keyAllowUpdateAfterExpiry), v.GetBool(keyAllowUpdateAfterMisbehaviour),
	)
	if err := clientState.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid client parameters")
	}
	return clientState, nil
}

// parseFraction parses a trust level of the form "numerator/denominator".
func parseFraction(s string) (ibctm.Fraction, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return ibctm.Fraction{}, errors.Wrapf(ibctm.ErrInvalidTrustLevel, "expected format numerator/denominator, got %q", s)
	}

	numerator, err := cast.ToUint64E(parts[0])
	if err != nil {
		return ibctm.Fraction{}, errors.Wrapf(ibctm.ErrInvalidTrustLevel, "numerator: %v", err)
	}
	denominator, err := cast.ToUint64E(parts[1])
	if err != nil {
		return ibctm.Fraction{}, errors.Wrapf(ibctm.ErrInvalidTrustLevel, "denominator: %v", err)
	}

	return ibctm.Fraction{Numerator: numerator, Denominator: denominator}, nil
}

// parseHeight accepts a height as "{revision}-{height}" or as a plain block
// height of revision zero.
func parseHeight(s string) (clienttypes.Height, error) {
	if strings.Contains(s, "-") {
		return clienttypes.ParseHeight(s)
	}

	height, err := cast.ToUint64E(s)
	if err != nil {
		return clienttypes.Height{}, errors.Wrapf(clienttypes.ErrInvalidHeight, "%q: %v", s, err)
	}
	return clienttypes.NewHeight(0, height), nil
}
