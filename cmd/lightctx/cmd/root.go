package cmd

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	appName = "lightctx"

	// EnvPrefix prefixes the environment variables read by every command, e.g.
	// LIGHTCTX_NODE or LIGHTCTX_TRUSTING_PERIOD.
	EnvPrefix = "LIGHTCTX"

	flagHome     = "home"
	flagLogLevel = "log-level"
	flagParams   = "params"
	flagClientID = "client-id"
	flagUpdate   = "update"
	flagPrefix   = "prefix"
	flagNode     = "node"
	flagOut      = "out"
	flagTimeout  = "timeout"
)

// NewRootCmd creates the lightctx command tree. Flags, environment variables and
// the client parameters file are resolved through a viper instance owned by the
// returned command.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	setClientDefaults(v)

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "tendermint light client trust store",
		Long:          "Verify tendermint headers and state proofs against a locally trusted light client, and fetch the data needed to update it from a full node.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v.SetEnvPrefix(EnvPrefix)
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()
			return v.BindPFlags(cmd.Flags())
		},
	}

	rootCmd.PersistentFlags().String(flagHome, "", "directory of a persistent trust store; the trust store is kept in memory when empty")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "log level (debug|info|error|none)")

	rootCmd.AddCommand(
		newVerifyCmd(v),
		newVerifyMembershipCmd(v),
		newFetchConsensusStateCmd(v),
		newFetchHeaderCmd(v),
		newLatestHeightCmd(v),
	)

	return rootCmd
}

// newLogger returns a tendermint logger writing to w, filtered by the configured log level.
func newLogger(v *viper.Viper, w io.Writer) (log.Logger, error) {
	logger := log.NewTMLogger(log.NewSyncWriter(w))

	option, err := log.AllowLevel(v.GetString(flagLogLevel))
	if err != nil {
		return nil, err
	}
	return log.NewFilter(logger, option), nil
}
