package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	ibctm "github.com/cosmos/ibc-lightctx/modules/light-clients/07-tendermint"
	"github.com/cosmos/ibc-lightctx/modules/light-clients/07-tendermint/provider"
)

const defaultNode = "http://localhost:26657"

// newProvider creates a provider for the configured node.
func newProvider(cmd *cobra.Command, v *viper.Viper) (*provider.Provider, error) {
	logger, err := newLogger(v, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	return provider.New(
		v.GetString(flagNode),
		provider.Timeout(v.GetDuration(flagTimeout)),
		provider.Logger(logger),
	)
}

func addNodeFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagNode, defaultNode, "tendermint RPC endpoint of the chain")
	cmd.Flags().Duration(flagTimeout, provider.DefaultTimeout, "deadline of every RPC request")
}

// newFetchConsensusStateCmd defines the command fetching the consensus state of a block.
func newFetchConsensusStateCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fetch-consensus-state [height]",
		Short:   "fetch the consensus state committed to by a block",
		Long:    "Fetch the consensus state committed to by the block at height. A height of 0 fetches the latest block.",
		Example: fmt.Sprintf("%s fetch-consensus-state 6 --node %s --out consensus_state.json", appName, defaultNode),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			height, err := cast.ToInt64E(args[0])
			if err != nil {
				return errors.Wrap(err, "invalid height")
			}

			p, err := newProvider(cmd, v)
			if err != nil {
				return err
			}

			consensusState, err := p.ConsensusState(cmd.Context(), height)
			if err != nil {
				return err
			}

			bz, err := ibctm.Codec{}.MarshalConsensusState(consensusState)
			if err != nil {
				return errors.Wrapf(ErrSerialization, "%v", err)
			}
			return writeOutput(cmd.OutOrStdout(), v.GetString(flagOut), bz)
		},
	}

	addNodeFlags(cmd)
	cmd.Flags().String(flagOut, "", "output file; the consensus state is printed when empty")

	return cmd
}

// newFetchHeaderCmd defines the command fetching a header updating a client.
func newFetchHeaderCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch-header [trusted-height] [target-height]",
		Short: "fetch a header updating a client from a trusted height to a target height",
		Long: `Fetch the signed header and the validator set of the target block, together with the
validator set of the following block as trusted validators. The trusted height is
either {revision}-{height} or a block height of revision 0.`,
		Example: fmt.Sprintf("%s fetch-header 0-6 12 --node %s --out header.json", appName, defaultNode),
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			trustedHeight, err := parseHeight(args[0])
			if err != nil {
				return err
			}

			targetHeight, err := cast.ToInt64E(args[1])
			if err != nil {
				return errors.Wrap(err, "invalid target height")
			}

			p, err := newProvider(cmd, v)
			if err != nil {
				return err
			}

			header, err := p.LightClientUpdate(cmd.Context(), trustedHeight, targetHeight)
			if err != nil {
				return err
			}

			bz, err := ibctm.Codec{}.MarshalHeader(header)
			if err != nil {
				return errors.Wrapf(ErrSerialization, "%v", err)
			}
			return writeOutput(cmd.OutOrStdout(), v.GetString(flagOut), bz)
		},
	}

	addNodeFlags(cmd)
	cmd.Flags().String(flagOut, "", "output file; the header is printed when empty")

	return cmd
}

// newLatestHeightCmd defines the command querying the latest height of a chain.
func newLatestHeightCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "latest-height",
		Short:   "query the latest height of a chain",
		Example: fmt.Sprintf("%s latest-height --node %s", appName, defaultNode),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := newProvider(cmd, v)
			if err != nil {
				return err
			}

			height, err := p.LatestHeight(cmd.Context())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), height.String())
			return err
		},
	}

	addNodeFlags(cmd)

	return cmd
}
