package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cosmos/ibc-lightctx/modules/core/02-client/clientcontext"
	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	ibctm "github.com/cosmos/ibc-lightctx/modules/light-clients/07-tendermint"
)

// newVerifyCmd defines the command verifying a header against a trusted consensus state.
func newVerifyCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [path/to/consensus_state.json] [path/to/header.json]",
		Short: "verify a header against a trusted consensus state",
		Long: `Create a light client trusting the given consensus state at the latest height of the
client parameters and verify the header against it. With --update the header is
applied and the client moves to the header height.

When --home is set and the client already exists in the trust store, the stored
client is used and the consensus state argument is ignored.`,
		Example: fmt.Sprintf("%s verify consensus_state.json header.json --params client.yaml --update", appName),
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			header, err := readHeader(args[1])
			if err != nil {
				return err
			}

			store, closeStore, err := openStore(v)
			if err != nil {
				return err
			}
			defer closeStore()

			clientCtx := clientcontext.NewContext(store, clientcontext.NewLocalHost(clientcontext.DefaultHostHeight), logger)
			module := ibctm.NewLightClientModule(clientCtx, logger)
			clientID := v.GetString(flagClientID)

			_, err = store.GetClientState(clientID)
			switch {
			case errors.Is(err, clienttypes.ErrClientNotFound):
				clientState, err := loadClientState(v)
				if err != nil {
					return err
				}
				consensusState, err := readConsensusState(args[0])
				if err != nil {
					return err
				}
				if err := module.Initialize(clientID, clientState, consensusState); err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				logger.Info("using stored client", "client-id", clientID)
			}

			if !v.GetBool(flagUpdate) {
				if err := module.VerifyClientMessage(clientID, header); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "header at height %s verified\n", header.GetHeight())
				return err
			}

			heights, err := module.UpdateClient(clientID, header)
			if err != nil {
				return err
			}
			if len(heights) == 0 {
				return errors.Wrapf(clienttypes.ErrInvalidMisbehaviour, "client %s frozen", clientID)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "client %s updated to height %s\n", clientID, module.LatestHeight(clientID))
			return err
		},
	}

	cmd.Flags().String(flagParams, "", "client parameters file (yaml, json or toml)")
	cmd.Flags().String(flagClientID, defaultClientID, "identifier of the client in the trust store")
	cmd.Flags().Bool(flagUpdate, false, "apply the header to the client after verification")

	return cmd
}
