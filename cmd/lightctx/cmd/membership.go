package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	commitmenttypes "github.com/cosmos/ibc-lightctx/modules/core/23-commitment/types"
	host "github.com/cosmos/ibc-lightctx/modules/core/24-host"
)

const defaultPrefix = "ibc"

// newVerifyMembershipCmd defines the command verifying a packet commitment proof.
func newVerifyMembershipCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "verify-membership [path/to/proof.json] [root-hex] [port-id] [channel-id] [sequence] [commitment-hex]",
		Short:   "verify a packet commitment proof against a commitment root",
		Long:    "Verify that the packet commitment of the given port, channel and sequence is stored under the root with the given value, using the proof specs of a cosmos-sdk chain.",
		Example: fmt.Sprintf("%s verify-membership proof.json 6a1f... transfer channel-0 1 b3c4... --prefix ibc", appName),
		Args:    cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			proof, err := readProof(args[0])
			if err != nil {
				return err
			}

			root, err := hex.DecodeString(args[1])
			if err != nil {
				return errors.Wrapf(ErrSerialization, "root: %v", err)
			}

			portID, channelID := args[2], args[3]
			if err := host.PortIdentifierValidator(portID); err != nil {
				return err
			}
			if err := host.ChannelIdentifierValidator(channelID); err != nil {
				return err
			}

			sequence, err := cast.ToUint64E(args[4])
			if err != nil {
				return errors.Wrap(err, "invalid sequence")
			}

			value, err := hex.DecodeString(args[5])
			if err != nil {
				return errors.Wrapf(ErrSerialization, "commitment: %v", err)
			}

			prefix := commitmenttypes.NewMerklePrefix([]byte(v.GetString(flagPrefix)))
			if err := commitmenttypes.VerifyPacketCommitment(prefix, proof, commitmenttypes.NewMerkleRoot(root), portID, channelID, sequence, value); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "membership of %s verified\n", host.PacketCommitmentPath(portID, channelID, sequence))
			return err
		},
	}

	cmd.Flags().String(flagPrefix, defaultPrefix, "store prefix of the commitment path")

	return cmd
}
