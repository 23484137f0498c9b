package types

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	host "github.com/cosmos/ibc-lightctx/modules/core/24-host"
)

// VerifyStateMembership checks that value is committed under root at the
// store path formed by prefix and path, using the proof specs of a cosmos-sdk chain.
func VerifyStateMembership(prefix MerklePrefix, proof MerkleProof, root MerkleRoot, path string, value []byte) error {
	if err := proof.ValidateBasic(); err != nil {
		return sdkerrors.Wrap(err, "proof cannot be empty")
	}

	merklePath, err := ApplyPrefix(prefix, NewMerklePath(path))
	if err != nil {
		return err
	}

	return proof.VerifyMembership(GetSDKSpecs(), root, merklePath, value)
}

// VerifyPacketCommitment checks a packet commitment proof for the given port, channel and sequence.
func VerifyPacketCommitment(prefix MerklePrefix, proof MerkleProof, root MerkleRoot, portID, channelID string, sequence uint64, commitment []byte) error {
	return VerifyStateMembership(prefix, proof, root, host.PacketCommitmentPath(portID, channelID, sequence), commitment)
}
