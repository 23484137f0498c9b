package types_test

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/cosmos/cosmos-sdk/store/iavl"
	"github.com/cosmos/cosmos-sdk/store/rootmulti"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	abci "github.com/tendermint/tendermint/abci/types"
	dbm "github.com/tendermint/tm-db"

	"github.com/cosmos/ibc-lightctx/modules/core/23-commitment/types"
	host "github.com/cosmos/ibc-lightctx/modules/core/24-host"
)

// copyProof deep copies a proof through its JSON encoding so that malleate
// functions can flip bytes without touching the original.
func (suite *MerkleTestSuite) copyProof(proof types.MerkleProof) types.MerkleProof {
	bz, err := json.Marshal(proof)
	suite.Require().NoError(err)

	var cp types.MerkleProof
	suite.Require().NoError(json.Unmarshal(bz, &cp))
	return cp
}

func (suite *MerkleTestSuite) TestVerifyPacketCommitment() {
	var (
		proof      types.MerkleProof
		root       types.MerkleRoot
		value      []byte
		sequence   uint64
		prefix     types.MerklePrefix
		committed  []byte
		commitRoot []byte
	)

	db := dbm.NewMemDB()
	store := rootmulti.NewStore(db)
	storeKey := storetypes.NewKVStoreKey("ibc")
	store.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, nil)
	suite.Require().NoError(store.LoadVersion(0))

	ibcStore := store.GetCommitStore(storeKey).(*iavl.Store)
	digest := sha256.Sum256([]byte("packet data"))
	committed = digest[:]
	ibcStore.Set([]byte(host.PacketCommitmentPath("transfer", "channel-0", 1)), committed)
	ibcStore.Set([]byte(host.PacketCommitmentPath("transfer", "channel-0", 2)), []byte("other"))
	commitRoot = store.Commit().Hash

	res := store.Query(abci.RequestQuery{
		Path:  fmt.Sprintf("/%s/key", storeKey.Name()),
		Data:  []byte(host.PacketCommitmentPath("transfer", "channel-0", 1)),
		Prove: true,
	})
	original, err := types.ConvertProofs(res.ProofOps)
	suite.Require().NoError(err)

	testCases := []struct {
		name     string
		malleate func()
		expPass  bool
	}{
		{
			"success", func() {}, true,
		},
		{
			"value byte altered", func() {
				value = append([]byte{}, committed...)
				value[0] ^= 0x01
			}, false,
		},
		{
			"root byte altered", func() {
				hash := append([]byte{}, commitRoot...)
				hash[len(hash)-1] ^= 0x01
				root = types.NewMerkleRoot(hash)
			}, false,
		},
		{
			"proof value byte altered", func() {
				proof.Proofs[0].GetExist().Value[0] ^= 0x01
			}, false,
		},
		{
			"proof key byte altered", func() {
				proof.Proofs[0].GetExist().Key[0] ^= 0x01
			}, false,
		},
		{
			"iavl leaf prefix byte altered", func() {
				proof.Proofs[0].GetExist().Leaf.Prefix[0] ^= 0x01
			}, false,
		},
		{
			"store leaf prefix byte altered", func() {
				proof.Proofs[1].GetExist().Leaf.Prefix[0] ^= 0x01
			}, false,
		},
		{
			"store key byte altered", func() {
				proof.Proofs[1].GetExist().Key[0] ^= 0x01
			}, false,
		},
		{
			"wrong sequence", func() {
				sequence = 2
			}, false,
		},
		{
			"wrong prefix", func() {
				prefix = types.NewMerklePrefix([]byte("ibd"))
			}, false,
		},
		{
			"empty proof", func() {
				proof = types.MerkleProof{}
			}, false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		suite.Run(tc.name, func() {
			proof = suite.copyProof(original)
			root = types.NewMerkleRoot(commitRoot)
			value = committed
			sequence = 1
			prefix = types.NewMerklePrefix([]byte(storeKey.Name()))

			tc.malleate()

			err := types.VerifyPacketCommitment(prefix, proof, root, "transfer", "channel-0", sequence, value)
			if tc.expPass {
				suite.Require().NoError(err)
			} else {
				suite.Require().Error(err)
			}
		})
	}
}
