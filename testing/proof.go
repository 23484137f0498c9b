package ibctesting

import (
	"fmt"
	"testing"

	"github.com/cosmos/cosmos-sdk/store/iavl"
	"github.com/cosmos/cosmos-sdk/store/rootmulti"
	storetypes "github.com/cosmos/cosmos-sdk/store/types"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	dbm "github.com/tendermint/tm-db"

	commitmenttypes "github.com/cosmos/ibc-lightctx/modules/core/23-commitment/types"
)

// ProofStore is a multistore with a single iavl substore used to commit to
// counterparty state and to produce ics23 proofs of it.
type ProofStore struct {
	TB testing.TB

	store    *rootmulti.Store
	storeKey *storetypes.KVStoreKey
	kvStore  *iavl.Store
}

// NewProofStore mounts an iavl substore under storeKey.
func NewProofStore(tb testing.TB, storeKey string) *ProofStore {
	store := rootmulti.NewStore(dbm.NewMemDB())
	key := storetypes.NewKVStoreKey(storeKey)
	store.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	require.NoError(tb, store.LoadVersion(0))

	return &ProofStore{
		TB:       tb,
		store:    store,
		storeKey: key,
		kvStore:  store.GetCommitStore(key).(*iavl.Store),
	}
}

// Prefix returns the prefix under which keys of the substore are proven.
func (s *ProofStore) Prefix() commitmenttypes.MerklePrefix {
	return commitmenttypes.NewMerklePrefix([]byte(s.storeKey.Name()))
}

// Set writes value at key. The write is visible to proofs after Commit.
func (s *ProofStore) Set(key string, value []byte) {
	s.kvStore.Set([]byte(key), value)
}

// Delete removes key. The removal is visible to proofs after Commit.
func (s *ProofStore) Delete(key string) {
	s.kvStore.Delete([]byte(key))
}

// Commit commits pending writes and returns the app hash.
func (s *ProofStore) Commit() []byte {
	return s.store.Commit().Hash
}

// QueryProof returns a membership or non-membership proof of key at the latest version.
func (s *ProofStore) QueryProof(key string) commitmenttypes.MerkleProof {
	res := s.store.Query(abci.RequestQuery{
		Path:  fmt.Sprintf("/%s/key", s.storeKey.Name()),
		Data:  []byte(key),
		Prove: true,
	})
	require.Zero(s.TB, res.Code, res.Log)

	proof, err := commitmenttypes.ConvertProofs(res.ProofOps)
	require.NoError(s.TB, err)
	return proof
}
