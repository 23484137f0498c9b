package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	dbm "github.com/tendermint/tm-db"

	"github.com/cosmos/ibc-lightctx/modules/core/02-client/truststore"
	commitmenttypes "github.com/cosmos/ibc-lightctx/modules/core/23-commitment/types"
	ibctm "github.com/cosmos/ibc-lightctx/modules/light-clients/07-tendermint"
)

const storeName = "truststore"

// openStore opens the trust store in the home directory, or an in-memory trust
// store when no home directory is configured. The returned function closes it.
func openStore(v *viper.Viper) (*truststore.Store, func() error, error) {
	home := v.GetString(flagHome)
	if home == "" {
		return truststore.NewMemStore(ibctm.Codec{}), func() error { return nil }, nil
	}

	db, err := dbm.NewDB(storeName, dbm.GoLevelDBBackend, home)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening trust store in %s", home)
	}
	return truststore.NewStore(db, ibctm.Codec{}), db.Close, nil
}

func readFile(path string) ([]byte, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrSerialization, "%v", err)
	}
	return bz, nil
}

func readConsensusState(path string) (*ibctm.ConsensusState, error) {
	bz, err := readFile(path)
	if err != nil {
		return nil, err
	}

	consensusState, err := ibctm.Codec{}.UnmarshalConsensusState(bz)
	if err != nil {
		return nil, errors.Wrapf(ErrSerialization, "decoding consensus state %s: %v", path, err)
	}
	return consensusState.(*ibctm.ConsensusState), nil
}

func readHeader(path string) (*ibctm.Header, error) {
	bz, err := readFile(path)
	if err != nil {
		return nil, err
	}

	header, err := ibctm.Codec{}.UnmarshalHeader(bz)
	if err != nil {
		return nil, errors.Wrapf(ErrSerialization, "decoding header %s: %v", path, err)
	}
	return header, nil
}

func readProof(path string) (commitmenttypes.MerkleProof, error) {
	bz, err := readFile(path)
	if err != nil {
		return commitmenttypes.MerkleProof{}, err
	}

	var proof commitmenttypes.MerkleProof
	if err := json.Unmarshal(bz, &proof); err != nil {
		return commitmenttypes.MerkleProof{}, errors.Wrapf(ErrSerialization, "decoding proof %s: %v", path, err)
	}
	return proof, nil
}

// writeOutput writes bz to the file at path, or to w when path is empty.
func writeOutput(w io.Writer, path string, bz []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(w, string(bz))
		return err
	}

	if err := os.WriteFile(path, bz, 0o600); err != nil {
		return errors.Wrapf(ErrSerialization, "%v", err)
	}
	return nil
}
