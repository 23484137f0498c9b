package truststore

import (
	"bytes"
	"sort"
	"strings"
	"sync"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	host "github.com/cosmos/ibc-lightctx/modules/core/24-host"
	"github.com/cosmos/ibc-lightctx/modules/core/exported"
)

// Direction selects the neighbour returned by GetAdjacentConsensusState.
type Direction int

const (
	// Next selects the consensus state at the smallest stored height greater than or equal to the given height.
	Next Direction = iota
	// Previous selects the consensus state at the largest stored height less than or equal to the given height.
	Previous
)

// Store is the trusted state of any number of light clients. Every client owns a
// prefixed view "clients/{clientID}/" of the underlying database. Consensus states
// are additionally indexed by their big endian height so that adjacent lookups
// are answered by an ordered seek.
//
// A Store is safe for concurrent use.
type Store struct {
	mtx sync.RWMutex
	db  dbm.DB
	cdc Codec
}

// NewStore returns a Store backed by db. Client and consensus states are
// (de)serialised with cdc.
func NewStore(db dbm.DB, cdc Codec) *Store {
	return &Store{
		db:  db,
		cdc: cdc,
	}
}

// NewMemStore returns a Store backed by an in-memory database.
func NewMemStore(cdc Codec) *Store {
	return NewStore(dbm.NewMemDB(), cdc)
}

// clientStore returns the prefixed database of a single client.
func (s *Store) clientStore(clientID string) dbm.DB {
	return dbm.NewPrefixDB(s.db, host.ClientStorePrefix(clientID))
}

// iterateStore returns the ordered consensus state index of a single client.
func (s *Store) iterateStore(clientID string) dbm.DB {
	return dbm.NewPrefixDB(s.clientStore(clientID), []byte(KeyIterateConsensusStatePrefix))
}

// GetClientState returns the client state of clientID. ErrClientNotFound is
// returned if no client state was ever stored.
func (s *Store) GetClientState(clientID string) (exported.ClientState, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.getClientState(clientID)
}

func (s *Store) getClientState(clientID string) (exported.ClientState, error) {
	bz, err := s.clientStore(clientID).Get(host.ClientStateKey())
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, sdkerrors.Wrapf(clienttypes.ErrClientNotFound, "client %s has not been initialised", clientID)
	}

	clientState, err := s.cdc.UnmarshalClientState(bz)
	if err != nil {
		return nil, sdkerrors.Wrapf(clienttypes.ErrFailedClientStateCodec, "client %s: %v", clientID, err)
	}
	return clientState, nil
}

// SetClientState replaces the client state of clientID.
func (s *Store) SetClientState(clientID string, clientState exported.ClientState) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.setClientState(clientID, clientState)
}

func (s *Store) setClientState(clientID string, clientState exported.ClientState) error {
	if err := host.ClientIdentifierValidator(clientID); err != nil {
		return err
	}
	if clientState == nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidClient, "client state cannot be nil")
	}

	bz, err := s.cdc.MarshalClientState(clientState)
	if err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrFailedClientStateCodec, "client %s: %v", clientID, err)
	}
	return s.clientStore(clientID).Set(host.ClientStateKey(), bz)
}

// Update runs a read-modify-write of the client state of clientID under the
// write lock. The value returned by fn replaces the stored client state; if fn
// returns an error nothing is written.
func (s *Store) Update(clientID string, fn func(exported.ClientState) (exported.ClientState, error)) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	clientState, err := s.getClientState(clientID)
	if err != nil {
		return err
	}

	updated, err := fn(clientState)
	if err != nil {
		return err
	}

	return s.setClientState(clientID, updated)
}

// GetConsensusState returns the consensus state of clientID at height.
// ErrConsensusStateNotFound is returned if there is none.
func (s *Store) GetConsensusState(clientID string, height clienttypes.Height) (exported.ConsensusState, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return s.getConsensusState(clientID, host.ConsensusStateKey(height), height)
}

func (s *Store) getConsensusState(clientID string, key []byte, height clienttypes.Height) (exported.ConsensusState, error) {
	bz, err := s.clientStore(clientID).Get(key)
	if err != nil {
		return nil, err
	}
	if bz == nil {
		return nil, sdkerrors.Wrapf(
			clienttypes.ErrConsensusStateNotFound,
			"client %s: consensus state does not exist for height %s", clientID, height,
		)
	}

	consensusState, err := s.cdc.UnmarshalConsensusState(bz)
	if err != nil {
		return nil, sdkerrors.Wrapf(clienttypes.ErrFailedConsensusStateCodec, "client %s height %s: %v", clientID, height, err)
	}
	return consensusState, nil
}

// SetConsensusState stores the consensus state of clientID at height, overwriting
// any previous value, and records height in the ordered index.
func (s *Store) SetConsensusState(clientID string, height clienttypes.Height, consensusState exported.ConsensusState) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := host.ClientIdentifierValidator(clientID); err != nil {
		return err
	}
	if height.IsZero() {
		return sdkerrors.Wrap(clienttypes.ErrInvalidHeight, "consensus state height cannot be zero")
	}
	if consensusState == nil {
		return sdkerrors.Wrap(clienttypes.ErrInvalidConsensus, "consensus state cannot be nil")
	}

	bz, err := s.cdc.MarshalConsensusState(consensusState)
	if err != nil {
		return sdkerrors.Wrapf(clienttypes.ErrFailedConsensusStateCodec, "client %s height %s: %v", clientID, height, err)
	}

	batch := s.clientStore(clientID).NewBatch()
	defer batch.Close()

	if err := batch.Set(host.ConsensusStateKey(height), bz); err != nil {
		return err
	}
	if err := batch.Set(IterationKey(height), host.ConsensusStateKey(height)); err != nil {
		return err
	}
	return batch.Write()
}

// DeleteConsensusState removes the consensus state of clientID at height together
// with its iteration key and its update metadata. The removal is a single batch
// write. Deleting an absent height is not an error.
func (s *Store) DeleteConsensusState(clientID string, height clienttypes.Height) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	batch := s.clientStore(clientID).NewBatch()
	defer batch.Close()

	for _, key := range [][]byte{
		host.ConsensusStateKey(height),
		IterationKey(height),
		ProcessedTimeKey(height),
		ProcessedHeightKey(height),
	} {
		if err := batch.Delete(key); err != nil {
			return err
		}
	}
	return batch.Write()
}

// GetHeights returns the heights of every consensus state stored for clientID
// in ascending order.
func (s *Store) GetHeights(clientID string) ([]clienttypes.Height, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	iterator, err := s.iterateStore(clientID).Iterator(nil, nil)
	if err != nil {
		return nil, err
	}
	defer iterator.Close()

	heights := []clienttypes.Height{}
	for ; iterator.Valid(); iterator.Next() {
		height, err := heightFromBigEndian(iterator.Key())
		if err != nil {
			return nil, err
		}
		heights = append(heights, height)
	}
	return heights, iterator.Error()
}

// GetAdjacentConsensusState returns the consensus state of clientID adjacent to
// height in the given direction. Both directions are inclusive: if a consensus
// state is stored at height itself it is returned. The boolean is false if no
// such consensus state exists.
func (s *Store) GetAdjacentConsensusState(clientID string, height clienttypes.Height, direction Direction) (exported.ConsensusState, bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	heightKey, consensusKey, err := s.seekIterationKey(clientID, height, direction)
	if err != nil || heightKey == nil {
		return nil, false, err
	}

	found, err := heightFromBigEndian(heightKey)
	if err != nil {
		return nil, false, err
	}

	consensusState, err := s.getConsensusState(clientID, consensusKey, found)
	if err != nil {
		return nil, false, err
	}
	return consensusState, true, nil
}

// seekIterationKey returns the iteration key and the consensus state key of the
// first entry found from height in the given direction. The iterator is closed
// before returning so that the caller may read from the store again.
func (s *Store) seekIterationKey(clientID string, height clienttypes.Height, direction Direction) ([]byte, []byte, error) {
	var (
		iterator dbm.Iterator
		err      error
	)

	start := bigEndianHeightBytes(height)
	switch direction {
	case Next:
		// start is inclusive
		iterator, err = s.iterateStore(clientID).Iterator(start, nil)
	case Previous:
		// end is exclusive, the smallest key above start includes start itself
		iterator, err = s.iterateStore(clientID).ReverseIterator(nil, append(start, 0x00))
	default:
		return nil, nil, sdkerrors.Wrapf(clienttypes.ErrInvalidHeight, "unknown direction %d", direction)
	}
	if err != nil {
		return nil, nil, err
	}
	defer iterator.Close()

	if !iterator.Valid() {
		return nil, nil, iterator.Error()
	}

	return append([]byte{}, iterator.Key()...), append([]byte{}, iterator.Value()...), nil
}

// SetUpdateMeta records the host time and host height at which the consensus
// state of clientID at height was accepted.
func (s *Store) SetUpdateMeta(clientID string, height clienttypes.Height, hostTime time.Time, hostHeight clienttypes.Height) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if hostTime.UnixNano() <= 0 {
		return sdkerrors.Wrapf(clienttypes.ErrHostClockUnavailable, "invalid host time %s", hostTime)
	}

	batch := s.clientStore(clientID).NewBatch()
	defer batch.Close()

	if err := batch.Set(ProcessedTimeKey(height), sdk.Uint64ToBigEndian(uint64(hostTime.UnixNano()))); err != nil {
		return err
	}
	if err := batch.Set(ProcessedHeightKey(height), []byte(hostHeight.String())); err != nil {
		return err
	}
	return batch.Write()
}

// GetUpdateMeta returns the host time and host height recorded for the consensus
// state of clientID at height. ErrUpdateMetadataNotFound is returned if nothing
// was recorded.
func (s *Store) GetUpdateMeta(clientID string, height clienttypes.Height) (time.Time, clienttypes.Height, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	store := s.clientStore(clientID)

	timeBz, err := store.Get(ProcessedTimeKey(height))
	if err != nil {
		return time.Time{}, clienttypes.Height{}, err
	}
	heightBz, err := store.Get(ProcessedHeightKey(height))
	if err != nil {
		return time.Time{}, clienttypes.Height{}, err
	}
	if timeBz == nil || heightBz == nil {
		return time.Time{}, clienttypes.Height{}, sdkerrors.Wrapf(
			clienttypes.ErrUpdateMetadataNotFound,
			"client %s: update metadata does not exist for height %s", clientID, height,
		)
	}

	processedHeight, err := clienttypes.ParseHeight(string(heightBz))
	if err != nil {
		return time.Time{}, clienttypes.Height{}, err
	}

	return time.Unix(0, int64(sdk.BigEndianToUint64(timeBz))).UTC(), processedHeight, nil
}

// DeleteUpdateMeta removes the update metadata of clientID at height.
func (s *Store) DeleteUpdateMeta(clientID string, height clienttypes.Height) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	batch := s.clientStore(clientID).NewBatch()
	defer batch.Close()

	if err := batch.Delete(ProcessedTimeKey(height)); err != nil {
		return err
	}
	if err := batch.Delete(ProcessedHeightKey(height)); err != nil {
		return err
	}
	return batch.Write()
}

// ClientIDs returns the identifiers of every client with a stored client state, sorted.
func (s *Store) ClientIDs() ([]string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	prefix := append(append([]byte{}, host.KeyClientStorePrefix...), '/')
	suffix := []byte("/" + host.KeyClientState)

	iterator, err := dbm.IteratePrefix(s.db, prefix)
	if err != nil {
		return nil, err
	}
	defer iterator.Close()

	clientIDs := []string{}
	for ; iterator.Valid(); iterator.Next() {
		key := iterator.Key()[len(prefix):]
		if !bytes.HasSuffix(key, suffix) {
			continue
		}
		clientID := string(key[:len(key)-len(suffix)])
		if strings.Contains(clientID, "/") {
			continue
		}
		clientIDs = append(clientIDs, clientID)
	}
	if err := iterator.Error(); err != nil {
		return nil, err
	}

	sort.Strings(clientIDs)
	return clientIDs, nil
}
