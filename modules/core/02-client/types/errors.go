package types

import (
	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// SubModuleName defines the IBC client name
const SubModuleName string = "client"

// IBC client sentinel errors
var (
	ErrClientNotFound            = sdkerrors.Register(SubModuleName, 2, "light client not found")
	ErrClientExists              = sdkerrors.Register(SubModuleName, 3, "light client already exists")
	ErrInvalidClient             = sdkerrors.Register(SubModuleName, 4, "light client is invalid")
	ErrInvalidClientType         = sdkerrors.Register(SubModuleName, 5, "invalid client type")
	ErrClientFrozen              = sdkerrors.Register(SubModuleName, 6, "light client is frozen due to misbehaviour")
	ErrClientNotActive           = sdkerrors.Register(SubModuleName, 7, "client state is not active")
	ErrInvalidConsensus          = sdkerrors.Register(SubModuleName, 8, "invalid consensus state")
	ErrConsensusStateNotFound    = sdkerrors.Register(SubModuleName, 9, "consensus state not found")
	ErrUpdateMetadataNotFound    = sdkerrors.Register(SubModuleName, 10, "update metadata not found")
	ErrInvalidHeight             = sdkerrors.Register(SubModuleName, 11, "invalid height")
	ErrInvalidChainID            = sdkerrors.Register(SubModuleName, 12, "invalid chain-id")
	ErrInvalidHeader             = sdkerrors.Register(SubModuleName, 13, "invalid client header")
	ErrInvalidMisbehaviour       = sdkerrors.Register(SubModuleName, 14, "invalid light client misbehaviour")
	ErrInvalidSubstitute         = sdkerrors.Register(SubModuleName, 15, "invalid client state substitute")
	ErrHostClockUnavailable      = sdkerrors.Register(SubModuleName, 16, "host clock unavailable")
	ErrFailedClientStateCodec    = sdkerrors.Register(SubModuleName, 17, "failed to encode or decode client state")
	ErrFailedConsensusStateCodec = sdkerrors.Register(SubModuleName, 18, "failed to encode or decode consensus state")
)
