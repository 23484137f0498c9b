package provider

import (
	"fmt"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
)

// ModuleName is the error codespace of the chain data provider.
const ModuleName = "provider"

var (
	ErrFetchFailed       = sdkerrors.Register(ModuleName, 2, "failed to fetch chain data")
	ErrProposerNotFound  = sdkerrors.Register(ModuleName, 3, "proposer not found in validator set")
	ErrInvalidResponse   = sdkerrors.Register(ModuleName, 4, "invalid rpc response")
	ErrInvalidFetchRange = sdkerrors.Register(ModuleName, 5, "invalid fetch height")
)

// FetchError is returned by every Provider call whose remote request failed. It
// matches ErrFetchFailed with errors.Is and unwraps to the underlying cause.
type FetchError struct {
	Method string
	Height int64
	Err    error
}

func (e *FetchError) Error() string {
	if e.Height == 0 {
		return fmt.Sprintf("%s: %s: %v", ErrFetchFailed.Error(), e.Method, e.Err)
	}
	return fmt.Sprintf("%s: %s at height %d: %v", ErrFetchFailed.Error(), e.Method, e.Height, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports ErrFetchFailed as the kind of every FetchError.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

func fetchError(method string, height int64, err error) error {
	return &FetchError{Method: method, Height: height, Err: err}
}
