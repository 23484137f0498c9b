package clientcontext

import (
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
)

// DefaultHostHeight is the height reported by a LocalHost. A process running
// outside of a chain has no height of its own.
var DefaultHostHeight = clienttypes.NewHeight(0, 1)

// HostInfo reports the clock and the height of the host running the light client.
type HostInfo interface {
	Timestamp() (time.Time, error)
	Height() (clienttypes.Height, error)
}

var _ HostInfo = (*LocalHost)(nil)

// LocalHost reads the wall clock of the local process and reports a fixed height.
type LocalHost struct {
	height clienttypes.Height
	now    func() time.Time
}

// NewLocalHost returns a LocalHost reporting height.
func NewLocalHost(height clienttypes.Height) *LocalHost {
	return &LocalHost{
		height: height,
		now:    time.Now,
	}
}

// NewStaticHost returns a host whose clock is frozen at timestamp.
func NewStaticHost(timestamp time.Time, height clienttypes.Height) *LocalHost {
	return &LocalHost{
		height: height,
		now:    func() time.Time { return timestamp },
	}
}

// Timestamp returns the current host time in UTC.
func (h *LocalHost) Timestamp() (time.Time, error) {
	now := h.now()
	if now.IsZero() || now.UnixNano() <= 0 {
		return time.Time{}, sdkerrors.Wrapf(clienttypes.ErrHostClockUnavailable, "clock returned %s", now)
	}
	return now.UTC(), nil
}

// Height returns the configured host height.
func (h *LocalHost) Height() (clienttypes.Height, error) {
	return h.height, nil
}
