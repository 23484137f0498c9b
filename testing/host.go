package ibctesting

import (
	"sync"
	"time"

	"github.com/cosmos/ibc-lightctx/modules/core/02-client/clientcontext"
	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
)

var _ clientcontext.HostInfo = (*TestHost)(nil)

// TestHost is a host whose clock and height are set by the test.
type TestHost struct {
	mtx    sync.Mutex
	now    time.Time
	height clienttypes.Height
}

// NewTestHost returns a host at now and DefaultHostHeight.
func NewTestHost(now time.Time) *TestHost {
	return &TestHost{
		now:    now,
		height: DefaultHostHeight,
	}
}

// Timestamp implements clientcontext.HostInfo.
func (h *TestHost) Timestamp() (time.Time, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return clientcontext.NewStaticHost(h.now, h.height).Timestamp()
}

// Height implements clientcontext.HostInfo.
func (h *TestHost) Height() (clienttypes.Height, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return h.height, nil
}

// SetTime moves the host clock to now.
func (h *TestHost) SetTime(now time.Time) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.now = now
}

// IncrementTime advances the host clock by d.
func (h *TestHost) IncrementTime(d time.Duration) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.now = h.now.Add(d)
}

// SetHeight sets the host height.
func (h *TestHost) SetHeight(height clienttypes.Height) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.height = height
}

// IncrementHeight advances the host revision height by n blocks.
func (h *TestHost) IncrementHeight(n uint64) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.height = clienttypes.NewHeight(h.height.RevisionNumber, h.height.RevisionHeight+n)
}
