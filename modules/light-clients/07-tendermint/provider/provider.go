package provider

import (
	"bytes"
	"context"
	"strings"
	"time"

	sdkerrors "github.com/cosmos/cosmos-sdk/types/errors"
	"github.com/tendermint/tendermint/libs/log"
	rpchttp "github.com/tendermint/tendermint/rpc/client/http"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"
	"golang.org/x/sync/errgroup"

	clienttypes "github.com/cosmos/ibc-lightctx/modules/core/02-client/types"
	commitmenttypes "github.com/cosmos/ibc-lightctx/modules/core/23-commitment/types"
	ibctm "github.com/cosmos/ibc-lightctx/modules/light-clients/07-tendermint"
)

const (
	// DefaultTimeout bounds every remote call made by a Provider.
	DefaultTimeout = 10 * time.Second

	// maxPerPage is the largest page size accepted by the tendermint RPC.
	maxPerPage = 100
	// maxPages bounds the pagination of a single validator set query.
	maxPages = 100
)

// RPCClient is the subset of the tendermint RPC client used by a Provider.
// *rpchttp.HTTP implements it.
type RPCClient interface {
	Block(ctx context.Context, height *int64) (*ctypes.ResultBlock, error)
	Commit(ctx context.Context, height *int64) (*ctypes.ResultCommit, error)
	Validators(ctx context.Context, height *int64, page, perPage *int) (*ctypes.ResultValidators, error)
	Status(ctx context.Context) (*ctypes.ResultStatus, error)
}

var _ RPCClient = (*rpchttp.HTTP)(nil)

// Option sets a parameter for the provider.
type Option func(*Provider)

// Timeout sets the deadline applied to each remote call. Default: 10s.
func Timeout(d time.Duration) Option {
	return func(p *Provider) {
		p.timeout = d
	}
}

// Logger sets the logger of the provider. Default: no logging.
func Logger(l log.Logger) Option {
	return func(p *Provider) {
		p.logger = l
	}
}

// Provider reads the chain data needed to create and update a tendermint light
// client from a full node. It keeps no state between calls.
type Provider struct {
	client  RPCClient
	timeout time.Duration
	logger  log.Logger
}

// New creates a Provider using an rpchttp.HTTP client for remote. If no scheme is
// provided in the remote URL, http is used.
func New(remote string, options ...Option) (*Provider, error) {
	if !strings.Contains(remote, "://") {
		remote = "http://" + remote
	}

	httpClient, err := rpchttp.New(remote, "/websocket")
	if err != nil {
		return nil, sdkerrors.Wrapf(ErrFetchFailed, "failed to create rpc client for %s: %s", remote, err)
	}

	return NewWithClient(httpClient, options...), nil
}

// NewWithClient creates a Provider over a custom client.
func NewWithClient(client RPCClient, options ...Option) *Provider {
	p := &Provider{
		client:  client,
		timeout: DefaultTimeout,
		logger:  log.NewNopLogger(),
	}
	for _, o := range options {
		o(p)
	}
	p.logger = p.logger.With("module", ModuleName)
	return p
}

// ConsensusState returns the consensus state committed to by the block at height.
func (p *Provider) ConsensusState(ctx context.Context, height int64) (*ibctm.ConsensusState, error) {
	h, err := validateHeight(height)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, err := p.client.Block(ctx, h)
	if err != nil {
		return nil, fetchError("block", height, err)
	}
	if res == nil || res.Block == nil {
		return nil, fetchError("block", height, sdkerrors.Wrap(ErrInvalidResponse, "block is nil"))
	}

	header := res.Block.Header
	p.logger.Debug("fetched block", "height", header.Height)

	return ibctm.NewConsensusState(
		header.Time, commitmenttypes.NewMerkleRoot(header.AppHash), header.NextValidatorsHash,
	), nil
}

// SignedHeader returns the header and commit of the block at height.
func (p *Provider) SignedHeader(ctx context.Context, height int64) (*tmtypes.SignedHeader, error) {
	h, err := validateHeight(height)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, err := p.client.Commit(ctx, h)
	if err != nil {
		return nil, fetchError("commit", height, err)
	}
	if res == nil || res.Header == nil || res.Commit == nil {
		return nil, fetchError("commit", height, sdkerrors.Wrap(ErrInvalidResponse, "signed header is nil"))
	}

	p.logger.Debug("fetched signed header", "height", res.Header.Height)

	signedHeader := res.SignedHeader
	return &signedHeader, nil
}

// ValidatorSet returns the validator set of the block at height, draining every
// page of the validators query. When proposer is not empty it is set as the
// proposer of the returned set and must be one of its validators. Otherwise the
// set has no proposer.
func (p *Provider) ValidatorSet(ctx context.Context, height int64, proposer tmtypes.Address) (*tmtypes.ValidatorSet, error) {
	h, err := validateHeight(height)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var (
		vals    []*tmtypes.Validator
		perPage = maxPerPage
		page    = 1
		total   = -1
	)

	for len(vals) != total && page <= maxPages {
		res, err := p.client.Validators(ctx, h, &page, &perPage)
		if err != nil {
			return nil, fetchError("validators", height, err)
		}

		if res == nil || len(res.Validators) == 0 {
			return nil, fetchError("validators", height, sdkerrors.Wrapf(ErrInvalidResponse,
				"validator set is empty (page: %d, per_page: %d)", page, perPage))
		}
		if res.Total <= 0 {
			return nil, fetchError("validators", height, sdkerrors.Wrapf(ErrInvalidResponse,
				"total number of vals is <= 0: %d (page: %d, per_page: %d)", res.Total, page, perPage))
		}

		total = res.Total
		vals = append(vals, res.Validators...)
		page++
	}
	if len(vals) != total {
		return nil, fetchError("validators", height, sdkerrors.Wrapf(ErrInvalidResponse,
			"received %d of %d validators", len(vals), total))
	}

	if err := validateValidators(vals); err != nil {
		return nil, fetchError("validators", height, err)
	}

	valSet := &tmtypes.ValidatorSet{Validators: vals}
	if len(proposer) != 0 {
		_, val := valSet.GetByAddress(proposer)
		if val == nil {
			return nil, fetchError("validators", height, sdkerrors.Wrapf(ErrProposerNotFound, "proposer %s", proposer))
		}
		valSet.Proposer = val
	}

	p.logger.Debug("fetched validator set", "height", height, "validators", len(vals))

	return valSet, nil
}

// validateValidators runs the checks tmtypes.NewValidatorSet applies to a
// validator list, leaving the proposer unset.
func validateValidators(vals []*tmtypes.Validator) error {
	var (
		seen       = make(map[string]struct{}, len(vals))
		totalPower int64
	)
	for i, val := range vals {
		if err := val.ValidateBasic(); err != nil {
			return sdkerrors.Wrapf(ErrInvalidResponse, "invalid validator #%d: %s", i, err)
		}
		addr := string(val.Address)
		if _, ok := seen[addr]; ok {
			return sdkerrors.Wrapf(ErrInvalidResponse, "duplicate validator %s", val.Address)
		}
		seen[addr] = struct{}{}

		totalPower += val.VotingPower
		if totalPower > tmtypes.MaxTotalVotingPower {
			return sdkerrors.Wrapf(ErrInvalidResponse,
				"total voting power exceeds maximum %d", tmtypes.MaxTotalVotingPower)
		}
	}
	return nil
}

// LightClientUpdate returns a header updating a client trusting trustedHeight to
// the block at targetHeight. The trusted validators are the validator set of
// targetHeight+1, which the header commits to as its next validator set.
func (p *Provider) LightClientUpdate(ctx context.Context, trustedHeight clienttypes.Height, targetHeight int64) (*ibctm.Header, error) {
	if targetHeight <= 0 {
		return nil, sdkerrors.Wrapf(ErrInvalidFetchRange, "expected target height > 0, got %d", targetHeight)
	}

	var (
		signedHeader *tmtypes.SignedHeader
		valSet       *tmtypes.ValidatorSet
		trustedVals  *tmtypes.ValidatorSet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		signedHeader, err = p.SignedHeader(gctx, targetHeight)
		if err != nil {
			return err
		}
		valSet, err = p.ValidatorSet(gctx, targetHeight, signedHeader.Header.ProposerAddress)
		return err
	})
	g.Go(func() error {
		var err error
		trustedVals, err = p.ValidatorSet(gctx, targetHeight+1, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !bytes.Equal(signedHeader.Header.NextValidatorsHash, trustedVals.Hash()) {
		return nil, fetchError("validators", targetHeight+1, sdkerrors.Wrapf(ErrInvalidResponse,
			"validator set does not match next validators hash of height %d", targetHeight))
	}

	return &ibctm.Header{
		SignedHeader:      signedHeader,
		ValidatorSet:      valSet,
		TrustedHeight:     trustedHeight,
		TrustedValidators: trustedVals,
	}, nil
}

// LatestHeight returns the latest block height of the node. The revision number
// is parsed from the chain id reported by the node.
func (p *Provider) LatestHeight(ctx context.Context) (clienttypes.Height, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, err := p.client.Status(ctx)
	if err != nil {
		return clienttypes.ZeroHeight(), fetchError("status", 0, err)
	}
	if res == nil {
		return clienttypes.ZeroHeight(), fetchError("status", 0, sdkerrors.Wrap(ErrInvalidResponse, "status is nil"))
	}

	revision := clienttypes.ParseChainID(res.NodeInfo.Network)
	return clienttypes.NewHeight(revision, uint64(res.SyncInfo.LatestBlockHeight)), nil
}

// validateHeight returns a pointer to height, or nil for the latest block when
// height is zero.
func validateHeight(height int64) (*int64, error) {
	if height < 0 {
		return nil, sdkerrors.Wrapf(ErrInvalidFetchRange, "expected height >= 0, got height %d", height)
	}

	h := &height
	if height == 0 {
		h = nil
	}
	return h, nil
}
