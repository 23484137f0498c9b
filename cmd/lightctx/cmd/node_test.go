package cmd_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/spf13/cast"
	tmjson "github.com/tendermint/tendermint/libs/json"
	"github.com/tendermint/tendermint/p2p"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	tmtypes "github.com/tendermint/tendermint/types"

	ibctm "github.com/cosmos/ibc-lightctx/modules/light-clients/07-tendermint"
)

// fakeNode answers the JSON-RPC requests of the tendermint HTTP client from
// the headers of a test chain.
type fakeNode struct {
	mtx     sync.Mutex
	chainID string
	headers map[int64]*ibctm.Header
	latest  int64
}

func newFakeNode(chainID string) *fakeNode {
	return &fakeNode{
		chainID: chainID,
		headers: make(map[int64]*ibctm.Header),
	}
}

func (n *fakeNode) addHeader(header *ibctm.Header) {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	n.headers[header.Header.Height] = header
	if header.Header.Height > n.latest {
		n.latest = header.Header.Height
	}
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage        `json:"id"`
		Method string                 `json:"method"`
		Params map[string]interface{} `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
	}

	result, err := n.handle(req.Method, req.Params)
	if err == nil {
		var bz []byte
		bz, err = tmjson.Marshal(result)
		resp["result"] = json.RawMessage(bz)
	}
	if err != nil {
		delete(resp, "result")
		resp["error"] = map[string]interface{}{
			"code":    -32603,
			"message": "Internal error",
			"data":    err.Error(),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (n *fakeNode) handle(method string, params map[string]interface{}) (interface{}, error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	switch method {
	case "status":
		return &ctypes.ResultStatus{
			NodeInfo: p2p.DefaultNodeInfo{Network: n.chainID},
			SyncInfo: ctypes.SyncInfo{LatestBlockHeight: n.latest},
		}, nil

	case "block":
		header, err := n.header(params)
		if err != nil {
			return nil, err
		}
		return &ctypes.ResultBlock{
			BlockID: header.Commit.BlockID,
			Block:   &tmtypes.Block{Header: *header.Header},
		}, nil

	case "commit":
		header, err := n.header(params)
		if err != nil {
			return nil, err
		}
		return &ctypes.ResultCommit{
			SignedHeader:    *header.SignedHeader,
			CanonicalCommit: true,
		}, nil

	case "validators":
		header, err := n.header(params)
		if err != nil {
			return nil, err
		}
		vals := header.ValidatorSet.Copy().Validators
		return &ctypes.ResultValidators{
			BlockHeight: header.Header.Height,
			Validators:  vals,
			Count:       len(vals),
			Total:       len(vals),
		}, nil

	default:
		return nil, fmt.Errorf("method %s not found", method)
	}
}

func (n *fakeNode) header(params map[string]interface{}) (*ibctm.Header, error) {
	height := n.latest
	if raw, ok := params["height"]; ok && raw != nil {
		h, err := cast.ToInt64E(raw)
		if err != nil {
			return nil, err
		}
		height = h
	}

	header, ok := n.headers[height]
	if !ok {
		return nil, fmt.Errorf("height %d must be less than or equal to the current blockchain height %d", height, n.latest)
	}
	return header, nil
}
