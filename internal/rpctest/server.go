// Package rpctest serves canned JSON-RPC responses over httptest so the
// ethclient-backed read path can be exercised without a live node. It
// understands just the methods the attestation pass needs: eth_call,
// eth_getCode, and eth_blockNumber.
package rpctest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Backend is a canned JSON-RPC node. Register results with SetCall/SetCode
// before dialing URL() with an ethclient. Unregistered calls fail with a
// JSON-RPC execution error, which is how a real node reports a revert.
type Backend struct {
	srv *httptest.Server

	mu    sync.Mutex
	calls map[string]hexutil.Bytes // target|payload -> return data
	codes map[string]hexutil.Bytes // target -> code
	block uint64
	reads int
}

// New starts the backend; callers must Close it.
func New() *Backend {
	b := &Backend{
		calls: make(map[string]hexutil.Bytes),
		codes: make(map[string]hexutil.Bytes),
		block: 1,
	}
	b.srv = httptest.NewServer(http.HandlerFunc(b.handle))
	return b
}

// URL is the endpoint to hand to ethclient.Dial.
func (b *Backend) URL() string { return b.srv.URL }

// Close shuts the server down.
func (b *Backend) Close() { b.srv.Close() }

// SetCall registers the return data for an eth_call against target with
// exactly this payload, and marks the target as having code.
func (b *Backend) SetCall(target common.Address, payload, ret []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[callKey(target, payload)] = append(hexutil.Bytes(nil), ret...)
	if _, ok := b.codes[addrKey(target)]; !ok {
		b.codes[addrKey(target)] = hexutil.Bytes{0xfe}
	}
}

// SetCode overrides the code reported for target; an empty code makes the
// target look like a plain account.
func (b *Backend) SetCode(target common.Address, code []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.codes[addrKey(target)] = append(hexutil.Bytes(nil), code...)
}

// Reads reports how many eth_call requests the backend has served.
func (b *Backend) Reads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads
}

func callKey(target common.Address, payload []byte) string {
	return addrKey(target) + "|" + hexutil.Encode(payload)
}

func addrKey(target common.Address) string {
	return strings.ToLower(target.Hex())
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type callArgs struct {
	To    string        `json:"to"`
	Data  hexutil.Bytes `json:"data"`
	Input hexutil.Bytes `json:"input"`
}

func (b *Backend) handle(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Method {
	case "eth_call":
		var args callArgs
		if len(req.Params) > 0 {
			_ = json.Unmarshal(req.Params[0], &args)
		}
		payload := args.Data
		if len(payload) == 0 {
			payload = args.Input
		}
		b.mu.Lock()
		b.reads++
		ret, ok := b.calls[strings.ToLower(args.To)+"|"+hexutil.Encode(payload)]
		b.mu.Unlock()
		if !ok {
			writeError(w, req.ID, "execution reverted")
			return
		}
		writeResult(w, req.ID, ret)

	case "eth_getCode":
		var addr string
		if len(req.Params) > 0 {
			_ = json.Unmarshal(req.Params[0], &addr)
		}
		b.mu.Lock()
		code := b.codes[strings.ToLower(addr)]
		b.mu.Unlock()
		writeResult(w, req.ID, code)

	case "eth_blockNumber":
		b.mu.Lock()
		n := b.block
		b.mu.Unlock()
		writeResult(w, req.ID, hexutil.Uint64(n))

	default:
		writeError(w, req.ID, "method not supported: "+req.Method)
	}
}

func writeResult(w http.ResponseWriter, id json.RawMessage, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

func writeError(w http.ResponseWriter, id json.RawMessage, msg string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]any{"code": -32000, "message": msg},
	})
}
