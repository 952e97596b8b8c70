package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcHandler func(params json.RawMessage) (interface{}, *rpcError)

// fakeNode is a minimal Solana JSON-RPC node backed by canned handlers.
type fakeNode struct {
	*httptest.Server

	mu       sync.Mutex
	methods  []string
	handlers map[string]rpcHandler
}

var (
	fakeBlockhash = solana.Hash{4, 2}
	fakeSignature = solana.Signature{1, 2, 3, 4, 5}
)

// newFakeNode starts a node that accepts every transaction and reports it confirmed.
func newFakeNode(t *testing.T) *fakeNode {
	t.Helper()

	n := &fakeNode{
		handlers: map[string]rpcHandler{
			"getLatestBlockhash": func(json.RawMessage) (interface{}, *rpcError) {
				return map[string]interface{}{
					"context": map[string]interface{}{"slot": 100},
					"value": map[string]interface{}{
						"blockhash":            fakeBlockhash.String(),
						"lastValidBlockHeight": 250,
					},
				}, nil
			},
			"sendTransaction": func(json.RawMessage) (interface{}, *rpcError) {
				return fakeSignature.String(), nil
			},
			"getSignatureStatuses": func(json.RawMessage) (interface{}, *rpcError) {
				return map[string]interface{}{
					"context": map[string]interface{}{"slot": 101},
					"value": []interface{}{
						map[string]interface{}{
							"slot":               101,
							"confirmations":      nil,
							"err":                nil,
							"confirmationStatus": "confirmed",
						},
					},
				}, nil
			},
			"getBlockHeight": func(json.RawMessage) (interface{}, *rpcError) {
				return 150, nil
			},
		},
	}
	n.Server = httptest.NewServer(http.HandlerFunc(n.serveHTTP))
	t.Cleanup(n.Close)
	return n
}

func (n *fakeNode) handle(method string, h rpcHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

func (n *fakeNode) calls() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.methods...)
}

func (n *fakeNode) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.methods = append(n.methods, req.Method)
	h, ok := n.handlers[req.Method]
	n.mu.Unlock()

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if !ok {
		resp["error"] = &rpcError{Code: -32601, Message: "Method not found"}
	} else if result, rerr := h(req.Params); rerr != nil {
		resp["error"] = rerr
	} else {
		resp["result"] = result
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// envMap returns a getenv function backed by a map.
func envMap(vars map[string]string) func(string) string {
	return func(key string) string {
		return vars[key]
	}
}

// runApp runs the CLI with the given environment and returns what it wrote to stdout.
func runApp(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	out, _, err := runAppWithStderr(t, env, args...)
	return out, err
}

// runAppWithStderr is runApp that also returns what the CLI wrote to stderr.
func runAppWithStderr(t *testing.T, env map[string]string, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	app := newApp(envMap(env))
	app.Writer = &out
	app.ErrWriter = &errOut

	argv := append([]string{"solping", "--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...)
	err := app.Run(argv)
	return out.String(), errOut.String(), err
}

func newTestKey(t *testing.T) solana.PrivateKey {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}
