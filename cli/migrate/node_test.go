package migrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// testVersion is a getversion reply of a single-validator network with fast
// blocks, so that transaction awaiting doesn't take long.
const testVersion = `{"nonce":1677922561,"protocol":{"addressversion":53,"initialgasdistribution":5200000000000000,"maxtraceableblocks":2102400,"maxtransactionsperblock":512,"maxvaliduntilblockincrement":5760,"memorypoolmaxtransactions":50000,"msperblock":100,"network":` + testNet + `,"validatorscount":1},"tcpport":10333,"useragent":"/NEO-GO:0.104.0/","wsport":10334}`

// testNode is a JSON-RPC server answering requests needed to deploy
// contracts. Every sent transaction is accepted and HALTs.
type testNode struct {
	*httptest.Server

	lock sync.Mutex
	sent []*transaction.Transaction
}

type testRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func newTestNode(t *testing.T) *testNode {
	n := &testNode{}
	n.Server = httptest.NewServer(http.HandlerFunc(n.handle))
	t.Cleanup(n.Close)
	return n
}

// Sent returns all transactions received by the node.
func (n *testNode) Sent() []*transaction.Transaction {
	n.lock.Lock()
	defer n.lock.Unlock()
	res := make([]*transaction.Transaction, len(n.sent))
	copy(res, n.sent)
	return res
}

func (n *testNode) handle(w http.ResponseWriter, req *http.Request) {
	var r testRequest
	if err := json.NewDecoder(req.Body).Decode(&r); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(r.ID) == 0 {
		r.ID = json.RawMessage("1")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	res, err := n.reply(r.Method, r.Params)
	if err != nil {
		msg, _ := json.Marshal(err.Error())
		_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-100,"message":%s}}`, r.ID, msg)
		return
	}
	_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, r.ID, res)
}

func (n *testNode) reply(method string, params []json.RawMessage) (string, error) {
	switch method {
	case "getversion":
		return testVersion, nil
	case "getnativecontracts":
		return "[]", nil
	case "getblockcount":
		return "10", nil
	case "calculatenetworkfee":
		return `{"networkfee":"100000"}`, nil
	case "invokescript":
		if len(params) == 0 {
			return "", errors.New("no script given")
		}
		return `{"state":"HALT","gasconsumed":"1000000","script":` + string(params[0]) + `,"stack":[]}`, nil
	case "sendrawtransaction":
		if len(params) == 0 {
			return "", errors.New("no transaction given")
		}
		var raw []byte
		if err := json.Unmarshal(params[0], &raw); err != nil {
			return "", err
		}
		tx, err := transaction.NewTransactionFromBytes(raw)
		if err != nil {
			return "", err
		}
		n.lock.Lock()
		n.sent = append(n.sent, tx)
		n.lock.Unlock()
		return `{"hash":"0x` + tx.Hash().StringLE() + `"}`, nil
	case "getapplicationlog":
		if len(params) == 0 {
			return "", errors.New("no hash given")
		}
		var s string
		if err := json.Unmarshal(params[0], &s); err != nil {
			return "", err
		}
		h, err := util.Uint256DecodeStringLE(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return "", err
		}
		if !n.known(h) {
			return "", errors.New("Unknown transaction")
		}
		return `{"txid":"0x` + h.StringLE() + `","executions":[{"trigger":"Application","vmstate":"HALT","gasconsumed":"1000000","stack":[],"notifications":[]}]}`, nil
	default:
		return "", fmt.Errorf("method %s is not supported", method)
	}
}

func (n *testNode) known(h util.Uint256) bool {
	n.lock.Lock()
	defer n.lock.Unlock()
	for _, tx := range n.sent {
		if tx.Hash().Equals(h) {
			return true
		}
	}
	return false
}
