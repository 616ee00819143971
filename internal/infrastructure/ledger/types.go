package ledger

import (
	"encoding/json"
	"fmt"
)

// RPCRequest is a JSON-RPC 2.0 request envelope
type RPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

// RPCResponse is a JSON-RPC 2.0 response envelope
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      int             `json:"id"`
}

// RPCError is a JSON-RPC 2.0 error object
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Receipt statuses reported by the ledger node
const (
	ReceiptStatusConfirmed = "confirmed"
	ReceiptStatusFailed    = "failed"
)

// Receipt is the confirmation record for a submitted transaction.
// PolicyID or ClaimID carries the contract-assigned identifier depending
// on which operation the transaction performed.
type Receipt struct {
	TxHash      string `json:"tx_hash"`
	Status      string `json:"status"`
	BlockNumber uint64 `json:"block_number"`
	PolicyID    string `json:"policy_id,omitempty"`
	ClaimID     string `json:"claim_id,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Contract event names emitted by the insurance contract
const (
	EventPolicyCreated  = "PolicyCreated"
	EventClaimProcessed = "ClaimProcessed"
)

// Event is a contract event read from the ledger
type Event struct {
	Name        string `json:"name"`
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	PolicyID    string `json:"policy_id,omitempty"`
	ClaimID     string `json:"claim_id,omitempty"`
	Status      string `json:"status,omitempty"`
}
