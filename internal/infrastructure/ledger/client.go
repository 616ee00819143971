// Package ledger provides the JSON-RPC gateway to the insurance contract
// running on the blockchain node.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/coverledger/coverledger-backend/internal/domain/errors"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
)

// Default confirmation parameters
const (
	DefaultConfirmTimeout  = 2 * time.Minute
	DefaultConfirmInterval = 2 * time.Second
)

// Config holds ledger client configuration
type Config struct {
	RPCURL          string
	ContractAddress string
	ConfirmTimeout  time.Duration
	ConfirmInterval time.Duration
	Timeout         time.Duration
}

// Client talks JSON-RPC 2.0 to the ledger node
type Client struct {
	rpcURL          string
	contractAddress string
	confirmTimeout  time.Duration
	confirmInterval time.Duration
	httpClient      *http.Client
	logger          *zap.Logger
}

// NewClient creates a new ledger client
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC URL required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	confirmTimeout := cfg.ConfirmTimeout
	if confirmTimeout <= 0 {
		confirmTimeout = DefaultConfirmTimeout
	}
	confirmInterval := cfg.ConfirmInterval
	if confirmInterval <= 0 {
		confirmInterval = DefaultConfirmInterval
	}

	return &Client{
		rpcURL:          cfg.RPCURL,
		contractAddress: cfg.ContractAddress,
		confirmTimeout:  confirmTimeout,
		confirmInterval: confirmInterval,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

// call makes a JSON-RPC call to the ledger node
func (c *Client) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	req := RPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	return rpcResp.Result, nil
}

// BlockNumber returns the current block height of the ledger
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	result, err := c.call(ctx, "chain_blockNumber", nil)
	if err != nil {
		return 0, domainErrors.NewLedgerError("failed to read block number").WithCause(err)
	}

	var height uint64
	if err := json.Unmarshal(result, &height); err != nil {
		return 0, domainErrors.NewLedgerError("malformed block number response").WithCause(err)
	}
	return height, nil
}

// CreatePolicy submits a policy creation transaction and waits for the
// contract-assigned policy identifier.
func (c *Client) CreatePolicy(ctx context.Context, holder values.WalletAddress, coverage, premium values.Money, durationDays int) (string, error) {
	params := []any{map[string]any{
		"contract":      c.contractAddress,
		"holder":        holder.String(),
		"coverage":      coverage.Amount().StringFixed(2),
		"premium":       premium.Amount().StringFixed(2),
		"duration_days": durationDays,
	}}

	txHash, err := c.submit(ctx, "insurance_createPolicy", params)
	if err != nil {
		return "", err
	}

	receipt, err := c.waitForReceipt(ctx, txHash)
	if err != nil {
		return "", err
	}
	if receipt.PolicyID == "" {
		return "", domainErrors.NewLedgerError("receipt missing policy identifier")
	}

	c.logger.Info("policy created on ledger",
		zap.String("tx_hash", txHash),
		zap.String("policy_id", receipt.PolicyID),
		zap.Uint64("block", receipt.BlockNumber),
	)
	return receipt.PolicyID, nil
}

// ProcessClaim submits a claim transaction against an existing policy and
// waits for the contract-assigned claim identifier.
func (c *Client) ProcessClaim(ctx context.Context, policyID string, amount values.Money, evidenceHash values.EvidenceHash) (string, error) {
	args := map[string]any{
		"contract":  c.contractAddress,
		"policy_id": policyID,
		"amount":    amount.Amount().StringFixed(2),
	}
	if !evidenceHash.IsZero() {
		args["evidence_hash"] = evidenceHash.String()
	}

	txHash, err := c.submit(ctx, "insurance_processClaim", []any{args})
	if err != nil {
		return "", err
	}

	receipt, err := c.waitForReceipt(ctx, txHash)
	if err != nil {
		return "", err
	}
	if receipt.ClaimID == "" {
		return "", domainErrors.NewLedgerError("receipt missing claim identifier")
	}

	c.logger.Info("claim submitted on ledger",
		zap.String("tx_hash", txHash),
		zap.String("claim_id", receipt.ClaimID),
		zap.Uint64("block", receipt.BlockNumber),
	)
	return receipt.ClaimID, nil
}

// Events returns contract events in the block range [fromBlock, toBlock]
func (c *Client) Events(ctx context.Context, fromBlock, toBlock uint64) ([]Event, error) {
	params := []any{map[string]any{
		"contract":   c.contractAddress,
		"from_block": fromBlock,
		"to_block":   toBlock,
	}}

	result, err := c.call(ctx, "insurance_getEvents", params)
	if err != nil {
		return nil, domainErrors.NewLedgerError("failed to read contract events").WithCause(err)
	}

	var events []Event
	if err := json.Unmarshal(result, &events); err != nil {
		return nil, domainErrors.NewLedgerError("malformed events response").WithCause(err)
	}
	return events, nil
}

// submit broadcasts a transaction and returns its hash
func (c *Client) submit(ctx context.Context, method string, params []any) (string, error) {
	result, err := c.call(ctx, method, params)
	if err != nil {
		return "", domainErrors.NewLedgerError("transaction submission failed").WithCause(err)
	}

	var response struct {
		TxHash string `json:"tx_hash"`
	}
	if err := json.Unmarshal(result, &response); err != nil {
		return "", domainErrors.NewLedgerError("malformed submission response").WithCause(err)
	}
	if response.TxHash == "" {
		return "", domainErrors.NewLedgerError("node returned empty transaction hash")
	}
	return response.TxHash, nil
}

// waitForReceipt polls for a transaction receipt until the transaction is
// confirmed, fails, or the confirmation timeout expires. A null receipt
// means the transaction is still pending and is retried.
func (c *Client) waitForReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	wctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.confirmInterval)
	defer ticker.Stop()

	for {
		select {
		case <-wctx.Done():
			return nil, domainErrors.NewLedgerError(
				fmt.Sprintf("transaction %s not confirmed within %s", txHash, c.confirmTimeout),
			).WithCause(wctx.Err())
		case <-ticker.C:
			receipt, err := c.getReceipt(wctx, txHash)
			if err != nil {
				return nil, err
			}
			if receipt == nil {
				continue
			}
			if receipt.Status != ReceiptStatusConfirmed {
				msg := fmt.Sprintf("transaction %s rejected by contract", txHash)
				if receipt.Reason != "" {
					msg = fmt.Sprintf("%s: %s", msg, receipt.Reason)
				}
				return nil, domainErrors.NewLedgerError(msg)
			}
			return receipt, nil
		}
	}
}

func (c *Client) getReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	result, err := c.call(ctx, "chain_getTransactionReceipt", []any{txHash})
	if err != nil {
		return nil, domainErrors.NewLedgerError("failed to read transaction receipt").WithCause(err)
	}

	if len(result) == 0 || string(result) == "null" {
		return nil, nil
	}

	var receipt Receipt
	if err := json.Unmarshal(result, &receipt); err != nil {
		return nil, domainErrors.NewLedgerError("malformed receipt response").WithCause(err)
	}
	return &receipt, nil
}
