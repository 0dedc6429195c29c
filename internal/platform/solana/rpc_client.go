// Package solana is a minimal JSON-RPC client for checking payment signatures.
package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/greenova8-investment-ledger/internal/domain/payment"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// RPCError is an error object returned by the node
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("solana rpc error %d: %s", e.Code, e.Message)
}

// SignatureStatus is the commitment state of one transaction signature
type SignatureStatus struct {
	Signature string
	Status    payment.Status
	Slot      uint64
}

// Transfer is the native SOL movement of a transaction, read from its balance changes.
// The payer is the first account key and the receiver the second.
type Transfer struct {
	AmountLamports int64
	From           string
	To             string
}

// Client verifies payment signatures on chain
type Client interface {
	GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error)
	GetTransfer(ctx context.Context, signature string) (*Transfer, error)
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

type signatureStatusesResult struct {
	Value []*struct {
		Slot               uint64          `json:"slot"`
		Err                json.RawMessage `json:"err"`
		ConfirmationStatus string          `json:"confirmationStatus"`
	} `json:"value"`
}

type transactionResult struct {
	Meta *struct {
		Err          json.RawMessage `json:"err"`
		PreBalances  []int64         `json:"preBalances"`
		PostBalances []int64         `json:"postBalances"`
	} `json:"meta"`
	Transaction struct {
		Message struct {
			AccountKeys []string `json:"accountKeys"`
		} `json:"message"`
	} `json:"transaction"`
}

// RPCClient talks to a Solana node over HTTP JSON-RPC 2.0
type RPCClient struct {
	url    string
	client *http.Client
	nextID atomic.Uint64
}

// NewRPCClient creates a client for the node at url
func NewRPCClient(url string, timeout time.Duration) *RPCClient {
	return &RPCClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// GetSignatureStatus maps getSignatureStatuses onto a payment status. A signature unknown to the
// node is reported as not_found, one whose transaction failed as failed.
func (c *RPCClient) GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error) {
	var result signatureStatusesResult
	params := []interface{}{
		[]string{signature},
		map[string]bool{"searchTransactionHistory": true},
	}
	if err := c.call(ctx, "getSignatureStatuses", params, &result); err != nil {
		return nil, err
	}

	status := &SignatureStatus{Signature: signature, Status: payment.StatusNotFound}
	if len(result.Value) == 0 || result.Value[0] == nil {
		return status, nil
	}

	v := result.Value[0]
	status.Slot = v.Slot
	switch {
	case hasError(v.Err):
		status.Status = payment.StatusFailed
	case v.ConfirmationStatus == string(payment.StatusFinalized):
		status.Status = payment.StatusFinalized
	case v.ConfirmationStatus == string(payment.StatusConfirmed):
		status.Status = payment.StatusConfirmed
	default:
		status.Status = payment.StatusProcessed
	}
	return status, nil
}

// GetTransfer reads the payer's balance drop from getTransaction
func (c *RPCClient) GetTransfer(ctx context.Context, signature string) (*Transfer, error) {
	var result *transactionResult
	params := []interface{}{
		signature,
		map[string]interface{}{
			"encoding":                       "json",
			"commitment":                     "confirmed",
			"maxSupportedTransactionVersion": 0,
		},
	}
	if err := c.call(ctx, "getTransaction", params, &result); err != nil {
		return nil, err
	}
	if result == nil || result.Meta == nil {
		return nil, ErrTransactionNotFound
	}

	transfer := &Transfer{}
	if len(result.Meta.PreBalances) > 0 && len(result.Meta.PostBalances) > 0 {
		if diff := result.Meta.PreBalances[0] - result.Meta.PostBalances[0]; diff > 0 {
			transfer.AmountLamports = diff
		}
	}
	keys := result.Transaction.Message.AccountKeys
	if len(keys) > 0 {
		transfer.From = keys[0]
	}
	if len(keys) > 1 {
		transfer.To = keys[1]
	}
	return transfer, nil
}

func (c *RPCClient) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", method, resp.StatusCode, string(snippet))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

func hasError(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
