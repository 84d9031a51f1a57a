// Package jsonrpc implements a minimal JSON-RPC 2.0 envelope and HTTP client
// for talking to Ethereum nodes.
package jsonrpc

import (
	"encoding/json"
	"fmt"
)

const Version = "2.0"

// Request is a JSON-RPC request envelope with positional params.
type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      uint64        `json:"id"`
}

// NewRequest returns a request for method with the given positional params.
// ID is left zero; Client.Do assigns one unless the caller sets it first.
func NewRequest(method string, params ...interface{}) *Request {
	if params == nil {
		// Marshals to [], not null
		params = []interface{}{}
	}

	return &Request{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
	}
}

// Error is the error object of a JSON-RPC response, as returned by the node.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("json-rpc error %d: %s", e.Code, e.Message)
}

// Response is a JSON-RPC response envelope. Result is left raw for the
// caller to decode into its own type.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}
