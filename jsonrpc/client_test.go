package jsonrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoServer(t *testing.T, result string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := new(Request)
		require.NoError(t, json.NewDecoder(r.Body).Decode(req))

		_, _ = fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%s}`, req.ID, result)
	}))
}

func TestNewClient_EmptyUrl(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}

func TestNewRequest_NilParams(t *testing.T) {
	req := NewRequest("eth_blockNumber")
	require.NotNil(t, req.Params)

	reqJson, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"eth_blockNumber","params":[],"id":0}`, string(reqJson))
}

func TestDo_AssignsIDs(t *testing.T) {
	server := echoServer(t, `"0x64"`)
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	ctx := context.Background()

	resp, err := client.Do(ctx, NewRequest("eth_blockNumber"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), resp.ID)

	resp, err = client.Do(ctx, NewRequest("eth_blockNumber"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), resp.ID)
}

func TestDo_KeepsCallerID(t *testing.T) {
	server := echoServer(t, `"0x64"`)
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	req := NewRequest("eth_blockNumber")
	req.ID = 1337

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, uint64(1337), resp.ID)
}

func TestCallContext_DecodesResult(t *testing.T) {
	server := echoServer(t, `"0x64"`)
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	var head string
	require.NoError(t, client.CallContext(context.Background(), &head, "eth_blockNumber"))
	assert.Equal(t, "0x64", head)
}

func TestCallContext_NodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"invalid argument 0"}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	var head string
	err = client.CallContext(context.Background(), &head, "eth_blockNumber")
	require.Error(t, err)

	rpcErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, -32602, rpcErr.Code)
	assert.Contains(t, rpcErr.Error(), "invalid argument 0")
}

func TestCallContext_NilResult(t *testing.T) {
	server := echoServer(t, `null`)
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	assert.NoError(t, client.CallContext(context.Background(), nil, "eth_blockNumber"))
}
