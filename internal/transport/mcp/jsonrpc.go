// Package mcp — JSON-RPC 2.0 диспетчер MCP: рукопожатие, список и вызов
// инструментов, служебные методы.
package mcp

import (
	"bytes"
	"encoding/json"
)

const jsonRPCVersion = "2.0"

// Коды ошибок JSON-RPC, включая коды транспорта MCP.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeUnauthorized   = -32001
	CodeRateLimited    = -32002
)

var nullID = json.RawMessage("null")

// Request — запрос JSON-RPC. ID хранится как есть: число, строка или null.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response — ответ JSON-RPC; заполнено ровно одно из Result и Error.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError — объект ошибки JSON-RPC. Data — сообщение для пользователя.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	if s, ok := e.Data.(string); ok && s != "" {
		return e.Message + ": " + s
	}
	return e.Message
}

// NewResult — успешный ответ.
func NewResult(id json.RawMessage, result any) Response {
	return Response{JSONRPC: jsonRPCVersion, ID: normalizeID(id), Result: result}
}

// NewError — ответ-ошибка.
func NewError(id json.RawMessage, code int, message string, data any) Response {
	return Response{
		JSONRPC: jsonRPCVersion,
		ID:      normalizeID(id),
		Error:   &RPCError{Code: code, Message: message, Data: data},
	}
}

// ParseRequest — разбор тела запроса. При ошибке возвращается готовый ответ.
func ParseRequest(body []byte) (Request, *Response) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		resp := NewError(nil, CodeParseError, "Parse error", err.Error())
		return Request{}, &resp
	}
	if req.Method == "" {
		resp := NewError(req.ID, CodeInvalidRequest, "Invalid Request", "Missing method")
		return Request{}, &resp
	}
	return req, nil
}

func normalizeID(id json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(id)) == 0 {
		return nullID
	}
	return id
}
