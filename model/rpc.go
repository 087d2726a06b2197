package model

import "encoding/json"

type RPCResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func RPCOk() RPCResult {
	return RPCResult{Success: true}
}

func RPCFail(message string) RPCResult {
	return RPCResult{Success: false, Error: message}
}

type RPCOperation string

const (
	RPC_CLAIM_SEAT          RPCOperation = "claim-seat"
	RPC_LEAVE_SEAT          RPCOperation = "leave-seat"
	RPC_TOGGLE_READY        RPCOperation = "toggle-ready"
	RPC_TOGGLE_HAND         RPCOperation = "toggle-hand"
	RPC_SUBMIT_NIGHT_ACTION RPCOperation = "submit-night-action"
	RPC_SEND_MESSAGE        RPCOperation = "send-message"
)

// RPCRequest は参加者からの座席操作要求
type RPCRequest struct {
	SeatID      int             `json:"seatId"`
	UserName    string          `json:"userName,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	RecipientID string          `json:"recipientId,omitempty"`
	Content     string          `json:"content,omitempty"`
	IsPrivate   bool            `json:"isPrivate,omitempty"`
}
