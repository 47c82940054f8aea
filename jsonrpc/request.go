// Package jsonrpc defines the eth_call envelope exchanged with the remote endpoint.
package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	Version    = "2.0"
	ActionCall = "eth_call"
	// BlockTag is fixed; calls always execute against the latest block.
	BlockTag = "latest"
)

type Request struct {
	RequestID  uint64     `json:"request_id"`
	Version    string     `json:"version"`
	Action     string     `json:"action"`
	Parameters CallParams `json:"parameters"`
}

type CallData struct {
	Recipient string `json:"recipient"`
	Payload   string `json:"payload"`
}

// CallParams is encoded as the positional pair [call, blockTag].
type CallParams struct {
	Call     CallData
	BlockTag string
}

func (p CallParams) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Call, p.BlockTag})
}

func (p *CallParams) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return errors.New("parameters: want [call, block tag]")
	}
	if err := json.Unmarshal(raw[0], &p.Call); err != nil {
		return fmt.Errorf("parameters: call: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.BlockTag); err != nil {
		return fmt.Errorf("parameters: block tag: %w", err)
	}
	return nil
}

func NewCallRequest(id uint64, recipient, payloadHex string) *Request {
	return &Request{
		RequestID: id,
		Version:   Version,
		Action:    ActionCall,
		Parameters: CallParams{
			Call: CallData{
				Recipient: recipient,
				Payload:   payloadHex,
			},
			BlockTag: BlockTag,
		},
	}
}

func (r *Request) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
