package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// PayloadTypeField is the discriminator key in every MyGet webhook body
const PayloadTypeField = "PayloadType"

// Payload is an incoming webhook body, kept untyped so provider-specific
// fields pass through to the build job untouched
type Payload map[string]interface{}

// DecodePayload parses a JSON object. Numbers stay json.Number so that
// Encode reproduces the sender's literals.
func DecodePayload(body []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload Payload
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if payload == nil {
		return nil, errors.New("failed to decode payload: not a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("failed to decode payload: trailing data after JSON object")
	}

	return payload, nil
}

// Type returns the discriminator, or "" when absent or not a string
func (p Payload) Type() string {
	if p == nil {
		return ""
	}
	s, _ := p[PayloadTypeField].(string)
	return s
}

// Encode serializes the payload as compact JSON without HTML escaping
func (p Payload) Encode() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
