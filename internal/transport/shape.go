package transport

import (
	"encoding/json"
	"fmt"

	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/agentfashion/storefront/pkg/types"
)

type shapeKind int

const (
	shapeDiscard shapeKind = iota
	shapePayload
	shapeInfo
	shapeEnvelope
)

// Shape declares which part of a success body a call site wants decoded.
type Shape struct {
	kind shapeKind
	key  string
}

// Payload decodes info[key], e.g. Payload("cart_items").
func Payload(key string) Shape {
	return Shape{kind: shapePayload, key: key}
}

// Info decodes the whole info object. Used for auth grants, {success, message}
// pairs and paginated listings.
func Info() Shape {
	return Shape{kind: shapeInfo}
}

// Envelope decodes {message, info}.
func Envelope() Shape {
	return Shape{kind: shapeEnvelope}
}

// Discard ignores the body.
func Discard() Shape {
	return Shape{kind: shapeDiscard}
}

func (s Shape) String() string {
	switch s.kind {
	case shapePayload:
		return "payload(" + s.key + ")"
	case shapeInfo:
		return "info"
	case shapeEnvelope:
		return "envelope"
	}
	return "discard"
}

func (s Shape) decode(env *types.Envelope, out any) error {
	if s.kind == shapeDiscard || out == nil {
		return nil
	}
	switch s.kind {
	case shapeEnvelope:
		if target, ok := out.(*types.Envelope); ok {
			*target = *env
			return nil
		}
		return decodeRaw(mustMarshal(env), out, s)
	case shapeInfo:
		if len(env.Info) == 0 {
			return pkgerrors.New(pkgerrors.CodeDependency, "response carries no info object")
		}
		return decodeRaw(env.Info, out, s)
	case shapePayload:
		raw, ok, err := env.InfoKey(s.key)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response info")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("response info missing %q", s.key))
		}
		return decodeRaw(raw, out, s)
	}
	return nil
}

func decodeRaw(raw json.RawMessage, out any, s Shape) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response "+s.String())
	}
	return nil
}

func mustMarshal(env *types.Envelope) json.RawMessage {
	raw, _ := json.Marshal(env)
	return raw
}
