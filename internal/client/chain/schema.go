package chain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/podguild/internal/common"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// moveCallResult is the unsafe_moveCall response.
type moveCallResult struct {
	TxBytes string `json:"txBytes"`
}

func (r *moveCallResult) decode() ([]byte, error) {
	if r.TxBytes == "" {
		return nil, fmt.Errorf("%w: missing txBytes", common.ErrMalformedResponse)
	}
	b, err := base64.StdEncoding.DecodeString(r.TxBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: txBytes: %w", common.ErrMalformedResponse, err)
	}
	return b, nil
}

type executionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// txBlockResponse is shared by sui_executeTransactionBlock and
// sui_getTransactionBlock.
type txBlockResponse struct {
	Digest  string `json:"digest"`
	Effects *struct {
		Status executionStatus `json:"status"`
	} `json:"effects"`
	Errors []string `json:"errors,omitempty"`
}

func (r *txBlockResponse) validate() error {
	if r.Digest == "" {
		return fmt.Errorf("%w: missing digest", common.ErrMalformedResponse)
	}
	if r.Effects == nil {
		return fmt.Errorf("%w: missing effects for %s", common.ErrMalformedResponse, r.Digest)
	}
	switch r.Effects.Status.Status {
	case statusSuccess, statusFailure:
		return nil
	default:
		return fmt.Errorf("%w: unknown status %q for %s", common.ErrMalformedResponse, r.Effects.Status.Status, r.Digest)
	}
}

// failure returns the node's error message when execution failed.
func (r *txBlockResponse) failure() (string, bool) {
	if r.Effects.Status.Status != statusFailure {
		return "", false
	}
	msg := r.Effects.Status.Error
	if msg == "" {
		msg = "execution failed"
	}
	return msg, true
}

// ObjectData is an on-chain object as returned with showContent and showType.
type ObjectData struct {
	ObjectID string          `json:"objectId"`
	Version  string          `json:"version"`
	Type     string          `json:"type"`
	Owner    json.RawMessage `json:"owner,omitempty"`
	Content  *MoveContent    `json:"content"`
}

// MoveContent is the parsed Move struct of an object.
type MoveContent struct {
	DataType string                     `json:"dataType"`
	Type     string                     `json:"type"`
	Fields   map[string]json.RawMessage `json:"fields"`
}

func (o *ObjectData) validate() error {
	if o.ObjectID == "" {
		return fmt.Errorf("%w: object without objectId", common.ErrMalformedResponse)
	}
	if o.Content == nil || o.Content.Fields == nil {
		return fmt.Errorf("%w: object %s has no content", common.ErrMalformedResponse, o.ObjectID)
	}
	return nil
}

// objectResponse wraps one entry of sui_multiGetObjects or
// suix_getOwnedObjects. Data is nil for deleted or missing objects.
type objectResponse struct {
	Data  *ObjectData     `json:"data"`
	Error json.RawMessage `json:"error,omitempty"`
}

type ownedObjectsPage struct {
	Data        []objectResponse `json:"data"`
	NextCursor  *string          `json:"nextCursor"`
	HasNextPage bool             `json:"hasNextPage"`
}

// Event is a Move event with its parsed JSON payload.
type Event struct {
	ID struct {
		TxDigest string `json:"txDigest"`
		EventSeq string `json:"eventSeq"`
	} `json:"id"`
	Type        string                     `json:"type"`
	Sender      string                     `json:"sender"`
	ParsedJSON  map[string]json.RawMessage `json:"parsedJson"`
	TimestampMs string                     `json:"timestampMs"`
}

func (e *Event) validate() error {
	if e.Type == "" || e.ParsedJSON == nil {
		return fmt.Errorf("%w: event without type or payload", common.ErrMalformedResponse)
	}
	return nil
}

type eventsPage struct {
	Data        []Event `json:"data"`
	HasNextPage bool    `json:"hasNextPage"`
}

// ---- field decoding ----

// fieldString reads a string field. Missing or null fields read as "".
func fieldString(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// ID and UID fields come as {"id": "0x.."}.
	var wrapped struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.ID != nil {
		return fieldString(map[string]json.RawMessage{"id": wrapped.ID}, "id")
	}
	return ""
}

// fieldUint reads a u8/u64 field, which the node renders as a number or a
// decimal string.
func fieldUint(fields map[string]json.RawMessage, name string) uint64 {
	raw, ok := fields[name]
	if !ok {
		return 0
	}
	var n uint64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		n, _ = strconv.ParseUint(s, 10, 64)
	}
	return n
}

// optionValue unwraps an Option<T> field. Depending on the node version it is
// rendered as the bare value, null, {"vec": [...]} or {"fields": {"vec": [...]}}.
func optionValue(fields map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return nil, false
	}
	var opt struct {
		Vec    []json.RawMessage `json:"vec"`
		Fields *struct {
			Vec []json.RawMessage `json:"vec"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(raw, &opt); err != nil {
		return raw, true
	}
	vec := opt.Vec
	if opt.Fields != nil {
		vec = opt.Fields.Vec
	}
	if len(vec) == 0 {
		return nil, false
	}
	return vec[0], true
}

func fieldOptionString(fields map[string]json.RawMessage, name string) string {
	v, ok := optionValue(fields, name)
	if !ok {
		return ""
	}
	return fieldString(map[string]json.RawMessage{name: v}, name)
}

func fieldOptionUint(fields map[string]json.RawMessage, name string) uint64 {
	v, ok := optionValue(fields, name)
	if !ok {
		return 0
	}
	return fieldUint(map[string]json.RawMessage{name: v}, name)
}

func fieldStrings(fields map[string]json.RawMessage, name string) []string {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
