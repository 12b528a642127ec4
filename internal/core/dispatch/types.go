package dispatch

import (
	"encoding/json"
	"fmt"
)

// QuestionItem is one entry of a batch request.
type QuestionItem struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

// AnswerItem pairs a question id with its generated answer. The id is
// copied verbatim from the matching QuestionItem.
type AnswerItem struct {
	ID     string `json:"id"`
	Answer string `json:"answer"`
}

// Kind identifies which of the recognized payload shapes a request body
// exhibits. Shapes are checked by top-level key in a fixed priority:
// questions > question > presets.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindBatch
	KindSingle
	KindPresets
)

// Presets carries the decoded presets object. HistoryAccepted is kept as
// the raw decoded JSON value; it is reduced to a bool at update time.
type Presets struct {
	HistoryAccepted    any
	HasHistoryAccepted bool
}

// Payload is a request body decoded into a tagged union of the three
// recognized shapes.
type Payload struct {
	Kind Kind

	Questions []QuestionItem // KindBatch
	Question  string         // KindSingle
	Presets   Presets        // KindPresets

	// HasChatHistory records presence of the chat_history key, which
	// gates batch and single handling.
	HasChatHistory bool
}

// Response bodies. The wire shapes are fixed; the "Sucessfully" typo in
// MsgPresetsUpdated is part of the contract.
type ErrorBody struct {
	Error string `json:"error"`
}

type BatchAnswerBody struct {
	Answer []AnswerItem `json:"answer"`
}

type SingleAnswerBody struct {
	Answer string `json:"answer"`
}

type PresetsBody struct {
	Response string `json:"response"`
	Message  string `json:"message"`
}

const (
	MsgHistoryNotAccepted = "History is not accepted"
	MsgMissingParameter   = "Missing parameter."
	MsgAnswerFailed       = "An error occurred while processing the question."
	MsgPresetsUpdated     = "Sucessfully updated"
	MsgInternalError      = "Error occurred while processing the request"
)

// DecodePayload parses a JSON request body into a Payload. A body whose
// recognized key holds a value of the wrong type is a decode error; the
// caller surfaces it through the outermost safety net.
func DecodePayload(body []byte) (Payload, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}

	var p Payload
	_, p.HasChatHistory = top["chat_history"]

	if raw, ok := top["questions"]; ok {
		p.Kind = KindBatch
		if err := json.Unmarshal(raw, &p.Questions); err != nil {
			return Payload{}, fmt.Errorf("decode questions: %w", err)
		}
		// JSON null unmarshals into a nil slice without error, but a
		// null value is not an iterable sequence of items.
		if p.Questions == nil {
			return Payload{}, fmt.Errorf("decode questions: null is not a sequence")
		}
		return p, nil
	}

	if raw, ok := top["question"]; ok {
		p.Kind = KindSingle
		if err := json.Unmarshal(raw, &p.Question); err != nil {
			return Payload{}, fmt.Errorf("decode question: %w", err)
		}
		return p, nil
	}

	if raw, ok := top["presets"]; ok {
		p.Kind = KindPresets
		var presets map[string]any
		if err := json.Unmarshal(raw, &presets); err != nil {
			return Payload{}, fmt.Errorf("decode presets: %w", err)
		}
		p.Presets.HistoryAccepted, p.Presets.HasHistoryAccepted = presets["history_accepted"]
		return p, nil
	}

	p.Kind = KindUnrecognized
	return p, nil
}

// truthy reduces a decoded JSON value to a bool: false, 0, "", null and
// empty arrays/objects are false, everything else true.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}
