package ledger

import (
	"encoding/json"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }

// ensureJSON returns a valid JSON object, defaulting to "{}".
func ensureJSON(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return raw
}

// mergeMeta merges extra keys into a metadata object. Keys in extra win.
func mergeMeta(raw json.RawMessage, extra map[string]interface{}) json.RawMessage {
	base := map[string]interface{}{}
	if len(raw) > 0 {
		// Ignore malformed input rather than fail the command.
		_ = json.Unmarshal(raw, &base)
	}
	for k, v := range extra {
		base[k] = v
	}
	merged, err := json.Marshal(base)
	if err != nil {
		return ensureJSON(raw)
	}
	return merged
}
