package search

import (
	"encoding/base64"
	"encoding/json"

	"github.com/marqed/marqed-server/internal/errors"
)

// Cursor marks the last item of a returned page for keyset pagination.
// The next page contains only items strictly after (Score, ID) in sort
// order. Opaque to callers; the encoding is not a contract.
type Cursor struct {
	Score float64 `json:"s"`
	ID    string  `json:"id"`
}

// Encode renders the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a cursor token. A malformed token is a caller
// error, reported as a validation failure.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.Validation("malformed cursor")
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == "" {
		return nil, errors.Validation("malformed cursor")
	}
	return &c, nil
}
