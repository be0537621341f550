package pocket

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID identifies a record in the book.
type ID string

// NewID returns a new random identifier.
func NewID() ID { return ID(uuid.NewString()) }

// UnmarshalJSON accepts both strings and numbers, older backups used numeric identifiers.
func (id *ID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = ID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid identifier %s: %w", data, err)
	}
	*id = ID(s)
	return nil
}
