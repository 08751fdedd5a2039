package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/eregs/regcore/pkg/compress"
)

// CompressedJSON is a JSON column stored through the opaque blob codec.
// Notice bodies, layer annotations and diffs are large and read rarely, so
// they are compressed at rest; in Go they behave like raw JSON.
type CompressedJSON json.RawMessage

// Value implements driver.Valuer: validates and compresses for storage.
func (c CompressedJSON) Value() (driver.Value, error) {
	if len(c) == 0 {
		return nil, nil
	}
	var tmp interface{}
	if err := json.Unmarshal(c, &tmp); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return compress.Compress(c), nil
}

// Scan implements sql.Scanner: decompresses the stored blob.
func (c *CompressedJSON) Scan(value interface{}) error {
	if value == nil {
		*c = CompressedJSON("null")
		return nil
	}

	blob, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan compressed JSON value: unsupported type")
	}

	raw, err := compress.Decompress(blob)
	if err != nil {
		return fmt.Errorf("corrupt compressed JSON blob: %w", err)
	}

	var tmp interface{}
	if err := json.Unmarshal(raw, &tmp); err != nil {
		return fmt.Errorf("invalid JSON in compressed blob: %w", err)
	}

	*c = CompressedJSON(raw)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c CompressedJSON) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("null"), nil
	}
	return []byte(c), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *CompressedJSON) UnmarshalJSON(data []byte) error {
	if c == nil {
		return errors.New("CompressedJSON: UnmarshalJSON on nil pointer")
	}
	*c = append((*c)[0:0], data...)
	return nil
}

func (c CompressedJSON) String() string {
	return string(c)
}
