package character

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNilCharacter is returned by operations that require a character value.
var ErrNilCharacter = errors.New("character: nil character")

// Export serialises the character as an indented JSON document suitable
// for file download, clipboard transfer, or backup storage.
//
// Postcondition: Import(Export(c)) reproduces a value equal to c.
func Export(c *Character) ([]byte, error) {
	if c == nil {
		return nil, ErrNilCharacter
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("character: encoding sheet: %w", err)
	}
	return data, nil
}

// Import parses a JSON document produced by Export (or an externally
// authored sheet with the same field names) into a Character.
//
// Postcondition: Returns a non-nil Character or a descriptive error.
func Import(data []byte) (*Character, error) {
	var c Character
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("character: decoding sheet: %w", err)
	}
	return &c, nil
}
