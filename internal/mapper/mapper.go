// Package mapper validates Monarch GraphQL payloads and flattens them into
// report rows.
//
// Every mapping function either returns one row per input element, in input
// order, or an error wrapping common.ErrValidation. Unknown fields are
// ignored; missing or null required fields fail the whole payload.
package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Veraticus/monarch-reports/internal/common"
)

// identifier is a Monarch object id. The API sends ids as JSON strings, older
// payloads as numbers; both must hold an integer.
type identifier string

func (id *identifier) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		raw = []byte(s)
	}

	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("id %s is not an integer", data)
	}
	*id = identifier(strconv.FormatInt(n, 10))
	return nil
}

func (id *identifier) String() string {
	if id == nil {
		return ""
	}
	return string(*id)
}

// named is the {id, name} shape shared by merchants, categories and groups.
type named struct {
	ID   *identifier `json:"id"`
	Name *string     `json:"name"`
}

func decode(raw json.RawMessage, v any, what string) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return common.NewValidationError(what, "empty payload")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return common.NewValidationError(what, err.Error())
	}
	return nil
}

func missing(path string) error {
	return common.NewValidationError(path, "required field missing")
}

func requireString(s *string, path string) (string, error) {
	if s == nil {
		return "", missing(path)
	}
	return *s, nil
}
