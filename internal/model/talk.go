package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// TalkNumber identifies a public talk. Regular talks are numbered; special
// talks (circuit overseer, memorial, ...) use a string code. The JSON form is
// preserved: numbers round-trip as numbers, codes as strings.
type TalkNumber struct {
	value   string
	numeric bool
}

// NumberedTalk returns the TalkNumber for a regular talk.
func NumberedTalk(n int) TalkNumber {
	return TalkNumber{value: strconv.Itoa(n), numeric: true}
}

// CodedTalk returns the TalkNumber for a special talk code.
func CodedTalk(code string) TalkNumber {
	return TalkNumber{value: code}
}

// String returns the key form of the number, as referenced by Visit.TalkNoOrType.
func (n TalkNumber) String() string { return n.value }

// IsNumeric reports whether the talk is a regular numbered talk.
func (n TalkNumber) IsNumeric() bool { return n.numeric }

// Int returns the numeric value, or false for coded talks.
func (n TalkNumber) Int() (int, bool) {
	if !n.numeric {
		return 0, false
	}
	i, err := strconv.Atoi(n.value)
	return i, err == nil
}

// MarshalJSON implements json.Marshaler.
func (n TalkNumber) MarshalJSON() ([]byte, error) {
	if n.numeric {
		return []byte(n.value), nil
	}
	return json.Marshal(n.value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *TalkNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = TalkNumber{value: s}
		return nil
	}
	var i int64
	if err := json.Unmarshal(data, &i); err != nil {
		return fmt.Errorf("talk number must be an integer or a string: %w", err)
	}
	*n = TalkNumber{value: strconv.FormatInt(i, 10), numeric: true}
	return nil
}

// Talk is a public talk outline.
type Talk struct {
	Number TalkNumber `json:"number"`
	Theme  string     `json:"theme"`
}
