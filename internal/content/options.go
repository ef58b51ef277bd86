package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Options is the canonical, order-preserving list form of a question's answer
// choices. Positions are implicitly labeled A, B, C, ... by index.
type Options []string

// Decode turns a stored options value into its canonical list form. Three
// shapes are accepted, tried in order:
//
//  1. a JSON array of strings, returned as-is;
//  2. a JSON object of label -> text, returned as the values in document
//     order (the order the keys appear in the stored text, never re-sorted);
//  3. a JSON string wrapping either of the above, decoded once more.
//
// Older rows use the object shape; everything written today is an array.
// Decode never fails: malformed JSON, null, scalars and nested containers all
// degrade to the empty list so callers detect "no options" uniformly.
func Decode(raw string) Options {
	return decodeValue(strings.TrimSpace(raw), true)
}

func decodeValue(s string, allowWrapped bool) Options {
	if s == "" {
		return Options{}
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return Options{}
	}
	switch t := tok.(type) {
	case json.Delim:
		var out Options
		var ok bool
		switch t {
		case '[':
			out, ok = decodeArray(dec)
		case '{':
			out, ok = decodeObject(dec)
		default:
			return Options{}
		}
		// More() goes false at the closing delimiter but also at EOF, so a
		// truncated value would otherwise decode to a partial list. Require
		// the closing token and then nothing but EOF.
		if !ok || !closedAndDone(dec) {
			return Options{}
		}
		return out
	case string:
		// Doubly-encoded rows: a JSON string whose contents are themselves
		// JSON. Unwrap exactly once.
		if allowWrapped && atEOF(dec) {
			return decodeValue(strings.TrimSpace(t), false)
		}
		return Options{}
	default:
		// null, number, boolean
		return Options{}
	}
}

func decodeArray(dec *json.Decoder) (Options, bool) {
	out := Options{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		s, ok := scalarText(tok)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func decodeObject(dec *json.Decoder) (Options, bool) {
	out := Options{}
	for dec.More() {
		if _, err := dec.Token(); err != nil { // key
			return nil, false
		}
		tok, err := dec.Token() // value
		if err != nil {
			return nil, false
		}
		s, ok := scalarText(tok)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// closedAndDone consumes the container's closing delimiter and verifies the
// input ends there.
func closedAndDone(dec *json.Decoder) bool {
	if _, err := dec.Token(); err != nil {
		return false
	}
	return atEOF(dec)
}

// atEOF reports whether nothing but end-of-input follows; trailing garbage
// after a value means the stored text was never valid JSON.
func atEOF(dec *json.Decoder) bool {
	_, err := dec.Token()
	return err == io.EOF
}

// scalarText renders a leaf token as option text. Containers nested inside an
// options value have no canonical form and poison the whole decode.
func scalarText(tok json.Token) (string, bool) {
	switch v := tok.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

// Encode serializes canonical options for storage. The output is always a
// JSON array of strings; the object shape is accepted on decode only.
func Encode(opts Options) string {
	if opts == nil {
		opts = Options{}
	}
	buf, err := json.Marshal([]string(opts))
	if err != nil {
		return "[]"
	}
	return string(buf)
}

var (
	ErrOptionsNotObject = errors.New("options must be a JSON object of label to text")
	ErrOptionsEmpty     = errors.New("options must contain at least one choice")
	ErrCorrectKeyAbsent = errors.New("correct answer key must be one of the option labels")
)

// ValidateAuthored is the authoring-time guard applied when an admin creates
// or edits a question. It is stricter than Decode: the value must be a
// non-array JSON object with at least one key, and correctKey must be among
// its keys. Decode stays lenient so that rows written before this guard
// existed keep working.
func ValidateAuthored(raw, correctKey string) error {
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	tok, err := dec.Token()
	if err != nil {
		return ErrOptionsNotObject
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrOptionsNotObject
	}
	correctKey = strings.TrimSpace(correctKey)
	n := 0
	found := false
	for dec.More() {
		k, err := dec.Token()
		if err != nil {
			return ErrOptionsNotObject
		}
		key, _ := k.(string)
		n++
		if key == correctKey {
			found = true
		}
		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return ErrOptionsNotObject
		}
	}
	if n == 0 {
		return ErrOptionsEmpty
	}
	if !found {
		return ErrCorrectKeyAbsent
	}
	return nil
}
