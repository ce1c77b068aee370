package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LanguageBytes is one entry of a LanguageHistogram.
type LanguageBytes struct {
	Language string
	Bytes    int64
}

// LanguageHistogram maps language names to cumulative byte counts.
// Entries keep first-seen order so that ranking ties resolve deterministically.
type LanguageHistogram []LanguageBytes

// Add accumulates bytes for a language, appending it if unseen.
func (h *LanguageHistogram) Add(language string, n int64) {
	for i := range *h {
		if (*h)[i].Language == language {
			(*h)[i].Bytes += n
			return
		}
	}
	*h = append(*h, LanguageBytes{Language: language, Bytes: n})
}

// Merge adds every entry of other in its order.
func (h *LanguageHistogram) Merge(other LanguageHistogram) {
	for _, e := range other {
		h.Add(e.Language, e.Bytes)
	}
}

// Total returns the sum of all byte counts.
func (h LanguageHistogram) Total() int64 {
	var total int64
	for _, e := range h {
		total += e.Bytes
	}
	return total
}

// Get returns the byte count for a language and whether it is present.
func (h LanguageHistogram) Get(language string) (int64, bool) {
	for _, e := range h {
		if e.Language == language {
			return e.Bytes, true
		}
	}
	return 0, false
}

// MarshalJSON writes the histogram as a JSON object in entry order.
func (h LanguageHistogram) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range h {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Language)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", e.Bytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, preserving key order.
// Duplicate keys accumulate. Negative counts are rejected.
func (h *LanguageHistogram) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*h = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("language histogram must be a JSON object")
	}

	result := LanguageHistogram{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("language %q: byte count must be a number: %w", key, err)
		}
		count, err := n.Int64()
		if err != nil {
			return fmt.Errorf("language %q: byte count must be an integer: %w", key, err)
		}
		if count < 0 {
			return fmt.Errorf("language %q: byte count must be non-negative, got %d", key, count)
		}
		result.Add(key, count)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*h = result
	return nil
}
