package descriptors

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andresmejia3/rollcall/internal/types"
)

// ErrNoStore is returned when the descriptor file has not been created yet.
var ErrNoStore = errors.New("no face data found")

// legacyRecord is the value side of the old identity -> record mapping.
type legacyRecord struct {
	Descriptor []float64 `json:"encoding"`
	Histogram  []float32 `json:"hist,omitempty"`
}

// Load reads every record from path. Both the current list form and the
// legacy mapping form are accepted.
func Load(path string) ([]types.DescriptorRecord, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoStore, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read descriptor store: %w", err)
	}
	return Decode(data)
}

// Decode parses the serialized store.
func Decode(data []byte) ([]types.DescriptorRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		var records []types.DescriptorRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode descriptor list: %w", err)
		}
		return records, nil
	case '{':
		return decodeLegacy(trimmed)
	default:
		return nil, fmt.Errorf("decode descriptor store: unexpected leading byte %q", trimmed[0])
	}
}

// decodeLegacy walks the mapping token by token so records keep file order.
func decodeLegacy(data []byte) ([]types.DescriptorRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, fmt.Errorf("decode legacy store: %w", err)
	}

	var records []types.DescriptorRecord
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode legacy store: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("decode legacy store: expected identity key, got %v", tok)
		}

		var rec legacyRecord
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode legacy record %q: %w", name, err)
		}
		records = append(records, types.DescriptorRecord{
			Identity:   name,
			Descriptor: rec.Descriptor,
			Histogram:  rec.Histogram,
		})
	}

	if _, err := dec.Token(); err != nil { // closing brace
		return nil, fmt.Errorf("decode legacy store: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("decode legacy store: trailing data after object")
	}
	return records, nil
}

// Save writes records in the current list form. The file is replaced
// atomically.
func Save(path string, records []types.DescriptorRecord) error {
	if records == nil {
		records = []types.DescriptorRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal descriptor store: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".descriptors-*")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace descriptor store: %w", err)
	}
	return nil
}

// Append adds records to the end of the store, creating it if needed.
// A legacy store is rewritten in the list form.
func Append(path string, records []types.DescriptorRecord) error {
	existing, err := Load(path)
	if err != nil && !errors.Is(err, ErrNoStore) {
		return err
	}
	return Save(path, append(existing, records...))
}

// Summarize counts records per identity in first-appearance order.
func Summarize(records []types.DescriptorRecord) []types.IdentitySummary {
	index := make(map[string]int)
	var out []types.IdentitySummary
	for _, rec := range records {
		if i, ok := index[rec.Identity]; ok {
			out[i].Count++
			continue
		}
		index[rec.Identity] = len(out)
		out = append(out, types.IdentitySummary{Name: rec.Identity, Count: 1})
	}
	return out
}
