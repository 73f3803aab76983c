package descriptors

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresmejia3/rollcall/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingStore(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "face_encodings.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoStore))
}

func TestLegacyAndCurrentFormatsAgree(t *testing.T) {
	current := `[
		{"name": "Alice", "encoding": [0.1, 0.2], "hist": [1]},
		{"name": "Bob", "encoding": [0.3, 0.4], "hist": [2]}
	]`
	legacy := `{
		"Alice": {"encoding": [0.1, 0.2], "hist": [1]},
		"Bob": {"encoding": [0.3, 0.4], "hist": [2]}
	}`

	fromCurrent, err := Decode([]byte(current))
	require.NoError(t, err)
	fromLegacy, err := Decode([]byte(legacy))
	require.NoError(t, err)

	assert.Equal(t, fromCurrent, fromLegacy)
}

func TestLegacyKeepsFileOrder(t *testing.T) {
	legacy := `{"Zed": {"encoding": [1]}, "Amy": {"encoding": [2]}, "Mo": {"encoding": [3]}}`

	records, err := Decode([]byte(legacy))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Zed", records[0].Identity)
	assert.Equal(t, "Amy", records[1].Identity)
	assert.Equal(t, "Mo", records[2].Identity)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	for _, data := range []string{
		`{"Alice": {"encoding": [0.5]}} garbage`,
		`{"Alice": {"encoding": [0.5]}}{}`,
		`{"Alice": {"encoding": [0.5]}`,
		`[{"name": "Alice", "encoding": [0.5]}] garbage`,
	} {
		_, err := Decode([]byte(data))
		assert.Error(t, err, data)
	}

	records, err := Decode([]byte("{\"Alice\": {\"encoding\": [0.5]}}\n"))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestDecodeEmptyFile(t *testing.T) {
	records, err := Decode([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAppendCreatesAndExtends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store", "face_encodings.json")

	require.NoError(t, Append(path, []types.DescriptorRecord{
		{Identity: "Alice", Descriptor: []float64{0.1}},
	}))
	require.NoError(t, Append(path, []types.DescriptorRecord{
		{Identity: "Alice", Descriptor: []float64{0.2}},
		{Identity: "Bob", Descriptor: []float64{0.3}},
	}))

	records, err := Load(path)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []float64{0.2}, records[1].Descriptor)
	assert.Equal(t, "Bob", records[2].Identity)
}

func TestAppendUpgradesLegacyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face_encodings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Alice": {"encoding": [0.1]}}`), 0644))

	require.NoError(t, Append(path, []types.DescriptorRecord{{Identity: "Bob", Descriptor: []float64{0.2}}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte('['), data[0])

	records, err := Load(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Alice", records[0].Identity)
}

func TestSummarize(t *testing.T) {
	records := []types.DescriptorRecord{
		{Identity: "Bob"},
		{Identity: "Alice"},
		{Identity: "Bob"},
		{Identity: "Bob"},
	}

	got := Summarize(records)
	assert.Equal(t, []types.IdentitySummary{
		{Name: "Bob", Count: 3},
		{Name: "Alice", Count: 1},
	}, got)
}
