package ingestion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_ToJSON(t *testing.T) {
	metadata := &Metadata{
		Source:    "https://example.com/job",
		Kind:      KindURL,
		Timestamp: "2024-01-01T00:00:00Z",
		Hash:      "abcd1234",
		Platform:  "greenhouse",
	}

	jsonBytes, err := metadata.ToJSON()
	require.NoError(t, err)

	var unmarshaled Metadata
	require.NoError(t, json.Unmarshal(jsonBytes, &unmarshaled))
	assert.Equal(t, *metadata, unmarshaled)
	assert.Contains(t, string(jsonBytes), `"kind": "url"`)
	assert.NotContains(t, string(jsonBytes), "rendered")
}

func TestComputeHash(t *testing.T) {
	hash1 := computeHash("test content")
	hash2 := computeHash("different content")

	assert.Len(t, hash1, 64)
	assert.Equal(t, hash1, computeHash("test content"))
	assert.NotEqual(t, hash1, hash2)
}

func TestNewMetadata(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	metadata := NewMetadata("cv.pdf", KindPDF, "content", 2048)

	assert.Equal(t, "cv.pdf", metadata.Source)
	assert.Equal(t, KindPDF, metadata.Kind)
	assert.Equal(t, 2048, metadata.Bytes)
	assert.Equal(t, computeHash("content"), metadata.Hash)

	ts, err := time.Parse(time.RFC3339, metadata.Timestamp)
	require.NoError(t, err)
	assert.False(t, ts.Before(before.Truncate(time.Second)))
}
