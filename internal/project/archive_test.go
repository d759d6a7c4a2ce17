package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/packbench/internal/model"
)

func sampleOutput() *model.Output {
	in := &model.Instance{ID: "spp2d.sample.1", StripWidth: 10, Items: []model.Item{{Width: 6, Height: 2}, {Width: 4, Height: 3}}}
	return model.NewOutput(in, []model.Placement{{X: 0, Y: 0}, {X: 6, Y: 0}})
}

func TestSaveAndLoadRun(t *testing.T) {
	dir := t.TempDir()
	r := NewRunRecord("FirstFit", sampleOutput(), 3)

	_, err := uuid.Parse(r.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Objective)

	path, err := SaveRun(dir, r)
	require.NoError(t, err)
	assert.Equal(t, r.ID+".json", filepath.Base(path))

	loaded, err := LoadRun(path)
	require.NoError(t, err)
	assert.Equal(t, r, loaded)
	assert.Equal(t, 3, loaded.Output().Objective())
}

func TestLoadRunErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRun(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	cases := map[string]string{
		"bad":       "{not json}",
		"noversion": `{"id":"x"}`,
		"noinst":    `{"version":"1.0.0"}`,
		"mismatch":  `{"version":"1.0.0","instance":{"id":"a","strip_width":4,"items":[{"width":1,"height":1}]},"placements":[]}`,
	}
	for name, data := range cases {
		path := filepath.Join(dir, name+".json")
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))
		_, err := LoadRun(path)
		assert.Error(t, err, name)
	}
}

func TestListRuns(t *testing.T) {
	dir := t.TempDir()
	first := NewRunRecord("NextFit", sampleOutput(), 0)
	first.CreatedAt = "2024-01-01T00:00:00Z"
	second := NewRunRecord("FirstFit", sampleOutput(), 0)
	second.CreatedAt = "2024-01-02T00:00:00Z"

	_, err := SaveRun(dir, second)
	require.NoError(t, err)
	_, err = SaveRun(dir, first)
	require.NoError(t, err)

	records, err := ListRuns(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "NextFit", records[0].Algorithm)
	assert.Equal(t, "FirstFit", records[1].Algorithm)
}
