package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultBenchConfig(t *testing.T) {
	cfg := DefaultBenchConfig()

	assert.Equal(t, 2*time.Second, cfg.TimeLimit.Duration)
	assert.NotEmpty(t, cfg.Algorithms)
	assert.Equal(t, "dual-ccm", cfg.LowerBound)
	assert.Positive(t, cfg.Evolution.Mu)
	assert.GreaterOrEqual(t, cfg.Evolution.Lambda, cfg.Evolution.Mu)
}

func TestDefaultCutSettings(t *testing.T) {
	cs := DefaultBenchConfig().Cutting

	assert.Equal(t, DefaultCutSettings(), cs)
	assert.Positive(t, cs.ToolDiameter)
	assert.LessOrEqual(t, cs.PassDepth, cs.CutDepth)
	assert.Equal(t, "Generic", cs.Profile)
}
