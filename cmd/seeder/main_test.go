package main

import (
	"bytes"
	"testing"

	"github.com/poiesic/matchmaker/population"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedPopulation(t *testing.T) {
	cfg := population.DefaultGenerateConfig()
	cfg.Size = 6

	var buf bytes.Buffer
	require.NoError(t, seedPopulation(&buf, cfg))

	pop, err := population.Decode(&buf)
	require.NoError(t, err)
	assert.Len(t, pop.Profiles, 6)
	assert.Len(t, pop.Criteria, 6)
}

func TestSeedPopulation_InvalidSize(t *testing.T) {
	var buf bytes.Buffer
	err := seedPopulation(&buf, &population.GenerateConfig{Size: -1})
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}
