package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"finfluencer-tracker/internal/verifier/dto"
	"finfluencer-tracker/pkg/utils"
)

func TestWriteLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)

	writeLeaderboard(cmd, []dto.LeaderboardEntry{
		{Name: "Alpha Markets", AccuracyScore: utils.ToPointer(0.8041), TotalPredictions: 12, VideoCount: 4},
		{Name: "Beta", TotalPredictions: 0, VideoCount: 1},
	})

	out := buf.String()
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "Alpha Markets")
	assert.Contains(t, out, "80.4%")
	assert.Regexp(t, `2\s+Beta\s+-\s+0\s+1`, out)
}

func TestListenAddr(t *testing.T) {
	assert.Equal(t, ":8080", listenAddr("", 0))
	assert.Equal(t, "0.0.0.0:9000", listenAddr("0.0.0.0", 9000))
}
