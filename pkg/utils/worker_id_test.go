package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateWorkerID(t *testing.T) {
	tests := []struct {
		profession string
		prefix     string
	}{
		{"woodcutter", "woodcutter"},
		{"Wood Cutter", "wood-cutter"},
		{"stone_mason", "stone-mason"},
		{"  ", "worker"},
	}

	for _, tt := range tests {
		t.Run(tt.profession, func(t *testing.T) {
			id := GenerateWorkerID(tt.profession)
			assert.Regexp(t, regexp.MustCompile("^"+tt.prefix+"-[0-9a-f]{8}$"), id)
		})
	}
}

func TestGenerateWorkerID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := GenerateWorkerID("hauler")
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
