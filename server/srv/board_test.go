package srv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiphoidxray/fruitbox-fsg/shared/protocol"
)

func TestGenerateBoard(t *testing.T) {
	tests := []struct {
		name     string
		rows     int
		cols     int
		min, max int
	}{
		{name: "shipped geometry", rows: protocol.Rows, cols: protocol.Cols, min: 1, max: 9},
		{name: "single cell", rows: 1, cols: 1, min: 1, max: 9},
		{name: "single value range", rows: 4, cols: 4, min: 5, max: 5},
		{name: "wide range", rows: 20, cols: 30, min: 2, max: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := GenerateBoard(tt.rows, tt.cols, tt.min, tt.max)
			require.Len(t, board, tt.rows*tt.cols)
			for i, v := range board {
				if v < tt.min || v > tt.max {
					t.Fatalf("cell %d out of range: got %d, want [%d,%d]", i, v, tt.min, tt.max)
				}
			}
		})
	}
}

func TestGenerateBoardShippedSize(t *testing.T) {
	board := GenerateBoard(protocol.Rows, protocol.Cols, protocol.MinCellValue, protocol.MaxCellValue)
	assert.Len(t, board, 170)
}

func TestGenerateBoardVariation(t *testing.T) {
	// Over 170 cells in [1,9] a constant board is effectively impossible.
	board := GenerateBoard(protocol.Rows, protocol.Cols, 1, 9)
	first := board[0]
	same := true
	for _, v := range board {
		if v != first {
			same = false
			break
		}
	}
	assert.False(t, same, "board should not be a single repeated value")
}
