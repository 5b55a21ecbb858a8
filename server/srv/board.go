package srv

import "math/rand"

// GenerateBoard fills a rows*cols grid with values drawn independently and
// uniformly from [min, max]. Nothing guarantees the result admits a
// sum-to-10 rectangle; the shipped game accepts dud boards and so do we.
func GenerateBoard(rows, cols, min, max int) []int {
	board := make([]int, rows*cols)
	span := max - min + 1
	for i := range board {
		board[i] = min + rand.Intn(span)
	}
	return board
}
