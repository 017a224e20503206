// Package chunker splits normalized text into fixed-size pieces.
//
// Windows are counted in characters (Unicode code points), not tokens or
// words, so a chunk may end in the middle of a word or sentence. There is no
// overlap and no semantic boundary detection.
package chunker

import (
	"iter"
	"strings"
)

// All yields each window of size characters, trimmed, with its 0-based index.
// The sequence is restartable and yields nothing for empty text or a
// non-positive size.
func All(text string, size int) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for i, w := range windows(text, size) {
			if !yield(i, strings.TrimSpace(w)) {
				return
			}
		}
	}
}

// Split returns the trimmed windows of text in order.
func Split(text string, size int) []string {
	var chunks []string
	for _, c := range All(text, size) {
		chunks = append(chunks, c)
	}
	return chunks
}

// Windows returns the untrimmed windows. Concatenating them gives back text.
func Windows(text string, size int) []string {
	var out []string
	for _, w := range windows(text, size) {
		out = append(out, w)
	}
	return out
}

// Count is the number of windows Split produces: ceil(len/size) in characters.
func Count(text string, size int) int {
	if size <= 0 {
		return 0
	}
	n := len([]rune(text))
	return (n + size - 1) / size
}

func windows(text string, size int) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		if size <= 0 || text == "" {
			return
		}
		idx, start, n := 0, 0, 0
		for i := range text {
			if n == size {
				if !yield(idx, text[start:i]) {
					return
				}
				idx++
				start, n = i, 0
			}
			n++
		}
		yield(idx, text[start:])
	}
}
