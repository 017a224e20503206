package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, Split("abcdefghij", 4))
}

func TestSplit_Edges(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{name: "empty", text: "", size: 4, want: nil},
		{name: "exact multiple", text: "abcdef", size: 3, want: []string{"abc", "def"}},
		{name: "shorter than size", text: "ab", size: 10, want: []string{"ab"}},
		{name: "windows trimmed", text: "ab  cd  ef", size: 4, want: []string{"ab", "cd", "ef"}},
		{name: "whitespace window becomes empty", text: "ab    cd", size: 2, want: []string{"ab", "", "", "cd"}},
		{name: "splits words", text: "hello world", size: 3, want: []string{"hel", "lo", "wor", "ld"}},
		{name: "counts characters not bytes", text: "héllo wörld", size: 5, want: []string{"héllo", "wörl", "d"}},
		{name: "zero size", text: "abc", size: 0, want: nil},
		{name: "negative size", text: "abc", size: -1, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.text, tt.size))
		})
	}
}

func TestWindows_ReconstructText(t *testing.T) {
	texts := []string{
		"",
		"a",
		"abcdefghij",
		"  leading and trailing  ",
		strings.Repeat("lorem ipsum dolor sit amet ", 97),
		"日本語のテキストを分割する",
		"mixed ascii and ünïcödé characters with emoji 🙂🙂🙂",
	}
	for _, text := range texts {
		for _, size := range []int{1, 2, 3, 7, 64, 1500} {
			w := Windows(text, size)
			assert.Equal(t, text, strings.Join(w, ""), "size %d", size)
			assert.Len(t, w, Count(text, size), "size %d", size)

			for i, win := range w {
				n := utf8.RuneCountInString(win)
				assert.LessOrEqual(t, n, size)
				if i < len(w)-1 {
					assert.Equal(t, size, n, "only the last window may be short")
				}
			}
		}
	}
}

func TestCount(t *testing.T) {
	assert.Equal(t, 0, Count("", 4))
	assert.Equal(t, 3, Count("abcdefghij", 4))
	assert.Equal(t, 2, Count("abcdefgh", 4))
	assert.Equal(t, 1, Count("日本", 4))
	assert.Equal(t, 0, Count("abc", 0))
}

func TestAll_RestartableAndStoppable(t *testing.T) {
	seq := All("abcdefghij", 4)

	var first, second []string
	for _, c := range seq {
		first = append(first, c)
	}
	for _, c := range seq {
		second = append(second, c)
	}
	require.Equal(t, first, second)

	var idx []int
	for i := range seq {
		idx = append(idx, i)
		if i == 1 {
			break
		}
	}
	assert.Equal(t, []int{0, 1}, idx)
}
