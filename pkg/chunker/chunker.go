// Package chunker splits raw text into bounded-size retrieval units.
package chunker

import "strings"

// DefaultChunkSize is the target chunk length in characters used by the
// indexing pipeline when no explicit size is configured.
const DefaultChunkSize = 800

// Split breaks text into chunks of at most size characters. Newlines are
// normalized to spaces and runs of whitespace collapse to a single space.
// Breaks happen at whitespace boundaries; a word is split mid-word only when
// it is longer than size on its own. Splitting is purely length-based, with
// no sentence or semantic awareness.
func Split(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var b strings.Builder

	flush := func() {
		if b.Len() > 0 {
			chunks = append(chunks, b.String())
			b.Reset()
		}
	}

	for _, word := range words {
		// Oversized words get hard-split; there is no boundary to prefer.
		for len(word) > size {
			flush()
			chunks = append(chunks, word[:size])
			word = word[size:]
		}
		if word == "" {
			continue
		}

		switch {
		case b.Len() == 0:
			b.WriteString(word)
		case b.Len()+1+len(word) <= size:
			b.WriteByte(' ')
			b.WriteString(word)
		default:
			flush()
			b.WriteString(word)
		}
	}
	flush()

	return chunks
}
