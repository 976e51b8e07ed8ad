package docembed

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChunkSize bounds the character length of an embedding chunk.
const DefaultMaxChunkSize = 1000

// ChunkText splits extracted text into embedding-sized chunks along sentence
// boundaries. Chunks fill greedily with whole sentences up to maxSize; a new
// chunk starts when the next sentence would overflow. A single sentence
// longer than maxSize gets a chunk of its own. Text with no sentence
// boundaries at all collapses to one chunk truncated to maxSize.
func ChunkText(text string, maxSize int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}

	sentences, found := splitSentences(text)
	if !found {
		return []string{truncate(text, maxSize)}
	}

	var chunks []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len() == 0 {
			current.WriteString(sentence)
			continue
		}
		if current.Len()+1+len(sentence) > maxSize {
			chunks = append(chunks, current.String())
			current.Reset()
			current.WriteString(sentence)
			continue
		}
		current.WriteByte(' ')
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// splitSentences cuts text at terminal punctuation followed by whitespace or
// end of text. Newlines also terminate a sentence, since OCR output often
// lacks punctuation on headings and table cells. The boolean reports whether
// any boundary was found.
func splitSentences(text string) ([]string, bool) {
	var sentences []string
	found := false
	start := 0

	flush := func(end int) {
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 >= len(text) || isSpace(text[i+1]) {
				flush(i + 1)
				found = true
			}
		case '\n':
			if strings.TrimSpace(text[start:i]) != "" {
				flush(i)
				found = true
			} else {
				start = i + 1
			}
		}
	}
	flush(len(text))

	return sentences, found
}

// truncate cuts text to at most maxSize bytes without splitting a
// multi-byte rune, backing up to the previous rune start when the cut
// would land mid-rune.
func truncate(text string, maxSize int) string {
	if len(text) <= maxSize {
		return text
	}
	cut := maxSize
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == 0 {
		cut = maxSize
	}
	return text[:cut]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
