package detector

import (
	"regexp"
	"strings"
)

// ChunkConfig bounds how a text span is split into model-sized chunks.
type ChunkConfig struct {
	MaxChunkSize int
	OverlapSize  int
}

// DefaultChunkConfig mirrors detector/chunking.py's defaults.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{MaxChunkSize: 600, OverlapSize: 50}
}

var sentenceSplitRe = regexp.MustCompile(`([.!?]+\s*)`)
var urlLikeRe = regexp.MustCompile(`^https?://`)

// splitIntoSentences splits text on sentence-ending punctuation while
// keeping the delimiter attached to the preceding sentence.
func splitIntoSentences(text string) []string {
	parts := sentenceSplitRe.Split(text, -1)
	delims := sentenceSplitRe.FindAllString(text, -1)
	var sentences []string
	for i, p := range parts {
		s := p
		if i < len(delims) {
			s += delims[i]
		}
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// ChunkText splits node text into overlapping chunks along sentence
// boundaries so the model always sees whole sentences and each chunk after
// the first carries trailing context from the previous one.
func ChunkText(text string, cfg ChunkConfig) []string {
	if len(text) <= cfg.MaxChunkSize {
		return []string{text}
	}

	sentences := splitIntoSentences(text)
	var chunks []string
	var current strings.Builder
	var prevTail []string

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, sent := range sentences {
		if current.Len()+len(sent) > cfg.MaxChunkSize && current.Len() > 0 {
			flush()
			current.WriteString(buildOverlap(prevTail, cfg.OverlapSize))
		}
		current.WriteString(sent)
		prevTail = append(prevTail, sent)
	}
	flush()
	return chunks
}

func buildOverlap(tail []string, maxOverlap int) string {
	var b strings.Builder
	size := 0
	var picked []string
	for i := len(tail) - 1; i >= 0; i-- {
		if size+len(tail[i]) > maxOverlap {
			break
		}
		picked = append([]string{tail[i]}, picked...)
		size += len(tail[i])
	}
	for _, s := range picked {
		b.WriteString(s)
	}
	return b.String()
}

// ShouldSkipNode reports whether a node is empty, whitespace-only, or is
// itself a bare URL (or contains a raw "//" that looks like a URL
// fragment) — none of these are worth spending a model call on.
func ShouldSkipNode(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	if urlLikeRe.MatchString(trimmed) {
		return true
	}
	if strings.Contains(trimmed, "//") {
		return true
	}
	return false
}
