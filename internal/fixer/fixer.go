package fixer

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/mdproof/mdp/internal/llmclient"
	"github.com/mdproof/mdp/internal/markdown"
)

// ErrModelUnreachable is surfaced (rather than fixed-away) so the caller
// can propagate exit code 2, matching fixer/fixer.py's re-raise of
// ConnectionError out of an otherwise fail-safe function.
var ErrModelUnreachable = errors.New("fixer: model unreachable")

var sentenceBoundaryRe = regexp.MustCompile(`(?:[.!?])\s+`)

// SplitLongNode splits text into chunks no longer than maxChars, preferring
// sentence boundaries and falling back to whitespace splitting when a
// single run has no sentence punctuation at all. When the text has sentence
// punctuation, a single sentence longer than maxChars is kept whole as one
// chunk; it is not split further on whitespace.
func SplitLongNode(text string, maxChars int) []string {
	if len(text) <= maxChars {
		return []string{text}
	}

	locs := sentenceBoundaryRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return splitOnWhitespace(text, maxChars)
	}

	var chunks []string
	start, cut := 0, 0
	for _, loc := range locs {
		if loc[1]-start > maxChars && cut > start {
			chunks = append(chunks, text[start:cut])
			start = cut
		}
		cut = loc[1]
	}
	if len(text)-start > maxChars && cut > start {
		chunks = append(chunks, text[start:cut])
		start = cut
	}
	if start < len(text) {
		chunks = append(chunks, text[start:])
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

func splitOnWhitespace(text string, maxChars int) []string {
	words := strings.Fields(text)
	var chunks []string
	var b strings.Builder
	for _, w := range words {
		if b.Len()+len(w)+1 > maxChars && b.Len() > 0 {
			chunks = append(chunks, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

// Fixer polishes long text spans via an LLM, guarded against structural
// damage and excessive growth, always failing safe back to the original
// span if anything about the model's output looks wrong.
type Fixer struct {
	client *llmclient.Client
	guard  GuardConfig
	locale string

	minSpanChars int
	maxChunkSize int
}

// New creates a Fixer bound to client.
func New(client *llmclient.Client, guard GuardConfig, locale string) *Fixer {
	return &Fixer{client: client, guard: guard, locale: locale, minSpanChars: 20, maxChunkSize: 600}
}

// FixSpan sends one span to the model and validates the result, returning
// the original span unchanged if the call fails structurally, or
// propagating ErrModelUnreachable if the endpoint itself could not be
// reached (so the pipeline can exit with code 2 instead of silently
// degrading every remaining span).
func (f *Fixer) FixSpan(ctx context.Context, span string) (string, RejectionReason, error) {
	reply, err := f.client.Call(ctx, BuildSystemPrompt(f.locale), BuildUserPrompt(span))
	if err != nil {
		if errors.Is(err, llmclient.ErrUnreachable) {
			return span, RejectionNone, ErrModelUnreachable
		}
		return span, RejectionEmptyOrNonText, nil
	}
	cleaned, reason := ValidateOutput(span, reply, f.guard)
	return cleaned, reason, nil
}

// ApplySpans fixes every node in nodes, skipping any shorter than
// minSpanChars (too little context for an LLM to usefully improve) or that
// carries a mask sentinel (a protected gap, never model input regardless of
// length), splitting long ones along sentence boundaries, and performs a
// final whole-document growth check before returning — reverting to the
// original document if that final check fails.
func (f *Fixer) ApplySpans(ctx context.Context, original string, nodes []string) (string, error) {
	var rebuilt strings.Builder
	for _, node := range nodes {
		if len(strings.TrimSpace(node)) < f.minSpanChars || markdown.ContainsSentinel(node) {
			rebuilt.WriteString(node)
			continue
		}
		for _, chunk := range SplitLongNode(node, f.maxChunkSize) {
			fixed, _, err := f.FixSpan(ctx, chunk)
			if err != nil {
				return original, err
			}
			rebuilt.WriteString(fixed)
		}
	}

	result := rebuilt.String()
	if !CheckFileGrowth(original, result, f.guard) {
		return original, nil
	}
	return result, nil
}
