package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/mdproof/mdp/internal/llmclient"
	"github.com/mdproof/mdp/internal/mdperrors"
)

const systemPromptTemplate = `You propose minimal literal text edits to make prose safer for
text-to-speech. Allowed reasons: TTS_SPACED, UNICODE_STYLIZED, CASE_GLITCH,
SIMPLE_PUNCT. Rules:
- Return at most %d items.
- "find" must be an exact literal substring of TEXT.
- "replace" must be plain text (no markdown, no backticks, no brackets).
- len(replace) must not exceed len(find) by more than %d characters.
- An empty array is a valid answer when nothing needs fixing.
Return JSON array only, like:
[{"find": "T T S", "replace": "TTS", "reason": "TTS_SPACED"}]`

func buildSystemPrompt(cfg Config) string {
	return fmt.Sprintf(systemPromptTemplate, cfg.MaxItems, cfg.MaxLengthDelta)
}

func buildUserPrompt(span string, lang string, maxItems int) string {
	return fmt.Sprintf("LANG=%s\nMAX_ITEMS=%d\nTEXT:\n<<<\n%s\n>>>\nReturn JSON array only.", lang, maxItems, span)
}

var jsonArrayRe = regexp.MustCompile(`(?s)\[.*?\]`)

// ExtractJSON pulls the first JSON array out of a model response, falling
// back to parsing the whole response if no bracketed array is found.
func ExtractJSON(response string) ([]Item, error) {
	candidates := jsonArrayRe.FindAllString(response, -1)
	for _, c := range candidates {
		var items []Item
		if err := json.Unmarshal([]byte(c), &items); err == nil {
			return items, nil
		}
	}
	var items []Item
	if err := json.Unmarshal([]byte(response), &items); err == nil {
		return items, nil
	}
	return nil, fmt.Errorf("no JSON array found in response")
}

// NodeStats aggregates per-node detector activity, mirroring run_detector's
// return dict in detector/detector.py.
type NodeStats struct {
	NodesSeen       int
	NodesSkipped    int
	SpansChecked    int
	ModelCalls      int
	ModelErrors     int
	JSONParseErrors int
	SuggestionsValid    int
	SuggestionsRejected int
	Rejections      map[string]int
	ByReason        map[string]int
}

func newNodeStats() *NodeStats {
	return &NodeStats{Rejections: map[string]int{}, ByReason: map[string]int{}}
}

// Detector runs the model over text spans to produce validated Plans.
type Detector struct {
	client *llmclient.Client
	cfg    Config
	chunk  ChunkConfig
	lang   string
}

// New creates a Detector bound to client using cfg for plan validation and
// chunk for span chunking.
func New(client *llmclient.Client, cfg Config, chunk ChunkConfig, lang string) *Detector {
	return &Detector{client: client, cfg: cfg, chunk: chunk, lang: lang}
}

// ProcessSpan runs the full detect loop for one text span: skip check,
// chunking, per-chunk model call, JSON extraction, plan validation, and
// merge of the per-chunk plans into one Plan for the span.
func (d *Detector) ProcessSpan(ctx context.Context, span string, stats *NodeStats) (Plan, error) {
	stats.NodesSeen++
	if ShouldSkipNode(span) {
		stats.NodesSkipped++
		return Plan{}, nil
	}
	stats.SpansChecked++

	chunks := ChunkText(span, d.chunk)
	var plans []Plan
	parseFailures := 0
	for _, chunk := range chunks {
		stats.ModelCalls++
		reply, err := d.client.Call(ctx, buildSystemPrompt(d.cfg), buildUserPrompt(chunk, d.lang, d.cfg.MaxItems))
		if err != nil {
			stats.ModelErrors++
			return Plan{}, err
		}

		items, err := ExtractJSON(reply)
		if err != nil {
			stats.JSONParseErrors++
			parseFailures++
			continue
		}

		plan, rejections := ValidatePlan(items, chunk, d.cfg)
		for _, r := range rejections {
			stats.Rejections[r]++
			stats.SuggestionsRejected++
		}
		for _, item := range plan.Items {
			stats.SuggestionsValid++
			stats.ByReason[item.Reason]++
		}
		plans = append(plans, plan)
	}

	// A single chunk failing to parse is recoverable (tracked above, span
	// just loses that chunk's suggestions). Every chunk in the span failing
	// to parse means the model never returned usable output for this span at
	// all, which is a fatal plan-parse failure rather than a local gap.
	if len(chunks) > 0 && parseFailures == len(chunks) {
		return Plan{}, fmt.Errorf("%w: all %d chunk(s) in span unparseable", mdperrors.ErrPlanParse, len(chunks))
	}

	return MergePlans(plans), nil
}

// Run processes every span in spans, returning one merged plan per span and
// aggregate statistics across all of them.
func (d *Detector) Run(ctx context.Context, spans []string) ([]Plan, *NodeStats, error) {
	stats := newNodeStats()
	plans := make([]Plan, len(spans))
	for i, span := range spans {
		plan, err := d.ProcessSpan(ctx, span, stats)
		if err != nil {
			return nil, stats, err
		}
		plans[i] = plan
	}
	return plans, stats, nil
}
