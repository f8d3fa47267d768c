package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gapradar.app/engine/common/llm"
	"gapradar.app/engine/internal/model"
)

// ErrAnalysisUnavailable is returned when the analyzer cannot produce a
// usable analysis for a post, whether the failure is transient or permanent.
// Callers must treat the post as unprocessed and move on.
var ErrAnalysisUnavailable = errors.New("analysis unavailable")

// Analyzer turns raw post content into a structured pain-point analysis.
type Analyzer interface {
	Analyze(ctx context.Context, content string, metrics map[string]float64) (model.PostAnalysisResult, error)
}

type analysisResponse struct {
	ProblemSummary   string   `json:"problem_summary" jsonschema_description:"One or two sentences describing the underlying problem, empty if none"`
	PainSeverity     int      `json:"pain_severity" jsonschema:"minimum=0,maximum=10" jsonschema_description:"How much this problem hurts the author, 0 (none) to 10 (desperate)"`
	WillingnessToPay bool     `json:"willingness_to_pay" jsonschema_description:"True if the author signals they would pay for a solution"`
	ProductCategory  string   `json:"product_category" jsonschema:"enum=new_invention,enum=better_alternative,enum=cheaper_option,enum=quality_improvement,enum=none" jsonschema_description:"What kind of product would address the problem"`
	Keywords         []string `json:"keywords" jsonschema_description:"3-5 short lowercase keywords describing the problem domain"`
}

var analysisSchema = llm.GenerateSchema[analysisResponse]()

type Config struct {
	// Per-call deadline. Analysis is one post at a time; a hung call must
	// not stall the whole batch.
	Timeout time.Duration
}

type openaiAnalyzer struct {
	llm llm.Client
	cfg Config
}

// NewOpenAI builds an Analyzer on top of the structured-output LLM client.
func NewOpenAI(client llm.Client, cfg Config) Analyzer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &openaiAnalyzer{llm: client, cfg: cfg}
}

func (a *openaiAnalyzer) Analyze(ctx context.Context, content string, metrics map[string]float64) (model.PostAnalysisResult, error) {
	if strings.TrimSpace(content) == "" {
		return model.PostAnalysisResult{}, fmt.Errorf("%w: empty content", ErrAnalysisUnavailable)
	}

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	var response analysisResponse
	start := time.Now()

	// Retry with exponential backoff (1s, 2s, 4s) to handle transient rate
	// limits. After 3 attempts the post stays unprocessed for the next batch.
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		_, err = a.llm.Chat(callCtx, llm.Request{
			SystemPrompt: analysisSystemPrompt,
			UserPrompt:   buildPrompt(content, metrics),
			SchemaName:   "post_analysis",
			Schema:       analysisSchema,
			Temperature:  llm.Temp(0.1), // Low temp for consistent extraction
		}, &response)

		if err == nil {
			break
		}
		if !llm.IsRetryable(callCtx, err) {
			return model.PostAnalysisResult{}, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
		}
		slog.WarnContext(ctx, "post analysis retry",
			"attempt", attempt+1,
			"error", err)
		select {
		case <-time.After(time.Duration(1<<attempt) * time.Second):
		case <-callCtx.Done():
			return model.PostAnalysisResult{}, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, callCtx.Err())
		}
	}
	if err != nil {
		return model.PostAnalysisResult{}, fmt.Errorf("%w: after 3 attempts: %v", ErrAnalysisUnavailable, err)
	}

	result, err := validate(response)
	if err != nil {
		return model.PostAnalysisResult{}, err
	}

	slog.DebugContext(ctx, "post analyzed",
		"pain_severity", result.PainSeverity,
		"category", result.ProductCategory,
		"keyword_count", len(result.Keywords),
		"latency_ms", time.Since(start).Milliseconds())

	return result, nil
}

// validate rejects malformed analyzer output. A malformed analysis is
// indistinguishable from no analysis as far as the pipeline is concerned.
func validate(r analysisResponse) (model.PostAnalysisResult, error) {
	if r.PainSeverity < 0 || r.PainSeverity > 10 {
		return model.PostAnalysisResult{}, fmt.Errorf("%w: pain_severity %d out of range", ErrAnalysisUnavailable, r.PainSeverity)
	}

	category := model.ProductCategory(r.ProductCategory)
	if !category.Valid() {
		return model.PostAnalysisResult{}, fmt.Errorf("%w: unknown product_category %q", ErrAnalysisUnavailable, r.ProductCategory)
	}

	summary := strings.TrimSpace(r.ProblemSummary)
	if summary == "" && r.PainSeverity > 0 {
		return model.PostAnalysisResult{}, fmt.Errorf("%w: missing problem_summary with pain_severity %d", ErrAnalysisUnavailable, r.PainSeverity)
	}

	return model.PostAnalysisResult{
		ProblemSummary:   summary,
		PainSeverity:     r.PainSeverity,
		WillingnessToPay: r.WillingnessToPay,
		ProductCategory:  category,
		Keywords:         r.Keywords,
	}, nil
}

func buildPrompt(content string, metrics map[string]float64) string {
	var sb strings.Builder

	sb.WriteString("## Post\n")
	sb.WriteString(content)
	sb.WriteString("\n")

	if len(metrics) > 0 {
		sb.WriteString("\n## Engagement\n")
		keys := make([]string, 0, len(metrics))
		for k := range metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("- %s: %g\n", k, metrics[k]))
		}
	}

	return sb.String()
}

const analysisSystemPrompt = `You analyze social media posts to find unmet product needs.

Read the post and decide whether the author is describing a real problem a
product could solve.

## Fields

- problem_summary: the underlying problem in one or two sentences, in your
  own words. Empty string if the post describes no problem.
- pain_severity: 0-10. 0 = no problem at all. 1-3 = mild annoyance.
  4-6 = recurring frustration. 7-9 = actively searching for a solution.
  10 = desperate, problem dominates the post.
- willingness_to_pay: true only when the author signals they would spend
  money ("I'd pay for", "shut up and take my money", "looked for something
  to buy", price complaints about alternatives).
- product_category:
  - new_invention: nothing on the market addresses this
  - better_alternative: existing products exist but fall short
  - cheaper_option: solutions exist but cost too much
  - quality_improvement: solutions exist but break, wear out, or underperform
  - none: no product opportunity
- keywords: 3-5 short lowercase terms naming the problem domain
  (e.g. "dog grooming", "tangle-free brush"). Not verbs, not filler.

## Rules

- Judge only what the post says. Do not invent needs the author never stated.
- Rants about people, politics, or sports are pain_severity 0, category none.
- Questions asking for product recommendations usually signal a real need.`
