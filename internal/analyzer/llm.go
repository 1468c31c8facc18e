package analyzer

import (
	"context"
	"fmt"

	"github.com/corelens/rca-engine/internal/grouping"
	"github.com/corelens/rca-engine/internal/llm"
)

const systemPrompt = `You are a root-cause analysis assistant. Given a summary of correlated ` +
	`service events and a causal graph, produce a concise, specific hypothesis about what ` +
	`most likely caused the incident. Be direct; do not hedge unnecessarily.`

// AnalyzeWithLLM runs the heuristic analyzer and then asks provider to
// refine the summary into a natural-language narrative, recorded
// under the result's metadata.llm_analysis key. A provider error
// degrades gracefully: the heuristic result is still returned, with
// metadata noting the LLM was attempted but unavailable.
func AnalyzeWithLLM(ctx context.Context, group grouping.Group, provider llm.Provider) Result {
	result := Analyze(group)
	if len(group.Events) == 0 || provider == nil {
		return result
	}

	prompt := fmt.Sprintf(
		"Incident summary: %s\nRoot-cause hypotheses: %d\nRecommended actions: %d\n"+
			"Produce a short narrative explaining the most likely root cause.",
		result.IncidentSummary, len(result.RootCauses), len(result.RecommendedActions),
	)

	resp, err := provider.Chat(ctx, systemPrompt, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, nil)
	if err != nil {
		result.Metadata["llm_analysis"] = map[string]interface{}{
			"used":  false,
			"error": err.Error(),
		}
		return result
	}

	result.Metadata["llm_analysis"] = map[string]interface{}{
		"used":      true,
		"provider":  provider.Name(),
		"model":     provider.Model(),
		"narrative": resp.Content,
	}
	return result
}
