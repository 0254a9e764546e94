package llm

// ModelInfo carries the per-1K-token USD rates used for cost estimation.
type ModelInfo struct {
	CostPer1KInput  float64
	CostPer1KOutput float64
}

// Published OpenAI rates. Unknown models cost 0; accounting still tracks
// their token counts.
var modelPricing = map[string]ModelInfo{
	"gpt-3.5-turbo": {CostPer1KInput: 0.0005, CostPer1KOutput: 0.0015},
	"gpt-4o":        {CostPer1KInput: 0.0050, CostPer1KOutput: 0.0150},
	"gpt-4o-mini":   {CostPer1KInput: 0.00015, CostPer1KOutput: 0.0006},
	"gpt-4-turbo":   {CostPer1KInput: 0.0100, CostPer1KOutput: 0.0300},
}

// CalculateCost estimates the USD cost of a call from its token counts.
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	info, ok := modelPricing[model]
	if !ok {
		return 0.0
	}

	inputCost := float64(inputTokens) / 1000.0 * info.CostPer1KInput
	outputCost := float64(outputTokens) / 1000.0 * info.CostPer1KOutput
	return inputCost + outputCost
}
