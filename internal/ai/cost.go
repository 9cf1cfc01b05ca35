package ai

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Pricing per 1M tokens (input, output) in USD.
// Last updated 2025-05; verify against provider pricing pages before
// relying on these.
var modelPricing = map[string][2]float64{
	// Anthropic models
	"claude-sonnet-4-6":         {3.00, 15.00},
	"claude-sonnet-4-20250514":  {3.00, 15.00},
	"claude-haiku-3-5-20241022": {0.80, 4.00},
	"claude-opus-4-20250514":    {15.00, 75.00},
	// OpenAI models
	"gpt-4o":      {2.50, 10.00},
	"gpt-4o-mini": {0.15, 0.60},
	"gpt-4-turbo": {10.00, 30.00},
	"o1":          {15.00, 60.00},
	"o1-mini":     {1.10, 4.40},
}

// Default pricing when the model is unknown.
var defaultPricing = [2]float64{3.00, 15.00}

// EstimateCost estimates the USD cost of one completion call.
// Unknown models fall back to default pricing.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		slog.Debug("unknown model, using default pricing", "model", model)
		pricing = defaultPricing
	}

	inputCost := float64(inputTokens) / 1_000_000 * pricing[0]
	outputCost := float64(outputTokens) / 1_000_000 * pricing[1]
	return inputCost + outputCost
}

// FormatCost renders a cost for display, e.g. "$0.003". Costs under a
// tenth of a cent render as "<$0.001".
func FormatCost(cost float64) string {
	if cost < 0.001 {
		return "<$0.001"
	}
	return fmt.Sprintf("$%.3f", cost)
}

var tokenPrinter = message.NewPrinter(language.English)

// FormatTokens renders an estimated token count for display, e.g. "~1,230".
func FormatTokens(tokens int) string {
	return tokenPrinter.Sprintf("~%d", tokens)
}
