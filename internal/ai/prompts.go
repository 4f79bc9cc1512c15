package ai

import (
	"encoding/json"
	"fmt"
)

// NewsItemRef is the slimmed headline reference handed to the model.
type NewsItemRef struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
}

// BuildNewsSummaryMessages prompts for a bullet-point summary of headlines
// with sentiment and key risks.
func BuildNewsSummaryMessages(symbol string, items []NewsItemRef) []Message {
	system := "You are a concise analyst. Use only the provided headlines and URLs. " +
		"Do not invent facts. If information is missing, say “unknown”. Output valid JSON only."

	encoded, _ := json.Marshal(items)
	user := fmt.Sprintf("Summarize the following news items for %s. Provide:\n"+
		"\t•\t5 bullet points max, each referencing a URL from the list\n"+
		"\t•\toverall sentiment: bullish, bearish, or mixed\n"+
		"\t•\tkey risks (max 5)\n\nNews:\n%s", symbol, encoded)

	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// BuildTradeBriefingMessages prompts for a cautious trade briefing built
// from the signal output, portfolio state, and news summary.
func BuildTradeBriefingMessages(symbol string, signalOutput, newsSummary, portfolioState any) []Message {
	system := "You generate cautious, rules-based trade briefings. Use only provided signal output, " +
		"portfolio state, and the news summary. Do not claim certainty. Output valid JSON only."

	signalJSON, _ := json.Marshal(signalOutput)
	portfolioJSON, _ := json.Marshal(portfolioState)
	newsJSON, _ := json.Marshal(newsSummary)

	user := fmt.Sprintf("Create a trade briefing for %s using:\nSignal output:\n%s\n\n"+
		"Portfolio state:\n%s\n\nNews summary:\n%s\n\nReturn:\n"+
		"\t•\tplanText (short)\n\t•\tchecklist (max 7)\n\t•\tdoNotTradeIf (max 7)\n"+
		"\t•\tsizingAdvice (short)\n\t•\tdisclaimer (one sentence)",
		symbol, signalJSON, portfolioJSON, newsJSON)

	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}
