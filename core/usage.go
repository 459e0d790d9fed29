package core

import (
	"fmt"
	"math"
)

// UsageInfo reports one completed turn: the token counts of that single call
// and the session-cumulative price in USD.
type UsageInfo struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	Price            float64 `json:"total_price_usd"`
}

// String renders the usage on one line with the price at three decimals,
// rounded half away from zero.
func (u UsageInfo) String() string {
	return fmt.Sprintf("Prompt tokens: %d, Completion tokens: %d, Total price: %.3f USD",
		u.PromptTokens, u.CompletionTokens, math.Round(u.Price*1000)/1000)
}
