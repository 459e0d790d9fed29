package core

// GPT-4 Turbo list prices in USD per token.
const (
	DefaultInputPrice  = 0.01e-3
	DefaultOutputPrice = 0.03e-3
)

// Pricing holds per-token USD rates for the input and output side of a call.
type Pricing struct {
	InputPerToken  float64 `yaml:"input_per_token" env:"GPTCORE_INPUT_PRICE"`
	OutputPerToken float64 `yaml:"output_per_token" env:"GPTCORE_OUTPUT_PRICE"`
}

// DefaultPricing returns the built-in GPT-4 Turbo rates.
func DefaultPricing() Pricing {
	return Pricing{
		InputPerToken:  DefaultInputPrice,
		OutputPerToken: DefaultOutputPrice,
	}
}

// Cost returns the USD cost of a single call with the given token counts.
func (p Pricing) Cost(promptTokens, completionTokens int) float64 {
	return float64(promptTokens)*p.InputPerToken + float64(completionTokens)*p.OutputPerToken
}
