package core

import (
	"math"
	"testing"
)

func TestUsageInfo_String(t *testing.T) {
	tests := []struct {
		name  string
		usage UsageInfo
		want  string
	}{
		{
			name:  "rounds half up",
			usage: UsageInfo{PromptTokens: 100, CompletionTokens: 50, Price: 1.2345},
			want:  "Prompt tokens: 100, Completion tokens: 50, Total price: 1.235 USD",
		},
		{
			name:  "zero",
			usage: UsageInfo{},
			want:  "Prompt tokens: 0, Completion tokens: 0, Total price: 0.000 USD",
		},
		{
			name:  "small price",
			usage: UsageInfo{PromptTokens: 12, CompletionTokens: 3, Price: 0.00021},
			want:  "Prompt tokens: 12, Completion tokens: 3, Total price: 0.000 USD",
		},
		{
			name:  "pads decimals",
			usage: UsageInfo{PromptTokens: 1000, CompletionTokens: 1000, Price: 0.04},
			want:  "Prompt tokens: 1000, Completion tokens: 1000, Total price: 0.040 USD",
		},
		{
			name:  "rounds down",
			usage: UsageInfo{PromptTokens: 1, CompletionTokens: 2, Price: 12.3454},
			want:  "Prompt tokens: 1, Completion tokens: 2, Total price: 12.345 USD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.usage.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPricing_Cost(t *testing.T) {
	p := DefaultPricing()

	if got := p.Cost(1000, 1000); math.Abs(got-0.04) > 1e-12 {
		t.Errorf("Cost(1000, 1000) = %v, want 0.04", got)
	}
	if got := p.Cost(0, 0); got != 0 {
		t.Errorf("Cost(0, 0) = %v, want 0", got)
	}
	if got := p.Cost(1, 0); got != DefaultInputPrice {
		t.Errorf("Cost(1, 0) = %v, want %v", got, DefaultInputPrice)
	}
	if got := p.Cost(0, 1); got != DefaultOutputPrice {
		t.Errorf("Cost(0, 1) = %v, want %v", got, DefaultOutputPrice)
	}
}

func TestPricing_CustomRates(t *testing.T) {
	p := Pricing{InputPerToken: 0.5, OutputPerToken: 2}
	if got := p.Cost(4, 3); got != 8 {
		t.Errorf("Cost(4, 3) = %v, want 8", got)
	}
}
