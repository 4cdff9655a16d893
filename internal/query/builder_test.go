package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_RendersConditionsThenResidual(t *testing.T) {
	pq := ParsedQuery{
		Conditions: []SearchCondition{
			{Field: FieldPricing, Operator: OpGTE, Value: int64(6000000), Combinator: CombinatorAnd},
			{Field: FieldPricing, Operator: OpLTE, Value: int64(9000000), Combinator: CombinatorAnd},
			{Field: FieldTitle, Operator: OpFuzzy, Value: "toyota|honda", Combinator: CombinatorAnd},
		},
		Residual: []string{"aqua"},
	}

	assert.Equal(t,
		`pricing >= 6000000 && pricing <= 9000000 && title ~ "toyota|honda" && title ~ "aqua"`,
		Build(pq))
}

func TestBuild_Escaping(t *testing.T) {
	tests := []struct {
		name     string
		pq       ParsedQuery
		expected string
	}{
		{
			name:     "embedded quotes",
			pq:       ParsedQuery{Residual: []string{`say "hi"`}},
			expected: `title ~ "say \"hi\""`,
		},
		{
			name:     "backslash",
			pq:       ParsedQuery{Residual: []string{`a\b`}},
			expected: `title ~ "a\\b"`,
		},
		{
			name: "quoted condition value",
			pq: ParsedQuery{Conditions: []SearchCondition{
				{Field: FieldTitle, Operator: OpFuzzy, Value: `x"y`, Combinator: CombinatorAnd},
			}},
			expected: `title ~ "x\"y"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Build(tt.pq))
		})
	}
}

func TestBuild_Empty(t *testing.T) {
	assert.Equal(t, "", Build(ParsedQuery{}))
}

func TestBuild_Deterministic(t *testing.T) {
	tokenizer := NewTokenizer()
	input := "find toyota aqua between 5,000,000 and 8,000,000"

	first := tokenizer.Parse(input)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, tokenizer.Parse(input))
	}
}

func TestParse_EndToEnd(t *testing.T) {
	tokenizer := NewTokenizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "brand and free text",
			input:    "find toyota aqua",
			expected: `title ~ "toyota" && title ~ "aqua"`,
		},
		{
			name:     "range with residual",
			input:    "find prius between 6,000,000 - 9,000,000",
			expected: `pricing >= 6000000 && pricing <= 9000000 && title ~ "prius"`,
		},
		{
			name:     "brand with upper bound",
			input:    "find honda lower than 7,500,000",
			expected: `title ~ "honda" && pricing <= 7500000`,
		},
		{
			name:     "free text only",
			input:    "find aqua",
			expected: `title ~ "aqua"`,
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tokenizer.Parse(tt.input))
		})
	}
}
