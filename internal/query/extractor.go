package query

import "strings"

// Extract walks the token stream once and produces a ParsedQuery. Rules
// are attempted in order at each cursor position: skip "find", comparison
// phrase, price range, brand run; anything left over joins the residual
// pool. A rule fires only when the lookahead exactly matches its type
// sequence, so a partial phrase (or a malformed number inside one)
// degrades to residual terms instead of aborting the parse. No token is
// claimed twice.
func Extract(tokens []Token) ParsedQuery {
	pq := ParsedQuery{Conditions: []SearchCondition{}, Residual: []string{}}
	i := 0

	for i < len(tokens) {
		if tokens[i].Type == TokenFind {
			i++
			continue
		}

		if conds, n := matchComparison(tokens, i); n > 0 {
			pq.Conditions = append(pq.Conditions, conds...)
			i += n
			continue
		}

		if conds, n := matchRange(tokens, i); n > 0 {
			pq.Conditions = append(pq.Conditions, conds...)
			i += n
			continue
		}

		if cond, n := matchBrandRun(tokens, i); n > 0 {
			pq.Conditions = append(pq.Conditions, cond)
			i += n
			continue
		}

		term, n := residualTerm(tokens, i)
		pq.Residual = append(pq.Residual, term)
		i += n
	}

	return pq
}

// matchComparison handles `{higher|lower} than <number>`: one price bound,
// ">=" for higher and "<=" for lower. Returns the consumed token count,
// zero when the rule does not apply.
func matchComparison(tokens []Token, i int) ([]SearchCondition, int) {
	if i+2 >= len(tokens) {
		return nil, 0
	}
	if tokens[i].Type != TokenHigher && tokens[i].Type != TokenLower {
		return nil, 0
	}
	if tokens[i+1].Type != TokenThan || tokens[i+2].Type != TokenNumber {
		return nil, 0
	}

	value, err := NormalizePrice(tokens[i+2].Value)
	if err != nil {
		return nil, 0
	}

	op := OpGTE
	if tokens[i].Type == TokenLower {
		op = OpLTE
	}
	return []SearchCondition{{
		Field:      FieldPricing,
		Operator:   op,
		Value:      value,
		Combinator: CombinatorAnd,
	}}, 3
}

// matchRange handles `between <number> and <number>` plus the dash
// variants ("between 5,000,000 - 8,000,000", "between 5000000-8000000"):
// two conjoined price bounds. The dash arrives from the tokenizer as a
// single-byte UNKNOWN between the two numbers, spaced or not; a final
// fallback splits a contiguous post-between span on its first "-".
func matchRange(tokens []Token, i int) ([]SearchCondition, int) {
	if i >= len(tokens) || tokens[i].Type != TokenBetween {
		return nil, 0
	}

	if i+3 < len(tokens) && tokens[i+1].Type == TokenNumber && tokens[i+3].Type == TokenNumber {
		sep := tokens[i+2]
		if sep.Type == TokenAnd || (sep.Type == TokenUnknown && sep.Value == "-") {
			if conds, ok := rangeConditions(tokens[i+1].Value, tokens[i+3].Value); ok {
				return conds, 4
			}
		}
	}

	return matchRangeSpan(tokens, i)
}

// matchRangeSpan is the last-resort dash handling: collect the
// position-contiguous number/unknown run after "between", then split its
// raw text on the first "-".
func matchRangeSpan(tokens []Token, i int) ([]SearchCondition, int) {
	var span strings.Builder
	n := 0
	for j := i + 1; j < len(tokens); j++ {
		if tokens[j].Type != TokenNumber && tokens[j].Type != TokenUnknown {
			break
		}
		if j > i+1 && tokens[j].Pos != tokens[j-1].Pos+len(tokens[j-1].Value) {
			break
		}
		span.WriteString(tokens[j].Value)
		n++
	}
	if n == 0 {
		return nil, 0
	}

	lo, hi, found := strings.Cut(span.String(), "-")
	if !found {
		return nil, 0
	}
	conds, ok := rangeConditions(lo, hi)
	if !ok {
		return nil, 0
	}
	return conds, n + 1
}

func rangeConditions(lo, hi string) ([]SearchCondition, bool) {
	min, err := NormalizePrice(lo)
	if err != nil {
		return nil, false
	}
	max, err := NormalizePrice(hi)
	if err != nil {
		return nil, false
	}
	return []SearchCondition{
		{Field: FieldPricing, Operator: OpGTE, Value: min, Combinator: CombinatorAnd},
		{Field: FieldPricing, Operator: OpLTE, Value: max, Combinator: CombinatorAnd},
	}, true
}

// matchBrandRun collapses consecutive brand tokens into one fuzzy title
// condition whose value is the brands joined by "|", so the stored filter
// matches any of them.
func matchBrandRun(tokens []Token, i int) (SearchCondition, int) {
	j := i
	for j < len(tokens) && tokens[j].Type == TokenCarBrand {
		j++
	}
	if j == i {
		return SearchCondition{}, 0
	}

	brands := make([]string, 0, j-i)
	for k := i; k < j; k++ {
		brands = append(brands, tokens[k].Value)
	}
	return SearchCondition{
		Field:      FieldTitle,
		Operator:   OpFuzzy,
		Value:      strings.Join(brands, "|"),
		Combinator: CombinatorAnd,
	}, j - i
}

// residualTerm emits the unclaimed token at i as free text. Runs of
// position-adjacent UNKNOWN tokens coalesce back into the word the
// scanner split byte by byte ("aqua" surfaces whole, not as four
// single-letter terms).
func residualTerm(tokens []Token, i int) (string, int) {
	if tokens[i].Type != TokenUnknown {
		return tokens[i].Value, 1
	}

	var term strings.Builder
	term.WriteString(tokens[i].Value)
	n := 1
	for j := i + 1; j < len(tokens); j++ {
		if tokens[j].Type != TokenUnknown || tokens[j].Pos != tokens[j-1].Pos+len(tokens[j-1].Value) {
			break
		}
		term.WriteString(tokens[j].Value)
		n++
	}
	return term.String(), n
}
