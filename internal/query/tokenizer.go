package query

import (
	"regexp"
	"strings"
)

// DefaultBrands is the built-in brand table, in match-priority order.
// Multi-word names must precede any single word they contain ("land rover"
// before "rover") because the first matching entry wins.
var DefaultBrands = []string{
	"toyota", "honda", "nissan", "mazda", "suzuki", "mitsubishi", "lexus",
	"bmw", "mercedes", "audi", "volkswagen", "hyundai", "kia", "ford",
	"chevrolet", "dodge", "jeep", "chrysler", "volvo", "land rover",
	"range rover", "porsche", "ferrari", "lamborghini", "bentley",
	"rolls royce", "jaguar", "maserati", "aston martin", "mclaren",
	"bugatti", "pagani", "koenigsegg", "rimac", "lucid", "tesla", "rivian",
	"polestar", "genesis", "infiniti", "acura", "subaru", "mini", "fiat",
	"alfa romeo", "peugeot", "renault", "citroen", "skoda", "seat", "opel",
	"vauxhall", "saab", "rover", "mg", "tata", "mahindra", "maruti",
}

type keywordPattern struct {
	typ TokenType
	re  *regexp.Regexp
}

// Tokenizer scans search phrases into typed tokens. Construct once and
// share freely; it is immutable after construction.
type Tokenizer struct {
	brands   []string
	findRe   *regexp.Regexp
	keywords []keywordPattern
}

// NewTokenizer builds a tokenizer over the default brand table.
func NewTokenizer() *Tokenizer {
	return NewTokenizerWithBrands(DefaultBrands)
}

// NewTokenizerWithBrands builds a tokenizer over a custom brand table.
// Brands are matched case-insensitively in table order.
func NewTokenizerWithBrands(brands []string) *Tokenizer {
	normalized := make([]string, 0, len(brands))
	for _, b := range brands {
		b = strings.ToLower(strings.TrimSpace(b))
		if b != "" {
			normalized = append(normalized, b)
		}
	}

	return &Tokenizer{
		brands: normalized,
		findRe: regexp.MustCompile(`^find\b`),
		// Priority order matters: keyword words before the bare number
		// pattern, multi-word comparison phrases inside their alternations,
		// "between"/"and" after numbers so digits are never swallowed.
		keywords: []keywordPattern{
			{TokenPriceKeyword, regexp.MustCompile(`^(price|cost|value|worth)\b`)},
			{TokenLocationKeyword, regexp.MustCompile(`^(in|at|near|around|close to)\b`)},
			{TokenYearKeyword, regexp.MustCompile(`^(year|model|make)\b`)},
			{TokenConditionKeyword, regexp.MustCompile(`^(new|used|old|second hand|pre owned|pre-owned)\b`)},
			{TokenOperator, regexp.MustCompile(`^(>=|<=|>|<|=|!=)`)},
			{TokenNumber, regexp.MustCompile(`^\d+(?:,\d+)*(?:\.\d+)?`)},
			{TokenAnd, regexp.MustCompile(`^and\b`)},
			{TokenOr, regexp.MustCompile(`^or\b`)},
			{TokenBetween, regexp.MustCompile(`^between\b`)},
			{TokenHigher, regexp.MustCompile(`^(higher|more than|above)\b`)},
			{TokenLower, regexp.MustCompile(`^(lower|less than|below)\b`)},
			{TokenThan, regexp.MustCompile(`^than\b`)},
		},
	}
}

// Tokenize scans text into an ordered token sequence. It is total: it
// never fails, whatever the input. Unmatched whitespace is skipped without
// a token; any other unmatched byte becomes a single-byte UNKNOWN token,
// so the scan always progresses. Number values keep embedded commas and
// dots for later normalization.
//
// The sum of token value lengths plus skipped whitespace always equals
// the length of the lower-cased, trimmed input.
func (t *Tokenizer) Tokenize(text string) []Token {
	input := strings.ToLower(strings.TrimSpace(text))
	tokens := []Token{}
	pos := 0

	for pos < len(input) {
		rest := input[pos:]

		if typ, value, ok := t.matchAt(rest); ok {
			tokens = append(tokens, Token{Type: typ, Value: value, Pos: pos})
			pos += len(value)
			continue
		}

		if isSpace(input[pos]) {
			pos++
			continue
		}

		tokens = append(tokens, Token{Type: TokenUnknown, Value: input[pos : pos+1], Pos: pos})
		pos++
	}

	return tokens
}

// matchAt attempts each pattern at the cursor in fixed priority order:
// "find", then the brand table, then the keyword patterns. First match
// wins.
func (t *Tokenizer) matchAt(rest string) (TokenType, string, bool) {
	if m := t.findRe.FindString(rest); m != "" {
		return TokenFind, m, true
	}

	if b := t.matchBrand(rest); b != "" {
		return TokenCarBrand, b, true
	}

	for _, p := range t.keywords {
		if m := p.re.FindString(rest); m != "" {
			return p.typ, m, true
		}
	}

	return "", "", false
}

// matchBrand returns the first table entry found at the cursor with a
// word boundary after it ("toyota" must not match inside "toyotas").
func (t *Tokenizer) matchBrand(rest string) string {
	for _, b := range t.brands {
		if strings.HasPrefix(rest, b) && !wordCharAt(rest, len(b)) {
			return b
		}
	}
	return ""
}

func wordCharAt(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	c := s[i]
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
