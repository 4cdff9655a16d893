package conversation

import (
	"fmt"
	"strings"

	"carfind-workers/internal/models"
)

// FormatSearchResults renders one page of listings as a WhatsApp message:
// a header with the page position, one emoji-bulleted block per vehicle,
// and a "send next" hint when more pages exist.
func FormatSearchResults(page *models.SearchResultPage) string {
	if page == nil || len(page.Items) == 0 {
		return NoResultsResponse
	}

	parts := make([]string, 0, len(page.Items)+2)
	parts = append(parts, fmt.Sprintf("Found %d vehicles (showing page %d of %d)\n",
		page.TotalItems, page.Page, page.TotalPages))

	for _, v := range page.Items {
		parts = append(parts, fmt.Sprintf("🚗 *%s*\n💰 Rs. %s | 🛣️ %skm\n📅 %s\n🔗 %s\n",
			v.Title, groupDigits(v.Pricing), groupDigits(v.Mileage), v.PostedDate, v.Link))
	}

	if page.TotalPages > 1 {
		parts = append(parts, "\nSend 'next' to see more results.")
	}

	return strings.Join(parts, "\n")
}

// groupDigits renders n with thousands separators: 6000000 -> "6,000,000".
func groupDigits(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
