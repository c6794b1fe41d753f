package parsing

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoice-pipeline/internal/server/models"
)

// Pattern order is significant for every field: the first matching pattern
// short-circuits the rest.

var invoiceNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Invoice\s*#?\s*:?\s*([A-Za-z0-9][A-Za-z0-9_-]*)`),
	regexp.MustCompile(`(?i)INV[-#]?\s*([A-Za-z0-9][A-Za-z0-9_-]*)`),
	regexp.MustCompile(`(?i)Invoice\s+Number\s*:?\s*([A-Za-z0-9][A-Za-z0-9_-]*)`),
	regexp.MustCompile(`(?i)Invoice\s+No\.?\s*:?\s*([A-Za-z0-9][A-Za-z0-9_-]*)`),
}

// ExtractInvoiceNumber matches forms like "Invoice #12345", "INV-12345",
// "Invoice Number: ABC123". Returns "" when nothing matches.
func ExtractInvoiceNumber(text string) string {
	for _, re := range invoiceNumberPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

var (
	vendorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Vendor|From|Bill\s+From|Supplier)\s*:?\s*([A-Za-z][A-Za-z0-9\s&.,'-]+?)(?:\n|$|Invoice)`),
		regexp.MustCompile(`(?i)(?:Company|Business)\s*:?\s*([A-Za-z][A-Za-z0-9\s&.,'-]+?)(?:\n|$)`),
	}
	spacesRe = regexp.MustCompile(`\s+`)
)

const maxVendorLen = 255

// ExtractVendorName matches "Vendor:", "From:", "Bill From:", "Supplier:"
// and then "Company:"/"Business:" labels. Internal whitespace is collapsed;
// candidates of 3 characters or fewer are rejected as noise and the next
// pattern is tried. Returns "Unknown Vendor" when nothing acceptable matches.
func ExtractVendorName(text string) string {
	for _, re := range vendorPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			vendor := spacesRe.ReplaceAllString(strings.TrimSpace(m[1]), " ")
			if len(vendor) > 3 {
				if len(vendor) > maxVendorLen {
					vendor = vendor[:maxVendorLen]
				}
				return vendor
			}
		}
	}
	return models.DefaultVendorName
}

// datePattern couples a regex with the layouts its capture may carry and a
// normalization step applied before layout parsing.
type datePattern struct {
	re        *regexp.Regexp
	layouts   []string
	normalize func(string) string
}

func slashes(s string) string { return strings.ReplaceAll(s, "-", "/") }

func stripPunct(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, ".", "")
}

var datePatterns = []datePattern{
	// labeled month-first numeric: Date: 03/15/2024
	{
		re:        regexp.MustCompile(`(?i)(?:Date|Invoice\s+Date|Dated?)\s*:?\s*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`),
		layouts:   []string{"1/2/2006", "1/2/06"},
		normalize: slashes,
	},
	// labeled ISO: Date: 2024-03-15
	{
		re:        regexp.MustCompile(`(?i)(?:Date|Invoice\s+Date|Dated?)\s*:?\s*(\d{4}[-/]\d{1,2}[-/]\d{1,2})`),
		layouts:   []string{"2006/1/2"},
		normalize: slashes,
	},
	// labeled month name: Date: Mar 15, 2024
	{
		re:        regexp.MustCompile(`(?i)(?:Date|Invoice\s+Date|Dated?)\s*:?\s*((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4})`),
		layouts:   []string{"Jan 2 2006", "January 2 2006"},
		normalize: stripPunct,
	},
	// unlabeled fallbacks, anywhere in the text
	{
		re:        regexp.MustCompile(`(\d{1,2}[-/]\d{1,2}[-/]\d{4})`),
		layouts:   []string{"1/2/2006"},
		normalize: slashes,
	},
	{
		re:        regexp.MustCompile(`(\d{4}[-/]\d{1,2}[-/]\d{1,2})`),
		layouts:   []string{"2006/1/2"},
		normalize: slashes,
	},
}

// ExtractDate tries the labeled numeric, labeled ISO, labeled month-name and
// finally the unlabeled numeric patterns. When no pattern matches, or the
// matched text fits none of its candidate layouts, the current date at parse
// time is returned.
func (p *Parser) ExtractDate(text string) time.Time {
	for _, dp := range datePatterns {
		m := dp.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candidate := spacesRe.ReplaceAllString(dp.normalize(strings.TrimSpace(m[1])), " ")
		for _, layout := range dp.layouts {
			if d, err := time.Parse(layout, candidate); err == nil {
				return d
			}
		}
		break
	}
	now := p.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Total|Amount\s+Due|Grand\s+Total|Balance\s+Due|Total\s+Amount)\s*:?\s*\$?\s*([0-9,]+\.?[0-9]*)`),
	regexp.MustCompile(`(?i)(?:Total|Due)\s*:?\s*\$\s*([0-9,]+\.?[0-9]*)`),
	// standalone currency amount, last resort
	regexp.MustCompile(`\$\s*([0-9,]+\.[0-9]{2})`),
}

// ExtractAmount matches "Total: $1,234.56" style labels first and a bare
// "$123.45" last. Thousands separators are stripped before the numeric
// parse; an unparseable capture falls through to the next pattern. Returns
// zero when nothing parses.
func ExtractAmount(text string) decimal.Decimal {
	for _, re := range amountPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		raw = strings.TrimSuffix(raw, ".")
		if amount, err := decimal.NewFromString(raw); err == nil {
			return amount
		}
	}
	return decimal.Zero
}
