package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"expense-insight/internal/core/domain"
)

var (
	amountPattern  = regexp.MustCompile(`(?i)(?:total|amount)[^\d]*([\d.,]+)`)
	dayFirstDate   = regexp.MustCompile(`\b(\d{2})[/\-](\d{2})[/\-](\d{4})\b`)
	isoDatePattern = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
)

// ParseReceipt pre-fills amount and date from OCR text. The result is
// advisory: a missing amount is 0 and a missing date is today (UTC).
func ParseReceipt(text string, today time.Time) domain.ReceiptDraft {
	return domain.ReceiptDraft{
		Amount:  parseReceiptAmount(text),
		Date:    parseReceiptDate(text, today),
		RawText: text,
	}
}

func parseReceiptAmount(text string) float64 {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}

	raw := strings.ReplaceAll(m[1], ",", "")
	raw = strings.TrimRight(raw, ".")
	amount, err := strconv.ParseFloat(raw, 64)
	// Misread digits beyond the column range are left for the user to fix
	if err != nil || amount < 0 || amount > maxAmount {
		return 0
	}
	return amount
}

func parseReceiptDate(text string, today time.Time) time.Time {
	if m := isoDatePattern.FindStringSubmatch(text); m != nil {
		if t, ok := makeDate(m[1], m[2], m[3]); ok {
			return t
		}
	}

	if m := dayFirstDate.FindStringSubmatch(text); m != nil {
		// dd/mm/yyyy first, mm/dd/yyyy when the first reading is impossible
		if t, ok := makeDate(m[3], m[2], m[1]); ok {
			return t
		}
		if t, ok := makeDate(m[3], m[1], m[2]); ok {
			return t
		}
	}

	return domain.ToDate(today.UTC())
}

// makeDate rejects out-of-range parts instead of normalizing them
func makeDate(year, month, day string) (time.Time, bool) {
	t, err := time.Parse(domain.DateLayout, year+"-"+month+"-"+day)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
