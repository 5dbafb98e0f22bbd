package domain

import "time"

// DateLayout is the calendar-date format used on the wire
const DateLayout = "2006-01-02"

// Category is one of the fixed expense categories
type Category string

const (
	CategoryRent           Category = "Rent"
	CategoryGroceries      Category = "Groceries"
	CategoryEntertainment  Category = "Entertainment"
	CategoryUtilities      Category = "Utilities"
	CategoryTransportation Category = "Transportation"
	CategoryMiscellaneous  Category = "Miscellaneous"
)

// Categories lists the accepted categories in display order
var Categories = []Category{
	CategoryRent,
	CategoryGroceries,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryTransportation,
	CategoryMiscellaneous,
}

// ParseCategory reports whether s is an accepted category (exact match)
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// ExpenseStatus is the anomaly label stored with an expense
type ExpenseStatus string

const (
	StatusNormal  ExpenseStatus = "Normal"
	StatusAnomaly ExpenseStatus = "Anomaly"
)

// AnomalyDraft is what the classifier sees of an expense
type AnomalyDraft struct {
	Amount   float64
	Category Category
	Date     time.Time
}

// AnomalyResult is the classifier verdict
type AnomalyResult struct {
	IsAnomaly bool
	Score     float64
}

// Status maps the verdict to the stored label
func (r AnomalyResult) Status() ExpenseStatus {
	if r.IsAnomaly {
		return StatusAnomaly
	}
	return StatusNormal
}

// AnomalyEvent is published when a write is classified as an anomaly
type AnomalyEvent struct {
	ExpenseID  uint      `json:"expenseId"`
	UserID     uint      `json:"userId"`
	Category   string    `json:"category"`
	Amount     float64   `json:"amount"`
	Date       string    `json:"date"`
	Score      float64   `json:"score"`
	DetectedAt time.Time `json:"detectedAt"`
}

// ReceiptDraft is the best-effort prefill extracted from OCR text
type ReceiptDraft struct {
	Amount  float64
	Date    time.Time
	RawText string
}

// ToDate truncates t to a UTC calendar date
func ToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
