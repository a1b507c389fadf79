package models

// MonthKey identifies one calendar month in a summary.
type MonthKey struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// MonthlySummaryEntry keeps the aggregation envelope previous clients
// consume: the grouping key under "_id", the summed amount under "total".
// Months with no expenses never produce an entry.
type MonthlySummaryEntry struct {
	ID    MonthKey `json:"_id"`
	Total float64  `json:"total"`
}
