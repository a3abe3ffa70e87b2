package entity

import "time"

// Item is a purchased good evaluated for local content.
// The percentages and thresholds are fixed when the submission is created.
type Item struct {
	ID                   int64   `json:"id"`
	SubmissionID         string  `json:"submission_id"`
	Position             int     `json:"position"`
	Name                 string  `json:"name"`
	Quantity             int     `json:"quantity"`
	Unit                 string  `json:"unit"`
	Brand                string  `json:"brand"`
	Model                string  `json:"model"`
	Specification        string  `json:"specification"`
	Category             string  `json:"category"`
	FinalPrice           float64 `json:"final_price"`
	ForeignPrice         float64 `json:"foreign_price"`
	DomesticValuePercent float64 `json:"domestic_value_percent"`

	LocalContentPercent float64 `json:"local_content_percent"`
	TotalPercent        float64 `json:"total_percent"`
	IsCompliant         bool    `json:"is_compliant"`

	// Thresholds in effect at evaluation time
	MinLocalContentPercent  float64 `json:"min_local_content_percent"`
	MinDomesticValuePercent float64 `json:"min_domestic_value_percent"`
	MinTotalPercent         float64 `json:"min_total_percent"`

	CreatedAt time.Time `json:"created_at"`
}
