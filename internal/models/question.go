package models

// Question is one entry of a session's ordered question sequence.
type Question struct {
	Index     int       `json:"index"`
	Text      string    `json:"text"`
	Dimension Dimension `json:"dimension"`
}
