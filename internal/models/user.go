package models

// User is the learner profile consumed by the tutoring prompt.
// Account management itself is owned by another service; this subsystem
// only reads the fields it needs to personalize teaching.
type User struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	LanguageCode       string   `json:"languageCode"`
	AccessibilityNeeds []string `json:"accessibilityNeeds"`
}
