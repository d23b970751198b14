package services

import "strings"

// CompletionIntentDetector decides whether a learner message signals that
// the current section is understood and can be wrapped up
type CompletionIntentDetector interface {
	// Detect reports whether the message signals completion intent
	//
	// "message" is the raw learner message.
	//
	// Returns true when completion intent is detected.
	Detect(message string) bool
}

// completionKeywords are matched case-insensitively as substrings, so
// "I'm DONE with this" and "thanks!" both count.
var completionKeywords = []string{
	"satisfied",
	"complete",
	"finished",
	"done",
	"understood",
	"got it",
	"clear",
	"helpful",
	"thank you",
	"thanks",
}

type keywordIntentDetector struct {
	keywords []string
}

// NewKeywordIntentDetector creates a detector backed by the fixed keyword list
func NewKeywordIntentDetector() *keywordIntentDetector {
	return &keywordIntentDetector{keywords: completionKeywords}
}

// Detect reports whether the message contains any completion keyword
func (d *keywordIntentDetector) Detect(message string) bool {
	lowered := strings.ToLower(message)
	for _, keyword := range d.keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
