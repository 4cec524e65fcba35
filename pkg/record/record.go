// Package record turns Congressional Record text into individual floor speeches.
package record

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Document is one extracted Congressional Record issue (or PDF section).
type Document struct {
	Text      string    `json:"text"`
	IssueDate time.Time `json:"issue_date"`
	SourceURL string    `json:"source_url"`
}

// Speech is a single utterance recovered from a document.
type Speech struct {
	ID        string    `json:"speech_id"`
	Title     string    `json:"title"`
	Speaker   string    `json:"speaker"`
	Body      string    `json:"speech"`
	IssueDate time.Time `json:"issue_date"`
	SourceURL string    `json:"source_url"`
	// Offset is the byte position of the opener in the normalized text.
	Offset int `json:"offset"`
	// Boundary names the closer that ended the body.
	Boundary string `json:"boundary"`
}

var speechNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://floorspeech/speech"))

// DocumentSpace derives the id namespace of one normalized document text.
// Documents sharing a source and date but differing in text get distinct
// speech ids.
func DocumentSpace(text string) uuid.UUID {
	return uuid.NewSHA1(speechNamespace, []byte(text))
}

// SpeechID derives a stable identifier from the document namespace, its
// source and an opener offset.
func SpeechID(doc uuid.UUID, sourceURL string, issueDate time.Time, offset int) string {
	key := sourceURL + "|" + issueDate.UTC().Format(time.RFC3339) + "|" + strconv.Itoa(offset)
	return uuid.NewSHA1(doc, []byte(key)).String()
}
