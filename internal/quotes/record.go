package quotes

import "strings"

// Record is one quotation and its optional speaker. Speaker is empty when the
// source left it blank or wrote NULL.
type Record struct {
	Text    string
	Speaker string
}

// NewRecord trims both fields and normalises an absent speaker to "".
func NewRecord(text, speaker string) Record {
	return Record{Text: strings.TrimSpace(text), Speaker: NormalizeSpeaker(speaker)}
}

// NormalizeSpeaker maps blank and NULL (any case) to "".
func NormalizeSpeaker(speaker string) string {
	trimmed := strings.TrimSpace(speaker)
	if strings.EqualFold(trimmed, "NULL") {
		return ""
	}
	return trimmed
}

// HasSpeaker reports whether the record carries an attribution.
func (r Record) HasSpeaker() bool {
	return r.Speaker != ""
}
