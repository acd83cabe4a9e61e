package extract

import "regexp"

var timestampRe = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)

// StripTimestamps removes clock-style markers such as 0:00 or 12:34 that
// transcript exports interleave with the spoken text.
func StripTimestamps(text string) string {
	return timestampRe.ReplaceAllString(text, "")
}
