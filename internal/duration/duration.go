// Package duration decodes the ISO 8601 elapsed-time strings Clockify reports
// for each time entry (e.g. "PT5H30M").
package duration

import (
	"regexp"
	"strconv"
)

// isoPattern matches PT[nH][nM][nS]. Fractional seconds are matched but
// dropped so "PT1.5S" counts as one second.
var isoPattern = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:\.\d+)?S)?`)

// Result is the outcome of decoding a duration string. Parsed is false when
// the text does not contain the PT grammar at all.
type Result struct {
	Seconds int64
	Parsed  bool
}

// Parse decodes text into a Result. Absent components count as zero.
func Parse(text string) Result {
	m := isoPattern.FindStringSubmatch(text)
	if m == nil {
		return Result{}
	}
	h := component(m[1])
	min := component(m[2])
	s := component(m[3])
	total := h*3600 + min*60 + s
	if total < 0 {
		// overflow
		total = 0
	}
	return Result{Seconds: total, Parsed: true}
}

// Seconds returns the number of seconds in text, or 0 if it cannot be parsed.
func Seconds(text string) int64 {
	return Parse(text).Seconds
}

func component(digits string) int64 {
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > maxComponent {
		return 0
	}
	return n
}

// maxComponent keeps h*3600 well inside int64.
const maxComponent = 1 << 40
