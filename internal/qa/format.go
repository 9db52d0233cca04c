// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package qa

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NoSupport is shown in place of a justification when none was found.
const NoSupport = "No exact supporting sentence found."

// Format renders the result as Markdown for chat history and terminals.
func (r Result) Format() string {
	based := r.Justification.Highlighted
	if based == "" {
		based = NoSupport
	}
	return fmt.Sprintf(
		"**Answer:** %s\n\n**Confidence:** %s%%\n\n**Based on:** _%s_\n**Justification Score:** %s%%",
		r.Answer, Percent(r.Confidence), based, Percent(r.Justification.Score),
	)
}

// Percent renders a [0,1] score as a percentage rounded to two decimals,
// keeping at least one decimal place: 0.5 is "50.0", 0.87234 is "87.23".
func Percent(v float64) string {
	p := math.Round(v*100*100) / 100
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
