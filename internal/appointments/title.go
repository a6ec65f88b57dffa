package appointments

import (
	"regexp"
	"strings"
)

// VisitType is the evaluation kind encoded in a calendar event title.
type VisitType string

const (
	VisitEval   VisitType = "EVAL"
	VisitDA     VisitType = "DA"
	VisitDAEval VisitType = "DAEVAL"
)

var titleTag = regexp.MustCompile(`\[([A-Z]+)-([A-Z]+)\]`)

var visitTypeCodes = map[string]VisitType{
	"E":  VisitEval,
	"D":  VisitDA,
	"DE": VisitDAEval,
}

// ParseTitle extracts the location and visit-type codes from a calendar
// event title using the bracketed [LOC-TYPE] convention, e.g. "[COL-E]" is
// an EVAL at COL and "[NYC-DE]" a DAEVAL at NYC. A bare "[V]" tag marks a
// virtual visit, which can only be a DA and carries no location. Titles
// without a recognized tag yield nothing; an unreadable title is never an
// error.
func ParseTitle(title string) (location *string, visit *VisitType) {
	if m := titleTag.FindStringSubmatch(title); m != nil {
		loc := m[1]
		if loc == "COLUMBIA" {
			loc = "COL"
		}
		location = &loc

		if vt, ok := visitTypeCodes[m[2]]; ok {
			visit = &vt
		}
		return location, visit
	}

	if strings.Contains(title, "[V]") {
		vt := VisitDA
		return nil, &vt
	}

	return nil, nil
}
