// Package trainkind maps the upstream's inconsistent category text to a
// canonical train kind.
package trainkind

import (
	"regexp"
	"strings"

	"github.com/BearBump/TrainBox/internal/models"
)

// Leading acronym, e.g. "FR" in "FR 9544". It must end at a non-letter so
// that "FRECCIAROSSA" is matched as a whole word instead.
var prefixRe = regexp.MustCompile(`^([A-Z]{1,4})(?:[^A-Z]|$)`)

// Classify returns the kind for the first raw string, in the given order,
// that matches a rule. Empty strings are skipped. It never fails.
func Classify(raw ...string) models.TrainKind {
	for _, s := range raw {
		norm := Normalize(s)
		if norm == "" {
			continue
		}
		if m := prefixRe.FindStringSubmatch(norm); m != nil {
			if k, ok := lookup(m[1]); ok {
				return k
			}
		}
		if k, ok := lookup(norm); ok {
			return k
		}
	}
	return unknown
}

func lookup(token string) (models.TrainKind, bool) {
	for _, r := range rules {
		if r.matches(token) {
			return r.Kind, true
		}
	}
	return models.TrainKind{}, false
}

// Normalize uppercases s, trims it and collapses internal whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}
