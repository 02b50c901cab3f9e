// Package extract turns noisy OCR text from payment receipts into structured
// records using ordered regex rules with per-field fallbacks.
package extract

import (
	"regexp"
	"strings"
)

var reTrailingPunct = regexp.MustCompile(`[.,:;]+$`)

// Extract applies the registry to normalized text and returns a Record with
// every declared field populated or explicitly absent. Fields are extracted
// independently; nothing a rule matches is withheld from other fields, and
// extraction itself never fails.
func Extract(image, clean string, reg *Registry) Record {
	rec := newRecord(image, reg.Fields())
	for _, fr := range reg.fields {
		if v, ok := findFirst(clean, fr.Rules, reg, fr.StripCommas); ok {
			rec.set(fr.Name, v)
			continue
		}
		if fr.Override != nil {
			if v, ok := findFirst(clean, []Rule{*fr.Override}, reg, fr.StripCommas); ok {
				rec.set(fr.Name, v)
			}
		}
	}
	return rec
}

// findFirst tries rules in priority order with a find-all scan and returns
// the first usable cleaned capture. A rule whose capture cleans down to
// empty is treated as a miss.
func findFirst(text string, rules []Rule, reg *Registry, stripCommas bool) (string, bool) {
	for _, ru := range rules {
		ms := ru.re.FindAllStringSubmatch(text, -1)
		for _, m := range ms {
			if len(m) <= ru.group {
				continue
			}
			v := cleanValue(m[ru.group], reg)
			if v == "" {
				continue
			}
			if stripCommas {
				v = strings.ReplaceAll(v, ",", "")
			}
			return v, true
		}
	}
	return "", false
}

// cleanValue trims a raw capture down to a single-field value: cut at the
// first embedded newline (defensive, captures can span lines in unnormalized
// input), cut before the registry's next label token so greedy captures do
// not swallow the following field, trim, and drop trailing punctuation.
func cleanValue(raw string, reg *Registry) string {
	v := raw
	if i := strings.IndexByte(v, '\n'); i >= 0 {
		v = v[:i]
	}
	if loc := reg.boundaries.FindStringIndex(v); loc != nil && loc[0] > 0 {
		v = v[:loc[0]]
	}
	v = strings.TrimSpace(v)
	v = reTrailingPunct.ReplaceAllString(v, "")
	return strings.TrimSpace(v)
}
