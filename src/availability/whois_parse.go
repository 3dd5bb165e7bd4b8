// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	whoisparser "github.com/likexian/whois-parser"
)

// ambiguousLengthThreshold splits unrecognized WHOIS responses: longer
// ones are treated as registration data in an unknown format, shorter ones
// as terse server errors.
const ambiguousLengthThreshold = 50

// availablePhrases indicate the domain is NOT registered.
// They are checked before takenPhrases.
var availablePhrases = []string{
	"no match",
	"not found",
	"no entries found",
	"no data found",
	"available",
	"not registered",
	"no matching record",
	"status: available",
	"domain status: no object found",
}

// takenPhrases indicate the domain IS registered.
var takenPhrases = []string{
	"registrar:",
	"creation date:",
	"created:",
	"registered:",
	"domain status: ok",
	"domain status: active",
	"registry expiry date:",
	"expiry date:",
	"expires:",
}

var (
	registrarPattern  = regexp.MustCompile(`(?im)^[ \t]*registrar(?: name)?:[ \t]*(\S.*?)[ \t]*$`)
	creationPattern   = regexp.MustCompile(`(?im)^[ \t]*(?:creation date|created(?: on)?|registered(?: on)?|registration time):[ \t]*(\S.*?)[ \t]*$`)
	expirationPattern = regexp.MustCompile(`(?im)^[ \t]*(?:registry expiry date|registrar registration expiration date|expiry date|expiration date|expiration time|expires(?: on)?|paid-till):[ \t]*(\S.*?)[ \t]*$`)
)

// whoisDateLayouts are tried in order when parsing WHOIS dates.
var whoisDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
	"2006/01/02",
	"02.01.2006",
	"02/01/2006",
	"January 2 2006",
}

// classifyWhois maps a raw WHOIS response to a verdict.
//
// Matching is a case-insensitive substring search over the whole response.
// Available phrases win over taken phrases. Unrecognized responses fall
// back to a length heuristic on the text left after dropping % and #
// comment lines: an empty response means available, more than 50
// characters means taken, anything else is an [ErrAmbiguousResponse].
func classifyWhois(raw string) (Status, error) {
	lower := strings.ToLower(raw)

	for _, phrase := range availablePhrases {
		if strings.Contains(lower, phrase) {
			return StatusAvailable, nil
		}
	}

	for _, phrase := range takenPhrases {
		if strings.Contains(lower, phrase) {
			return StatusTaken, nil
		}
	}

	if strings.TrimSpace(raw) == "" {
		return StatusAvailable, nil
	}
	text := strings.TrimSpace(filterWhoisComments(raw))
	if len(text) > ambiguousLengthThreshold {
		return StatusTaken, nil
	}
	return StatusError, fmt.Errorf("%w: %q", ErrAmbiguousResponse, strings.TrimSpace(raw))
}

// extractWhoisData pulls registrar and dates out of a WHOIS response.
// Line patterns are tried first; the whois-parser package fills whatever
// they miss. It returns nil when nothing was found.
func extractWhoisData(raw string) *WhoisData {
	raw = filterWhoisComments(raw)
	data := &WhoisData{
		Registrar:      firstCapture(registrarPattern, raw),
		CreationDate:   parseWhoisDate(firstCapture(creationPattern, raw)),
		ExpirationDate: parseWhoisDate(firstCapture(expirationPattern, raw)),
	}

	if data.Registrar == "" || data.CreationDate == nil || data.ExpirationDate == nil {
		if info, err := whoisparser.Parse(raw); err == nil {
			if data.Registrar == "" && info.Registrar != nil {
				data.Registrar = strings.TrimSpace(info.Registrar.Name)
			}
			if info.Domain != nil {
				if data.CreationDate == nil {
					data.CreationDate = parseWhoisDate(info.Domain.CreatedDate)
				}
				if data.ExpirationDate == nil {
					data.ExpirationDate = parseWhoisDate(info.Domain.ExpirationDate)
				}
			}
		}
	}

	if data.Registrar == "" && data.CreationDate == nil && data.ExpirationDate == nil {
		return nil
	}
	return data
}

func firstCapture(re *regexp.Regexp, raw string) string {
	m := re.FindStringSubmatch(raw)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// parseWhoisDate parses s with the known layouts. When the whole value does
// not parse, its first field is tried, which handles trailing annotations
// such as "2030-01-01 (UTC)". It returns nil for unparseable input.
func parseWhoisDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	candidates := []string{s}
	if fields := strings.Fields(s); len(fields) > 1 {
		candidates = append(candidates, fields[0])
	}

	for _, c := range candidates {
		for _, layout := range whoisDateLayouts {
			if t, err := time.Parse(layout, c); err == nil {
				t = t.UTC()
				return &t
			}
		}
	}
	return nil
}

// filterWhoisComments drops comment lines and collapses blank runs.
func filterWhoisComments(raw string) string {
	var filtered []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "%") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if trimmed == "" && (len(filtered) == 0 || filtered[len(filtered)-1] == "") {
			continue
		}
		filtered = append(filtered, strings.TrimRight(line, "\r"))
	}
	return strings.Join(filtered, "\n")
}
