// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxDomainLength = 253
	maxLabelLength  = 63
	punycodePrefix  = "xn--"
)

// commandDomainPattern is the literal label(.label)+ shape accepted by
// [Command] before any probe runs. The TLD is alphabetic or Punycode.
var commandDomainPattern = regexp.MustCompile(
	`(?i)^[a-z0-9]([a-z0-9-]*[a-z0-9])?(\.[a-z0-9]([a-z0-9-]*[a-z0-9])?)*\.([a-z]{2,}|xn--[a-z0-9]([a-z0-9-]*[a-z0-9])?)$`,
)

// IsValidDomain reports whether domain is a syntactically valid domain name.
//
// A valid domain is at most 253 characters long and has at least two labels
// separated by dots. Each label is 1-63 characters long, contains only ASCII
// letters, digits, or hyphens, and does not start or end with a hyphen.
// The TLD (last label) is either at least 2 letters or a Punycode label.
// Surrounding whitespace and a single trailing dot are ignored.
func IsValidDomain(domain string) bool {
	return ValidateDomain(domain) == nil
}

// ValidateDomain is like [IsValidDomain] but returns an error wrapping
// [ErrInvalidDomain] that describes the first problem found.
func ValidateDomain(domain string) error {
	name := normalizeDomain(domain)
	if name == "" {
		return fmt.Errorf("%w: domain is empty", ErrInvalidDomain)
	}
	if len(name) > maxDomainLength {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidDomain, domain, maxDomainLength)
	}

	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return fmt.Errorf("%w: %q has no TLD", ErrInvalidDomain, domain)
	}

	for i, label := range labels {
		if label == "" {
			return fmt.Errorf("%w: %q contains an empty label", ErrInvalidDomain, domain)
		}
		if len(label) > maxLabelLength {
			return fmt.Errorf("%w: label %q exceeds %d characters", ErrInvalidDomain, label, maxLabelLength)
		}

		// Labels must not start or end with a hyphen.
		if label[0] == '-' || label[len(label)-1] == '-' {
			return fmt.Errorf("%w: label %q starts or ends with a hyphen", ErrInvalidDomain, label)
		}

		if i == len(labels)-1 {
			if !isValidTLD(label) {
				return fmt.Errorf("%w: invalid TLD %q", ErrInvalidDomain, label)
			}
			continue
		}

		for _, c := range label {
			if !isAlnum(c) && c != '-' {
				return fmt.Errorf("%w: label %q contains %q", ErrInvalidDomain, label, c)
			}
		}
	}

	return nil
}

// isValidTLD reports whether label is an alphabetic TLD of at least two
// characters or a Punycode TLD.
func isValidTLD(label string) bool {
	if strings.HasPrefix(label, punycodePrefix) {
		rest := label[len(punycodePrefix):]
		if rest == "" {
			return false
		}
		for _, c := range rest {
			if !isAlnum(c) && c != '-' {
				return false
			}
		}
		return true
	}

	if len(label) < 2 {
		return false
	}
	for _, c := range label {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

func isAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}

// validateCommandDomain performs the pre-flight check used by [Command].
func validateCommandDomain(domain string) error {
	if strings.TrimSpace(domain) == "" {
		return fmt.Errorf("%w: domain is empty", ErrInvalidDomain)
	}
	if !commandDomainPattern.MatchString(strings.TrimSpace(domain)) {
		return fmt.Errorf("%w: %q does not match label(.label)+", ErrInvalidDomain, domain)
	}
	return nil
}

// SplitDomain splits domain on its last dot into the base name and the TLD
// with its leading dot. A single-label domain yields an empty TLD.
// Surrounding whitespace and a trailing dot are ignored.
//
//	SplitDomain("example.co.uk") // "example.co", ".uk"
//	SplitDomain("localhost")     // "localhost", ""
func SplitDomain(domain string) (base, tld string) {
	domain = strings.TrimSuffix(strings.TrimSpace(domain), ".")
	i := strings.LastIndex(domain, ".")
	if i < 0 {
		return domain, ""
	}
	return domain[:i], domain[i:]
}

// normalizeDomain lowercases and trims whitespace and a trailing dot from a domain name.
func normalizeDomain(domain string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
}

// tldOf returns the last label of a normalized domain without its dot.
func tldOf(domain string) string {
	_, tld := SplitDomain(normalizeDomain(domain))
	return strings.TrimPrefix(tld, ".")
}

// CommonTLDs is a list of popular TLDs used when no TLD list is given.
var CommonTLDs = []string{
	"com", "net", "org", "io", "dev", "app", "ai", "co",
	"me", "tv", "xyz", "info", "biz", "tech", "online", "site",
}

// GenerateMultiTLD builds full domain names for name under each TLD.
// TLDs may be given with or without their leading dot. When tlds is nil,
// [CommonTLDs] is used.
func GenerateMultiTLD(name string, tlds []string) []string {
	if tlds == nil {
		tlds = CommonTLDs
	}
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	domains := make([]string, 0, len(tlds))
	for _, tld := range tlds {
		tld = strings.TrimPrefix(strings.TrimSpace(tld), ".")
		if tld == "" {
			continue
		}
		domains = append(domains, name+"."+tld)
	}
	return domains
}
