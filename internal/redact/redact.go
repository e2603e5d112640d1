// Package redact masks personal data before it reaches logs or events.
package redact

import (
	"regexp"
	"strings"
)

// Kind names a category of personal data.
type Kind string

const (
	KindEmail     Kind = "email"
	KindCPF       Kind = "cpf"
	KindIPAddress Kind = "ip_address"
)

// Match is one piece of personal data found in a text
type Match struct {
	Kind     Kind
	Value    string
	StartPos int
	EndPos   int
}

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)

	// CPF either formatted as 000.000.000-00 or as eleven bare digits
	cpfPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b[0-9]{3}\.[0-9]{3}\.[0-9]{3}-[0-9]{2}\b`),
		regexp.MustCompile(`\b[0-9]{11}\b`),
	}

	ipv4Pattern = regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`)
)

// Find returns every piece of personal data in s, ordered by position.
// Bare eleven digit runs count only when their check digits are valid.
func Find(s string) []Match {
	var matches []Match

	for _, m := range emailPattern.FindAllStringIndex(s, -1) {
		matches = append(matches, Match{Kind: KindEmail, Value: s[m[0]:m[1]], StartPos: m[0], EndPos: m[1]})
	}

	for _, pattern := range cpfPatterns {
		for _, m := range pattern.FindAllStringIndex(s, -1) {
			value := s[m[0]:m[1]]
			if !ValidCPF(value) {
				continue
			}
			matches = append(matches, Match{Kind: KindCPF, Value: value, StartPos: m[0], EndPos: m[1]})
		}
	}

	for _, m := range ipv4Pattern.FindAllStringIndex(s, -1) {
		matches = append(matches, Match{Kind: KindIPAddress, Value: s[m[0]:m[1]], StartPos: m[0], EndPos: m[1]})
	}

	// insertion sort; match counts are tiny
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].StartPos < matches[j-1].StartPos; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
	return matches
}

// Text replaces every piece of personal data in s with a placeholder.
func Text(s string) string {
	matches := Find(s)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if m.StartPos < last {
			continue // overlaps a previous match
		}
		b.WriteString(s[last:m.StartPos])
		b.WriteString(placeholder(m.Kind))
		last = m.EndPos
	}
	b.WriteString(s[last:])
	return b.String()
}

func placeholder(kind Kind) string {
	switch kind {
	case KindEmail:
		return "[EMAIL_REDACTED]"
	case KindCPF:
		return "[CPF_REDACTED]"
	case KindIPAddress:
		return "[IP_REDACTED]"
	default:
		return "[REDACTED]"
	}
}

// Email keeps the first character of the local part and the domain.
func Email(s string) string {
	at := strings.LastIndex(s, "@")
	if at <= 0 {
		return maskAll(s)
	}
	return s[:1] + "***" + s[at:]
}

// Phone keeps the last two digits.
func Phone(s string) string {
	return keepLastDigits(s, 2)
}

// CPF keeps the two check digits.
func CPF(s string) string {
	return keepLastDigits(s, 2)
}

func keepLastDigits(s string, keep int) string {
	out := []byte(s)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] < '0' || out[i] > '9' {
			continue
		}
		if keep > 0 {
			keep--
			continue
		}
		out[i] = '*'
	}
	return string(out)
}

func maskAll(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

// ValidCPF reports whether s is a CPF with valid check digits. Dots and the
// dash are ignored; sequences of one repeated digit are rejected.
func ValidCPF(s string) bool {
	digits := make([]int, 0, 11)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, int(c-'0'))
		case c == '.' || c == '-':
		default:
			return false
		}
	}
	if len(digits) != 11 {
		return false
	}

	repeated := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			repeated = false
			break
		}
	}
	if repeated {
		return false
	}

	return checkDigit(digits[:9]) == digits[9] && checkDigit(digits[:10]) == digits[10]
}

// checkDigit computes the mod 11 verifier over digits with descending weights
func checkDigit(digits []int) int {
	sum := 0
	weight := len(digits) + 1
	for _, d := range digits {
		sum += d * weight
		weight--
	}
	r := (sum * 10) % 11
	if r == 10 {
		return 0
	}
	return r
}
