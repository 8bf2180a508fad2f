package app

import (
	"regexp"
	"strings"
)

// FieldRecoverer fills in missing sender/subject fields by inspecting raw
// email content. Output is best-effort text heuristics, never authoritative
// metadata; implementations can be swapped or disabled without touching the
// retrieval path.
type FieldRecoverer interface {
	Recover(content, from, subject string) (recoveredFrom, recoveredSubject string)
}

var (
	emailAddrRE = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)
	angleRE     = regexp.MustCompile(`<[^>]+>`)
	replyRE     = regexp.MustCompile(`(?i)^(re:|fw:|fwd:)\s*`)
)

var footerTerms = []string{"unsubscribe", "privacy", "policy", "terms", "conditions", "copyright"}

// HeaderRecoverer scans the leading lines of raw content for header-like
// patterns. NewsletterSenders maps a domain substring to a display sender
// for bulk mail whose headers are useless (e.g. "pinterest.com" →
// "Pinterest").
type HeaderRecoverer struct {
	NewsletterSenders map[string]string
}

func NewHeaderRecoverer() *HeaderRecoverer {
	return &HeaderRecoverer{
		NewsletterSenders: map[string]string{
			"pinterest.com": "Pinterest",
		},
	}
}

func (r *HeaderRecoverer) Recover(content, from, subject string) (string, string) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	for domain, sender := range r.NewsletterSenders {
		if strings.Contains(strings.ToLower(content), domain) {
			if from == "" {
				from = sender
			}
			break
		}
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "from:") && from == "":
			from = strings.TrimSpace(line[5:])
		case strings.HasPrefix(lower, "subject:") && subject == "":
			subject = strings.TrimSpace(line[8:])
		}
		if from == "" && strings.Contains(line, "@") {
			if m := emailAddrRE.FindString(line); m != "" {
				from = m
			}
		}
	}

	if subject == "" {
		subject = firstMeaningfulLine(lines)
	}

	return cleanFrom(from), cleanSubject(subject)
}

func firstMeaningfulLine(lines []string) string {
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || len(line) >= 100 {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "from:") || strings.HasPrefix(lower, "to:") ||
			strings.HasPrefix(lower, "subject:") || strings.HasPrefix(lower, "date:") {
			continue
		}
		skip := false
		for _, term := range footerTerms {
			if strings.Contains(lower, term) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		return line
	}
	return ""
}

func cleanFrom(from string) string {
	from = angleRE.ReplaceAllString(from, "")
	from = strings.Join(strings.Fields(from), " ")
	// Bare address: turn first.last@example.com into "First Last".
	if from != "" && strings.Contains(from, "@") && !strings.Contains(from, " ") {
		name := strings.SplitN(from, "@", 2)[0]
		if strings.Contains(name, ".") {
			parts := strings.Split(name, ".")
			for i, p := range parts {
				if p != "" {
					parts[i] = strings.ToUpper(p[:1]) + p[1:]
				}
			}
			from = strings.Join(parts, " ")
		}
	}
	return from
}

func cleanSubject(subject string) string {
	subject = replyRE.ReplaceAllString(strings.TrimSpace(subject), "")
	subject = strings.Join(strings.Fields(subject), " ")
	if len(subject) > 100 {
		subject = subject[:97] + "..."
	}
	return subject
}
