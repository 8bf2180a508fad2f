package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverKeepsExistingFields(t *testing.T) {
	t.Parallel()
	r := NewHeaderRecoverer()

	from, subject := r.Recover("anything", "Alice", "hello")
	assert.Equal(t, "Alice", from)
	assert.Equal(t, "hello", subject)
}

func TestRecoverParsesHeaderLines(t *testing.T) {
	t.Parallel()
	r := NewHeaderRecoverer()

	content := "From: Bob Jones <bob@example.com>\nSubject: weekly sync\n\nagenda attached"
	from, subject := r.Recover(content, "", "")
	assert.Equal(t, "Bob Jones", from)
	assert.Equal(t, "weekly sync", subject)
}

func TestRecoverFallsBackToEmailAddress(t *testing.T) {
	t.Parallel()
	r := NewHeaderRecoverer()

	content := "you got mail from jane.doe@example.com today\n\nbody"
	from, _ := r.Recover(content, "", "x")
	assert.Equal(t, "Jane Doe", from)
}

func TestRecoverNewsletterSender(t *testing.T) {
	t.Parallel()
	r := NewHeaderRecoverer()

	content := "Discover new ideas\nhttps://www.pinterest.com/pin/12345\nUnsubscribe anytime"
	from, _ := r.Recover(content, "", "x")
	assert.Equal(t, "Pinterest", from)
}

func TestRecoverSubjectFromFirstMeaningfulLine(t *testing.T) {
	t.Parallel()
	r := NewHeaderRecoverer()

	content := strings.Join([]string{
		"",
		"From: someone@example.com",
		strings.Repeat("x", 150),
		"Click here to unsubscribe",
		"Quarterly results are in",
		"more body text",
	}, "\n")

	_, subject := r.Recover(content, "x", "")
	assert.Equal(t, "Quarterly results are in", subject)
}

func TestRecoverCleansSubject(t *testing.T) {
	t.Parallel()
	r := NewHeaderRecoverer()

	_, subject := r.Recover("Subject: Re:   spaced    out\n", "x", "")
	assert.Equal(t, "spaced out", subject)

	long := "Subject: " + strings.Repeat("a", 150) + "\n"
	_, subject = r.Recover(long, "x", "")
	assert.Len(t, subject, 100)
	assert.True(t, strings.HasSuffix(subject, "..."))
}

func TestRecoverStripsAngleBrackets(t *testing.T) {
	t.Parallel()
	r := NewHeaderRecoverer()

	from, _ := r.Recover("From: Carol <carol@example.com>\n", "", "x")
	assert.Equal(t, "Carol", from)
}
