package gmail

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"

	"ai-workspace/internal/model"
)

// parseMessage flattens an API message into the stored form. The millisecond
// receive time comes from the server, the display date from the header.
func parseMessage(account string, msg *gmailapi.Message) model.StoredEmail {
	email := model.StoredEmail{
		Account:     account,
		MessageID:   msg.Id,
		Date:        msg.InternalDate,
		ProcessedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch strings.ToLower(h.Name) {
			case "from":
				email.From = h.Value
			case "to":
				email.To = h.Value
			case "subject":
				email.Subject = h.Value
			case "date":
				email.DateStr = h.Value
			}
		}
		email.Body = extractBody(msg.Payload)
	}

	if email.Date == 0 && email.DateStr != "" {
		if t, err := mail.ParseDate(email.DateStr); err == nil {
			email.Date = t.UnixMilli()
		}
	}
	return email
}

// extractBody walks the MIME tree depth first preferring text/plain parts
// and falling back to text/html.
func extractBody(part *gmailapi.MessagePart) string {
	if text := findPart(part, "text/plain"); text != "" {
		return text
	}
	return findPart(part, "text/html")
}

func findPart(part *gmailapi.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if strings.HasPrefix(part.MimeType, mimeType) && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	for _, child := range part.Parts {
		if text := findPart(child, mimeType); text != "" {
			return text
		}
	}
	return ""
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		if decoded, err = base64.RawURLEncoding.DecodeString(data); err != nil {
			return ""
		}
	}
	return string(decoded)
}
