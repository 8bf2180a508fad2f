package extract

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
)

var htmlTagRE = regexp.MustCompile(`<[^<]+?>`)

// emailBody parses an RFC 2822 message and returns its decoded body text.
// Multipart messages prefer a text/plain part; text/html is a fallback with
// tags stripped.
func emailBody(r io.Reader) (string, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return "", err
	}

	contentType := msg.Header.Get("Content-Type")
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return decodeBody(msg.Body, msg.Header.Get("Content-Transfer-Encoding"), mediaType)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return "", fmt.Errorf("multipart message without boundary")
	}

	var htmlFallback string
	mr := multipart.NewReader(msg.Body, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		partType, _, _ := mime.ParseMediaType(part.Header.Get("Content-Type"))
		text, err := decodeBody(part, part.Header.Get("Content-Transfer-Encoding"), partType)
		if err != nil {
			continue
		}
		switch partType {
		case "text/plain":
			return text, nil
		case "text/html":
			if htmlFallback == "" {
				htmlFallback = text
			}
		}
	}
	if htmlFallback != "" {
		return htmlFallback, nil
	}
	return "", fmt.Errorf("no readable body part")
}

func decodeBody(r io.Reader, transferEncoding, mediaType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	text := string(data)
	if mediaType == "text/html" {
		text = htmlTagRE.ReplaceAllString(text, " ")
		text = strings.Join(strings.Fields(text), " ")
	}
	return strings.TrimSpace(text), nil
}
