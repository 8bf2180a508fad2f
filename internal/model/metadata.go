package model

// Metadata key names shared across sources. Every connector projects its
// shape down to these queryable fields so filters never have to know which
// source wrote a record.
const (
	MetaSource     = "source"
	MetaDate       = "date"
	MetaDateStr    = "date_str"
	MetaTitle      = "title"
	MetaChunkIndex = "chunk_index"
)

// Source tags stored under MetaSource for connector-fed records. Direct
// uploads use the raw filename instead.
const (
	SourceGmail      = "gmail"
	SourceSlack      = "slack"
	SourceGoogleDocs = "google_docs"
)

// EmailMeta is the metadata shape for ingested Gmail messages.
// Date is milliseconds since epoch; DateStr keeps the original header value
// for display.
type EmailMeta struct {
	Account     string
	MessageID   string
	From        string
	To          string
	Subject     string
	Date        int64
	DateStr     string
	ProcessedAt string
}

func (m EmailMeta) Map() map[string]any {
	return map[string]any{
		MetaSource:     SourceGmail,
		"email_account": m.Account,
		"message_id":    m.MessageID,
		"from":          m.From,
		"to":            m.To,
		"subject":       m.Subject,
		MetaDate:        m.Date,
		MetaDateStr:     m.DateStr,
		MetaTitle:       m.Subject,
		"processed_at":  m.ProcessedAt,
	}
}

// SlackMeta is the metadata shape for documents pulled out of Slack messages.
type SlackMeta struct {
	Channel   string
	Timestamp string
	URL       string
	Filename  string
	Title     string
}

func (m SlackMeta) Map() map[string]any {
	return map[string]any{
		MetaSource:  SourceSlack,
		"channel":   m.Channel,
		"timestamp": m.Timestamp,
		"url":       m.URL,
		"filename":  m.Filename,
		MetaTitle:   m.Title,
	}
}

// GoogleDocMeta is the metadata shape for imported Google Docs.
type GoogleDocMeta struct {
	Title    string
	URL      string
	FilePath string
}

func (m GoogleDocMeta) Map() map[string]any {
	return map[string]any{
		MetaSource:  SourceGoogleDocs,
		MetaTitle:   m.Title,
		"url":       m.URL,
		"file_path": m.FilePath,
	}
}

// FileMeta is the metadata shape for direct uploads. Source carries the raw
// filename, which deletion later resolves back to the on-disk file.
type FileMeta struct {
	Filename string
	DocIndex int
}

func (m FileMeta) Map() map[string]any {
	return map[string]any{
		MetaSource:  m.Filename,
		MetaTitle:   m.Filename,
		"doc_index": m.DocIndex,
	}
}
