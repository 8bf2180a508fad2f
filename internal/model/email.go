package model

// StoredEmail is the durable on-disk form of a fetched message. The vector
// index can be rebuilt from these files, so they keep the full body rather
// than chunk text.
type StoredEmail struct {
	Account     string `json:"account"`
	MessageID   string `json:"message_id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Date        int64  `json:"date"`
	DateStr     string `json:"date_str"`
	Body        string `json:"body"`
	ProcessedAt string `json:"processed_at"`
}

// Content renders the message the way it is indexed and shown to models.
func (e StoredEmail) Content() string {
	return "From: " + e.From + "\nTo: " + e.To + "\nSubject: " + e.Subject + "\nDate: " + e.DateStr + "\n\n" + e.Body
}
