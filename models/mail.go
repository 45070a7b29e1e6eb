package models

// MailMessage is one outbound email. Text is optional.
type MailMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
}
