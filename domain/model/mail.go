package model

// MailMessage is a transactional email rendered into the shared layout.
type MailMessage struct {
	To         string
	Subject    string
	Title      string
	Greeting   string
	Body       string
	ButtonText string
	ButtonURL  string
}
