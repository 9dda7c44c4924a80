package inquiry

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=255"`
	Message string `json:"message" validate:"required,max=10000"`
	Source  string `json:"source" validate:"max=50"`

	// Honeypot is a hidden form field only bots fill in.
	Honeypot string `json:"honeypot"`
}

type UpdateRequest struct {
	Replied *bool `json:"replied"`
}
