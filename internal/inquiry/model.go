package inquiry

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Inquiry is a message left through the contact or quote form.
type Inquiry struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Email     string     `gorm:"size:255;not null" json:"email"`
	Subject   string     `gorm:"size:255;not null" json:"subject"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Source    string     `gorm:"size:50;not null" json:"source"`
	Replied   bool       `gorm:"not null;index" json:"replied"`
	RepliedAt *time.Time `json:"repliedAt"`
}

// IsQuoteRequest reports whether the message came from the quote form.
func (i *Inquiry) IsQuoteRequest() bool {
	return i.Subject == "Quote Request" || strings.Contains(i.Message, "QUOTE REQUEST")
}

// SetReplied flips the replied flag. RepliedAt keeps the first time the
// inquiry was marked replied.
func (i *Inquiry) SetReplied(replied bool, now time.Time) {
	i.Replied = replied
	if replied && i.RepliedAt == nil {
		i.RepliedAt = &now
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Inquiry{}, &Subscriber{})
}
