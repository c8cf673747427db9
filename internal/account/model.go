package account

import (
	"time"

	"github.com/covault-pay/covault/internal/contact"
	"github.com/covault-pay/covault/internal/wallet"
)

// User is a registered account holder, identified by a unique contact.
type User struct {
	ID           string
	Contact      string
	ContactKind  contact.Kind
	PasswordHash []byte
	InviteCode   string
	SignStrategy wallet.SignStrategy
	CreatedAt    time.Time
}
