package transfer

import (
	"fmt"
	"time"

	"github.com/covault-pay/covault/internal/wallet"
)

// Status is the lifecycle stage of a coin transaction.
type Status int

const (
	StatusCreated Status = iota
	StatusReceiverApproved
	StatusReceiverRejected
	StatusSenderReconfirmed
	StatusSenderCanceled
	StatusBroadcast
)

var statusNames = map[Status]string{
	StatusCreated:           "created",
	StatusReceiverApproved:  "receiver_approved",
	StatusReceiverRejected:  "receiver_rejected",
	StatusSenderReconfirmed: "sender_reconfirmed",
	StatusSenderCanceled:    "sender_canceled",
	StatusBroadcast:         "broadcast",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus resolves a stored status name.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction status %q", s)
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	switch s {
	case StatusReceiverRejected, StatusSenderCanceled, StatusBroadcast:
		return true
	default:
		return false
	}
}

// Signature is one device's signature over the transaction payload.
type Signature struct {
	DeviceID string `json:"device_id"`
	Value    string `json:"value"`
}

// CoinTransaction is a pending transfer moving through proposal,
// counter-party approval, reconfirmation, and signature collection.
// Only the coordinator writes Status and Signatures.
type CoinTransaction struct {
	TxID       string
	SenderID   string
	ReceiverID string
	Payload    string
	Status     Status
	Strategy   wallet.SignStrategy
	Signatures []Signature
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// addSignature appends sig unless an identical value is already
// recorded, and returns the distinct count. Duplicates never
// double-count.
func (t *CoinTransaction) addSignature(sig Signature) (count int, added bool) {
	if !t.hasSignature(sig.Value) {
		t.Signatures = append(t.Signatures, sig)
		added = true
	}
	return len(t.Signatures), added
}

func (t *CoinTransaction) hasSignature(value string) bool {
	for _, s := range t.Signatures {
		if s.Value == value {
			return true
		}
	}
	return false
}

// clone returns a deep copy so snapshots never alias live state.
func (t CoinTransaction) clone() CoinTransaction {
	out := t
	out.Signatures = append([]Signature(nil), t.Signatures...)
	return out
}
