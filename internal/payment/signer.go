package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Signer recomputes the callback signature the provider issues after a
// successful payment: HMAC-SHA256 over "<order_id>|<payment_id>" keyed with
// the provider secret, hex encoded.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) Sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares the supplied signature against the recomputed one in
// constant time. It reports only match/mismatch, never which byte differed.
func (s *Signer) Verify(orderID, paymentID, signature string) bool {
	expected := s.Sign(orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
