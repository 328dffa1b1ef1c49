package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strconv"
)

// Signer authenticates gateway notifications with HMAC-SHA512 over "order_code|outcome|gross_amount".
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

func (s *Signer) Sign(orderCode, outcome string, grossAmount int64) string {
	h := hmac.New(sha512.New, s.secret)
	h.Write([]byte(orderCode + "|" + outcome + "|" + strconv.FormatInt(grossAmount, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Signer) Verify(n Notification) bool {
	expected := s.Sign(n.OrderCode, n.Outcome, n.GrossAmount)
	return hmac.Equal([]byte(expected), []byte(n.Signature))
}
