package qr

import (
	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Payload kinds. A scanned payload is exactly one of these variants; Resolve
// dispatches on the kind instead of probing optional fields.
const (
	KindVisitor     = "visitor"
	KindToken       = "token"
	KindLegacyEmail = "legacy-email"
)

// Claims is the signed content of a QR payload. New issuance always produces
// KindVisitor; the token and legacy-email shapes survive only so that passes
// printed by older flows keep scanning.
type Claims struct {
	Kind      string `json:"kind"`
	VisitorID string `json:"visitor_id,omitempty"`
	TokenID   string `json:"token_id,omitempty"`
	Email     string `json:"email,omitempty"`
	BookingID string `json:"booking_id,omitempty"`
	jwtlib.RegisteredClaims
}

// Codec signs and verifies opaque QR payloads. Payloads carry no expiry of
// their own; single use is enforced by the check-in state machine, not the
// signature.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

func (c *Codec) Encode(claims Claims) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

func (c *Codec) Decode(payload string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(payload, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrNotFound
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrNotFound
	}
	return claims, nil
}
