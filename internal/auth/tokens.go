package auth

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/annedfinds/storefront-notify/internal/config"
)

const (
	tokenIssuer   = "storefront-notify"
	tokenAudience = "payment-confirmation"
)

// Predefined errors for payment token operations.
var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrSigningMethod  = errors.New("unexpected signing method")
	ErrNoSigningKey   = errors.New("payment token signing key is not configured")
	ErrOrderMismatch  = errors.New("token was issued for a different order")
)

// PaymentClaims are the claims carried by a payment confirmation token.
// The order id is the subject.
type PaymentClaims struct {
	jwt.RegisteredClaims
}

// OrderID returns the order the token was issued for.
func (c *PaymentClaims) OrderID() string {
	return c.Subject
}

// PaymentTokens issues and validates the signed tokens embedded in the
// operator's payment confirmation links.
type PaymentTokens struct {
	signingKey []byte
	expiry     time.Duration
	confirmURL string
	now        func() time.Time
}

// NewPaymentTokens creates a PaymentTokens from the payment configuration.
func NewPaymentTokens(cfg config.PaymentConfig) *PaymentTokens {
	return &PaymentTokens{
		signingKey: []byte(cfg.TokenSigningKey),
		expiry:     cfg.TokenExpiry,
		confirmURL: cfg.ConfirmURL,
		now:        time.Now,
	}
}

// Issue creates a signed token for the given order.
func (p *PaymentTokens) Issue(orderID string) (string, error) {
	if len(p.signingKey) == 0 {
		return "", ErrNoSigningKey
	}

	now := p.now()
	claims := PaymentClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   orderID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign payment token: %w", err)
	}
	return signed, nil
}

// ConfirmLink returns the operator confirmation URL for the order, with the
// order id and a freshly issued token as query parameters.
func (p *PaymentTokens) ConfirmLink(orderID string) (string, error) {
	token, err := p.Issue(orderID)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(p.confirmURL)
	if err != nil {
		return "", fmt.Errorf("parse confirm url: %w", err)
	}
	q := u.Query()
	q.Set("orderId", orderID)
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Validate parses and validates a token string. When orderID is non-empty
// the token must have been issued for that order.
func (p *PaymentTokens) Validate(tokenString, orderID string) (*PaymentClaims, error) {
	if len(p.signingKey) == 0 {
		return nil, ErrNoSigningKey
	}

	token, err := jwt.ParseWithClaims(tokenString, &PaymentClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSigningMethod
		}
		return p.signingKey, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, classifyJWTError(err)
	}

	claims, ok := token.Claims.(*PaymentClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if orderID != "" && claims.Subject != orderID {
		return nil, ErrOrderMismatch
	}

	return claims, nil
}

// classifyJWTError maps jwt library errors to domain-specific errors.
func classifyJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	if errors.Is(err, jwt.ErrTokenMalformed) {
		return ErrTokenMalformed
	}
	if errors.Is(err, jwt.ErrSignatureInvalid) {
		return ErrTokenInvalid
	}
	if errors.Is(err, ErrSigningMethod) {
		return ErrSigningMethod
	}
	return fmt.Errorf("validate token: %w", err)
}
