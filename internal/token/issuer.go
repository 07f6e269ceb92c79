package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// accesstokenの有効期限
const AccessTokenTTL = 5 * time.Minute

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// Claimsはaccesstokenに載せる本人情報。subはユーザーID。
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// IssuerはHS256でaccesstokenを署名・検証する。
// 失効リストは持たない（短命なのでrevoke不要の設計）。
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    AccessTokenTTL,
	}
}

// ExpiresInSecondsはexpires_inで返す秒数（300）
func (i *Issuer) ExpiresInSeconds() int {
	return int(i.ttl.Seconds())
}

// Issueはclaimsに発行時刻と期限を埋めて署名する
func (i *Issuer) Issue(userID string, username string, email string, now time.Time) (string, error) {
	claims := Claims{
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(i.secret)
}

// Verifyは署名と期限を検証する。
// 期限切れはErrTokenExpired、それ以外は全部ErrInvalidToken。
// 呼び出し側（handler）はどちらも401にするので区別は内部用。
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
