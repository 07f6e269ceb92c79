package validator

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// 入力不正はすべてこれをラップして返す（handlerで400に落とす）
var ErrValidation = errors.New("validation error")

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	//大文字・小文字・数字を最低1つずつ
	passwordUpper = regexp.MustCompile(`[A-Z]`)
	passwordLower = regexp.MustCompile(`[a-z]`)
	passwordDigit = regexp.MustCompile(`\d`)
)

// AuthValidatorは登録・ログイン入力の形式チェック
type AuthValidator struct{}

func NewAuthValidator() *AuthValidator {
	return &AuthValidator{}
}

// 会員登録の入力チェック
func (v *AuthValidator) ValidateRegister(username string, email string, password string) error {
	if len(username) < 3 || len(username) > 50 {
		return fmt.Errorf("%w: username must be 3-50 characters", ErrValidation)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username can only contain letters, numbers, hyphens and underscores", ErrValidation)
	}
	if !isValidEmailFormat(email) || len(email) > 100 {
		return fmt.Errorf("%w: must provide a valid email", ErrValidation)
	}
	if len(password) < 8 {
		return fmt.Errorf("%w: password must have at least 8 characters", ErrValidation)
	}
	if len(password) > 50 {
		return fmt.Errorf("%w: password cannot exceed 50 characters", ErrValidation)
	}
	if !passwordUpper.MatchString(password) || !passwordLower.MatchString(password) || !passwordDigit.MatchString(password) {
		return fmt.Errorf("%w: password must contain an uppercase letter, a lowercase letter and a number", ErrValidation)
	}
	return nil
}

// ログインの入力チェック（空チェックのみ。詳細な形式判定は認証側に任せる）
func (v *AuthValidator) ValidateLogin(username string, password string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	return nil
}

// メールチェック
func isValidEmailFormat(email string) bool {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return false
	}
	_, err := mail.ParseAddress(trimmed)
	return err == nil
}
