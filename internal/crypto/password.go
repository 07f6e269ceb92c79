package crypto

import "golang.org/x/crypto/bcrypt"

// bcryptのコスト（ラウンド数相当）
const DefaultBcryptCost = 10

// bcryptハッシュ化。saltとcostは出力に自己記述される。
type BcryptHasher struct {
	cost int
}

// DI
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

// 平文パスワードからハッシュへ。
func (h *BcryptHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// 平文とハッシュを比較。壊れたハッシュでもpanic/errorにせずfalseを返す。
func (h *BcryptHasher) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
