package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/scrypt"
)

// 暗号化パッケージの固定レイアウト: salt(64) || iv(16) || tag(16) || ciphertext
const (
	saltLength = 64
	ivLength   = 16
	tagLength  = 16
	keyLength  = 32 // AES-256
)

// 復号失敗は原因を区別せずこれ一本。どのバイトがずれたかは漏らさない。
var ErrDecryptionFailed = errors.New("decryption failed")

// FieldCipherは単一フィールドの認証付き暗号化。
// 鍵は保存しない。マスターシークレット＋行ごとのsaltからscryptで毎回導出する。
type FieldCipher struct {
	secret []byte
}

func NewFieldCipher(secret string) *FieldCipher {
	return &FieldCipher{secret: []byte(secret)}
}

// scryptで256bit鍵を導出
func (c *FieldCipher) deriveKey(salt []byte) ([]byte, error) {
	return scrypt.Key(c.secret, salt, 16384, 8, 1, keyLength)
}

// Encryptは毎回新しいsaltとIVを引くので、同じ平文でも出力は毎回変わる。
// 空文字は暗号化せずそのまま返す。
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return plaintext, nil
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	key, err := c.deriveKey(salt)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return "", err
	}

	// Sealはciphertextのあとにtagをつけるのでレイアウトはここで並べ替える
	sealed := aesgcm.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagLength]
	tag := sealed[len(sealed)-tagLength:]

	combined := make([]byte, 0, saltLength+ivLength+tagLength+len(ciphertext))
	combined = append(combined, salt...)
	combined = append(combined, iv...)
	combined = append(combined, tag...)
	combined = append(combined, ciphertext...)

	return hex.EncodeToString(combined), nil
}

// Decryptは固定長で分割して埋め込みsaltから鍵を再導出する。
// hex不正・長さ不足・タグ不一致はすべてErrDecryptionFailedに倒す。
func (c *FieldCipher) Decrypt(encrypted string) (string, error) {
	if encrypted == "" {
		return encrypted, nil
	}

	combined, err := hex.DecodeString(encrypted)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	if len(combined) < saltLength+ivLength+tagLength {
		return "", ErrDecryptionFailed
	}

	salt := combined[:saltLength]
	iv := combined[saltLength : saltLength+ivLength]
	tag := combined[saltLength+ivLength : saltLength+ivLength+tagLength]
	ciphertext := combined[saltLength+ivLength+tagLength:]

	key, err := c.deriveKey(salt)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	aesgcm, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	// Open用に ciphertext || tag へ戻す
	sealed := make([]byte, 0, len(ciphertext)+tagLength)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aesgcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

// Fingerprintは平文のsha256（hex）。
// 塩なしなので同じ平文は常に同じ値になり、一意チェックに使える。秘匿用途には使わない。
func Fingerprint(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
