// Package password содержит функции хэширования и проверки паролей на базе bcrypt.
package password

import "golang.org/x/crypto/bcrypt"

// GetHash возвращает bcrypt-хэш пароля.
func GetHash(raw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CompareHash сверяет хэш с паролем, возвращает ошибку при несовпадении.
func CompareHash(hash, raw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw))
}
