package hash

import "golang.org/x/crypto/bcrypt"

const cost = 10

func HashPassword(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	ifequiv := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return ifequiv == nil
}
