package utils

import (
	"errors"
	"math/rand"
)

const (
	digits       = "0123456789"
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateNumericCode returns a random string of digits, used for public
// order identifiers.
func GenerateNumericCode(length int) (string, error) {
	return generateFrom(digits, length)
}

// GenerateReference returns prefix followed by length random alphanumerics.
func GenerateReference(prefix string, length int) (string, error) {
	body, err := generateFrom(alphanumeric, length)
	if err != nil {
		return "", err
	}
	return prefix + body, nil
}

func generateFrom(alphabet string, length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid token length")
	}

	out := make([]byte, length)
	for i := range out {
		out[i] = alphabet[rand.Intn(len(alphabet))]
	}

	return string(out), nil
}
