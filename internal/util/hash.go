package util

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
)

// HashFields hashes parts as a JSON array so ("ab", "c") != ("a", "bc").
func HashFields(parts ...string) string {
	return HashValue(parts)
}

func HashValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = nil
	}
	return digest(data)
}

func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
