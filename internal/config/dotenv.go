package config

import (
	"os"

	"github.com/joho/godotenv"
)

// envFiles in precedence order; godotenv never overwrites variables the OS
// environment already sets, so deployment env vars always win and
// .env.local shadows .env.
var envFiles = []string{".env.local", ".env"}

// LoadDotEnv loads local env files before the YAML config is read and
// returns the files it found.
func LoadDotEnv() []string {
	var found []string
	for _, name := range envFiles {
		if _, err := os.Stat(name); err == nil {
			found = append(found, name)
		}
	}
	if len(found) > 0 {
		_ = godotenv.Load(found...)
	}
	return found
}
