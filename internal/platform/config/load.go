package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// Load reads optional dotenv files into the process env before any Conf lookup
// Existing variables win; missing files are not an error. With no paths ".env" is tried.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
