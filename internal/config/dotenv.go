package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DotEnvPath is the optional env file read before the config, relative to the working directory.
const DotEnvPath = ".env"

// LoadDotEnv exports the PANELS_* entries of the env file at path so that Load picks them
// up as overrides. Variables already set in the process environment win. A missing file is
// not an error. It returns the number of variables set.
func LoadDotEnv(path string) (int, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	n := 0
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if !strings.HasPrefix(name, envPrefix+"_") {
			continue
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
