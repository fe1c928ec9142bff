package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigFile pairs a dotenv file path with the struct it populates. Structs
// carry envconfig tags.
type ConfigFile struct {
	// Path to the dotenv file. Empty means environment variables only.
	Path string
	// Config is a pointer to the target struct.
	Config interface{}
}

// LoadConfigFiles loads one or more dotenv files and unmarshals the
// environment into the paired structs. A missing file is an error here; use
// LoadConfigs when the file is optional.
func LoadConfigFiles(configFiles ...*ConfigFile) error {
	for _, configFile := range configFiles {
		if configFile.Path != "" {
			if err := godotenv.Load(configFile.Path); err != nil {
				return err
			}
		}
		if err := envconfig.Process("", configFile.Config); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfigs unmarshals the current environment into each struct. A .env
// file in the working directory is picked up first when present, so local
// runs and containers share one code path.
func LoadConfigs(configs ...interface{}) error {
	_ = godotenv.Load()
	for _, cfg := range configs {
		if err := envconfig.Process("", cfg); err != nil {
			return err
		}
	}
	return nil
}
