package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Settings holds the runtime options read from the environment.
// Every field maps to ADDRESSBOOK_<TAG>; a .env file in the working directory
// is honoured when present.
type Settings struct {
	DataFile        string `envconfig:"DATA_FILE" default:"contacts.dat"`
	Language        string `envconfig:"LANG" default:"en"`
	ServerPort      string `envconfig:"SERVER_PORT" default:"18080"`
	RefreshMinutes  int    `envconfig:"REFRESH_MIN" default:"5"`
	ReminderTrigger string `envconfig:"REMINDER"`
	CardDAVURL      string `envconfig:"CARDDAV_URL"`
	CardDAVUser     string `envconfig:"CARDDAV_USER"`
}

// LoadSettings reads the optional .env file and then the process environment.
func LoadSettings() (*Settings, error) {
	// load default .env file, ignore the error
	_ = godotenv.Load()

	s := new(Settings)
	if err := envconfig.Process(EnvPrefix, s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettings, err)
	}
	if s.DataFile == "" {
		s.DataFile = DefaultDataFile
	}
	if s.ServerPort == "" {
		s.ServerPort = DefaultPort
	}
	if s.RefreshMinutes <= 0 {
		s.RefreshMinutes = DefaultRefreshMin
	}
	if !isSupportedLanguage(s.Language) {
		s.Language = DefaultLanguage
	}
	return s, nil
}

func isSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}
