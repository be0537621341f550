package cmd

import (
	"os"
	"strconv"
	"strings"

	"github.com/etnz/pocket/reminder"
	"github.com/joho/godotenv"
)

// LoadEnv loads the variables of an optional .env file into the environment.
// Variables already set are kept.
func LoadEnv(files ...string) error {
	err := godotenv.Load(files...)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultVal
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

// smtpConfig reads the mail server of the reminders from the environment.
func smtpConfig() reminder.Config {
	var to []string
	for _, addr := range strings.Split(getEnv("POCKET_SMTP_TO", ""), ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	return reminder.Config{
		Host:     getEnv("POCKET_SMTP_HOST", ""),
		Port:     strconv.Itoa(getEnvAsInt("POCKET_SMTP_PORT", 587)),
		Username: getEnv("POCKET_SMTP_USER", ""),
		Password: getEnv("POCKET_SMTP_PASSWORD", ""),
		From:     getEnv("POCKET_SMTP_FROM", ""),
		To:       to,
	}
}
