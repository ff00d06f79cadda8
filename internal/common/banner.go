package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the resolved runtime settings
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.PrintSimple("Lectio", GetVersion())

	if logger == nil {
		return
	}

	logger.Info().
		Str("environment", config.Environment).
		Str("storage", config.Storage.Type).
		Str("provider", string(config.LLM.Provider)).
		Str("log_level", config.Logging.Level).
		Msg("Runtime configuration")
}
