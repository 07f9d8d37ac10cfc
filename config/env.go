package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadEnv loads .env once at process start. Missing file is fine: deployed
// environments inject real env vars.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		GetLogger().WithFields(logrus.Fields{
			"field": "config",
		}).Debug("no .env file loaded: " + err.Error())
	}
}

func envBool(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// StrictMandatoryEnforcement treats conditional registry fields with sample
// data gaps as errors instead of warnings.
//
// Set via env:
// - STRICT_MANDATORY_ENFORCEMENT=true
func StrictMandatoryEnforcement() bool {
	return envBool("STRICT_MANDATORY_ENFORCEMENT")
}

// ParallelCheckExecution fans built-in and pack checks out across goroutines.
// Checks are pure over an immutable context, so this only changes latency.
//
// Set via env:
// - PARALLEL_CHECK_EXECUTION=true
func ParallelCheckExecution() bool {
	return envBool("PARALLEL_CHECK_EXECUTION")
}

// APIKey returns the shared key required on mutating API routes. Empty means
// auth is disabled (developer convenience).
func APIKey() string {
	return strings.TrimSpace(os.Getenv("PINTAE_API_KEY"))
}
