package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/districtmap/districtmap/pkg/fuzzy"
)

// Config holds the application configuration loaded from flags,
// environment variables, .env files, and the config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Data paths
	TreeRoot     string
	CodeBookPath string
	AliasesPath  string

	// Matching thresholds
	StateThreshold    float64
	DistrictThreshold float64
	BorderlineFloor   float64

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// flags (applied later by cobra), environment variables, .env files,
// ~/.districtmap.yaml, then defaults.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("districtmap")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".districtmap")
	}
	_ = viper.ReadInConfig()

	setDefaults()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),
		Format:  viper.GetString("format"),

		ConfigFile: viper.ConfigFileUsed(),

		TreeRoot:     viper.GetString("tree_root"),
		CodeBookPath: viper.GetString("codebook"),
		AliasesPath:  viper.GetString("aliases"),

		StateThreshold:    viper.GetFloat64("state_threshold"),
		DistrictThreshold: viper.GetFloat64("district_threshold"),
		BorderlineFloor:   viper.GetFloat64("borderline_floor"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}
	return config, nil
}

func setDefaults() {
	viper.SetDefault("tree_root", "data/marriage_muhurats")
	viper.SetDefault("codebook", "data/state-district-code.csv")
	viper.SetDefault("state_threshold", fuzzy.DefaultStateThreshold)
	viper.SetDefault("district_threshold", fuzzy.DefaultDistrictThreshold)
	viper.SetDefault("borderline_floor", fuzzy.DefaultBorderlineFloor)
}

// loadEnvFiles loads environment variables from .env files, the local
// override last so it wins.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Overload(envFile)
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
