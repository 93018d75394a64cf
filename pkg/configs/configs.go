package configs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPageSize   = 500
	MaxPageSize       = 500
	DefaultTimeout    = 30 * time.Second
	DefaultDumpDir    = ""
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "json"
	DefaultReportPath = ""
)

type SonarConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

type ProfileConfig struct {
	First  string
	Second string
	Target string
}

type DumpConfig struct {
	Dir      string
	Compress bool
}

type LogConfig struct {
	Level  string
	Format string
}

type Config struct {
	Sonar      SonarConfig
	Profiles   ProfileConfig
	PageSize   int
	DryRun     bool
	Strict     bool
	Dump       DumpConfig
	Log        LogConfig
	ReportPath string
}

func GetConfig() *Config {

	// From the environment
	viper.SetEnvPrefix("QP_COMBINER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// From config file
	viper.SetConfigName("config")
	viper.AddConfigPath("./")
	viper.AddConfigPath("./configs")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No configuration file was loaded")
	}

	SetDefaults()

	return &Config{}
}

func SetDefaults() {
	viper.SetDefault("sonar.timeout", DefaultTimeout)
	viper.SetDefault("fetch.page_size", DefaultPageSize)
	viper.SetDefault("run.dry_run", false)
	viper.SetDefault("run.strict", false)
	viper.SetDefault("dump.dir", DefaultDumpDir)
	viper.SetDefault("dump.compress", true)
	viper.SetDefault("log.level", DefaultLogLevel)
	viper.SetDefault("log.format", DefaultLogFormat)
	viper.SetDefault("report.path", DefaultReportPath)
}

// Load fills the config from viper, which already merges flags, environment,
// config file and defaults.
func (config *Config) Load() error {

	config.Sonar = SonarConfig{
		URL:     strings.TrimRight(viper.GetString("sonar.url"), "/"),
		Token:   viper.GetString("sonar.token"),
		Timeout: viper.GetDuration("sonar.timeout"),
	}

	config.Profiles = ProfileConfig{
		First:  viper.GetString("profiles.first"),
		Second: viper.GetString("profiles.second"),
		Target: viper.GetString("profiles.target"),
	}

	config.PageSize = viper.GetInt("fetch.page_size")
	config.DryRun = viper.GetBool("run.dry_run")
	config.Strict = viper.GetBool("run.strict")

	config.Dump = DumpConfig{
		Dir:      viper.GetString("dump.dir"),
		Compress: viper.GetBool("dump.compress"),
	}

	config.Log = LogConfig{
		Level:  viper.GetString("log.level"),
		Format: viper.GetString("log.format"),
	}

	config.ReportPath = viper.GetString("report.path")

	return config.Validate()
}

func (config *Config) Validate() error {

	var errs []error

	if len(config.Sonar.URL) == 0 {
		errs = append(errs, errors.New("sonar url is required"))
	}

	if len(config.Sonar.Token) == 0 {
		errs = append(errs, errors.New("sonar token is required"))
	}

	if config.Sonar.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", config.Sonar.Timeout))
	}

	if len(config.Profiles.First) == 0 || len(config.Profiles.Second) == 0 {
		errs = append(errs, errors.New("both source profile keys are required"))
	}

	if len(config.Profiles.Target) == 0 {
		errs = append(errs, errors.New("target profile key is required"))
	}

	if config.PageSize < 1 || config.PageSize > MaxPageSize {
		errs = append(errs, fmt.Errorf("page size must be between 1 and %d, got %d", MaxPageSize, config.PageSize))
	}

	return errors.Join(errs...)
}
