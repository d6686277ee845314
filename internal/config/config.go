package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Sources  SourcesConfig  `yaml:"sources" envconfig:"SOURCES"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// SourcesConfig names the external resources the pipeline reads. The workbook
// location may be a local path or an HTTP URL; the CSV datasets are remote.
type SourcesConfig struct {
	WorkbookLocation string `yaml:"workbook_location" envconfig:"WORKBOOK_LOCATION" validate:"required"`
	CovidURL         string `yaml:"covid_url" envconfig:"COVID_URL" validate:"required,url"`
	PopulationURL    string `yaml:"population_url" envconfig:"POPULATION_URL" validate:"required,url"`
}

// PipelineConfig holds the explicit analysis parameters: the reporting years,
// the target year, the COVID snapshot date and the column-name normalization
// pattern. These were embedded literals in earlier renditions of the report
// and are deliberately surfaced here.
type PipelineConfig struct {
	Years             []string `yaml:"years" envconfig:"YEARS" validate:"required,min=1"`
	TargetYear        string   `yaml:"target_year" envconfig:"TARGET_YEAR" validate:"required,len=4,numeric"`
	SnapshotDate      string   `yaml:"snapshot_date" envconfig:"SNAPSHOT_DATE" validate:"required,datetime=2006-01-02"`
	YearSuffixPattern string   `yaml:"year_suffix_pattern" envconfig:"YEAR_SUFFIX_PATTERN" validate:"required"`
	TotalSentinel     string   `yaml:"total_sentinel" envconfig:"TOTAL_SENTINEL" validate:"required"`
	RankingSize       int      `yaml:"ranking_size" envconfig:"RANKING_SIZE" validate:"min=1"`
}

// SnapshotTime parses SnapshotDate. Validation guarantees the format.
func (p PipelineConfig) SnapshotTime() time.Time {
	t, _ := time.Parse("2006-01-02", p.SnapshotDate)
	return t
}

// ServerConfig contains report server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system locations for downloaded sources and
// rendered reports.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" validate:"required"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// Default returns the built-in configuration: the published HUD 2007-2019 PIT
// workbook, the NYT state-level COVID series and the Census 2019 population
// estimates, analyzed at year 2019 with a 2021-01-16 COVID snapshot.
func Default() Config {
	return Config{
		Sources: SourcesConfig{
			WorkbookLocation: "https://www.huduser.gov/portal/sites/default/files/xls/2007-2019-PIT-Counts-by-CoC.xlsx",
			CovidURL:         "https://raw.githubusercontent.com/nytimes/covid-19-data/master/us-states.csv",
			PopulationURL:    "https://www2.census.gov/programs-surveys/popest/datasets/2010-2019/national/totals/nst-est2019-alldata.csv",
		},
		Pipeline: PipelineConfig{
			Years: []string{
				"2007", "2008", "2009", "2010", "2011", "2012", "2013",
				"2014", "2015", "2016", "2017", "2018", "2019",
			},
			TargetYear:        "2019",
			SnapshotDate:      "2021-01-16",
			YearSuffixPattern: `\s*,\s*[0-9]{4}$`,
			TotalSentinel:     "Total",
			RankingSize:       10,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/pipeline.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ReportsDir: "reports",
			LogsDir:    "logs",
		},
	}
}

// Load builds the configuration in three layers: built-in defaults, an
// optional YAML file, then environment overrides with the PIT prefix.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Fields carry no envconfig defaults, so only variables actually set in
	// the environment are written here.
	if err := envconfig.Process("PIT", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	found := false
	for _, y := range c.Pipeline.Years {
		if y == c.Pipeline.TargetYear {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config validation failed: target_year %q is not among configured years", c.Pipeline.TargetYear)
	}

	return nil
}
