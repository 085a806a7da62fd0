// Package config defines the configuration model for an ecompipe run.
//
// A run is described by one YAML file. Values are layered in this order, each
// layer overriding the previous one:
//
//  1. Defaults()
//  2. the YAML file
//  3. ECOMPIPE_* environment variables (optionally seeded from a .env file)
//
// Example (trimmed):
//
//	api:
//	  url: https://fakestoreapi.com/products
//	  timeout: 30
//	data_sources:
//	  sales_file: data/raw/sales.csv
//	  inventory_file: data/raw/inventory.csv
//	processing:
//	  output_path: data/processed
//	  critical_stock_threshold: 1.2
//	storage:
//	  kind: sqlite
//	  dsn: file:data/ecompipe.db
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment override, e.g. ECOMPIPE_API_URL.
const EnvPrefix = "ECOMPIPE"

// Pipeline is the top-level configuration of one run.
type Pipeline struct {
	// Job labels metrics and log lines.
	Job string `yaml:"job" envconfig:"JOB" validate:"required"`

	API         API         `yaml:"api" envconfig:"API"`
	DataSources DataSources `yaml:"data_sources" envconfig:"DATA_SOURCES"`
	Processing  Processing  `yaml:"processing" envconfig:"PROCESSING"`
	Quality     Quality     `yaml:"quality" envconfig:"QUALITY"`
	Storage     Storage     `yaml:"storage" envconfig:"STORAGE"`
	Outputs     Outputs     `yaml:"outputs" envconfig:"OUTPUTS"`
	Logging     Logging     `yaml:"logging" envconfig:"LOGGING"`
	Metrics     Metrics     `yaml:"metrics" envconfig:"METRICS"`
}

// API configures the product catalog endpoint.
type API struct {
	URL string `yaml:"url" envconfig:"URL" validate:"omitempty,url"`
	// Timeout is in seconds.
	Timeout int               `yaml:"timeout" envconfig:"TIMEOUT" validate:"gte=0"`
	Retries int               `yaml:"retries" envconfig:"RETRIES" validate:"gte=0,lte=10"`
	Backoff time.Duration     `yaml:"backoff" envconfig:"BACKOFF" validate:"gte=0"`
	Headers map[string]string `yaml:"headers" envconfig:"HEADERS"`
}

// TimeoutDuration returns Timeout as a time.Duration.
func (a API) TimeoutDuration() time.Duration {
	return time.Duration(a.Timeout) * time.Second
}

// DataSources names the local input files.
type DataSources struct {
	SalesFile     string `yaml:"sales_file" envconfig:"SALES_FILE" validate:"required"`
	InventoryFile string `yaml:"inventory_file" envconfig:"INVENTORY_FILE" validate:"required"`
	// ProductsFallbackFile is read when the API is unset or fails. JSON or CSV
	// by extension.
	ProductsFallbackFile string `yaml:"products_fallback_file" envconfig:"PRODUCTS_FALLBACK_FILE"`
	Delimiter            string `yaml:"delimiter" envconfig:"DELIMITER" validate:"len=1"`
	Encoding             string `yaml:"encoding" envconfig:"ENCODING" validate:"oneof=utf-8 latin1 windows-1252"`
}

// Processing holds the knobs of the core stages.
type Processing struct {
	OutputPath             string  `yaml:"output_path" envconfig:"OUTPUT_PATH" validate:"required"`
	CriticalStockThreshold float64 `yaml:"critical_stock_threshold" envconfig:"CRITICAL_STOCK_THRESHOLD" validate:"gte=0"`
	CostRatio              float64 `yaml:"cost_ratio" envconfig:"COST_RATIO" validate:"gte=0"`
	ColumnCase             string  `yaml:"column_case" envconfig:"COLUMN_CASE" validate:"oneof=lower preserve"`
}

// Quality configures the quality gate.
type Quality struct {
	// ValidCategories is the accepted category set. Empty means "derive from
	// the data", which only catches null categories.
	ValidCategories []string `yaml:"valid_categories" envconfig:"VALID_CATEGORIES"`
	DateColumn      string   `yaml:"date_column" envconfig:"DATE_COLUMN" validate:"required"`
	DateLayouts     []string `yaml:"date_layouts" envconfig:"DATE_LAYOUTS"`
	// Enforce skips persisting derived outputs when any check fails.
	Enforce bool `yaml:"enforce" envconfig:"ENFORCE"`
}

// Storage selects the SQL sink. Kind "none" disables it.
type Storage struct {
	Kind            string `yaml:"kind" envconfig:"KIND" validate:"oneof=none sqlite postgres mysql mssql"`
	DSN             string `yaml:"dsn" envconfig:"DSN" validate:"required_unless=Kind none"`
	TablePrefix     string `yaml:"table_prefix" envconfig:"TABLE_PREFIX"`
	AutoCreateTable bool   `yaml:"auto_create_table" envconfig:"AUTO_CREATE_TABLE"`
	Truncate        bool   `yaml:"truncate" envconfig:"TRUNCATE"`
	BatchSize       int    `yaml:"batch_size" envconfig:"BATCH_SIZE" validate:"gt=0"`
}

// Outputs toggles the file sinks and locates the run report.
type Outputs struct {
	ReportPath   string `yaml:"report_path" envconfig:"REPORT_PATH" validate:"required"`
	CSV          bool   `yaml:"csv" envconfig:"CSV"`
	XLSX         bool   `yaml:"xlsx" envconfig:"XLSX"`
	RawSnapshots bool   `yaml:"raw_snapshots" envconfig:"RAW_SNAPSHOTS"`
}

// Logging configures the run logger.
type Logging struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=trace debug info warn warning error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
	// File receives a copy of every log line. Empty disables it.
	File string `yaml:"file" envconfig:"FILE"`
}

// Metrics selects the operational metrics backend.
type Metrics struct {
	Backend        string `yaml:"backend" envconfig:"BACKEND" validate:"oneof=none pushgateway datadog"`
	PushgatewayURL string `yaml:"pushgateway_url" envconfig:"PUSHGATEWAY_URL" validate:"omitempty,url"`
	// DatadogAddr is the DogStatsD agent address, e.g. 127.0.0.1:8125.
	DatadogAddr string `yaml:"datadog_addr" envconfig:"DATADOG_ADDR"`
}

// Defaults returns a Pipeline with every optional value filled in.
func Defaults() Pipeline {
	return Pipeline{
		Job: "ecompipe",
		API: API{
			Timeout: 30,
			Retries: 2,
			Backoff: 500 * time.Millisecond,
		},
		DataSources: DataSources{
			Delimiter: ",",
			Encoding:  "utf-8",
		},
		Processing: Processing{
			OutputPath:             "data/processed",
			CriticalStockThreshold: 1.2,
			CostRatio:              0.6,
			ColumnCase:             "lower",
		},
		Quality: Quality{
			DateColumn: "sale_date",
		},
		Storage: Storage{
			Kind:            "none",
			AutoCreateTable: true,
			BatchSize:       500,
		},
		Outputs: Outputs{
			ReportPath:   "data/outputs/report.json",
			CSV:          true,
			XLSX:         true,
			RawSnapshots: true,
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
			File:   "pipeline_execution.log",
		},
		Metrics: Metrics{
			Backend: "none",
		},
	}
}

// Load builds a Pipeline from defaults, the YAML file at path and the
// environment. It does not validate; see ValidatePipeline.
func Load(path string) (*Pipeline, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	p, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes YAML over Defaults and applies environment overrides.
func Parse(b []byte) (*Pipeline, error) {
	p := Defaults()
	if err := yaml.UnmarshalStrict(b, &p); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &p); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	return &p, nil
}

// LoadEnvFile exports the variables of a dotenv file into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}
