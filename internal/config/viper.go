// Package config centralizes runtime configuration through Viper: data
// location, backend selection and the column-mapping override file. Values
// come from flags, the config file, POINTAGE_* environment variables, or the
// defaults set here, in that precedence order.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyDataDir  = "data_dir"
	KeyBackend  = "backend"
	KeyWorkbook = "workbook"
	KeyDatabase = "database"
	KeyMapping  = "mapping"
)

// Backend names accepted by KeyBackend.
const (
	BackendXLSX   = "xlsx"
	BackendSQLite = "sqlite"
)

// SetDefaults installs the default configuration values.
func SetDefaults() {
	viper.SetDefault(KeyDataDir, "data")
	viper.SetDefault(KeyBackend, BackendXLSX)
	viper.SetDefault(KeyWorkbook, "pointage.xlsx")
	viper.SetDefault(KeyDatabase, "pointage.db")
	viper.SetDefault(KeyMapping, "mapping.yaml")
}

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// DataDir returns the directory holding the data files.
func DataDir() string {
	return viper.GetString(KeyDataDir)
}

// Backend returns the selected persistence backend name.
func Backend() string {
	return viper.GetString(KeyBackend)
}

// WorkbookPath returns the workbook location for the xlsx backend. A relative
// configured name resolves under the data directory.
func WorkbookPath() string {
	return resolve(viper.GetString(KeyWorkbook))
}

// DatabasePath returns the database location for the sqlite backend.
func DatabasePath() string {
	return resolve(viper.GetString(KeyDatabase))
}

// MappingPath returns the column-mapping override file location. The file is
// optional; a missing file means the default headers.
func MappingPath() string {
	return resolve(viper.GetString(KeyMapping))
}

// resolve anchors a relative path under the data directory.
func resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(DataDir(), path)
}
