// internal/config/settings.go
package config

import "github.com/spf13/viper"

// SettingType represents the type of a setting
type SettingType string

const (
	// String type for string settings
	String SettingType = "string"
	// Bool type for boolean settings
	Bool SettingType = "bool"
	// StringSlice type for string slice settings
	StringSlice SettingType = "stringSlice"
	// StringMap type for string map settings
	StringMap SettingType = "stringMap"
)

// Setting defines a configuration setting
type Setting struct {
	// Name is the name of the setting
	Name string
	// Short is a short description of the setting
	Short string
	// Type is the type of the setting
	Type SettingType
	// Default is the default value of the setting
	Default interface{}
	// Env is the environment variable name for the setting
	Env string
}

// SettingList is a list of settings
type SettingList []Setting

// PopulateViperDefaults sets default values for all settings in Viper
func (sl SettingList) PopulateViperDefaults(v *viper.Viper) {
	for _, s := range sl {
		v.SetDefault(s.Name, s.Default)
	}
}

// Settings defines all application settings
var Settings = SettingList{
	// Server settings
	{
		Name:    "SERVER_ADDR",
		Short:   "Address on which the server listens",
		Type:    String,
		Default: ":8000",
		Env:     "SERVER_ADDR",
	},
	{
		Name:    "METRICS_ADDR",
		Short:   "Address on which the metrics server listens",
		Type:    String,
		Default: ":9090",
		Env:     "METRICS_ADDR",
	},
	{
		Name:    "SHUTDOWN_TIMEOUT",
		Short:   "Maximum time to wait for graceful shutdown",
		Type:    String,
		Default: "30s",
		Env:     "SHUTDOWN_TIMEOUT",
	},

	// TLS settings
	{
		Name:    "TLS_ENABLED",
		Short:   "Enable TLS for the inbound listener",
		Type:    Bool,
		Default: false,
		Env:     "TLS_ENABLED",
	},
	{
		Name:    "TLS_CERT_PATH",
		Short:   "Path to TLS certificate file",
		Type:    String,
		Default: "",
		Env:     "TLS_CERT_PATH",
	},
	{
		Name:    "TLS_KEY_PATH",
		Short:   "Path to TLS key file",
		Type:    String,
		Default: "",
		Env:     "TLS_KEY_PATH",
	},
	{
		Name:    "TLS_CA_PATH",
		Short:   "Path to CA certificate for client verification",
		Type:    String,
		Default: "",
		Env:     "TLS_CA_PATH",
	},

	// Upstream settings
	{
		Name:    "UPSTREAM_URL",
		Short:   "URL of the upstream service requests are forwarded to",
		Type:    String,
		Default: "http://localhost:8080",
		Env:     "UPSTREAM_URL",
	},
	{
		Name:    "UPSTREAM_TIMEOUT",
		Short:   "Maximum time to wait for upstream responses",
		Type:    String,
		Default: "30s",
		Env:     "UPSTREAM_TIMEOUT",
	},

	// Authentication filter settings
	{
		Name:    "FILTER_ENABLED",
		Short:   "Enable the authentication filter",
		Type:    Bool,
		Default: false,
		Env:     "FILTER_ENABLED",
	},
	{
		Name:    "JWT_PAYLOAD_LOCATIONS",
		Short:   "Mapping from token issuer to the header carrying its verified claims",
		Type:    StringMap,
		Default: map[string]string{},
		Env:     "JWT_PAYLOAD_LOCATIONS",
	},
	{
		Name:    "PEER_METHODS",
		Short:   "Peer authentication methods, in order (mtls, tls, jwt:<issuer>)",
		Type:    StringSlice,
		Default: []string{},
		Env:     "PEER_METHODS",
	},
	{
		Name:    "ORIGIN_METHODS",
		Short:   "Origin authentication methods, in order (jwt:<issuer>)",
		Type:    StringSlice,
		Default: []string{},
		Env:     "ORIGIN_METHODS",
	},
	{
		Name:    "PRINCIPAL_BINDING",
		Short:   "Source of the request principal (peer or origin)",
		Type:    String,
		Default: "peer",
		Env:     "PRINCIPAL_BINDING",
	},

	// Token verification settings
	{
		Name:    "VERIFY_ENABLED",
		Short:   "Enable bearer token verification ahead of the filter",
		Type:    Bool,
		Default: false,
		Env:     "VERIFY_ENABLED",
	},
	{
		Name:    "VERIFY_ISSUER",
		Short:   "Issuer URL for bearer token verification",
		Type:    String,
		Default: "",
		Env:     "VERIFY_ISSUER",
	},
	{
		Name:    "VERIFY_CLIENT_ID",
		Short:   "Client ID for bearer token verification",
		Type:    String,
		Default: "",
		Env:     "VERIFY_CLIENT_ID",
	},

	// Observability settings
	{
		Name:    "LOG_LEVEL",
		Short:   "Minimum log level to emit",
		Type:    String,
		Default: "info",
		Env:     "LOG_LEVEL",
	},
}
