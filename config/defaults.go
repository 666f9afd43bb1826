package config

// Default directories and file paths for saferoute.
const (
	// DefaultConfigDir is the base directory for storing saferoute artifacts.
	DefaultConfigDir = ".saferoute"
	// DefaultBlobDir is the default directory for archived relay exchanges.
	DefaultBlobDir = DefaultConfigDir + "/archive"
	// DefaultSQLiteDSN is the default data source name for SQLite storage.
	DefaultSQLiteDSN = DefaultConfigDir + "/relay.db"
	// DefaultShelterPath is the default path for the local shelter directory file.
	DefaultShelterPath = DefaultConfigDir + "/shelters.yaml"
	// DefaultHTTPPort matches the port the original deployment listened on.
	DefaultHTTPPort = 8000
	// DefaultUpstreamTimeoutSeconds bounds each outbound upstream call.
	DefaultUpstreamTimeoutSeconds = 30
)
