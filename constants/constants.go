package constants

// ============================================================================
// CONFIGURATION
// ============================================================================

// Configuration Files
const (
	ConfigFileName = "saferoute.config.json"
	EnvFileName    = ".env"
)

// Storage Drivers
const (
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
)

// Environment Variables
const (
	EnvJawatPAT         = "JAWAT_PAT"
	EnvJawatAPIURL      = "JAWAT_API_URL"
	EnvJamaiPAT         = "JAMAI_PAT"
	EnvJamaiProjectID   = "JAMAI_PROJECT_ID"
	EnvJamaiAPIURL      = "JAMAI_API_URL"
	EnvJamaiTableAPIURL = "JAMAI_TABLE_API_URL"
	EnvDatabaseURL      = "DATABASE_URL"
	EnvPort             = "PORT"
	EnvDebug            = "SAFEROUTE_DEBUG"
	EnvEndpoints        = "SAFEROUTE_ENDPOINTS"
	EnvShelterDirectory = "SAFEROUTE_SHELTERS"
	EnvTraceExporter    = "SAFEROUTE_TRACE_EXPORTER"
)

// ============================================================================
// JAMAI TABLES
// ============================================================================

// Table IDs
const (
	TableEmergencyRouting = "emergency_routing"
	TablePPSKnowledge     = "pps_knowledge"
)

// Row action markers. The action column tells JamAI which prompt/skill a row
// belongs to and lets the frontend filter routing history.
const (
	ActionRoutingRequest      = "routing_request"
	ActionFindSafeShelter     = "find_safe_shelter"
	ActionFamilyFirstRoute    = "family_first_route"
	ActionDecodeVulnerability = "decode_vulnerabilities"
	ActionRouteOptimalPPS     = "route_optimal_pps"
	ActionSOPUpload           = "sop_upload"
	ActionDiagnosticPing      = "ping"
)

// Column IDs
const (
	ColAction          = "action"
	ColUserInput       = "user_input"
	ColLocationDetails = "location_details"
	ColDecodedTags     = "decoded_tags"
	ColRouteAnalysis   = "route_analysis"
	ColAnalysisText    = "analysis_text"
	ColSelectedPPS     = "selected_pps"
	ColCreatedAt       = "created_at"
)

// ============================================================================
// ROUTING OUTPUT
// ============================================================================

const (
	// JamaiStatusSuccess / JamaiStatusError are the only values of the
	// jamai_status envelope field.
	JamaiStatusSuccess = "success"
	JamaiStatusError   = "error"

	// BestMatchPrefix marks the final line of a route analysis; the selected
	// PPS name follows the colon.
	BestMatchPrefix = "BEST MATCH:"

	// TagSeparator joins decoded tag lists into the decoded_tags output string.
	TagSeparator = ", "
)

// Analyze statuses
const (
	StatusSubmitted = "submitted"
	StatusComplete  = "complete"
	StatusPending   = "pending"
)

// Marker suitability labels
const (
	SuitabilityBestMatch   = "Best Match"
	SuitabilityNotSuitable = "Not Suitable"
	SuitabilityUnknown     = "Unknown"
)

// Operation IDs shared by the registry, relay records, and event payloads.
const (
	OpRouteEmergency = "routeEmergency"
	OpCreateTable    = "createTable"
	OpCreateRow      = "createRow"
	OpListRows       = "listRows"
	OpAnalyze        = "analyze"
	OpRoute          = "route"
	OpListRecords    = "listRecords"
	OpListShelters   = "listShelters"
	OpDiagnostics    = "runDiagnostics"
	OpSpec           = "spec"
)

// DefaultRecordLimit caps record listings when the caller gives no limit.
const DefaultRecordLimit = 50

// Source marker written on uploaded knowledge rows.
const SourceName = "safe-route-ui"

// Shelter directory source labels
const (
	ShelterSourceLocal   = "local"
	ShelterSourceRemote  = "remote"
	ShelterSourceDefault = "default"
)

// DefaultCompletionModel is the model requested for gen-table completion
// columns when none is configured.
const DefaultCompletionModel = "gemini-2.5-flash"

// Scheduled diagnostics probe the workflow with a fixed scenario so a probe
// failure always means an upstream change, not input drift.
const (
	DefaultProbeInput    = "4 people, one bedridden, one cat"
	DefaultProbeLocation = "Segamat, Johor"
)

// Event topics
const (
	TopicRoutingCompleted     = "routing.completed"
	TopicRoutingFailed        = "routing.failed"
	TopicDiagnosticsCompleted = "diagnostics.completed"
)
