package constants

// HTTP Methods
const (
	HTTPMethodGET     = "GET"
	HTTPMethodPOST    = "POST"
	HTTPMethodPUT     = "PUT"
	HTTPMethodPATCH   = "PATCH"
	HTTPMethodDELETE  = "DELETE"
	HTTPMethodOPTIONS = "OPTIONS"
)

// Content Types
const (
	ContentTypeJSON     = "application/json"
	ContentTypeText     = "text/plain"
	ContentTypeMarkdown = "text/markdown"
)

// HTTP Headers
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderAccept        = "Accept"

	// Both project-id spellings are sent on JamAI calls; deployments disagree
	// on which one they check.
	HeaderProjectIDUpper = "X-PROJECT-ID"
	HeaderProjectID      = "X-Project-Id"
)

// BearerPrefix prefixes the PAT in the Authorization header.
const BearerPrefix = "Bearer "

// Served paths
const (
	PathJamaiCreate = "/api/jamai-create"
	PathTableRelay  = "/api/api"
	PathRowsList    = "/api/jamai/get"
	PathRowCreate   = "/api/jamai/create"
	PathAnalyze     = "/api/analyze"
	PathRoute       = "/api/route"
	PathHealth      = "/api/health"
	PathHealthz     = "/healthz"
	PathRecords     = "/records"
	PathMetrics     = "/metrics"
	PathSpec        = "/spec"
)

// Upstream path suffixes
const (
	JawatDecodePath = "/v1/decode"
	JawatRoutePath  = "/v1/route"

	JamaiTableCreatePath = "/api/v2/gen_tables/action"
	JamaiRowsPath        = "/api/v2/gen_tables/pps_routing/rows"

	// Candidate-walk variants used by diagnostics and uploads.
	JamaiAddRowsPath  = "/api/v2/gen_tables/action/rows/add"
	JamaiListRowsPath = "/api/v2/gen_tables/action/rows/list"

	// JamaiRowPathFormat expands to the single-row fetch path with table and
	// row IDs.
	JamaiRowPathFormat = "/api/v2/gen_tables/action/%s/rows/%s"
)
