package constants

// CLI Commands and Subcommands
const (
	CmdServe   = "serve"
	CmdRoute   = "route"
	CmdAnalyze = "analyze"
	CmdTables  = "tables"
	CmdSOP     = "sop"
	CmdPPS     = "pps"
	CmdDiag    = "diag"
	CmdRecords = "records"
	CmdMCP     = "mcp"
	CmdSpec    = "spec"
)

// CLI Short Descriptions
const (
	DescServe     = "Start the saferoute HTTP server"
	DescRoute     = "Decode a situation and route it to the best PPS"
	DescAnalyze   = "Submit an analysis job or poll it by row id"
	DescTables    = "Manage JamAI gen tables"
	DescSOPUpload = "Upload the flood SOP summary to the action table"
	DescPPSUpload = "Upload the PPS directory to the knowledge table"
	DescDiag      = "Run the five-step upstream diagnostic sequence"
	DescRecords   = "List recent relay records"
	DescMCPServe  = "Serve saferoute operations as an MCP server (HTTP or stdio)"
	DescSpec      = "Show the saferoute API document"
)

// CLI Error Messages
const (
	ErrEnvVarRequired     = "environment variable %s must be set"
	ErrConfigParseFailed  = "failed to parse %s: %w"
	ErrStorageUnsupported = "unsupported storage driver: %s"
)

// CLI Default Values
const (
	DefaultMCPAddr = ":9090"
	FilePermission = 0644
	JSONIndent     = "  "
)

// MCP Tool Name Prefix
const MCPToolPrefix = "saferoute_"
