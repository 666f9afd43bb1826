package constants

// Fixed response bodies. The relay returns these byte-for-byte; tests compare
// against them literally.
const (
	MethodNotAllowedBody = `{"error":"Method Not Allowed"}`
	InternalErrorBody    = `{"error":"Internal Server Error"}`
	HealthCheckResponse  = `{"status":"healthy"}`
	HealthOKResponse     = `{"ok":true}`
)

// HTTP Response Messages
const (
	ResponseInvalidRequestBody = "invalid request body"
	ResponseMissingInput       = "user_input or row_id is required"
	ResponseUpstreamGone       = "upstream unavailable"
	ResponseUpstreamBadReply   = "upstream returned malformed response"
	ResponseRecordNotFound     = "record not found"
)

// Success Messages
const (
	MsgRoutingEntryCreated = "Routing entry created and processed successfully."
)

// Error Messages for Logging
const (
	LogFailedWriteHealthCheck = "Failed to write health check response: %v"
	LogFailedWriteSpec        = "Failed to write spec response: %v"
	LogFailedEncodeJSON       = "Failed to encode JSON response"
	LogWriteFailed            = "w.Write failed: %v"
	LogRecordSaveFailed       = "Failed to save relay record: %v"
	LogArchiveFailed          = "Failed to archive relay exchange: %v"
	LogPublishFailed          = "Failed to publish %s event: %v"
)
