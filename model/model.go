package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DecodeRequest is the body sent to the Jawat decode endpoint.
type DecodeRequest struct {
	Text string `json:"text"`
}

// DecodeResponse is the Jawat decode result. A missing tags field decodes
// as nil and is treated as an empty list downstream.
type DecodeResponse struct {
	Tags []string `json:"tags"`
}

// RouteRequest is the body sent to the Jawat route endpoint.
type RouteRequest struct {
	DecodedTags     []string `json:"decoded_tags"`
	LocationDetails string   `json:"location_details"`
	SOPContext      string   `json:"sop_context"`
	PPSContext      string   `json:"pps_context"`
}

// RouteResponse is the Jawat route result.
type RouteResponse struct {
	Analysis  string `json:"analysis"`
	BestMatch string `json:"best_match"`
}

// IntakeRequest wraps the client-supplied situation report posted to the
// two-step routing endpoint.
type IntakeRequest struct {
	Input IntakeInput `json:"input"`
}

// IntakeInput carries the fields clients actually send. Location arrives
// either as a plain string or as an object with city/region/lat/lon, so it
// stays untyped until LocationString flattens it.
type IntakeInput struct {
	UserInput   string         `json:"user_input,omitempty"`
	Description string         `json:"description,omitempty"`
	Location    any            `json:"location,omitempty"`
	FamilyData  map[string]any `json:"familyData,omitempty"`
}

// Text returns the free-text situation report, preferring user_input.
func (in IntakeInput) Text() string {
	if in.UserInput != "" {
		return in.UserInput
	}
	return in.Description
}

// LocationString flattens the location field into the single line the
// routing upstream expects.
func (in IntakeInput) LocationString() string {
	switch loc := in.Location.(type) {
	case string:
		return loc
	case map[string]any:
		city, _ := loc["city"].(string)
		if city == "" {
			city = "N/A"
		}
		region, _ := loc["region"].(string)
		if region == "" {
			region = "N/A"
		}
		lat, _ := loc["lat"].(float64)
		lon, _ := loc["lon"].(float64)
		return fmt.Sprintf("%s, %s (Lat: %.4f, Lon: %.4f)", city, region, lat, lon)
	default:
		return ""
	}
}

// RoutingOutput is the reshaped result of a successful decode then route
// exchange. DecodedTags is the tag list joined with ", ".
type RoutingOutput struct {
	DecodedTags  string `json:"decoded_tags"`
	AnalysisText string `json:"analysis_text"`
	SelectedPPS  string `json:"selected_pps"`
}

// RoutingEnvelope is the top-level response of the two-step routing
// endpoint, for both success and error outcomes.
type RoutingEnvelope struct {
	Message     string         `json:"message,omitempty"`
	JamaiStatus string         `json:"jamai_status"`
	Error       string         `json:"error,omitempty"`
	Output      *RoutingOutput `json:"output,omitempty"`
}

// AnalyzeResult is the analyze endpoint response for submit and poll alike.
// Status is one of submitted, pending, or complete.
type AnalyzeResult struct {
	Success      bool   `json:"success"`
	Status       string `json:"status"`
	RowID        string `json:"row_id,omitempty"`
	Analysis     string `json:"analysis,omitempty"`
	Tags         string `json:"tags,omitempty"`
	SelectedPPS  string `json:"selected_pps,omitempty"`
	ErrorDetails string `json:"error_details,omitempty"`
}

// RouteResult is the row-backed routing endpoint response. Markers are
// map hints derived from the analysis text.
type RouteResult struct {
	RouteAnalysis string   `json:"route_analysis"`
	DecodedTags   string   `json:"decoded_tags,omitempty"`
	Markers       []Marker `json:"markers,omitempty"`
}

// Marker is a per-shelter suitability hint for map rendering.
type Marker struct {
	Name        string  `json:"name"`
	Distance    float64 `json:"distance"`
	Suitability string  `json:"suitability"`
	Reason      string  `json:"reason,omitempty"`
}

// Shelter is one relief-center entry in the directory.
type Shelter struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"pps_name"`
	DistanceKM  float64 `yaml:"distance_km" json:"distance_km"`
	Latitude    float64 `yaml:"latitude" json:"latitude"`
	Longitude   float64 `yaml:"longitude" json:"longitude"`
	Features    string  `yaml:"features,omitempty" json:"features,omitempty"`
	Constraints string  `yaml:"constraints,omitempty" json:"constraints,omitempty"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	// Source labels which directory source an entry came from. Never
	// serialized into knowledge rows or API responses.
	Source string `yaml:"-" json:"-"`
}

// KnowledgeText returns the RAG description for a shelter, synthesizing
// one from the structured fields when the entry carries none.
func (s Shelter) KnowledgeText() string {
	if s.Description != "" {
		return s.Description
	}
	return fmt.Sprintf("PPS: %s. Features: %s. Constraints: %s", s.Name, s.Features, s.Constraints)
}

// TableCreateRequest is the JamAI v2 gen-table creation payload. Title and
// IsActionTable are set by the diagnostics schema; the relay passthrough
// sends only id and cols.
type TableCreateRequest struct {
	ID            string        `json:"id"`
	Title         string        `json:"title,omitempty"`
	IsActionTable bool          `json:"is_action_table,omitempty"`
	Cols          []TableColumn `json:"cols"`
}

type TableColumn struct {
	ID         string         `json:"id"`
	DType      string         `json:"dtype"`
	ColumnType string         `json:"column_type,omitempty"`
	GenConfig  map[string]any `json:"gen_config,omitempty"`
}

// RowAddRequest is the JamAI v2 add-rows payload. CompletionColumns names
// the LLM-generated columns and their prompts.
type RowAddRequest struct {
	TableID           string                      `json:"table_id"`
	Data              []map[string]any            `json:"data"`
	CompletionColumns map[string]CompletionColumn `json:"completion_columns,omitempty"`
	Stream            bool                        `json:"stream"`
	Concurrent        bool                        `json:"concurrent"`
}

type CompletionColumn struct {
	Model              string            `json:"model,omitempty"`
	Prompt             string            `json:"prompt,omitempty"`
	SystemInstruction  string            `json:"system_instruction,omitempty"`
	PromptDependencies map[string]string `json:"prompt_dependencies,omitempty"`
}

// RowAddResponse is the JamAI add-rows result carrying completed cells.
type RowAddResponse struct {
	Rows []AddedRow `json:"rows"`
}

type AddedRow struct {
	RowID   string                    `json:"row_id,omitempty"`
	Columns map[string]CompletionCell `json:"columns,omitempty"`
}

// CompletionCell is one generated cell. Upstream versions differ on where
// the text lands, so Content checks choices before the flat field.
type CompletionCell struct {
	Text    string             `json:"text,omitempty"`
	Choices []CompletionChoice `json:"choices,omitempty"`
}

type CompletionChoice struct {
	Text    string            `json:"text,omitempty"`
	Message CompletionMessage `json:"message,omitempty"`
}

type CompletionMessage struct {
	Content string `json:"content,omitempty"`
}

// Content returns the first non-empty completion text for the cell.
func (c CompletionCell) Content() string {
	for _, ch := range c.Choices {
		if ch.Message.Content != "" {
			return ch.Message.Content
		}
		if ch.Text != "" {
			return ch.Text
		}
	}
	return c.Text
}

// RelayRecord is the persisted audit of one relay exchange.
type RelayRecord struct {
	ID           uuid.UUID    `json:"id"`
	Operation    string       `json:"operation"`
	Status       RecordStatus `json:"status"`
	RequestBody  string       `json:"request_body,omitempty"`
	ResponseBody string       `json:"response_body,omitempty"`
	Error        string       `json:"error,omitempty"`
	ArchiveURL   string       `json:"archive_url,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

type RecordStatus string

const (
	RecordSucceeded RecordStatus = "SUCCEEDED"
	RecordFailed    RecordStatus = "FAILED"
)

// Profile is one household's stored intake profile.
type Profile struct {
	ID              uuid.UUID `json:"id"`
	UserID          string    `json:"user_id"`
	Address         string    `json:"address,omitempty"`
	FamilySize      int       `json:"family_size,omitempty"`
	Vulnerabilities []string  `json:"vulnerabilities,omitempty"`
	Payload         string    `json:"payload,omitempty"`
	LastLat         float64   `json:"last_lat,omitempty"`
	LastLon         float64   `json:"last_lon,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}
