package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/directory"
	"github.com/jawat-my/saferoute/model"
	"github.com/jawat-my/saferoute/utils"
)

// RouteWithFallback runs the row-backed routing behind /api/route. Any
// upstream failure falls back to a local analysis over the shelter
// directory: this route answers 200 even when JamAI is down.
func RouteWithFallback(ctx context.Context, deps *Dependencies, userInput, locationDetails, createdAt string) *model.RouteResult {
	res, err := deps.Jamai.AddCompletionRows(ctx, model.RowAddRequest{
		TableID: constants.TableEmergencyRouting,
		Data: []map[string]any{{
			constants.ColAction:          constants.ActionFamilyFirstRoute,
			constants.ColUserInput:       userInput,
			constants.ColLocationDetails: locationDetails,
			constants.ColCreatedAt:       createdAt,
		}},
	})
	if err != nil || !res.Succeeded() {
		if err != nil {
			utils.WarnCtx(ctx, "Row-backed routing unreachable, using local fallback", "error", err)
		} else {
			utils.WarnCtx(ctx, "Row-backed routing rejected, using local fallback", "status", res.StatusCode)
		}
		return FallbackRoute(ctx, deps, userInput, locationDetails)
	}

	var reply model.RowAddResponse
	if err := json.Unmarshal(res.Body, &reply); err != nil || len(reply.Rows) == 0 {
		utils.WarnCtx(ctx, "Row-backed routing reply carried no rows, using local fallback")
		return FallbackRoute(ctx, deps, userInput, locationDetails)
	}

	cols := reply.Rows[0].Columns
	analysis := cols[constants.ColRouteAnalysis].Content()
	tags := cols[constants.ColDecodedTags].Content()

	return &model.RouteResult{
		RouteAnalysis: analysis,
		DecodedTags:   tags,
		Markers:       deriveMarkers(listSheltersByDistance(ctx, deps), analysis+" "+tags),
	}
}

// deriveMarkers builds per-shelter map hints by keyword checks over the
// generated analysis text. Each shelter's own features and constraints decide
// which keywords mark it unsuitable or recommended.
func deriveMarkers(shelters []model.Shelter, analysisText string) []model.Marker {
	lower := strings.ToLower(analysisText)
	has := func(tok string) bool { return strings.Contains(lower, tok) }

	markers := make([]model.Marker, 0, len(shelters))
	for _, s := range shelters {
		own := strings.ToLower(s.Features + " " + s.Constraints)
		suitability := constants.SuitabilityUnknown
		switch {
		case strings.Contains(own, "stairs") || strings.Contains(own, "2nd floor"):
			if has("stairs") || has("2nd floor") || has("bedridden") {
				suitability = constants.SuitabilityNotSuitable
			}
		case strings.Contains(own, "no animals") || strings.Contains(own, "pet policy"):
			if has("no animals") || has("strict no animals") || has("pet policy") {
				suitability = constants.SuitabilityNotSuitable
			}
		case strings.Contains(own, "oku") || strings.Contains(own, "outdoor pet area") || strings.Contains(own, "designated pet"):
			if has("oku") || has("outdoor pet area") || has("designated pet") {
				suitability = constants.SuitabilityBestMatch
			}
		}
		markers = append(markers, model.Marker{Name: s.Name, Distance: s.DistanceKM, Suitability: suitability})
	}
	return markers
}

// FallbackRoute emulates the routing reasoning locally when JamAI is
// unreachable: reject stairs-only shelters for bedridden families, reject
// no-animal shelters for families with cats, recommend OKU and pet-friendly
// shelters.
func FallbackRoute(ctx context.Context, deps *Dependencies, userInput, locationDetails string) *model.RouteResult {
	shelters := listSheltersByDistance(ctx, deps)

	needs := strings.ToLower(userInput)
	hasBedridden := strings.Contains(needs, "bedridden") || strings.Contains(needs, "warga emas")
	hasCat := strings.Contains(needs, "cat")

	markers := make([]model.Marker, 0, len(shelters))
	var best *model.Shelter
	for i := range shelters {
		s := shelters[i]
		own := strings.ToLower(s.Features + " " + s.Constraints)
		m := model.Marker{Name: s.Name, Distance: s.DistanceKM, Suitability: constants.SuitabilityUnknown}
		switch {
		case hasBedridden && (strings.Contains(own, "stairs") || strings.Contains(own, "2nd floor")):
			m.Suitability = constants.SuitabilityNotSuitable
			m.Reason = s.Constraints
		case hasCat && (strings.Contains(own, "no animals") || strings.Contains(own, "pet policy")):
			m.Suitability = constants.SuitabilityNotSuitable
			m.Reason = s.Constraints
		case strings.Contains(own, "oku") || strings.Contains(own, "outdoor pet area") || strings.Contains(own, "designated pet"):
			m.Suitability = constants.SuitabilityBestMatch
			m.Reason = s.Features
			if best == nil {
				best = &shelters[i]
			}
		}
		markers = append(markers, m)
	}

	lines := []string{
		"Input: " + userInput,
		"Location: " + locationDetails,
		"Find nearest PPS:",
	}
	for i, s := range shelters {
		line := fmt.Sprintf("- %c (%skm): %s -> %s.", 'A'+i, formatDistance(s.DistanceKM), s.Name, s.Features)
		switch markers[i].Suitability {
		case constants.SuitabilityNotSuitable:
			line += " Rejection: " + markers[i].Reason
		case constants.SuitabilityBestMatch:
			line += " Selection: Recommended."
		}
		lines = append(lines, line)
	}
	recommendation := "None"
	if best != nil {
		recommendation = best.Name
	}
	lines = append(lines, "Recommendation: "+recommendation)

	return &model.RouteResult{
		RouteAnalysis: strings.Join(lines, "\n"),
		Markers:       markers,
	}
}

// listSheltersByDistance returns directory entries nearest first. A nil or
// failing directory yields the bundled default entries.
func listSheltersByDistance(ctx context.Context, deps *Dependencies) []model.Shelter {
	var (
		shelters []model.Shelter
		err      error
	)
	if deps.Shelters != nil {
		shelters, err = deps.Shelters.ListShelters(ctx, directory.ListOptions{})
		if err != nil {
			utils.WarnCtx(ctx, "Shelter directory listing failed", "error", err)
		}
	}
	if len(shelters) == 0 {
		shelters, _ = directory.NewDefaultDirectory().ListShelters(ctx, directory.ListOptions{})
	}
	sort.SliceStable(shelters, func(i, j int) bool {
		return shelters[i].DistanceKM < shelters[j].DistanceKM
	})
	return shelters
}

func formatDistance(km float64) string {
	return strconv.FormatFloat(km, 'f', -1, 64)
}
