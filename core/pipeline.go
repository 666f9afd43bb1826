package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/directory"
	"github.com/jawat-my/saferoute/model"
	"github.com/jawat-my/saferoute/upstream"
	"github.com/jawat-my/saferoute/utils"
)

// RouteEmergency runs the two-step decode then route pipeline behind
// /api/jamai-create, the route CLI command, and the MCP tool. The calls are
// sequential and dependent: the route body embeds the decode result.
//
// On a route-stage failure after a successful decode, the error envelope
// still carries the decoded tags so the caller sees the partial progress.
func RouteEmergency(ctx context.Context, deps *Dependencies, input model.IntakeInput) (*model.RoutingEnvelope, error) {
	text := input.Text()
	location := input.LocationString()

	decoded, err := deps.Jawat.Decode(ctx, text)
	if err != nil {
		utils.ErrorCtx(ctx, "Decode call failed", "error", err)
		env := &model.RoutingEnvelope{
			JamaiStatus: constants.JamaiStatusError,
			Error:       upstreamMessage(err),
		}
		rec := RecordExchange(ctx, deps, constants.OpRouteEmergency, input, env, err)
		deps.publish(constants.TopicRoutingFailed, routingEvent(rec, nil, ""))
		return env, err
	}

	tags := strings.Join(decoded.Tags, constants.TagSeparator)

	routed, err := deps.Jawat.Route(ctx, model.RouteRequest{
		DecodedTags:     decoded.Tags,
		LocationDetails: location,
		SOPContext:      constants.SOPKnowledge,
		PPSContext:      PPSContext(ctx, deps),
	})
	if err != nil {
		utils.ErrorCtx(ctx, "Route call failed after successful decode", "error", err)
		env := &model.RoutingEnvelope{
			JamaiStatus: constants.JamaiStatusError,
			Error:       upstreamMessage(err),
			Output:      &model.RoutingOutput{DecodedTags: tags},
		}
		rec := RecordExchange(ctx, deps, constants.OpRouteEmergency, input, env, err)
		deps.publish(constants.TopicRoutingFailed, routingEvent(rec, decoded.Tags, ""))
		return env, err
	}

	env := &model.RoutingEnvelope{
		Message:     constants.MsgRoutingEntryCreated,
		JamaiStatus: constants.JamaiStatusSuccess,
		Output: &model.RoutingOutput{
			DecodedTags:  tags,
			AnalysisText: routed.Analysis,
			SelectedPPS:  routed.BestMatch,
		},
	}
	rec := RecordExchange(ctx, deps, constants.OpRouteEmergency, input, env, nil)
	deps.publish(constants.TopicRoutingCompleted, routingEvent(rec, decoded.Tags, routed.BestMatch))
	return env, nil
}

// routingEvent builds the payload for routing.completed and routing.failed.
func routingEvent(rec *model.RelayRecord, tags []string, selectedPPS string) map[string]any {
	return map[string]any{
		"record_id":    rec.ID.String(),
		"tags":         tags,
		"selected_pps": selectedPPS,
	}
}

// upstreamMessage maps a tagged upstream error to the generic client-facing
// message. Raw errors are logged server-side only.
func upstreamMessage(err error) string {
	switch {
	case errors.Is(err, upstream.ErrUpstreamUnavailable):
		return constants.ResponseUpstreamGone
	case errors.Is(err, upstream.ErrUpstreamMalformed):
		return constants.ResponseUpstreamBadReply
	default:
		return "internal error"
	}
}

// PPSContext renders the routing pps_context from the shelter directory,
// falling back to the static knowledge text when the directory is empty or
// unavailable.
func PPSContext(ctx context.Context, deps *Dependencies) string {
	if deps.Shelters == nil {
		return constants.PPSKnowledgeText
	}
	shelters, err := deps.Shelters.ListShelters(ctx, directory.ListOptions{})
	if err != nil || len(shelters) == 0 {
		if err != nil {
			utils.WarnCtx(ctx, "Shelter directory unavailable, using static PPS context", "error", err)
		}
		return constants.PPSKnowledgeText
	}
	var b strings.Builder
	b.WriteString("PPS_KNOWLEDGE (Active Centers):\n")
	for _, s := range shelters {
		fmt.Fprintf(&b, "- %s | lat:%g lon:%g | features: %s | constraints: %s\n",
			s.Name, s.Latitude, s.Longitude, s.Features, s.Constraints)
	}
	return b.String()
}

// BestMatchFromAnalysis extracts the selected PPS from the last BEST MATCH
// line of an analysis text and returns the analysis with that line removed.
func BestMatchFromAnalysis(analysis string) (best, remainder string) {
	lines := strings.Split(analysis, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(strings.ToUpper(trimmed), constants.BestMatchPrefix) {
			best = strings.TrimSpace(trimmed[len(constants.BestMatchPrefix):])
			remainder = strings.TrimSpace(strings.Replace(analysis, lines[i], "", 1))
			return best, remainder
		}
	}
	return "", analysis
}
