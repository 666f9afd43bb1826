package prompt

// DecodeSystemInstruction steers the decode completion column toward a bare
// comma-separated tag list.
const DecodeSystemInstruction = "You are a data decoder. Analyze the following emergency situation. Extract and list the distinct vulnerabilities, special needs, and key family details relevant to a relief center (PPS). Output ONLY a comma-separated list of structured keywords. Mandatory keywords: Family size (e.g., '5 Pax'). If no other vulnerability is mentioned, only output the 'X Pax' tag. Other keywords: 'Warga Emas/Bedridden', 'Pet/Cat', 'Wheelchair User (OKU)', 'Dietary Restrictions'. Do not include any other text."

// RouteSystemInstruction steers the routing completion column toward a
// chain-of-thought ending in a single BEST MATCH line.
const RouteSystemInstruction = "You are an emergency management AI. Use the supplied SOP knowledge and the PPS knowledge table (RAG) to ground recommendations. Analyze user vulnerabilities and available PPS to select the single, best-suited center. Provide a concise Chain-of-Thought explaining acceptance/rejection based on user needs and SOPs. Finally, output the name of the BEST MATCH in its own, single line at the end (e.g., BEST MATCH: PPS North (Sekolah)). Do not include any other text after 'BEST MATCH'."

// The first two lines end with a space before the newline; the deployed
// completion prompts carry that exact text.
const routingQueryTemplate = "User Needs: {{ user_needs }}. \n" +
	"Location: {{ location }}. \n" +
	"SOP: {{ sop }}\n" +
	"{{ pps }}\n"

// The {result} and {location_details} placeholders are substituted upstream
// by the gen-table prompt dependency machinery, so they stay literal here.
const dependencyTemplate = `User Needs: {result}. Location: {location_details}. SOP: {{ sop }}

{{ pps }}`

// RoutingQuery renders the user prompt for the routing completion column.
func RoutingQuery(userNeeds, location, sop, pps string) (string, error) {
	return Render(routingQueryTemplate, map[string]any{
		"user_needs": userNeeds,
		"location":   location,
		"sop":        sop,
		"pps":        pps,
	})
}

// DecodedTagsDependency renders the prompt-dependency template that feeds
// the decode result into the routing prompt.
func DecodedTagsDependency(sop, pps string) (string, error) {
	return Render(dependencyTemplate, map[string]any{
		"sop": sop,
		"pps": pps,
	})
}
