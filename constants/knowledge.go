package constants

// SOPKnowledge is the grounding context for routing decisions, sent as the
// sop_context of every route call and uploaded to the action table by the SOP
// upload command. The text matches the summary shown in the frontend.
const SOPKnowledge = `Standard Operating Procedures for Malaysian Flood Mitigation (summary):
1) Monitor official weather and agensi kerajaan updates; follow evacuation orders immediately.
2) Prioritise evacuation of vulnerable persons: elderly, bedridden, infants, pregnant women, and persons with disabilities (OKU).
3) Pets: declare animals at registration; some PPS allow pets in designated areas—bring carriers and food.
4) Bring essential documents (ICs), medications, minimal bedding, drinking water, and basic food; label items with head of family name.
5) Hygiene: bring face masks, soap, hand sanitizer, and maintain distancing where possible.
6) Sanitation: use provided toilets; report sanitary issues to PPS officer.
7) Electrical safety: avoid floodwaters, do not use electrical appliances in water; generators must be outdoors with safe ventilation.
8) Medical emergencies: inform PPS medical teams immediately; register special needs on arrival for priority assistance.
9) Registration: register at the PPS counter, obtain family token/QR, comply with volunteer instructions.
10) Communication: keep phones charged, use designated family contact points, and do not re-enter flooded areas until declared safe.`

// PPSKnowledgeText is the pps_context companion of SOPKnowledge. It mirrors
// the pps_knowledge table contents so routing stays grounded even when RAG
// retrieval is unavailable upstream.
const PPSKnowledgeText = `
PPS_KNOWLEDGE (Active Centers):
- PPS North (Sekolah) | lat:3.15 lon:101.68 | features: OKU ramp, pet-friendly area, large capacity (500), temporary medical post | capacity: 500
- PPS South (Dewan Komuniti) | lat:3.12 lon:101.72 | features: Small capacity (100), no pet-friendly area, accessible ground floor | capacity: 100
- PPS West (Masjid Besar) | lat:3.13 lon:101.65 | features: Large capacity (400), no specific OKU facilities, food distribution point | capacity: 400
- PPS East (Church Hall) | lat:3.16 lon:101.70 | features: Medium capacity (200), OKU access, elderly focus | capacity: 200
`

// SOPTitle names the SOP row uploaded to the action table.
const SOPTitle = "Malaysian Flood SOP (summary)"
