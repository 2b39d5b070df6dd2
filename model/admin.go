package model

// Administration is the single mutable configuration record for the registry:
// who the administrator is, the minimum reputation required to attest, and the
// claim-type allow list.
type Administration struct {
	ObjectType        string   `json:"objectType"`
	AdminID           string   `json:"adminId"`
	MinReputation     uint64   `json:"minReputation"`
	AllowedClaimTypes []string `json:"allowedClaimTypes"`
}

// DefaultMinReputation is the attestation threshold applied at bootstrap.
const DefaultMinReputation uint64 = 50

// DefaultClaimTypes returns the fixed initial membership of the claim-type
// allow list.
func DefaultClaimTypes() []string {
	return []string{
		"CONDITION",
		"VALUATION",
		"INSPECTION",
		"PROVENANCE",
		"AUTHENTICITY",
		"APPRAISAL",
		"MAINTENANCE",
		"CERTIFICATION",
		"LEGAL_STATUS",
		"ENCUMBRANCE",
	}
}
