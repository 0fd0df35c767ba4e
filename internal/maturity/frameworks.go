// Package maturity scores a survey dimension against applicable governance
// frameworks and ranks the resulting gaps.
package maturity

// frameworkCatalog maps each assessed dimension to the frameworks it is
// scored against. Static configuration data; never mutated at runtime.
var frameworkCatalog = map[string][]string{
	"Data Quality":                {"DAMA-DMBOK", "ISO 8000"},
	"Data Privacy & Compliance":   {"GDPR", "NIST Privacy Framework"},
	"Data Security":               {"NIST CSF", "ISO 27001"},
	"Metadata & Cataloging":       {"DAMA-DMBOK", "ISO 11179"},
	"Data Architecture":           {"DAMA-DMBOK", "TOGAF"},
	"Governance Operating Model":  {"DAMA-DMBOK", "DCAM"},
}

// defaultFrameworks is used for dimensions not in the catalog.
var defaultFrameworks = []string{"DAMA-DMBOK"}

// maturityLevelNames are the recognized level labels, lowest first, used by
// the text-scan parsing fallback.
var maturityLevelNames = []string{
	"Initial",
	"Managed",
	"Defined",
	"Quantitatively Managed",
	"Optimizing",
}

// FrameworksFor returns the frameworks applicable to a dimension.
func FrameworksFor(dimension string) []string {
	if frameworks, ok := frameworkCatalog[dimension]; ok {
		return frameworks
	}
	return defaultFrameworks
}
