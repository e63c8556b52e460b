package risk

import "regexp"

// uncertaintyPhrases are substrings indicating the model hedged its answer.
// Matched case-insensitively against the whole output.
var uncertaintyPhrases = []string{
	"i think", "probably", "maybe", "might be", "could be",
	"it seems", "appears to", "possibly", "unclear",
	"i'm not sure", "difficult to say",
}

// clinicalTerms are high-risk medical terms that demand source support.
var clinicalTerms = []string{
	"diagnosis", "prognosis", "prescribe", "medication dosage",
	"treatment plan", "surgical", "critical", "emergency",
	"life-threatening", "contraindicated",
}

// adviceTerms indicate patient-directed medical advice in the output.
var adviceTerms = []string{
	"should take", "recommend treatment", "prescribe",
}

// sensitiveTerms are terms associated with biased or dismissive language.
var sensitiveTerms = []string{
	"the poor", "uneducated", "minorities", "third world",
	"backward", "primitive", "savage",
}

// leakageDetector pairs a compiled identifier pattern with its kind label.
type leakageDetector struct {
	pattern *regexp.Regexp
	kind    string
}

// leakageDetectors recognize protected identifiers in output text. Compiled
// once at package init; the engine treats them as immutable.
var leakageDetectors = []leakageDetector{
	{regexp.MustCompile(`(?i)\b\d{3}-\d{2}-\d{4}\b`), "ssn"},
	{regexp.MustCompile(`(?i)\b\d{2}/\d{2}/\d{4}\b`), "date"},
	{regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "email"},
	{regexp.MustCompile(`(?i)\b\d{3}-\d{3}-\d{4}\b`), "phone"},
	{regexp.MustCompile(`(?i)\b(Mr\.|Mrs\.|Ms\.|Dr\.)\s+[A-Z][a-z]+\b`), "name_title"},
	{regexp.MustCompile(`(?i)MRN[:\s]+\d+`), "mrn"},
}

// numericClaimPattern matches quantities with units, a proxy for specific
// (potentially fabricated) numeric claims.
var numericClaimPattern = regexp.MustCompile(`\b\d+\.?\d*\s*(%|percent|mg|ml|units?)\b`)

// generalizationPattern matches sweeping statements about groups of people.
var generalizationPattern = regexp.MustCompile(`\b(all|every|none)\s+\w+\s+(people|patients|individuals)`)
