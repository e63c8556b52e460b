package audit

// GenesisHash is the previous-hash value of the first record in a partition.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// ContextBlock is the privacy-reduced view of the request context. Free-form
// context fields never reach the record.
type ContextBlock struct {
	Industry           string  `json:"industry"`
	DataClassification string  `json:"data_classification"`
	RiskLevel          float64 `json:"risk_level"`
}

// RoutingBlock summarizes the policy decision for the cycle.
type RoutingBlock struct {
	Provider         string   `json:"provider"`
	Model            string   `json:"model"`
	Allowed          bool     `json:"allowed"`
	ComplianceStatus string   `json:"compliance_status"`
	AppliedRules     []string `json:"applied_rules"`
}

// ResponseBlock summarizes the provider response. Only numeric and string
// summary fields are persisted, never the raw response object.
type ResponseBlock struct {
	Model        string  `json:"model"`
	TokensInput  int     `json:"tokens_input"`
	TokensOutput int     `json:"tokens_output"`
	LatencyMs    float64 `json:"latency_ms"`
	CostUSD      float64 `json:"cost_usd"`
}

// RiskBlock summarizes the risk assessment of the generated output.
type RiskBlock struct {
	OverallRisk             float64  `json:"overall_risk"`
	HallucinationRisk       float64  `json:"hallucination_risk"`
	ComplianceRisk          float64  `json:"compliance_risk"`
	DataLeakageRisk         float64  `json:"data_leakage_risk"`
	CulturalSensitivityRisk float64  `json:"cultural_sensitivity_risk"`
	Flags                   []string `json:"flags"`
}

// Record is one link of the audit chain. UserID and PromptHash carry
// truncated one-way hashes, never raw values. AuditHash and PreviousHash are
// omitted from the canonical serialization the hash is computed over; they
// are set immediately after hashing and always present in the stored line.
type Record struct {
	Timestamp  string        `json:"timestamp"`
	RequestID  string        `json:"request_id"`
	UserID     string        `json:"user_id"`
	SessionID  string        `json:"session_id"`
	IPAddress  string        `json:"ip_address"`
	PromptHash string        `json:"prompt_hash"`
	Context    ContextBlock  `json:"context"`
	Routing    RoutingBlock  `json:"routing"`
	Response   ResponseBlock `json:"response"`
	Risk       RiskBlock     `json:"risk"`

	AuditHash    string `json:"audit_hash,omitempty"`
	PreviousHash string `json:"previous_hash,omitempty"`
}

// Violation types reported by VerifyIntegrity.
const (
	ViolationBrokenChain    = "broken_chain"
	ViolationTamperedRecord = "tampered_record"
	ViolationMalformed      = "malformed_record"
)

// Violation is one integrity finding. The Expected/Found pairs are populated
// according to Type: previous hashes for broken_chain, record hashes for
// tampered_record.
type Violation struct {
	RecordID         string `json:"record"`
	Type             string `json:"type"`
	ExpectedPrevious string `json:"expected_previous,omitempty"`
	FoundPrevious    string `json:"found_previous,omitempty"`
	ExpectedHash     string `json:"expected_hash,omitempty"`
	FoundHash        string `json:"found_hash,omitempty"`
}

// VerificationResult is the outcome of walking one partition.
type VerificationResult struct {
	Verified bool `json:"verified"`

	// Violations lists every finding, in record order.
	Violations []Violation `json:"violations"`

	// RecordsChecked counts all records walked, violations or not.
	RecordsChecked int `json:"total_records_checked"`
}
