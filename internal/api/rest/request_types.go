package rest

// ApplicantProfile is the applicant payload: the POST /apply-insurance body
// and the user_data object of POST /risk-assessment. risk_factors is the
// applicant's self-reported composite risk indicator, fed to the model as-is.
type ApplicantProfile struct {
	WalletAddress     string  `json:"wallet_address" validate:"required"`
	Age               int     `json:"age" validate:"gte=0,lte=150"`
	ClaimHistory      int     `json:"claim_history" validate:"gte=0"`
	RiskFactors       float64 `json:"risk_factors" validate:"gte=0"`
	RequestedCoverage float64 `json:"requested_coverage" validate:"required,gt=0"`
	Duration          int     `json:"duration" validate:"required,gt=0"`

	CreditScore int     `json:"credit_score,omitempty" validate:"gte=0"`
	Occupation  string  `json:"occupation,omitempty"`
	Income      float64 `json:"income,omitempty" validate:"gte=0"`
	HealthScore float64 `json:"health_score,omitempty" validate:"gte=0,lte=1"`
}

// ApplyInsuranceRequest is the POST /apply-insurance body
type ApplyInsuranceRequest struct {
	ApplicantProfile
}

// RiskAssessmentRequest is the POST /risk-assessment body. Additional
// documents are accepted for audit purposes and do not affect the score.
type RiskAssessmentRequest struct {
	UserData            ApplicantProfile `json:"user_data" validate:"required"`
	AdditionalDocuments []string         `json:"additional_documents,omitempty"`
}

// SubmitClaimRequest is the POST /submit-claim body. A client-supplied
// claim_id is accepted for compatibility; the ledger assigns the
// authoritative identifier when the claim transaction is processed.
type SubmitClaimRequest struct {
	ClaimID      string  `json:"claim_id,omitempty"`
	PolicyID     string  `json:"policy_id" validate:"required"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	EvidenceHash string  `json:"evidence_hash" validate:"required"`
}
