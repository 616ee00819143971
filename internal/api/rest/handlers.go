// Package rest exposes the insurance workflows over HTTP. Routing uses the
// standard ServeMux with method-qualified patterns; responses share one
// envelope and application errors map to status codes at this boundary.
package rest

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	domainErrors "github.com/coverledger/coverledger-backend/internal/domain/errors"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
	"github.com/coverledger/coverledger-backend/internal/service/claims"
	"github.com/coverledger/coverledger-backend/internal/service/underwriting"
)

// Services holds the services the REST API fronts
type Services struct {
	Underwriting underwriting.Service
	Claims       claims.Service
}

// Handler routes HTTP requests to the services
type Handler struct {
	services Services
	auth     *Authenticator
	health   *HealthHandler
}

// NewHandler creates the API handler
func NewHandler(services Services, auth *Authenticator, health *HealthHandler) *Handler {
	return &Handler{
		services: services,
		auth:     auth,
		health:   health,
	}
}

// Routes builds the route table
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /apply-insurance", h.handleApplyInsurance)
	mux.HandleFunc("POST /risk-assessment", h.handleRiskAssessment)
	mux.HandleFunc("POST /submit-claim", h.handleSubmitClaim)
	mux.HandleFunc("GET /policy/{policy_id}", h.auth.RequireAuth(h.handleGetPolicy))
	mux.HandleFunc("GET /user-policies/{user_address}", h.handleGetUserPolicies)
	mux.HandleFunc("GET /claim-status/{claim_id}", h.handleGetClaimStatus)

	mux.HandleFunc("GET /healthz", h.health.ServeHTTP)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

func (h *Handler) handleApplyInsurance(w http.ResponseWriter, r *http.Request) {
	var req ApplyInsuranceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	wallet, err := values.NewWalletAddress(req.WalletAddress)
	if err != nil {
		writeError(w, r, err)
		return
	}
	coverage, err := values.NewMoneyFromFloat(req.RequestedCoverage, values.USD)
	if err != nil {
		writeError(w, r, domainErrors.NewValidationError("INVALID_COVERAGE", err.Error()))
		return
	}

	result, err := h.services.Underwriting.ApplyForInsurance(r.Context(), &underwriting.ApplicationRequest{
		Wallet:       wallet,
		Age:          req.Age,
		CreditScore:  req.CreditScore,
		Occupation:   req.Occupation,
		Income:       req.Income,
		ClaimHistory: req.ClaimHistory,
		RiskFactors:  req.RiskFactors,
		HealthScore:  req.HealthScore,
		Coverage:     coverage,
		DurationDays: req.Duration,
	})
	if err != nil {
		applicationsProcessed.WithLabelValues("error").Inc()
		writeError(w, r, err)
		return
	}

	applicationsProcessed.WithLabelValues("created").Inc()
	writeResponse(w, r, http.StatusOK, ApplyInsuranceResponse{
		PolicyResponse: toPolicyResponse(result.Policy),
		RiskScore:      result.Assessment.Score,
		RiskFactors:    result.Assessment.Factors,
	})
}

func (h *Handler) handleRiskAssessment(w http.ResponseWriter, r *http.Request) {
	var req RiskAssessmentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	wallet, err := values.NewWalletAddress(req.UserData.WalletAddress)
	if err != nil {
		writeError(w, r, err)
		return
	}
	coverage, err := values.NewMoneyFromFloat(req.UserData.RequestedCoverage, values.USD)
	if err != nil {
		writeError(w, r, domainErrors.NewValidationError("INVALID_COVERAGE", err.Error()))
		return
	}

	result, err := h.services.Underwriting.AssessRisk(r.Context(), &underwriting.RiskRequest{
		Wallet:       wallet,
		Age:          req.UserData.Age,
		CreditScore:  req.UserData.CreditScore,
		Occupation:   req.UserData.Occupation,
		Income:       req.UserData.Income,
		ClaimHistory: req.UserData.ClaimHistory,
		RiskFactors:  req.UserData.RiskFactors,
		HealthScore:  req.UserData.HealthScore,
		Coverage:     coverage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeResponse(w, r, http.StatusOK, RiskAssessmentResponse{
		RiskScore:    result.Score,
		RiskFactors:  result.Factors,
		ModelVersion: result.ModelVersion,
		Cached:       result.Cached,
	})
}

func (h *Handler) handleSubmitClaim(w http.ResponseWriter, r *http.Request) {
	var req SubmitClaimRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeValidationError(w, r, err)
		return
	}

	amount, err := values.NewMoneyFromFloat(req.Amount, values.USD)
	if err != nil {
		writeError(w, r, domainErrors.NewValidationError("INVALID_AMOUNT", err.Error()))
		return
	}
	evidenceHash, err := values.NewEvidenceHash(req.EvidenceHash)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.services.Claims.SubmitClaim(r.Context(), &claims.SubmitRequest{
		PolicyID:     req.PolicyID,
		Amount:       amount,
		EvidenceHash: evidenceHash,
	})
	if err != nil {
		claimsSubmitted.WithLabelValues("error").Inc()
		writeError(w, r, err)
		return
	}

	claimsSubmitted.WithLabelValues("submitted").Inc()
	writeResponse(w, r, http.StatusOK, toClaimResponse(c, req.PolicyID))
}

func (h *Handler) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	policyID := r.PathValue("policy_id")

	p, err := h.services.Underwriting.GetPolicy(r.Context(), policyID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeResponse(w, r, http.StatusOK, toPolicyResponse(p))
}

func (h *Handler) handleGetUserPolicies(w http.ResponseWriter, r *http.Request) {
	wallet, err := values.NewWalletAddress(r.PathValue("user_address"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	policies, err := h.services.Underwriting.GetUserPolicies(r.Context(), wallet)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := UserPoliciesResponse{
		UserAddress: wallet.String(),
		Policies:    make([]PolicyResponse, 0, len(policies)),
	}
	for _, p := range policies {
		resp.Policies = append(resp.Policies, toPolicyResponse(p))
	}

	writeResponse(w, r, http.StatusOK, resp)
}

func (h *Handler) handleGetClaimStatus(w http.ResponseWriter, r *http.Request) {
	claimID := r.PathValue("claim_id")

	cs, err := h.services.Claims.GetClaimStatus(r.Context(), claimID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeResponse(w, r, http.StatusOK, toClaimResponse(cs.Claim, cs.PolicyID))
}
