package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/coverledger/coverledger-backend/internal/domain/claim"
	domainErrors "github.com/coverledger/coverledger-backend/internal/domain/errors"
	"github.com/coverledger/coverledger-backend/internal/domain/policy"
	"github.com/coverledger/coverledger-backend/internal/domain/risk"
	"github.com/coverledger/coverledger-backend/internal/domain/values"
	"github.com/coverledger/coverledger-backend/internal/service/claims"
	"github.com/coverledger/coverledger-backend/internal/service/underwriting"
)

type mockUnderwriting struct {
	mock.Mock
}

func (m *mockUnderwriting) ApplyForInsurance(ctx context.Context, req *underwriting.ApplicationRequest) (*underwriting.ApplicationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*underwriting.ApplicationResult), args.Error(1)
}

func (m *mockUnderwriting) AssessRisk(ctx context.Context, req *underwriting.RiskRequest) (*underwriting.RiskResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*underwriting.RiskResult), args.Error(1)
}

func (m *mockUnderwriting) GetPolicy(ctx context.Context, policyID string) (*policy.Policy, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*policy.Policy), args.Error(1)
}

func (m *mockUnderwriting) GetUserPolicies(ctx context.Context, wallet values.WalletAddress) ([]*policy.Policy, error) {
	args := m.Called(ctx, wallet)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*policy.Policy), args.Error(1)
}

type mockClaims struct {
	mock.Mock
}

func (m *mockClaims) SubmitClaim(ctx context.Context, req *claims.SubmitRequest) (*claim.Claim, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*claim.Claim), args.Error(1)
}

func (m *mockClaims) GetClaimStatus(ctx context.Context, claimID string) (*claims.ClaimStatus, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*claims.ClaimStatus), args.Error(1)
}

type testAPI struct {
	underwriting *mockUnderwriting
	claims       *mockClaims
	auth         *Authenticator
	mux          *http.ServeMux
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	uw := new(mockUnderwriting)
	cl := new(mockClaims)
	auth := NewAuthenticator(AuthConfig{Secret: []byte("test-secret"), TokenExpiry: time.Minute})
	handler := NewHandler(Services{Underwriting: uw, Claims: cl}, auth, NewHealthHandler("test"))

	return &testAPI{
		underwriting: uw,
		claims:       cl,
		auth:         auth,
		mux:          handler.Routes(),
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ResponseEnvelope {
	t.Helper()

	var envelope ResponseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func dataField(t *testing.T, envelope ResponseEnvelope) map[string]interface{} {
	t.Helper()

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok, "envelope data is not an object: %v", envelope.Data)
	return data
}

const (
	testWallet   = "0x1111111111111111111111111111111111111111"
	testContract = "0x00000000000000000000000000000000000000aa"
	testEvidence = "a3f5c8d9e2b14f67a3f5c8d9e2b14f67a3f5c8d9e2b14f67a3f5c8d9e2b14f67"
)

func testPolicy(t *testing.T) *policy.Policy {
	t.Helper()

	p, err := policy.NewPolicy("POL-1", uuid.New(),
		values.MustNewMoneyFromFloat(10000, values.USD),
		values.MustNewMoneyFromFloat(125, values.USD), 365, testContract)
	require.NoError(t, err)
	return p
}

func testAssessment(t *testing.T) *risk.Assessment {
	t.Helper()

	a, err := risk.NewAssessment(uuid.New(), 0.25, []string{"Age Risk"}, "1.0.0")
	require.NoError(t, err)
	return a
}

func testClaim(t *testing.T) *claim.Claim {
	t.Helper()

	evidence, err := values.NewEvidenceHash(testEvidence)
	require.NoError(t, err)
	c, err := claim.NewClaim("CLM-9", uuid.New(),
		values.MustNewMoneyFromFloat(500, values.USD), evidence)
	require.NoError(t, err)
	return c
}

func applyBody() map[string]interface{} {
	return map[string]interface{}{
		"wallet_address":     testWallet,
		"age":                35,
		"claim_history":      1,
		"risk_factors":       0.4,
		"requested_coverage": 10000,
		"duration":           365,
	}
}

func TestApplyInsurance_OK(t *testing.T) {
	api := newTestAPI(t)

	api.underwriting.On("ApplyForInsurance", mock.Anything, mock.MatchedBy(func(req *underwriting.ApplicationRequest) bool {
		return req.Age == 35 && req.DurationDays == 365 &&
			req.ClaimHistory == 1 && req.RiskFactors == 0.4 &&
			req.Wallet.String() == testWallet
	})).Return(&underwriting.ApplicationResult{
		Policy:     testPolicy(t),
		Assessment: testAssessment(t),
		Premium:    values.MustNewMoneyFromFloat(125, values.USD),
	}, nil)

	rec := api.do(t, http.MethodPost, "/apply-insurance", applyBody(), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)

	data := dataField(t, envelope)
	assert.Equal(t, "POL-1", data["policy_id"])
	assert.Equal(t, "active", data["status"])
	assert.InDelta(t, 125.0, data["premium"], 0.001)
	assert.InDelta(t, 0.25, data["risk_score"], 0.001)
	api.underwriting.AssertExpectations(t)
}

func TestApplyInsurance_ValidationError(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(body map[string]interface{})
	}{
		{"missing wallet", func(b map[string]interface{}) { delete(b, "wallet_address") }},
		{"zero coverage", func(b map[string]interface{}) { b["requested_coverage"] = 0 }},
		{"negative duration", func(b map[string]interface{}) { b["duration"] = -1 }},
		{"age out of range", func(b map[string]interface{}) { b["age"] = 200 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			body := applyBody()
			tt.mutate(body)

			rec := api.do(t, http.MethodPost, "/apply-insurance", body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			envelope := decodeEnvelope(t, rec)
			assert.False(t, envelope.Success)
			require.NotNil(t, envelope.Error)
			api.underwriting.AssertNotCalled(t, "ApplyForInsurance", mock.Anything, mock.Anything)
		})
	}
}

func TestApplyInsurance_MalformedBody(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/apply-insurance", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplyInsurance_LedgerFailure(t *testing.T) {
	api := newTestAPI(t)

	api.underwriting.On("ApplyForInsurance", mock.Anything, mock.Anything).
		Return(nil, domainErrors.NewLedgerError("policy creation transaction failed"))

	rec := api.do(t, http.MethodPost, "/apply-insurance", applyBody(), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "LEDGER_OPERATION_FAILED", envelope.Error.Code)
}

func TestRiskAssessment_OK(t *testing.T) {
	api := newTestAPI(t)

	api.underwriting.On("AssessRisk", mock.Anything, mock.MatchedBy(func(req *underwriting.RiskRequest) bool {
		return req.CreditScore == 600 && req.RiskFactors == 0.5
	})).Return(&underwriting.RiskResult{
		Score:        0.72,
		Factors:      []string{"Low Credit Score"},
		ModelVersion: "1.0.0",
		Cached:       true,
	}, nil)

	rec := api.do(t, http.MethodPost, "/risk-assessment", map[string]interface{}{
		"user_data": map[string]interface{}{
			"wallet_address":     testWallet,
			"age":                40,
			"claim_history":      2,
			"risk_factors":       0.5,
			"requested_coverage": 5000,
			"duration":           180,
			"credit_score":       600,
			"occupation":         "driver",
			"income":             40000,
		},
		"additional_documents": []string{"ipfs://doc-1"},
	}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := dataField(t, decodeEnvelope(t, rec))
	assert.InDelta(t, 0.72, data["risk_score"], 0.001)
	assert.Equal(t, true, data["cached"])
	assert.Equal(t, "1.0.0", data["model_version"])
}

func TestRiskAssessment_ModelUnavailable(t *testing.T) {
	api := newTestAPI(t)

	api.underwriting.On("AssessRisk", mock.Anything, mock.Anything).
		Return(nil, domainErrors.NewInternalError("risk model unavailable"))

	rec := api.do(t, http.MethodPost, "/risk-assessment", map[string]interface{}{
		"user_data": map[string]interface{}{
			"wallet_address":     testWallet,
			"age":                40,
			"requested_coverage": 5000,
			"duration":           180,
		},
	}, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSubmitClaim_OK(t *testing.T) {
	api := newTestAPI(t)

	api.claims.On("SubmitClaim", mock.Anything, mock.MatchedBy(func(req *claims.SubmitRequest) bool {
		return req.PolicyID == "POL-1" && req.EvidenceHash.String() == testEvidence
	})).Return(testClaim(t), nil)

	rec := api.do(t, http.MethodPost, "/submit-claim", map[string]interface{}{
		"claim_id":      "client-chosen-id",
		"policy_id":     "POL-1",
		"amount":        500,
		"evidence_hash": testEvidence,
	}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	data := dataField(t, decodeEnvelope(t, rec))
	// the ledger-assigned identifier wins over the client-supplied one
	assert.Equal(t, "CLM-9", data["claim_id"])
	assert.Equal(t, "POL-1", data["policy_id"])
	assert.Equal(t, "processing", data["status"])
	api.claims.AssertExpectations(t)
}

func TestSubmitClaim_BadEvidenceHash(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/submit-claim", map[string]interface{}{
		"policy_id":     "POL-1",
		"amount":        500,
		"evidence_hash": "not-a-hash",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_EVIDENCE_HASH", envelope.Error.Code)
	api.claims.AssertNotCalled(t, "SubmitClaim", mock.Anything, mock.Anything)
}

func TestSubmitClaim_UnknownPolicy(t *testing.T) {
	api := newTestAPI(t)

	api.claims.On("SubmitClaim", mock.Anything, mock.Anything).
		Return(nil, domainErrors.ErrPolicyNotFound)

	rec := api.do(t, http.MethodPost, "/submit-claim", map[string]interface{}{
		"policy_id":     "POL-404",
		"amount":        500,
		"evidence_hash": testEvidence,
	}, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPolicy_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/policy/POL-1", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	api.underwriting.AssertNotCalled(t, "GetPolicy", mock.Anything, mock.Anything)
}

func TestGetPolicy_RejectsBadToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/policy/POL-1", nil, map[string]string{
		"Authorization": "Bearer not.a.token",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetPolicy_OK(t *testing.T) {
	api := newTestAPI(t)

	token, err := api.auth.GenerateToken(testWallet)
	require.NoError(t, err)

	api.underwriting.On("GetPolicy", mock.Anything, "POL-1").Return(testPolicy(t), nil)

	rec := api.do(t, http.MethodGet, "/policy/POL-1", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	data := dataField(t, decodeEnvelope(t, rec))
	assert.Equal(t, "POL-1", data["policy_id"])
	assert.Equal(t, testContract, data["contract_address"])
}

func TestGetPolicy_NotFound(t *testing.T) {
	api := newTestAPI(t)

	token, err := api.auth.GenerateToken(testWallet)
	require.NoError(t, err)

	api.underwriting.On("GetPolicy", mock.Anything, "POL-404").
		Return(nil, domainErrors.ErrPolicyNotFound)

	rec := api.do(t, http.MethodGet, "/policy/POL-404", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "RESOURCE_NOT_FOUND", envelope.Error.Code)
}

func TestGetUserPolicies(t *testing.T) {
	t.Run("empty for unknown wallet", func(t *testing.T) {
		api := newTestAPI(t)
		api.underwriting.On("GetUserPolicies", mock.Anything, mock.Anything).
			Return([]*policy.Policy{}, nil)

		rec := api.do(t, http.MethodGet, "/user-policies/"+testWallet, nil, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := dataField(t, decodeEnvelope(t, rec))
		policies, ok := data["policies"].([]interface{})
		require.True(t, ok)
		assert.Empty(t, policies)
	})

	t.Run("lists policies", func(t *testing.T) {
		api := newTestAPI(t)
		api.underwriting.On("GetUserPolicies", mock.Anything, mock.MatchedBy(func(w values.WalletAddress) bool {
			return w.String() == testWallet
		})).Return([]*policy.Policy{testPolicy(t), testPolicy(t)}, nil)

		rec := api.do(t, http.MethodGet, "/user-policies/"+testWallet, nil, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := dataField(t, decodeEnvelope(t, rec))
		policies, ok := data["policies"].([]interface{})
		require.True(t, ok)
		assert.Len(t, policies, 2)
	})

	t.Run("invalid wallet", func(t *testing.T) {
		api := newTestAPI(t)

		rec := api.do(t, http.MethodGet, "/user-policies/zzz", nil, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetClaimStatus(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		api := newTestAPI(t)
		c := testClaim(t)
		require.NoError(t, c.Resolve(claim.StatusApproved, time.Now()))
		api.claims.On("GetClaimStatus", mock.Anything, "CLM-9").
			Return(&claims.ClaimStatus{Claim: c, PolicyID: "POL-1"}, nil)

		rec := api.do(t, http.MethodGet, "/claim-status/CLM-9", nil, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := dataField(t, decodeEnvelope(t, rec))
		assert.Equal(t, "POL-1", data["policy_id"])
		assert.Equal(t, "approved", data["status"])
		assert.NotEmpty(t, data["processed_at"])
	})

	t.Run("not found", func(t *testing.T) {
		api := newTestAPI(t)
		api.claims.On("GetClaimStatus", mock.Anything, "CLM-404").
			Return(nil, domainErrors.ErrClaimNotFound)

		rec := api.do(t, http.MethodGet, "/claim-status/CLM-404", nil, nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/healthz", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test", resp.Version)
}

func TestHealthz_DependencyDown(t *testing.T) {
	uw := new(mockUnderwriting)
	cl := new(mockClaims)
	auth := NewAuthenticator(AuthConfig{Secret: []byte("test-secret")})
	health := NewHealthHandler("test")
	health.Register("database", HealthCheckerFunc(func(ctx context.Context) error {
		return context.DeadlineExceeded
	}))
	handler := NewHandler(Services{Underwriting: uw, Claims: cl}, auth, health)

	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
}

func TestAuthenticator_TokenRoundTrip(t *testing.T) {
	auth := NewAuthenticator(AuthConfig{Secret: []byte("test-secret"), TokenExpiry: time.Minute})

	token, err := auth.GenerateToken(testWallet)
	require.NoError(t, err)

	parsed, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, testWallet, parsed.Wallet)
	assert.Equal(t, testWallet, parsed.Subject)
	assert.Equal(t, "coverledger", parsed.Issuer)
}

func TestAuthenticator_RejectsForeignSecret(t *testing.T) {
	issuer := NewAuthenticator(AuthConfig{Secret: []byte("other-secret")})
	validator := NewAuthenticator(AuthConfig{Secret: []byte("test-secret")})

	token, err := issuer.GenerateToken(testWallet)
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	require.Error(t, err)
	var appErr *domainErrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnauthorized, domainErrors.GetStatusCode(appErr))
}
