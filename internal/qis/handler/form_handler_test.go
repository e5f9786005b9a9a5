package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bitfantasy/fair-qms/internal/qis/entity"
	"github.com/bitfantasy/fair-qms/internal/qis/repository"
	"github.com/bitfantasy/fair-qms/internal/qis/service"
	"github.com/bitfantasy/fair-qms/internal/qis/testutil"
	"github.com/bitfantasy/fair-qms/pkg/inspection"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupFormTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	formSvc := service.NewFormService(repos.Form, repos.History, zap.NewNop())
	formHandler := NewFormHandler(formSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api")

	forms := api.Group("/inspection-forms")
	forms.GET("", formHandler.List)
	forms.POST("", formHandler.Create)
	forms.GET("/status/:status", formHandler.ListByStatus)
	forms.GET("/submitter/:name", formHandler.ListBySubmitter)
	forms.GET("/:id", formHandler.Get)
	forms.PUT("/:id", formHandler.Update)
	forms.POST("/:id/submit", formHandler.Submit)
	forms.POST("/:id/approve", formHandler.Approve)
	forms.POST("/:id/reject", formHandler.Reject)
	forms.GET("/:id/history", formHandler.History)

	return router, db
}

func operatorToken() string {
	return testutil.GenerateTestToken("op-001", "Ramesh Kumar", inspection.RoleOperator)
}

func avpToken() string {
	return testutil.GenerateTestToken("avp-001", "AVP QA", inspection.RoleAVP)
}

func qaToken() string {
	return testutil.GenerateTestToken("qa-001", "QA Exec", inspection.RoleQA)
}

func createDraftForm(t *testing.T, router *gin.Engine, token string) *inspection.InspectionForm {
	t.Helper()
	payload := inspection.NewTemplate()
	payload.DocumentNo = "AGI/QA/F/031"

	w := testutil.DoRequest(router, "POST", "/api/inspection-forms", payload, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return testutil.ParseForm(t, w)
}

func TestFormLifecycleHappyPath(t *testing.T) {
	router, _ := setupFormTest(t)
	opTok := operatorToken()
	avpTok := avpToken()

	form := createDraftForm(t, router, opTok)
	if form.ID == "" {
		t.Fatal("Expected non-empty form id")
	}
	if form.Status != inspection.FormStatusDraft {
		t.Fatalf("Expected DRAFT after create, got %s", form.Status)
	}

	// Submit as operator
	w := testutil.DoRequest(router, "POST", "/api/inspection-forms/"+form.ID+"/submit?submittedBy=Ramesh+Kumar", nil, opTok)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on submit, got %d: %s", w.Code, w.Body.String())
	}
	submitted := testutil.ParseForm(t, w)
	if submitted.Status != inspection.FormStatusSubmitted {
		t.Fatalf("Expected SUBMITTED, got %s", submitted.Status)
	}
	if submitted.SubmittedBy != "Ramesh Kumar" {
		t.Errorf("Expected submittedBy 'Ramesh Kumar', got %q", submitted.SubmittedBy)
	}
	if submitted.SubmittedAt == nil {
		t.Error("Expected submittedAt to be set")
	}

	// Approve as AVP
	w = testutil.DoRequest(router, "POST", "/api/inspection-forms/"+form.ID+"/approve?reviewedBy=AVP+QA&comments=ok", nil, avpTok)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on approve, got %d: %s", w.Code, w.Body.String())
	}
	approved := testutil.ParseForm(t, w)
	if approved.Status != inspection.FormStatusApproved {
		t.Fatalf("Expected APPROVED, got %s", approved.Status)
	}
	if approved.QAExecutive != "AVP QA" {
		t.Errorf("Expected qaExecutive backfilled to 'AVP QA', got %q", approved.QAExecutive)
	}
	if approved.QASignature != "signed_by_avp_qa" {
		t.Errorf("Expected qaSignature 'signed_by_avp_qa', got %q", approved.QASignature)
	}
	if approved.FinalApprovalTime == "" {
		t.Error("Expected finalApprovalTime to be backfilled")
	}

	// History should show create, submit, approve in order
	w = testutil.DoRequest(router, "GET", "/api/inspection-forms/"+form.ID+"/history", nil, opTok)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on history, got %d: %s", w.Code, w.Body.String())
	}
	var entries []entity.FormHistory
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("Failed to parse history: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 history entries, got %d", len(entries))
	}
	wantActions := []string{entity.HistoryActionCreate, entity.HistoryActionSubmit, entity.HistoryActionApprove}
	for i, want := range wantActions {
		if entries[i].Action != want {
			t.Errorf("Entry %d: expected action %q, got %q", i, want, entries[i].Action)
		}
	}
}

func TestRejectRequiresReason(t *testing.T) {
	router, db := setupFormTest(t)
	avpTok := avpToken()

	form := testutil.SeedTestForm(t, db, "form-reject-001", inspection.FormStatusSubmitted)

	// Empty reason is rejected before any state change
	w := testutil.DoRequest(router, "POST", "/api/inspection-forms/"+form.ID+"/reject?reviewedBy=AVP+QA", nil, avpTok)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for empty reason, got %d: %s", w.Code, w.Body.String())
	}

	// Whitespace-only reason is treated as empty
	w = testutil.DoRequest(router, "POST", "/api/inspection-forms/"+form.ID+"/reject?reviewedBy=AVP+QA&comments=%20%20", nil, avpTok)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for whitespace reason, got %d: %s", w.Code, w.Body.String())
	}

	// Form must still be SUBMITTED
	w = testutil.DoRequest(router, "GET", "/api/inspection-forms/"+form.ID, nil, avpTok)
	got := testutil.ParseForm(t, w)
	if got.Status != inspection.FormStatusSubmitted {
		t.Errorf("Expected form to remain SUBMITTED, got %s", got.Status)
	}

	// With a reason the rejection succeeds
	w = testutil.DoRequest(router, "POST", "/api/inspection-forms/"+form.ID+"/reject?reviewedBy=AVP+QA&comments=thickness+out+of+spec", nil, avpTok)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 on reject with reason, got %d: %s", w.Code, w.Body.String())
	}
	rejected := testutil.ParseForm(t, w)
	if rejected.Status != inspection.FormStatusRejected {
		t.Fatalf("Expected REJECTED, got %s", rejected.Status)
	}
	if rejected.Comments != "thickness out of spec" {
		t.Errorf("Expected rejection reason stored, got %q", rejected.Comments)
	}
}

func TestSubmitNonDraftConflict(t *testing.T) {
	router, db := setupFormTest(t)
	opTok := operatorToken()

	form := testutil.SeedTestForm(t, db, "form-approved-001", inspection.FormStatusApproved)

	w := testutil.DoRequest(router, "POST", "/api/inspection-forms/"+form.ID+"/submit", nil, opTok)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409 submitting an APPROVED form, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTransitionPermissionDenied(t *testing.T) {
	router, db := setupFormTest(t)
	opTok := operatorToken()
	qaTok := qaToken()

	form := testutil.SeedTestForm(t, db, "form-perm-001", inspection.FormStatusSubmitted)

	// Operator cannot approve
	w := testutil.DoRequest(router, "POST", "/api/inspection-forms/"+form.ID+"/approve", nil, opTok)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for operator approve, got %d: %s", w.Code, w.Body.String())
	}

	// QA cannot reject either
	w = testutil.DoRequest(router, "POST", "/api/inspection-forms/"+form.ID+"/reject?comments=bad", nil, qaTok)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for qa reject, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdatePermissionByStatus(t *testing.T) {
	router, db := setupFormTest(t)
	opTok := operatorToken()
	qaTok := qaToken()

	form := testutil.SeedTestForm(t, db, "form-upd-001", inspection.FormStatusSubmitted)

	// Operator cannot edit a SUBMITTED form
	w := testutil.DoRequest(router, "PUT", "/api/inspection-forms/"+form.ID, form, opTok)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for operator edit of SUBMITTED form, got %d: %s", w.Code, w.Body.String())
	}

	// QA still can (characteristics stay editable during review)
	form.Characteristics[0].Observation = "Meets standard"
	w = testutil.DoRequest(router, "PUT", "/api/inspection-forms/"+form.ID, form, qaTok)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for qa edit of SUBMITTED form, got %d: %s", w.Code, w.Body.String())
	}
	updated := testutil.ParseForm(t, w)
	if updated.Status != inspection.FormStatusSubmitted {
		t.Errorf("Expected update to preserve SUBMITTED status, got %s", updated.Status)
	}
	if updated.Characteristics[0].Observation != "Meets standard" {
		t.Errorf("Expected observation persisted, got %q", updated.Characteristics[0].Observation)
	}
}

func TestCreateRecomputesBatchComposition(t *testing.T) {
	router, _ := setupFormTest(t)
	opTok := operatorToken()

	payload := inspection.NewTemplate()
	payload.Lacquers[0].Weight = "20"
	payload.Lacquers[1].Weight = "150"

	w := testutil.DoRequest(router, "POST", "/api/inspection-forms", payload, opTok)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := testutil.ParseForm(t, w)

	want := "Clear Extn 20 Red Dye 150"
	last := created.Characteristics[len(created.Characteristics)-1]
	if last.Name != inspection.BatchCompositionName {
		t.Fatalf("Expected last characteristic %q, got %q", inspection.BatchCompositionName, last.Name)
	}
	if last.Observation != want {
		t.Errorf("Expected batch composition %q, got %q", want, last.Observation)
	}
}

func TestGetFormNotFound(t *testing.T) {
	router, _ := setupFormTest(t)

	w := testutil.DoRequest(router, "GET", "/api/inspection-forms/no-such-form", nil, operatorToken())
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"] != float64(40400) {
		t.Errorf("Expected code 40400, got %v", resp["code"])
	}
}

func TestListByStatusRejectsUnknownStatus(t *testing.T) {
	router, _ := setupFormTest(t)

	w := testutil.DoRequest(router, "GET", "/api/inspection-forms/status/BOGUS", nil, operatorToken())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unknown status, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListBySubmitter(t *testing.T) {
	router, db := setupFormTest(t)
	opTok := operatorToken()

	seeded := testutil.SeedTestForm(t, db, "form-sub-001", inspection.FormStatusSubmitted)
	db.Model(seeded).Update("submitted_by", "Ramesh Kumar")
	testutil.SeedTestForm(t, db, "form-sub-002", inspection.FormStatusDraft)

	w := testutil.DoRequest(router, "GET", "/api/inspection-forms/submitter/Ramesh%20Kumar", nil, opTok)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var forms []inspection.InspectionForm
	if err := json.Unmarshal(w.Body.Bytes(), &forms); err != nil {
		t.Fatalf("Failed to parse list: %v", err)
	}
	if len(forms) != 1 || forms[0].ID != "form-sub-001" {
		t.Fatalf("Expected exactly the seeded submitted form, got %d forms", len(forms))
	}
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	router, _ := setupFormTest(t)

	w := testutil.DoRequest(router, "GET", "/api/inspection-forms", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d: %s", w.Code, w.Body.String())
	}
}
