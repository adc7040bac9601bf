package dropin

import (
	"testing"

	"github.com/alovak/dropin-bridge/dropin/models"
)

func approvedCard(possible, shifted bool) models.FlowOutcome {
	return models.FlowOutcome{
		Status: models.FlowApproved,
		Method: &models.PaymentMethod{
			Nonce:                  "nonce-1",
			TypeLabel:              "Visa",
			Card:                   true,
			LiabilityShiftPossible: possible,
			LiabilityShifted:       shifted,
		},
	}
}

func TestClassify_CardLiabilityMatrix(t *testing.T) {
	// Shift not possible always rejects, whatever the shifted flag says.
	for _, shifted := range []bool{false, true} {
		_, err := Classify(approvedCard(false, shifted))
		if err == nil || err.Code != CodeLiabilityNotShiftable {
			t.Fatalf("possible=false shifted=%v: got %v want %s", shifted, err, CodeLiabilityNotShiftable)
		}
	}

	_, err := Classify(approvedCard(true, false))
	if err == nil || err.Code != CodeLiabilityNotShifted {
		t.Fatalf("got %v want %s", err, CodeLiabilityNotShifted)
	}

	method, err := Classify(approvedCard(true, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method.Nonce != "nonce-1" {
		t.Fatalf("got nonce %q want %q", method.Nonce, "nonce-1")
	}
}

func TestClassify_NonCardSkipsLiabilityChecks(t *testing.T) {
	outcome := models.FlowOutcome{
		Status: models.FlowApproved,
		Method: &models.PaymentMethod{
			Nonce:     "nonce-2",
			TypeLabel: "PayPal",
			// Liability flags are meaningless for non-card tokens and
			// must be ignored even when hostile.
			Card:                   false,
			LiabilityShiftPossible: false,
			LiabilityShifted:       false,
		},
	}
	method, err := Classify(outcome)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if method.TypeLabel != "PayPal" {
		t.Fatalf("got type %q want %q", method.TypeLabel, "PayPal")
	}
}

func TestClassify_Cancelled(t *testing.T) {
	_, err := Classify(models.FlowOutcome{Status: models.FlowCancelled})
	if err == nil || err.Code != CodeUserCancellation {
		t.Fatalf("got %v want %s", err, CodeUserCancellation)
	}
}

func TestClassify_FailedPassesMessageThrough(t *testing.T) {
	_, err := Classify(models.FlowOutcome{Status: models.FlowFailed, Message: "gateway timeout"})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Code != "gateway timeout" || err.Message != "gateway timeout" {
		t.Fatalf("flow message must be both code and message, got %+v", err)
	}
}

func TestClassify_ApprovedWithoutMethod(t *testing.T) {
	_, err := Classify(models.FlowOutcome{Status: models.FlowApproved})
	if err == nil || err.Code != CodePaymentResolutionFailed {
		t.Fatalf("got %v want %s", err, CodePaymentResolutionFailed)
	}
}
