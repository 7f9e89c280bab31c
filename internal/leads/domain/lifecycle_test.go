package domain

import "testing"

func TestWarmLeadForwardOnly(t *testing.T) {
	allowed := [][2]string{
		{WarmLeadDetected, WarmLeadQualified},
		{WarmLeadDetected, WarmLeadSeized},
		{WarmLeadQualified, WarmLeadSeized},
		{WarmLeadSeized, WarmLeadConverted},
		{WarmLeadDetected, WarmLeadCold},
		{WarmLeadQualified, WarmLeadUnsubscribed},
	}
	for _, pair := range allowed {
		if !CanTransitionWarmLead(pair[0], pair[1]) {
			t.Fatalf("%s -> %s should be allowed", pair[0], pair[1])
		}
	}

	denied := [][2]string{
		{WarmLeadQualified, WarmLeadDetected},
		{WarmLeadSeized, WarmLeadQualified},
		{WarmLeadConverted, WarmLeadSeized},
		{WarmLeadUnsubscribed, WarmLeadQualified},
		{WarmLeadCold, WarmLeadCold},
	}
	for _, pair := range denied {
		if CanTransitionWarmLead(pair[0], pair[1]) {
			t.Fatalf("%s -> %s should be denied", pair[0], pair[1])
		}
	}
}

func TestActionForwardOnly(t *testing.T) {
	if !CanTransitionAction(ActionPending, ActionSent) {
		t.Fatal("pending -> sent should be allowed")
	}
	if !CanTransitionAction(ActionSent, ActionClicked) {
		t.Fatal("sent -> clicked should be allowed (skipping opened)")
	}
	if !CanTransitionAction(ActionPending, ActionCancelled) {
		t.Fatal("pending -> cancelled should be allowed")
	}

	if CanTransitionAction(ActionSent, ActionPending) {
		t.Fatal("un-sending must be impossible")
	}
	if CanTransitionAction(ActionCancelled, ActionSent) {
		t.Fatal("cancelled is terminal")
	}
	if CanTransitionAction(ActionConverted, ActionFailed) {
		t.Fatal("converted is terminal")
	}
}

func TestIsKnownActionStatus(t *testing.T) {
	for _, status := range []string{ActionPending, ActionSent, ActionOpened, ActionClicked, ActionConverted, ActionFailed, ActionCancelled} {
		if !IsKnownActionStatus(status) {
			t.Fatalf("%s should be a known status", status)
		}
	}
	if IsKnownActionStatus("archived") {
		t.Fatal("unknown status should not validate")
	}
}
