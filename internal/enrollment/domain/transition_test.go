package domain

import "testing"

func strPtr(s string) *string { return &s }

func TestDecideLeadTransition(t *testing.T) {
	markers := FieldMap{DisqualifiedValue: "Unqualified", ConvertedValue: "Converted"}

	tests := []struct {
		name     string
		current  LeadStatus
		incoming *string
		markers  FieldMap
		want     LeadTransition
	}{
		{"disqualify ongoing", LeadOngoing, strPtr("Unqualified"), markers, TransitionDisqualify},
		{"disqualify converted", LeadConverted, strPtr("Unqualified"), markers, TransitionDisqualify},
		{"already trash", LeadTrash, strPtr("Unqualified"), markers, TransitionNone},
		{"convert ongoing", LeadOngoing, strPtr("Converted"), markers, TransitionConvert},
		{"convert trash", LeadTrash, strPtr("Converted"), markers, TransitionConvert},
		{"already converted", LeadConverted, strPtr("Converted"), markers, TransitionNone},
		{"requalify trash", LeadTrash, strPtr("Working"), markers, TransitionRequalify},
		{"unconvert", LeadConverted, strPtr("Working"), markers, TransitionUnconvert},
		{"ongoing stays", LeadOngoing, strPtr("Working"), markers, TransitionNone},
		{"missing status never matches", LeadTrash, nil, markers, TransitionNone},
		{"marker match is exact", LeadOngoing, strPtr("unqualified"), markers, TransitionNone},
		{"surrounding whitespace ignored", LeadOngoing, strPtr(" Unqualified "), markers, TransitionDisqualify},
		{"empty marker never matches", LeadOngoing, strPtr(""), FieldMap{}, TransitionNone},
		{"empty markers requalify trash", LeadTrash, strPtr(""), FieldMap{}, TransitionRequalify},
		{"disqualify wins over convert", LeadOngoing, strPtr("X"), FieldMap{DisqualifiedValue: "X", ConvertedValue: "X"}, TransitionDisqualify},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecideLeadTransition(tt.current, tt.incoming, tt.markers); got != tt.want {
				t.Fatalf("DecideLeadTransition() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransitionTargetsAndLinks(t *testing.T) {
	if TransitionDisqualify.Target() != LeadTrash || !TransitionDisqualify.StopsLinks() {
		t.Fatalf("disqualify must trash the lead and stop links")
	}
	if TransitionConvert.Target() != LeadConverted || !TransitionConvert.StopsLinks() {
		t.Fatalf("convert must convert the lead and stop links")
	}
	if TransitionRequalify.StopsLinks() || TransitionUnconvert.StopsLinks() {
		t.Fatalf("reversals must not touch links")
	}
	if TransitionNone.Target() != "" {
		t.Fatalf("none has no target")
	}
}

func TestReversalRoundTrip(t *testing.T) {
	markers := FieldMap{DisqualifiedValue: "Unqualified", ConvertedValue: "Converted"}
	status := LeadOngoing

	status = DecideLeadTransition(status, strPtr("Unqualified"), markers).Target()
	if status != LeadTrash {
		t.Fatalf("expected trash, got %s", status)
	}
	status = DecideLeadTransition(status, strPtr("Open"), markers).Target()
	if status != LeadOngoing {
		t.Fatalf("expected ongoing after requalify, got %s", status)
	}
}

func TestInitialLeadStatus(t *testing.T) {
	markers := FieldMap{DisqualifiedValue: "Unqualified", ConvertedValue: "Converted"}
	if got := InitialLeadStatus(strPtr("Converted"), markers); got != LeadConverted {
		t.Fatalf("expected converted, got %s", got)
	}
	if got := InitialLeadStatus(nil, markers); got != LeadOngoing {
		t.Fatalf("expected ongoing, got %s", got)
	}
}

func TestIntegrationTypes(t *testing.T) {
	it, ok := ParseIntegrationType(" Salesforce_Lead ")
	if !ok || it != SalesforceLead {
		t.Fatalf("expected salesforce_lead, got %q %v", it, ok)
	}
	if it.Vendor() != "salesforce" || it.ObjectType() != ObjectLead {
		t.Fatalf("unexpected vendor/object %s/%s", it.Vendor(), it.ObjectType())
	}
	if it.ConvertedType() != SalesforceContact {
		t.Fatalf("expected conversion to salesforce_contact")
	}
	if HubspotContact.ConvertedType() != "" {
		t.Fatalf("contacts cannot convert")
	}
	if _, ok := ParseIntegrationType("dynamics_lead"); ok {
		t.Fatalf("dynamics_lead should not be supported")
	}
	for _, it := range IntegrationTypes() {
		if !it.Valid() || it.AccountType() == "" {
			t.Fatalf("%s is listed but incomplete", it)
		}
	}
}
