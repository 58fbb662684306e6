package domain

import "strings"

// IntegrationType identifies a CRM vendor and the object kind a record came from.
type IntegrationType string

const (
	SalesforceLead    IntegrationType = "salesforce_lead"
	SalesforceContact IntegrationType = "salesforce_contact"
	PipedrivePerson   IntegrationType = "pipedrive_person"
	HubspotContact    IntegrationType = "hubspot_contact"
	ZohoLead          IntegrationType = "zoho_lead"
	ZohoContact       IntegrationType = "zoho_contact"
	BullhornLead      IntegrationType = "bullhorn_lead"
	BullhornContact   IntegrationType = "bullhorn_contact"
	SellsyContact     IntegrationType = "sellsy_contact"
)

// Object types as stored in crm_field_maps.
const (
	ObjectLead    = "lead"
	ObjectContact = "contact"
	ObjectAccount = "account"
)

type integrationInfo struct {
	vendor    string
	object    string
	converted IntegrationType
	account   string
}

var integrations = map[IntegrationType]integrationInfo{
	SalesforceLead:    {"salesforce", ObjectLead, SalesforceContact, "salesforce_account"},
	SalesforceContact: {"salesforce", ObjectContact, "", "salesforce_account"},
	PipedrivePerson:   {"pipedrive", ObjectContact, "", "pipedrive_organization"},
	HubspotContact:    {"hubspot", ObjectContact, "", "hubspot_company"},
	ZohoLead:          {"zoho", ObjectLead, ZohoContact, "zoho_account"},
	ZohoContact:       {"zoho", ObjectContact, "", "zoho_account"},
	BullhornLead:      {"bullhorn", ObjectLead, BullhornContact, "bullhorn_account"},
	BullhornContact:   {"bullhorn", ObjectContact, "", "bullhorn_account"},
	SellsyContact:     {"sellsy", ObjectContact, "", "sellsy_company"},
}

// ParseIntegrationType normalises s and reports whether it is supported.
func ParseIntegrationType(s string) (IntegrationType, bool) {
	t := IntegrationType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Valid reports whether t is a supported integration type.
func (t IntegrationType) Valid() bool {
	_, ok := integrations[t]
	return ok
}

// Vendor returns the CRM vendor name, used to resolve CRM owner ids to users.
func (t IntegrationType) Vendor() string {
	return integrations[t].vendor
}

// ObjectType returns lead or contact.
func (t IntegrationType) ObjectType() string {
	return integrations[t].object
}

// ConvertedType returns the type a converted lead is re-keyed to, or "" when
// records of this type cannot be converted.
func (t IntegrationType) ConvertedType() IntegrationType {
	return integrations[t].converted
}

// AccountType returns the integration type stored on the record's account.
func (t IntegrationType) AccountType() string {
	return integrations[t].account
}

// IntegrationTypes lists every supported type in a stable order.
func IntegrationTypes() []IntegrationType {
	return []IntegrationType{
		SalesforceLead, SalesforceContact, PipedrivePerson, HubspotContact,
		ZohoLead, ZohoContact, BullhornLead, BullhornContact, SellsyContact,
	}
}
