package transport

// AccountPayload carries the CRM company a lead belongs to.
type AccountPayload struct {
	IntegrationID string  `json:"integration_id" validate:"required,max=255"`
	Name          *string `json:"name,omitempty" validate:"omitempty,max=512"`
	Size          *string `json:"size,omitempty" validate:"omitempty,max=100"`
	URL           *string `json:"url,omitempty" validate:"omitempty,max=512"`
	Country       *string `json:"country,omitempty" validate:"omitempty,max=100"`
	ZipCode       *string `json:"zip_code,omitempty" validate:"omitempty,max=20"`
	PhoneNumber   *string `json:"phone_number,omitempty" validate:"omitempty,max=50"`
}

// LeadPayload carries the CRM-reported lead fields. Nil fields were not reported.
type LeadPayload struct {
	LeadID            string          `json:"lead_id" validate:"required,max=255"`
	FirstName         *string         `json:"first_name,omitempty" validate:"omitempty,max=255"`
	LastName          *string         `json:"last_name,omitempty" validate:"omitempty,max=255"`
	Email             *string         `json:"email,omitempty" validate:"omitempty,max=320"`
	PhoneNumber       *string         `json:"phone_number,omitempty" validate:"omitempty,max=50"`
	JobPosition       *string         `json:"job_position,omitempty" validate:"omitempty,max=255"`
	LinkedinURL       *string         `json:"linkedin_url,omitempty" validate:"omitempty,max=512"`
	IntegrationStatus *string         `json:"integration_status,omitempty" validate:"omitempty,max=255"`
	Unsubscribed      *bool           `json:"unsubscribed,omitempty"`
	Account           *AccountPayload `json:"account,omitempty"`
	// Set by the CRM when a lead was converted into a contact (and account).
	ConvertedContactID *string `json:"converted_contact_id,omitempty" validate:"omitempty,max=255"`
	ConvertedAccountID *string `json:"converted_account_id,omitempty" validate:"omitempty,max=255"`
}

// EnrollLeadRecord enrolls one CRM lead into a cadence.
type EnrollLeadRecord struct {
	LeadPayload
	CadenceID string `json:"cadence_id" validate:"required,uuid"`
	OwnerID   string `json:"owner_id" validate:"required,max=255"`
}

// EnrollLeadsRequest is the body of POST /leads/cadence.
type EnrollLeadsRequest struct {
	Leads []EnrollLeadRecord `json:"leads" validate:"required,min=1,max=500"`
}

// UpdateLeadRecord reports CRM changes to a lead.
type UpdateLeadRecord struct {
	LeadPayload
	OwnerID *string `json:"owner_id,omitempty" validate:"omitempty,max=255"`
}

// UpdateLeadsRequest is the body of PUT /leads.
type UpdateLeadsRequest struct {
	Leads []UpdateLeadRecord `json:"leads" validate:"required,min=1,max=500"`
}

// LinkStatusRecord requests a status change of a lead inside a cadence.
type LinkStatusRecord struct {
	LeadID    string `json:"lead_id" validate:"required,max=255"`
	CadenceID string `json:"cadence_id" validate:"required,uuid"`
	Status    string `json:"status" validate:"required,oneof=not_started in_progress stopped"`
}

// UpdateLinkStatusRequest is the body of PATCH /leads/cadence/status.
type UpdateLinkStatusRequest struct {
	Leads []LinkStatusRecord `json:"leads" validate:"required,min=1,max=500"`
}

// DeleteLeadRecord identifies a lead removed in the CRM.
type DeleteLeadRecord struct {
	LeadID string `json:"lead_id" validate:"required,max=255"`
}

// DeleteLeadsRequest is the body of DELETE /leads.
type DeleteLeadsRequest struct {
	Leads []DeleteLeadRecord `json:"leads" validate:"required,min=1,max=1000"`
}

// ElementSuccess reports a record that was applied.
type ElementSuccess struct {
	LeadID     string `json:"lead_id"`
	CadenceID  string `json:"cadence_id,omitempty"`
	Identifier string `json:"identifier"`
	Status     string `json:"status,omitempty"`
}

// ElementError reports a record that was rejected. Kind "noop" means the
// requested change is already in effect.
type ElementError struct {
	LeadID    string `json:"lead_id"`
	CadenceID string `json:"cadence_id,omitempty"`
	Msg       string `json:"msg"`
	Kind      string `json:"kind"`
}

// BatchResponse is returned by every sync endpoint.
type BatchResponse struct {
	TotalSuccess   int              `json:"total_success"`
	TotalError     int              `json:"total_error"`
	ElementSuccess []ElementSuccess `json:"element_success"`
	ElementError   []ElementError   `json:"element_error"`
}

// NewBatchResponse returns an empty response with non-nil slices.
func NewBatchResponse() BatchResponse {
	return BatchResponse{
		ElementSuccess: make([]ElementSuccess, 0),
		ElementError:   make([]ElementError, 0),
	}
}
