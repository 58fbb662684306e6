package domain

import "strings"

// LeadTransition is the status change a CRM update causes on a lead.
type LeadTransition string

const (
	TransitionNone       LeadTransition = ""
	TransitionDisqualify LeadTransition = "disqualify"
	TransitionConvert    LeadTransition = "convert"
	TransitionRequalify  LeadTransition = "requalify"
	TransitionUnconvert  LeadTransition = "unconvert"
)

// Target returns the lead status after the transition.
func (t LeadTransition) Target() LeadStatus {
	switch t {
	case TransitionDisqualify:
		return LeadTrash
	case TransitionConvert:
		return LeadConverted
	case TransitionRequalify, TransitionUnconvert:
		return LeadOngoing
	default:
		return ""
	}
}

// StopsLinks reports whether the lead's cadence links must be stopped.
func (t LeadTransition) StopsLinks() bool {
	return t == TransitionDisqualify || t == TransitionConvert
}

// HistoryMessage is the note stored with the status history row.
func (t LeadTransition) HistoryMessage() string {
	switch t {
	case TransitionDisqualify:
		return "disqualified in CRM"
	case TransitionConvert:
		return "converted in CRM"
	case TransitionRequalify:
		return "requalified in CRM"
	case TransitionUnconvert:
		return "conversion reverted in CRM"
	default:
		return ""
	}
}

// DecideLeadTransition classifies the CRM-reported integration status against
// the field-map markers. Disqualification is evaluated before conversion; a
// nil incoming status (field not reported) or an empty marker never matches,
// and at most one transition results.
func DecideLeadTransition(current LeadStatus, incoming *string, markers FieldMap) LeadTransition {
	if incoming == nil {
		return TransitionNone
	}
	value := strings.TrimSpace(*incoming)

	switch {
	case matches(value, markers.DisqualifiedValue):
		if current != LeadTrash {
			return TransitionDisqualify
		}
		return TransitionNone
	case matches(value, markers.ConvertedValue):
		if current != LeadConverted {
			return TransitionConvert
		}
		return TransitionNone
	}

	switch current {
	case LeadTrash:
		return TransitionRequalify
	case LeadConverted:
		return TransitionUnconvert
	default:
		return TransitionNone
	}
}

// InitialLeadStatus is the status of a lead created from a CRM record.
func InitialLeadStatus(incoming *string, markers FieldMap) LeadStatus {
	if t := DecideLeadTransition(LeadOngoing, incoming, markers); t != TransitionNone {
		return t.Target()
	}
	return LeadOngoing
}

func matches(value, marker string) bool {
	marker = strings.TrimSpace(marker)
	return marker != "" && value == marker
}
