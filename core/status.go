package core

// External helpdesk status codes. Codes 6 and 7 (waiting on customer,
// waiting on third party) are not yet actionable by internal staff and are
// treated as NEW.
const (
	ExternalStatusOpen                = 2
	ExternalStatusPending             = 3
	ExternalStatusResolved            = 4
	ExternalStatusClosed              = 5
	ExternalStatusWaitingOnCustomer   = 6
	ExternalStatusWaitingOnThirdParty = 7
)

// MapStatus translates an external helpdesk status code into the internal
// case vocabulary. Unrecognized codes map to NEW: the mapping fails open so
// an upstream vocabulary change never aborts an import.
func MapStatus(code int) CaseStatus {
	switch code {
	case ExternalStatusOpen:
		return StatusNew
	case ExternalStatusPending:
		return StatusInProgress
	case ExternalStatusResolved:
		return StatusAwaitingReview
	case ExternalStatusClosed:
		return StatusComplete
	case ExternalStatusWaitingOnCustomer, ExternalStatusWaitingOnThirdParty:
		return StatusNew
	default:
		return StatusNew
	}
}

// MapPriority translates an external helpdesk priority code (1-4) into the
// internal priority vocabulary. Unrecognized codes default to medium.
func MapPriority(code int) CasePriority {
	switch code {
	case 1:
		return PriorityLow
	case 2:
		return PriorityMedium
	case 3:
		return PriorityHigh
	case 4:
		return PriorityUrgent
	default:
		return PriorityMedium
	}
}
