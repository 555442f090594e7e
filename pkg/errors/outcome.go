package errors

// Outcome is the named result of an engine operation, rendered by the UI as a toast.
type Outcome string

const (
	OutcomeSuccess             Outcome = "success"
	OutcomeValidationError     Outcome = "validation_error"
	OutcomeNotFound            Outcome = "not_found"
	OutcomeProviderUnavailable Outcome = "provider_unavailable"
	OutcomeSlotTaken           Outcome = "slot_taken"
	OutcomeInvalidTransition   Outcome = "invalid_transition"
	OutcomeInternalError       Outcome = "internal_error"
)

// OutcomeOf maps an operation result to its named outcome. A nil error is a success.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	switch TypeOf(err) {
	case ErrorTypeValidation:
		return OutcomeValidationError
	case ErrorTypeNotFound:
		return OutcomeNotFound
	case ErrorTypeProviderUnavailable:
		return OutcomeProviderUnavailable
	case ErrorTypeSlotTaken:
		return OutcomeSlotTaken
	case ErrorTypeInvalidTransition:
		return OutcomeInvalidTransition
	default:
		return OutcomeInternalError
	}
}
