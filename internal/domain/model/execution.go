package model

// SubmissionRequest is what both submission channels decode into.
type SubmissionRequest struct {
	Code        *string
	CompileOnly bool
	Option      string
}

// HasCode reports whether there is anything to transpile.
func (r SubmissionRequest) HasCode() bool {
	return r.Code != nil && *r.Code != ""
}

type OutcomeKind int

const (
	// OutcomeCompleted means the pipeline ran to the end; Status still says whether it succeeded.
	OutcomeCompleted OutcomeKind = iota
	// OutcomeInvalidInput means no code was supplied and nothing was called.
	OutcomeInvalidInput
	// OutcomeFault means a collaborator failed or the submission could not be decoded.
	OutcomeFault
)

type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeError   OutcomeStatus = "error"
)

const (
	MessageExecutionOutput = "execution output"
	MessageCompileError    = "error while compiling"
	MessageInvalidInput    = "Invalid code/or file"
)

// ExecutionOutcome is the normalized result of one execute call.
type ExecutionOutcome struct {
	Kind             OutcomeKind
	Status           OutcomeStatus
	Message          string
	TranslatedSource *string
	Result           *string
	Error            string
}

func InvalidInputOutcome() ExecutionOutcome {
	return ExecutionOutcome{
		Kind:    OutcomeInvalidInput,
		Status:  OutcomeError,
		Message: MessageInvalidInput,
	}
}

func FaultOutcome(message string, err error) ExecutionOutcome {
	return ExecutionOutcome{
		Kind:    OutcomeFault,
		Status:  OutcomeError,
		Message: message,
		Error:   err.Error(),
	}
}

// CompletedOutcome applies the status rule: success needs a non-empty artifact and an empty error channel.
func CompletedOutcome(translated, result *string, errText string) ExecutionOutcome {
	status := OutcomeError
	if (nonEmpty(result) || nonEmpty(translated)) && errText == "" {
		status = OutcomeSuccess
	}
	message := MessageExecutionOutput
	if errText != "" {
		message = MessageCompileError
	}
	return ExecutionOutcome{
		Kind:             OutcomeCompleted,
		Status:           status,
		Message:          message,
		TranslatedSource: translated,
		Result:           result,
		Error:            errText,
	}
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}
