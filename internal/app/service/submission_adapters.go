package service

import (
	"context"
	"errors"
	"unicode/utf8"

	"hapyland/internal/domain/model"
)

// Upload options that only translate. Every other value, including an empty one, runs the program.
const (
	OptionCompileOnly = "compile_only"
	OptionCompile     = "compile"
)

var errNotText = errors.New("uploaded file is not valid UTF-8 text")

// InlineSubmission is the JSON body of POST /run. Option and Save are sent by the
// frontend and ignored.
type InlineSubmission struct {
	Code        *string `json:"code"`
	CompileOnly bool    `json:"compile_only"`
	Option      string  `json:"option,omitempty"`
	Save        bool    `json:"save,omitempty"`
}

// Executor is what the adapters need from the gateway.
type Executor interface {
	Execute(ctx context.Context, req model.SubmissionRequest) model.ExecutionOutcome
}

// RunInline forwards an inline submission unchanged.
func RunInline(ctx context.Context, gw Executor, sub InlineSubmission) model.ExecutionOutcome {
	return gw.Execute(ctx, model.SubmissionRequest{
		Code:        sub.Code,
		CompileOnly: sub.CompileOnly,
		Option:      sub.Option,
	})
}

// RunUpload decodes an uploaded file and forwards it. Bytes that are not UTF-8 are
// reported without calling the gateway.
func RunUpload(ctx context.Context, gw Executor, content []byte, option string) model.ExecutionOutcome {
	if !utf8.Valid(content) {
		return model.FaultOutcome(model.MessageInvalidInput, errNotText)
	}
	code := string(content)
	return gw.Execute(ctx, model.SubmissionRequest{
		Code:        &code,
		CompileOnly: CompileOnlyOption(option),
		Option:      option,
	})
}

func CompileOnlyOption(option string) bool {
	return option == OptionCompileOnly || option == OptionCompile
}
