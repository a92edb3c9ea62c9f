package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/elee1766/moviefinder/src/aisdk"
	"github.com/go-playground/validator/v10"
	"github.com/swaggest/jsonschema-go"
)

var validate = newValidator()

// newValidator reports fields by their json names so errors match the
// parameter names the model sees.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// GenericToolHandler is a type-safe handler function
type GenericToolHandler[TInput any, TOutput any] func(ctx context.Context, input TInput) (TOutput, error)

// GenericTool is a tool whose parameter schema is reflected from TInput.
// Arguments are decoded into TInput and checked against its validate tags
// before the handler runs.
type GenericTool[TInput any, TOutput any] struct {
	Type        string
	Name        string
	Description string
	Schema      *jsonschema.Schema
	Handler     GenericToolHandler[TInput, TOutput]
}

// GetType returns the tool type (always "function" for now)
func (gt *GenericTool[TInput, TOutput]) GetType() string {
	return gt.Type
}

// GetName returns the tool's name
func (gt *GenericTool[TInput, TOutput]) GetName() string {
	return gt.Name
}

// GetDescription returns the tool's description
func (gt *GenericTool[TInput, TOutput]) GetDescription() string {
	return gt.Description
}

// GetParameters returns the JSON schema for the tool's parameters
func (gt *GenericTool[TInput, TOutput]) GetParameters() *jsonschema.Schema {
	return gt.Schema
}

// Execute runs the tool with the given parameters. String outputs are
// returned verbatim, anything else is JSON encoded.
func (gt *GenericTool[TInput, TOutput]) Execute(ctx context.Context, call *aisdk.ToolCall) (*aisdk.ToolResponse, error) {
	var input TInput
	args := call.Function.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return ErrorResponse(fmt.Sprintf("failed to parse input: %v", err)), nil
	}

	if err := validateInput(input); err != nil {
		return ErrorResponse(fmt.Sprintf("validation failed: %v", err)), nil
	}

	output, err := gt.Handler(ctx, input)
	if err != nil {
		return ErrorResponse(err.Error()), nil
	}

	if s, ok := any(output).(string); ok {
		return TextResponse(s), nil
	}

	content, err := json.Marshal(output)
	if err != nil {
		return ErrorResponse(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return &aisdk.ToolResponse{
		Type:    "success",
		Content: content,
	}, nil
}

// WithDescription returns a copy of the tool advertising a different
// description.
func (gt *GenericTool[TInput, TOutput]) WithDescription(description string) *GenericTool[TInput, TOutput] {
	cp := *gt
	cp.Description = description
	return &cp
}

// NewGenericTool creates a new generic tool with automatic schema generation
func NewGenericTool[TInput any, TOutput any](name, description string, handler GenericToolHandler[TInput, TOutput]) (*GenericTool[TInput, TOutput], error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("tool name cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("tool %s has no handler", name)
	}

	var input TInput
	inputType := reflect.TypeOf(input)
	if inputType == nil {
		return nil, fmt.Errorf("tool %s input type must be a struct", name)
	}
	if inputType.Kind() == reflect.Ptr {
		inputType = inputType.Elem()
	}
	if inputType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("tool %s input type must be a struct, got %s", name, inputType.Kind())
	}

	reflector := jsonschema.Reflector{}
	schema, err := reflector.Reflect(input)
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}

	return &GenericTool[TInput, TOutput]{
		Type:        aisdk.ToolTypeFunction,
		Name:        name,
		Description: description,
		Schema:      &schema,
		Handler:     handler,
	}, nil
}

// MustNewGenericTool creates a new generic tool and panics on error
func MustNewGenericTool[TInput any, TOutput any](name, description string, handler GenericToolHandler[TInput, TOutput]) *GenericTool[TInput, TOutput] {
	tool, err := NewGenericTool(name, description, handler)
	if err != nil {
		panic(fmt.Sprintf("failed to create generic tool: %v", err))
	}
	return tool
}

// TextResponse wraps plain text as a successful tool response.
func TextResponse(text string) *aisdk.ToolResponse {
	return &aisdk.ToolResponse{Type: "text", Content: []byte(text)}
}

// ErrorResponse wraps a message as a failed tool response.
func ErrorResponse(msg string) *aisdk.ToolResponse {
	return &aisdk.ToolResponse{Type: "error", Content: []byte(msg), IsError: true}
}

func validateInput(input any) error {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return errors.New("input is required")
		}
		input = v.Elem().Interface()
	}
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				msgs = append(msgs, fmt.Sprintf("required field '%s' is missing", fe.Field()))
				continue
			}
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return err
}

var _ Tool = (*GenericTool[struct{}, string])(nil)
