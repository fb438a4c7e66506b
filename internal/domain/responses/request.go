// Package responses implements the Responses API domain: the wire schema,
// the lossy bidirectional translation to chat completions, and the service
// orchestrating storage, chain reconstruction and the model call.
package responses

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"responses-api/internal/domain/metadata"
)

// ResponseRequest models the POST /v1/responses body.
type ResponseRequest struct {
	Model              string             `json:"model" binding:"required"`
	Input              *Input             `json:"input,omitempty"`
	Instructions       *string            `json:"instructions,omitempty"`
	PreviousResponseID *string            `json:"previous_response_id,omitempty"`
	MaxOutputTokens    *int64             `json:"max_output_tokens,omitempty"`
	Temperature        *float64           `json:"temperature,omitempty"`
	TopP               *float64           `json:"top_p,omitempty"`
	Stream             *bool              `json:"stream,omitempty"`
	Store              *bool              `json:"store,omitempty"`
	Metadata           *metadata.Metadata `json:"metadata,omitempty"`
	User               *string            `json:"user,omitempty"`
	SafetyIdentifier   *string            `json:"safety_identifier,omitempty"`
	PromptCacheKey     *string            `json:"prompt_cache_key,omitempty"`
	Tools              []Tool             `json:"tools,omitempty"`
	ToolChoice         *ToolChoice        `json:"tool_choice,omitempty"`
	ParallelToolCalls  *bool              `json:"parallel_tool_calls,omitempty"`
	Include            []string           `json:"include,omitempty"`
	Truncation         *string            `json:"truncation,omitempty"`
	Verbosity          *string            `json:"verbosity,omitempty"`
}

// InputKind discriminates the two accepted input shapes.
type InputKind string

const (
	InputKindText  InputKind = "text"
	InputKindItems InputKind = "items"
)

// Input is either a plain text prompt or an ordered list of typed items. The
// wire form is untagged; decoding resolves the variant explicitly, string
// first, then array.
type Input struct {
	Kind  InputKind
	Text  string
	Items []InputItem
}

// TextInput builds a plain-text input.
func TextInput(text string) *Input {
	return &Input{Kind: InputKindText, Text: text}
}

// ItemsInput builds a structured input.
func ItemsInput(items ...InputItem) *Input {
	return &Input{Kind: InputKindItems, Items: items}
}

// UnmarshalJSON resolves the untagged wire form in a fixed order.
func (in *Input) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		in.Kind = InputKindText
		in.Text = text
		in.Items = nil
		return nil
	}

	var items []InputItem
	if err := json.Unmarshal(data, &items); err == nil {
		in.Kind = InputKindItems
		in.Items = items
		in.Text = ""
		return nil
	}

	return fmt.Errorf("input must be a string or an array of input items")
}

// MarshalJSON renders the wire form of the resolved variant.
func (in Input) MarshalJSON() ([]byte, error) {
	if in.Kind == InputKindText {
		return json.Marshal(in.Text)
	}
	return json.Marshal(in.Items)
}

// ContentKind discriminates the recognized input content variants.
type ContentKind string

const (
	ContentKindText    ContentKind = "text"
	ContentKindImage   ContentKind = "image"
	ContentKindFile    ContentKind = "file"
	ContentKindUnknown ContentKind = "unknown"
)

// ImageURL wraps an image reference.
type ImageURL struct {
	URL string `json:"url"`
}

// InputContent is the typed payload of an input item. Kind is resolved at
// decode time so downstream consumers never re-infer the variant from field
// presence.
type InputContent struct {
	Kind     ContentKind
	Text     string
	ImageURL *ImageURL
	Detail   *string
	FileID   string
	Purpose  *string
}

// InputItem is one entry of a structured input. Role is kept as the raw wire
// string; consumers parse it with conversation.ParseRole so coercions stay
// observable.
type InputItem struct {
	Type    string
	Role    *string
	Content InputContent
}

// inputItemWire is the flattened JSON shape of an input item.
type inputItemWire struct {
	Type     string          `json:"type"`
	Role     *string         `json:"role,omitempty"`
	Text     *string         `json:"text,omitempty"`
	ImageURL *ImageURL       `json:"image_url,omitempty"`
	Detail   *string         `json:"detail,omitempty"`
	FileID   *string         `json:"file_id,omitempty"`
	Purpose  *string         `json:"purpose,omitempty"`
	Extra    json.RawMessage `json:"-"`
}

// UnmarshalJSON resolves the flattened content variant in a fixed order:
// text, then image, then file. Payloads matching none of them decode with
// Kind unknown and are rejected later by the translator, tagged with the
// item's type and position.
func (it *InputItem) UnmarshalJSON(data []byte) error {
	var wire inputItemWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	it.Type = wire.Type
	if it.Type == "" {
		it.Type = "message"
	}
	it.Role = wire.Role

	switch {
	case wire.Text != nil:
		it.Content = InputContent{Kind: ContentKindText, Text: *wire.Text}
	case wire.ImageURL != nil:
		it.Content = InputContent{Kind: ContentKindImage, ImageURL: wire.ImageURL, Detail: wire.Detail}
	case wire.FileID != nil:
		it.Content = InputContent{Kind: ContentKindFile, FileID: *wire.FileID, Purpose: wire.Purpose}
	default:
		it.Content = InputContent{Kind: ContentKindUnknown}
	}
	return nil
}

// MarshalJSON flattens the resolved variant back to the wire shape.
func (it InputItem) MarshalJSON() ([]byte, error) {
	wire := inputItemWire{
		Type: it.Type,
		Role: it.Role,
	}
	switch it.Content.Kind {
	case ContentKindText:
		wire.Text = &it.Content.Text
	case ContentKindImage:
		wire.ImageURL = it.Content.ImageURL
		wire.Detail = it.Content.Detail
	case ContentKindFile:
		fileID := it.Content.FileID
		wire.FileID = &fileID
		wire.Purpose = it.Content.Purpose
	}
	return json.Marshal(wire)
}

// Tool tool kinds recognized on the wire.
const (
	ToolTypeFunction        = "function"
	ToolTypeWebSearch       = "web_search"
	ToolTypeFileSearch      = "file_search"
	ToolTypeCodeInterpreter = "code_interpreter"
)

// FunctionTool declares a callable function. Parameters is an opaque JSON
// schema passed through to the model untouched.
type FunctionTool struct {
	Name        string                 `json:"name"`
	Description *string                `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// FileSearchTool configures file search.
type FileSearchTool struct {
	FileIDs []string `json:"file_ids,omitempty"`
}

// WebSearchTool configures web search.
type WebSearchTool struct{}

// CodeInterpreterTool configures the code interpreter.
type CodeInterpreterTool struct{}

// Tool is a tool definition discriminated by the wire "type" field.
type Tool struct {
	Type            string
	Function        *FunctionTool
	WebSearch       *WebSearchTool
	FileSearch      *FileSearchTool
	CodeInterpreter *CodeInterpreterTool
}

type toolWire struct {
	Type            string               `json:"type"`
	Function        *FunctionTool        `json:"function,omitempty"`
	WebSearch       *WebSearchTool       `json:"web_search,omitempty"`
	FileSearch      *FileSearchTool      `json:"file_search,omitempty"`
	CodeInterpreter *CodeInterpreterTool `json:"code_interpreter,omitempty"`
}

// UnmarshalJSON selects the variant by the type discriminant. Unrecognized
// tool types are preserved (and later dropped by the translator).
func (t *Tool) UnmarshalJSON(data []byte) error {
	var wire toolWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	t.Type = wire.Type
	t.Function, t.WebSearch, t.FileSearch, t.CodeInterpreter = nil, nil, nil, nil

	switch wire.Type {
	case ToolTypeFunction:
		if wire.Function == nil {
			return fmt.Errorf("function tool missing function payload")
		}
		t.Function = wire.Function
	case ToolTypeWebSearch:
		if wire.WebSearch == nil {
			wire.WebSearch = &WebSearchTool{}
		}
		t.WebSearch = wire.WebSearch
	case ToolTypeFileSearch:
		if wire.FileSearch == nil {
			wire.FileSearch = &FileSearchTool{}
		}
		t.FileSearch = wire.FileSearch
	case ToolTypeCodeInterpreter:
		if wire.CodeInterpreter == nil {
			wire.CodeInterpreter = &CodeInterpreterTool{}
		}
		t.CodeInterpreter = wire.CodeInterpreter
	}
	return nil
}

// MarshalJSON renders the resolved variant with its discriminant.
func (t Tool) MarshalJSON() ([]byte, error) {
	return json.Marshal(toolWire{
		Type:            t.Type,
		Function:        t.Function,
		WebSearch:       t.WebSearch,
		FileSearch:      t.FileSearch,
		CodeInterpreter: t.CodeInterpreter,
	})
}

// ToolChoiceMode discriminates the tool_choice variants.
type ToolChoiceMode string

const (
	ToolChoiceAuto     ToolChoiceMode = "auto"
	ToolChoiceNone     ToolChoiceMode = "none"
	ToolChoiceRequired ToolChoiceMode = "required"
	ToolChoiceFunction ToolChoiceMode = "function"
)

// ToolChoice is either a bare mode string or an explicit named function.
type ToolChoice struct {
	Mode         ToolChoiceMode
	FunctionName string // set when Mode is ToolChoiceFunction
}

type toolChoiceWire struct {
	Type     string `json:"type"`
	Function struct {
		Name string `json:"name"`
	} `json:"function"`
}

// UnmarshalJSON tries the bare string form first, then the named-function
// object form.
func (tc *ToolChoice) UnmarshalJSON(data []byte) error {
	var mode string
	if err := json.Unmarshal(data, &mode); err == nil {
		switch ToolChoiceMode(mode) {
		case ToolChoiceAuto, ToolChoiceNone, ToolChoiceRequired:
			tc.Mode = ToolChoiceMode(mode)
			tc.FunctionName = ""
			return nil
		default:
			return fmt.Errorf("unrecognized tool_choice %q", mode)
		}
	}

	var wire toolChoiceWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("tool_choice must be a mode string or a named function: %w", err)
	}
	if wire.Type != string(ToolChoiceFunction) || wire.Function.Name == "" {
		return fmt.Errorf("unrecognized tool_choice object type %q", wire.Type)
	}
	tc.Mode = ToolChoiceFunction
	tc.FunctionName = wire.Function.Name
	return nil
}

// MarshalJSON renders the wire form of the resolved variant.
func (tc ToolChoice) MarshalJSON() ([]byte, error) {
	if tc.Mode != ToolChoiceFunction {
		return json.Marshal(string(tc.Mode))
	}
	wire := toolChoiceWire{Type: string(ToolChoiceFunction)}
	wire.Function.Name = tc.FunctionName
	return json.Marshal(wire)
}

// NewResponseID mints a resp_-prefixed public id.
func NewResponseID() string {
	return "resp_" + simpleUUID()
}

// NewMessageID mints a msg_-prefixed output item id.
func NewMessageID() string {
	return "msg_" + simpleUUID()
}

// NewInputItemID mints an item_-prefixed input item id.
func NewInputItemID() string {
	return "item_" + simpleUUID()
}

func simpleUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// wireForm flattens the resolved content variant for storage.
func (c InputContent) wireForm() interface{} {
	switch c.Kind {
	case ContentKindText:
		return map[string]string{"text": c.Text}
	case ContentKindImage:
		form := map[string]interface{}{"image_url": c.ImageURL}
		if c.Detail != nil {
			form["detail"] = *c.Detail
		}
		return form
	case ContentKindFile:
		form := map[string]interface{}{"file_id": c.FileID}
		if c.Purpose != nil {
			form["purpose"] = *c.Purpose
		}
		return form
	default:
		return map[string]interface{}{}
	}
}
