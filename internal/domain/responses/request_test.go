package responses_test

import (
	"encoding/json"
	"strings"
	"testing"

	"responses-api/internal/domain/responses"
)

func TestInput_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    responses.InputKind
		wantErr bool
	}{
		{"string form", `"hello"`, responses.InputKindText, false},
		{"empty string form", `""`, responses.InputKindText, false},
		{"array form", `[{"type":"message","role":"user","text":"hi"}]`, responses.InputKindItems, false},
		{"empty array form", `[]`, responses.InputKindItems, false},
		{"object rejected", `{"text":"hi"}`, "", true},
		{"number rejected", `42`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in responses.Input
			err := json.Unmarshal([]byte(tt.payload), &in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if in.Kind != tt.want {
				t.Errorf("kind = %v, want %v", in.Kind, tt.want)
			}
		})
	}
}

func TestInputItem_UnmarshalJSON_ContentResolution(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    responses.ContentKind
	}{
		{"text", `{"type":"message","role":"user","text":"hi"}`, responses.ContentKindText},
		{"image", `{"type":"message","image_url":{"url":"https://example.com/a.png"},"detail":"high"}`, responses.ContentKindImage},
		{"file", `{"type":"message","file_id":"file_123"}`, responses.ContentKindFile},
		// Text wins when several fields are present; resolution order is
		// text, image, file.
		{"text beats image", `{"text":"hi","image_url":{"url":"https://example.com/a.png"}}`, responses.ContentKindText},
		{"image beats file", `{"image_url":{"url":"https://example.com/a.png"},"file_id":"file_123"}`, responses.ContentKindImage},
		{"nothing recognized", `{"type":"message","role":"user","audio":"yes"}`, responses.ContentKindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var item responses.InputItem
			if err := json.Unmarshal([]byte(tt.payload), &item); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if item.Content.Kind != tt.want {
				t.Errorf("kind = %v, want %v", item.Content.Kind, tt.want)
			}
		})
	}
}

func TestInputItem_UnmarshalJSON_DefaultsType(t *testing.T) {
	var item responses.InputItem
	if err := json.Unmarshal([]byte(`{"role":"user","text":"hi"}`), &item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Type != "message" {
		t.Errorf("type = %q, want %q", item.Type, "message")
	}
}

func TestTool_UnmarshalJSON(t *testing.T) {
	payload := `{"type":"function","function":{"name":"lookup","parameters":{"type":"object"}}}`
	var tool responses.Tool
	if err := json.Unmarshal([]byte(payload), &tool); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tool.Type != responses.ToolTypeFunction {
		t.Errorf("type = %q, want function", tool.Type)
	}
	if tool.Function == nil || tool.Function.Name != "lookup" {
		t.Errorf("function payload not decoded: %+v", tool.Function)
	}

	if err := json.Unmarshal([]byte(`{"type":"function"}`), &tool); err == nil {
		t.Error("function tool without payload should fail decoding")
	}

	if err := json.Unmarshal([]byte(`{"type":"web_search"}`), &tool); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tool.WebSearch == nil {
		t.Error("web_search payload should default to empty config")
	}
}

func TestToolChoice_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantMode responses.ToolChoiceMode
		wantName string
		wantErr  bool
	}{
		{"auto", `"auto"`, responses.ToolChoiceAuto, "", false},
		{"none", `"none"`, responses.ToolChoiceNone, "", false},
		{"required", `"required"`, responses.ToolChoiceRequired, "", false},
		{"named function", `{"type":"function","function":{"name":"lookup"}}`, responses.ToolChoiceFunction, "lookup", false},
		{"unknown string", `"always"`, "", "", true},
		{"object without name", `{"type":"function","function":{}}`, "", "", true},
		{"wrong object type", `{"type":"web_search"}`, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tc responses.ToolChoice
			err := json.Unmarshal([]byte(tt.payload), &tc)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.Mode != tt.wantMode {
				t.Errorf("mode = %v, want %v", tc.Mode, tt.wantMode)
			}
			if tc.FunctionName != tt.wantName {
				t.Errorf("function name = %q, want %q", tc.FunctionName, tt.wantName)
			}
		})
	}
}

func TestInput_MarshalRoundTrip(t *testing.T) {
	in := responses.TextInput("hello")
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `"hello"` {
		t.Errorf("text input marshals as %s, want plain string", data)
	}

	var back responses.Input
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.Kind != responses.InputKindText || back.Text != "hello" {
		t.Errorf("round trip lost the text variant: %+v", back)
	}
}

func TestNewResponseID(t *testing.T) {
	id := responses.NewResponseID()
	if !strings.HasPrefix(id, "resp_") {
		t.Errorf("id %q missing resp_ prefix", id)
	}
	if strings.Contains(id, "-") {
		t.Errorf("id %q should not contain dashes", id)
	}
	if id == responses.NewResponseID() {
		t.Error("consecutive ids should differ")
	}
}
