package entities_test

import (
	"reflect"
	"strings"
	"testing"

	"responses-api/internal/infrastructure/database/entities"
)

func gormTag(t *testing.T, model interface{}, field string) string {
	t.Helper()
	f, ok := reflect.TypeOf(model).FieldByName(field)
	if !ok {
		t.Fatalf("%T has no field %s", model, field)
	}
	return f.Tag.Get("gorm")
}

func TestItemTables_CascadeWithOwningResponse(t *testing.T) {
	tests := []struct {
		name  string
		model interface{}
	}{
		{"input items", entities.InputItem{}},
		{"output items", entities.OutputItem{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := gormTag(t, tt.model, "Response")
			for _, want := range []string{"foreignKey:ResponseID", "references:PublicID", "constraint:OnDelete:CASCADE"} {
				if !strings.Contains(tag, want) {
					t.Errorf("gorm tag %q missing %q", tag, want)
				}
			}
		})
	}
}

func TestResponse_ParentLinkConstrained(t *testing.T) {
	tag := gormTag(t, entities.Response{}, "Previous")
	for _, want := range []string{"foreignKey:PreviousResponseID", "references:PublicID"} {
		if !strings.Contains(tag, want) {
			t.Errorf("gorm tag %q missing %q", tag, want)
		}
	}
	if strings.Contains(tag, "OnDelete:CASCADE") {
		t.Errorf("parent link must not cascade deletes: %q", tag)
	}
}
