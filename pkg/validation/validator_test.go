package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateNodeRequest(t *testing.T) {
	tests := []struct {
		name        string
		req         NodeRequest
		expectError bool
		errorField  string
	}{
		{
			name:        "Valid threat",
			req:         NodeRequest{Name: "pick lock", Kind: "threat", Frequency: 1.0, Capability: 3, Difficulty: 2},
			expectError: false,
		},
		{
			name:        "Valid group",
			req:         NodeRequest{Name: "or", Kind: "or", Frequency: 1.0, Children: 2},
			expectError: false,
		},
		{
			name:        "Unrated measure",
			req:         NodeRequest{Name: "alarm", Kind: "measure", Frequency: 1.0},
			expectError: false,
		},
		{
			name:        "Missing kind",
			req:         NodeRequest{Name: "x", Frequency: 1.0},
			expectError: true,
			errorField:  "Kind",
		},
		{
			name:        "Unknown kind",
			req:         NodeRequest{Name: "x", Kind: "group", Frequency: 1.0},
			expectError: true,
			errorField:  "Kind",
		},
		{
			name:        "Capability above range",
			req:         NodeRequest{Name: "x", Kind: "threat", Frequency: 1.0, Capability: 7, Difficulty: 1},
			expectError: true,
			errorField:  "Capability",
		},
		{
			name:        "Difficulty below range",
			req:         NodeRequest{Name: "x", Kind: "threat", Frequency: 1.0, Capability: 1, Difficulty: -1},
			expectError: true,
			errorField:  "Difficulty",
		},
		{
			name:        "Name at limit",
			req:         NodeRequest{Name: strings.Repeat("é", MaxNameLength), Kind: "threat", Frequency: 1.0},
			expectError: false,
		},
		{
			name:        "Name too long",
			req:         NodeRequest{Name: strings.Repeat("x", MaxNameLength+1), Kind: "threat", Frequency: 1.0},
			expectError: true,
			errorField:  "Name",
		},
		{
			name:        "Negative frequency",
			req:         NodeRequest{Name: "x", Kind: "threat", Frequency: -0.5},
			expectError: true,
			errorField:  "Frequency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeRequest(&tt.req)
			if (err != nil) != tt.expectError {
				t.Fatalf("ValidateNodeRequest() error = %v, expectError %v", err, tt.expectError)
			}
			if !tt.expectError {
				return
			}

			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FieldError, got %T", err)
			}
			if fe.Field != tt.errorField {
				t.Errorf("FieldError.Field = %q, want %q", fe.Field, tt.errorField)
			}
		})
	}
}

func TestValidateNodeRequestNil(t *testing.T) {
	if err := ValidateNodeRequest(nil); err == nil {
		t.Error("expected error for nil request")
	}
}

func TestFieldErrorMessages(t *testing.T) {
	tests := []struct {
		err      FieldError
		expected string
	}{
		{FieldError{Field: "Kind", Tag: "required"}, "Kind: field is required"},
		{FieldError{Field: "Capability", Tag: "max", Param: "6", Value: 9}, "Capability: must not exceed 6, got 9"},
		{FieldError{Field: "Frequency", Tag: "gte", Param: "0", Value: -1.5}, "Frequency: must be at least 0, got -1.5"},
		{FieldError{Field: "Kind", Tag: "oneof", Param: "or and", Value: "xor"}, "Kind: xor must be one of [or and]"},
		{FieldError{Field: "Name", Tag: "nodename"}, "Name: must not exceed 200 characters"},
		{FieldError{Field: "Name", Tag: "custom"}, "Name: validation failed (custom)"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.expected {
			t.Errorf("Error() = %q, want %q", got, tt.expected)
		}
	}
}
