package delivery

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func TestRegisterValidators(t *testing.T) {
	if err := registerValidators(); err != nil {
		t.Fatalf("register: %v", err)
	}
	// A second call reports the same outcome without registering again.
	if err := registerValidators(); err != nil {
		t.Fatalf("second register: %v", err)
	}

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		t.Fatalf("unexpected engine %T", binding.Validator.Engine())
	}
	if err := v.Var("   ", "notblank"); err == nil {
		t.Fatal("blank value should fail notblank")
	}
	if err := v.Var("Alice", "notblank"); err != nil {
		t.Fatalf("non-blank value rejected: %v", err)
	}
}

func TestFieldErrors_AgePointer(t *testing.T) {
	if err := registerValidators(); err != nil {
		t.Fatalf("register: %v", err)
	}

	zero, negative, adult := 0, -1, 30
	cases := []struct {
		name string
		req  createUserRequest
		want string
	}{
		{"missing", createUserRequest{Name: "Bob", Email: "b@x.com"}, "Age is required"},
		{"zero", createUserRequest{Name: "Bob", Email: "b@x.com", Age: &zero}, "Age must be positive"},
		{"negative", createUserRequest{Name: "Bob", Email: "b@x.com", Age: &negative}, "Age must be positive"},
		{"positive", createUserRequest{Name: "Bob", Email: "b@x.com", Age: &adult}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(&tc.req)
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			fields, ok := fieldErrors(err)
			if !ok {
				t.Fatalf("expected validation errors, got %v", err)
			}
			if fields["age"] != tc.want {
				t.Fatalf("age: got %q, want %q", fields["age"], tc.want)
			}
		})
	}

	if got := ageValue(nil); got != 0 {
		t.Fatalf("nil age should map to 0, got %d", got)
	}
	if got := ageValue(&adult); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
}
