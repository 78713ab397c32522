package config

import (
	"strings"
	"testing"
)

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Parser.DurationScale = 0
	cfg.Logging.Level = "loud"
	cfg.Output.Format = "interpretive dance"

	errs := cfg.Validate()
	if len(errs) != 3 {
		t.Fatalf("errors = %d, want 3: %v", len(errs), errs)
	}

	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, want := range []string{"parser.duration_scale", "logging.level", "output.format"} {
		if !fields[want] {
			t.Errorf("missing error for %s", want)
		}
	}
}

func TestValidate_CaseInsensitiveEnums(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "DEBUG"
	cfg.Output.Format = "JSON"

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("uppercase enum values should validate, got %v", errs)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	single := ValidationErrors{{Field: "logging.level", Value: "loud", Message: "must be one of: debug, info, warn, error"}}
	if !strings.Contains(single.Error(), "logging.level") {
		t.Errorf("single error = %s", single.Error())
	}

	multiple := ValidationErrors{
		{Field: "a", Value: 1, Message: "bad"},
		{Field: "b", Value: 2, Message: "worse"},
	}
	msg := multiple.Error()
	if !strings.Contains(msg, "2 validation errors") {
		t.Errorf("multiple errors header missing: %s", msg)
	}
	if !strings.Contains(msg, "a: bad") || !strings.Contains(msg, "b: worse") {
		t.Errorf("entries missing: %s", msg)
	}

	if (ValidationErrors{}).Error() != "" {
		t.Error("empty collection should render empty")
	}
}
