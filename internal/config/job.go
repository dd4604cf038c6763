package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrUnknownKind is returned for a job whose kind has no extractor.
var ErrUnknownKind = errors.New("unknown job kind")

// Kind selects the extractor a job runs.
type Kind string

const (
	KindCatalog Kind = "catalog"
	KindNews    Kind = "news"
	KindSubsidy Kind = "subsidy"
)

// Output names where a job's records go. An empty path means stdout.
type Output struct {
	Path   string `yaml:"path" json:"path"`
	Format string `yaml:"format" json:"format" validate:"omitempty,oneof=json jsonl ndjson yaml yml xlsx"`
}

// Job describes one extraction run over a set of inputs.
type Job struct {
	Name     string   `yaml:"name" json:"name" validate:"required"`
	Kind     Kind     `yaml:"kind" json:"kind" validate:"required"`
	Shape    string   `yaml:"shape" json:"shape" validate:"omitempty,oneof=list product"`
	Site     string   `yaml:"site" json:"site" validate:"omitempty,oneof=naver investing"`
	Category string   `yaml:"category" json:"category"`
	Origin   string   `yaml:"origin" json:"origin" validate:"omitempty,url"`
	Fetch    string   `yaml:"fetch" json:"fetch" validate:"omitempty,oneof=static dynamic auto"`
	Next     string   `yaml:"next" json:"next"`
	MaxPages int      `yaml:"max_pages" json:"max_pages" validate:"gte=0"`
	Inputs   []string `yaml:"inputs" json:"inputs" validate:"required,min=1,dive,required"`
	Output   Output   `yaml:"output" json:"output"`
	Store    string   `yaml:"store" json:"store"`
}

// Jobs is the top level of a job file.
type Jobs struct {
	Jobs []Job `yaml:"jobs" json:"jobs" validate:"required,min=1,dive"`
}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid field of a job file.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return "invalid job file: " + strings.Join(msgs, "; ")
}

var validate = validator.New()

// LoadJobs reads and validates a YAML or JSON job file.
func LoadJobs(path string) (*Jobs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	return ParseJobs(data)
}

// ParseJobs decodes and validates job file content. JSON is accepted as a
// subset of YAML.
func ParseJobs(data []byte) (*Jobs, error) {
	var jobs Jobs
	if err := yaml.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse job file: %w", err)
	}
	if err := jobs.Validate(); err != nil {
		return nil, err
	}
	return &jobs, nil
}

// Validate checks every job.
func (j *Jobs) Validate() error {
	for _, job := range j.Jobs {
		switch job.Kind {
		case KindCatalog, KindNews, KindSubsidy:
		case "":
			// reported by the struct validation below
		default:
			return fmt.Errorf("%w: %q in job %q", ErrUnknownKind, job.Kind, job.Name)
		}
	}

	var errs ValidationErrors
	if err := validate.Struct(j); err != nil {
		var ves validator.ValidationErrors
		if !errors.As(err, &ves) {
			return fmt.Errorf("failed to validate job file: %w", err)
		}
		for _, e := range ves {
			errs = append(errs, ValidationError{
				Field:   strings.TrimPrefix(e.Namespace(), "Jobs."),
				Message: formatValidationError(e),
			})
		}
	}
	for i, job := range j.Jobs {
		if job.Kind == KindNews && job.Site == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("Jobs[%d].Site", i),
				Message: "is required for news jobs",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "url":
		return "must be a valid URL"
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
