// Package profile defines the personal details sent to a workflow and the
// helpers to load, validate and render them.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FilesInput is the workflow input key carrying attachment metadata.
const FilesInput = "sys.files"

// Profile holds the portfolio owner's details.
type Profile struct {
	FullName        string    `json:"full_name" yaml:"full_name" toml:"full_name" validate:"required"`
	JobTitle        string    `json:"job_title" yaml:"job_title" toml:"job_title"`
	AboutMe         string    `json:"about_me" yaml:"about_me" toml:"about_me"`
	Skills          string    `json:"skills" yaml:"skills" toml:"skills"`
	Email           string    `json:"email" yaml:"email" toml:"email" validate:"omitempty,email"`
	Phone           string    `json:"phone" yaml:"phone" toml:"phone"`
	Location        string    `json:"location" yaml:"location" toml:"location"`
	Birth           string    `json:"birth" yaml:"birth" toml:"birth" validate:"omitempty,numeric"`
	ExperienceYears string    `json:"experience_years" yaml:"experience_years" toml:"experience_years" validate:"omitempty,numeric"`
	Education       string    `json:"education" yaml:"education" toml:"education"`
	SocialLinks     string    `json:"social_links" yaml:"social_links" toml:"social_links"`
	Files           []FileRef `json:"files,omitempty" yaml:"files,omitempty" toml:"files,omitempty" validate:"dive"`

	// UserID identifies the end user to the workflow service.
	UserID string `json:"user_id,omitempty" yaml:"user_id,omitempty" toml:"user_id,omitempty"`
}

// FileRef describes an attachment. Only metadata is forwarded; workflows
// that read files expect them to be uploaded elsewhere.
type FileRef struct {
	Name string `json:"name" yaml:"name" toml:"name" validate:"required"`
	Size int64  `json:"size" yaml:"size" toml:"size" validate:"gte=0"`
	MIME string `json:"mime" yaml:"mime" toml:"mime"`
}

// FromFile loads a profile from a JSON, YAML or TOML file.
func FromFile(path string) (Profile, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- CLI reads a user-specified profile
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile file: %w", err)
	}

	var p Profile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("failed to parse JSON profile: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("failed to parse YAML profile: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &p); err != nil {
			return Profile{}, fmt.Errorf("failed to parse TOML profile: %w", err)
		}
	default:
		return Profile{}, fmt.Errorf("unsupported profile file format: %s", ext)
	}

	return p, nil
}

// Inputs returns the workflow inputs with values trimmed.
func (p Profile) Inputs() map[string]any {
	inputs := map[string]any{
		"full_name":        strings.TrimSpace(p.FullName),
		"job_title":        strings.TrimSpace(p.JobTitle),
		"about_me":         strings.TrimSpace(p.AboutMe),
		"skills":           strings.TrimSpace(p.Skills),
		"email":            strings.TrimSpace(p.Email),
		"phone":            strings.TrimSpace(p.Phone),
		"location":         strings.TrimSpace(p.Location),
		"birth":            strings.TrimSpace(p.Birth),
		"experience_years": strings.TrimSpace(p.ExperienceYears),
		"education":        strings.TrimSpace(p.Education),
		"social_links":     strings.TrimSpace(p.SocialLinks),
	}

	if len(p.Files) > 0 {
		files := make([]any, 0, len(p.Files))
		for _, f := range p.Files {
			files = append(files, map[string]any{"name": f.Name, "size": f.Size, "mime": f.MIME})
		}
		inputs[FilesInput] = files
	}

	return inputs
}

// SkillList splits the comma-separated skills field.
func (p Profile) SkillList() []string {
	var out []string
	for _, s := range strings.Split(p.Skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Slug returns a file-name friendly form of the owner's name.
func (p Profile) Slug() string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(p.FullName)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(sb.String(), "-")
	if slug == "" {
		return "portfolio"
	}
	return slug
}

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// ValidationErrors is returned by Validate.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, v.Field+" "+v.Message)
	}
	return "invalid profile: " + strings.Join(parts, "; ")
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks the profile. It returns nil or ValidationErrors.
func (p Profile) Validate() error {
	err := validatorInstance().Struct(p)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("failed to validate profile: %w", err)
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		out = append(out, ValidationError{
			Field:   e.Field(),
			Message: formatValidationError(e),
			Value:   e.Value(),
		})
	}
	return out
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "numeric":
		return "must be a number"
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}
