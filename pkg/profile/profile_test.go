package profile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmylchreest/folio/pkg/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFromFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json",
			file:    "me.json",
			content: `{"full_name":"Jane Doe","email":"jane@example.com","skills":"Go, SQL"}`,
		},
		{
			name:    "yaml",
			file:    "me.yaml",
			content: "full_name: Jane Doe\nemail: jane@example.com\nskills: Go, SQL\n",
		},
		{
			name:    "yml",
			file:    "me.yml",
			content: "full_name: Jane Doe\nemail: jane@example.com\nskills: Go, SQL\n",
		},
		{
			name:    "toml",
			file:    "me.toml",
			content: "full_name = \"Jane Doe\"\nemail = \"jane@example.com\"\nskills = \"Go, SQL\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := profile.FromFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, "Jane Doe", p.FullName)
			assert.Equal(t, "jane@example.com", p.Email)
			assert.Equal(t, []string{"Go", "SQL"}, p.SkillList())
		})
	}

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()

		_, err := profile.FromFile(writeFile(t, "me.txt", "x"))
		assert.ErrorContains(t, err, "unsupported profile file format")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := profile.FromFile(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("files list", func(t *testing.T) {
		t.Parallel()

		p, err := profile.FromFile(writeFile(t, "me.yaml",
			"full_name: Jane\nfiles:\n  - name: cv.pdf\n    size: 2048\n    mime: application/pdf\n"))
		require.NoError(t, err)

		require.Len(t, p.Files, 1)
		assert.Equal(t, profile.FileRef{Name: "cv.pdf", Size: 2048, MIME: "application/pdf"}, p.Files[0])
	})
}

func TestProfile_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		p := profile.Profile{FullName: "Jane", Email: "jane@example.com", Birth: "1990"}
		assert.NoError(t, p.Validate())
	})

	t.Run("optional fields may be empty", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, profile.Profile{FullName: "Jane"}.Validate())
	})

	t.Run("reports each invalid field by its key", func(t *testing.T) {
		t.Parallel()

		p := profile.Profile{Email: "not-an-email", ExperienceYears: "ten"}

		err := p.Validate()
		require.Error(t, err)

		var verrs profile.ValidationErrors
		require.ErrorAs(t, err, &verrs)

		byField := map[string]string{}
		for _, e := range verrs {
			byField[e.Field] = e.Message
		}
		assert.Equal(t, map[string]string{
			"full_name":        "is required",
			"email":            "must be a valid email address",
			"experience_years": "must be a number",
		}, byField)
		assert.Contains(t, err.Error(), "full_name is required")
	})

	t.Run("file entries are validated", func(t *testing.T) {
		t.Parallel()

		p := profile.Profile{FullName: "Jane", Files: []profile.FileRef{{Size: 1}}}

		var verrs profile.ValidationErrors
		require.ErrorAs(t, p.Validate(), &verrs)
		require.Len(t, verrs, 1)
		assert.Equal(t, "name", verrs[0].Field)
	})
}

func TestProfile_Inputs(t *testing.T) {
	t.Parallel()

	t.Run("trims values and uses workflow keys", func(t *testing.T) {
		t.Parallel()

		p := profile.Profile{FullName: "  Jane Doe ", JobTitle: "Engineer\n", UserID: "u-1"}

		got := p.Inputs()

		assert.Equal(t, "Jane Doe", got["full_name"])
		assert.Equal(t, "Engineer", got["job_title"])
		assert.Equal(t, "", got["social_links"])
		assert.Len(t, got, 11)
		assert.NotContains(t, got, profile.FilesInput)
		assert.NotContains(t, got, "user_id")
	})

	t.Run("includes file metadata", func(t *testing.T) {
		t.Parallel()

		p := profile.Profile{FullName: "Jane", Files: []profile.FileRef{{Name: "a.png", Size: 10, MIME: "image/png"}}}

		assert.Equal(t, []any{
			map[string]any{"name": "a.png", "size": int64(10), "mime": "image/png"},
		}, p.Inputs()[profile.FilesInput])
	})
}

func TestProfile_Slug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{name: "Jane Doe", want: "jane-doe"},
		{name: "  O'Brien,  Pat  ", want: "o-brien-pat"},
		{name: "Nguyễn Văn A", want: "nguy-n-v-n-a"},
		{name: "", want: "portfolio"},
		{name: "!!!", want: "portfolio"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, profile.Profile{FullName: tt.name}.Slug())
		})
	}
}

func TestProfile_Prompt(t *testing.T) {
	t.Parallel()

	p := profile.Profile{FullName: "Jane", Skills: "Go,  ,Rust", Location: "  "}

	got := p.Prompt()

	assert.Contains(t, got, "- Full name: Jane\n")
	assert.Contains(t, got, "- Skills: Go, Rust\n")
	assert.NotContains(t, got, "Location")
	assert.Contains(t, profile.SystemPrompt, "html")
}

func TestExampleProfiles(t *testing.T) {
	t.Parallel()

	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "profiles", "*"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		p, err := profile.FromFile(path)
		require.NoError(t, err, path)
		assert.NoError(t, p.Validate(), path)
		assert.NotEmpty(t, p.Inputs()["full_name"], path)
	}
}
