package extractor_test

import (
	"testing"

	"github.com/jmylchreest/folio/pkg/extractor"
	"github.com/jmylchreest/folio/pkg/normalizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_FencedRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate string
		want      string
	}{
		{
			name:      "html tagged block inside prose",
			candidate: "Here is your portfolio:\n\n```html\n<!DOCTYPE html>\n<html><body>Hi</body></html>\n```\n\nLet me know if you want changes.",
			want:      "<!DOCTYPE html>\n<html><body>Hi</body></html>",
		},
		{
			name:      "four backtick fence keeps embedded triple",
			candidate: "````html\n<html>\n<pre>```js\nconsole.log(1)\n```</pre>\n</html>\n````\ntrailing",
			want:      "<html>\n<pre>```js\nconsole.log(1)\n```</pre>\n</html>",
		},
		{
			name:      "tag is case-insensitive",
			candidate: "```HTML\n<p>upper</p>\n```",
			want:      "<p>upper</p>",
		},
		{
			name:      "blank before tag",
			candidate: "``` html\n<p>spaced</p>\n```",
			want:      "<p>spaced</p>",
		},
		{
			name:      "inline fence without newlines",
			candidate: "Sure, ```html<p>hi</p>```",
			want:      "<p>hi</p>",
		},
		{
			name:      "longer closing run closes the block",
			candidate: "```html\n<p>x</p>\n`````",
			want:      "<p>x</p>",
		},
		{
			name:      "other languages are skipped",
			candidate: "```css\nbody{}\n```\n```html\n<p>page</p>\n```",
			want:      "<p>page</p>",
		},
		{
			name:      "untagged block containing a document",
			candidate: "Result:\n```\n<!doctype html>\n<html></html>\n```",
			want:      "<!doctype html>\n<html></html>",
		},
		{
			name:      "html tag wins over earlier untagged document",
			candidate: "```\n<html>draft</html>\n```\n\n```html\n<html>final</html>\n```",
			want:      "<html>final</html>",
		},
		{
			name:      "fenced block wins over earlier raw markup",
			candidate: "<html> was my first try\n```html\n<p>final</p>\n```",
			want:      "<p>final</p>",
		},
		{
			name:      "inline code spans are not fences",
			candidate: "Use `x` and ``y`` then\n```html\n<p>z</p>\n```",
			want:      "<p>z</p>",
		},
		{
			name:      "stray fence in prose does not hide the html block",
			candidate: "Wrap in ``` fences:\n```html\n<p>x</p>\n```",
			want:      "<p>x</p>",
		},
		{
			name:      "empty html block falls through to the next one",
			candidate: "```html\n   \n```\n```html\n<p>second</p>\n```",
			want:      "<p>second</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := extractor.Extract([]string{tt.candidate})

			require.True(t, got.Found)
			assert.Equal(t, tt.want, got.HTML)
			assert.Equal(t, extractor.RuleFenced, got.Rule)
			assert.Equal(t, 0, got.Candidate)
		})
	}
}

func TestExtract_RawTagRule(t *testing.T) {
	t.Parallel()

	t.Run("doctype substring through end of candidate", func(t *testing.T) {
		t.Parallel()

		got := extractor.Extract([]string{"Here you go:\n<!DOCTYPE html>\n<html></html>\nEnjoy!\n"})

		require.True(t, got.Found)
		assert.Equal(t, "<!DOCTYPE html>\n<html></html>\nEnjoy!", got.HTML)
		assert.Equal(t, extractor.RuleRawTag, got.Rule)
	})

	t.Run("earliest marker wins", func(t *testing.T) {
		t.Parallel()

		got := extractor.Extract([]string{"x <HTML lang=\"en\"><!doctype html>"})

		require.True(t, got.Found)
		assert.Equal(t, "<HTML lang=\"en\"><!doctype html>", got.HTML)
	})

	t.Run("unclosed fence falls back to raw markup", func(t *testing.T) {
		t.Parallel()

		got := extractor.Extract([]string{"```html\n<!DOCTYPE html><html></html>"})

		require.True(t, got.Found)
		assert.Equal(t, "<!DOCTYPE html><html></html>", got.HTML)
		assert.Equal(t, extractor.RuleRawTag, got.Rule)
	})

	t.Run("block tagged with another language is not matched on content", func(t *testing.T) {
		t.Parallel()

		got := extractor.Extract([]string{"```xml\n<html>x</html>\n```"})

		require.True(t, got.Found)
		assert.Equal(t, "<html>x</html>\n```", got.HTML)
		assert.Equal(t, extractor.RuleRawTag, got.Rule)
	})

	t.Run("untagged block without document falls back to raw markup", func(t *testing.T) {
		t.Parallel()

		got := extractor.Extract([]string{"```\nnot markup\n```\n<html>z</html>"})

		require.True(t, got.Found)
		assert.Equal(t, "<html>z</html>", got.HTML)
		assert.Equal(t, extractor.RuleRawTag, got.Rule)
	})
}

func TestExtract_Candidates(t *testing.T) {
	t.Parallel()

	t.Run("first matching candidate wins", func(t *testing.T) {
		t.Parallel()

		got := extractor.Extract([]string{"no markup here", "<html>second</html>", "<html>third</html>"})

		require.True(t, got.Found)
		assert.Equal(t, "<html>second</html>", got.HTML)
		assert.Equal(t, 1, got.Candidate)
	})

	t.Run("no candidates is not found", func(t *testing.T) {
		t.Parallel()

		got := extractor.Extract(nil)

		assert.False(t, got.Found)
		assert.Equal(t, -1, got.Candidate)
		assert.ErrorIs(t, got.Err(), extractor.ErrNoHTML)
	})

	t.Run("prose only is not found", func(t *testing.T) {
		t.Parallel()

		got := extractor.Extract([]string{"I could not build that page.", "```python\nprint(1)\n```"})

		assert.Equal(t, extractor.NotFound(), got)
	})
}

func TestExtract_ResponseShapes(t *testing.T) {
	t.Parallel()

	t.Run("blocking output path returns exact trimmed document", func(t *testing.T) {
		t.Parallel()

		response := map[string]any{
			"data": map[string]any{
				"outputs": map[string]any{"output": "\n  <html><body>me</body></html>  \n"},
			},
		}

		got := extractor.Extract(normalizer.Normalize(response))

		require.True(t, got.Found)
		assert.Equal(t, "<html><body>me</body></html>", got.HTML)
		assert.NoError(t, got.Err())
	})

	t.Run("streamed fragments are concatenated before extraction", func(t *testing.T) {
		t.Parallel()

		fragments := []any{
			map[string]any{"text": "Sure, "},
			map[string]any{"text": "```html"},
			map[string]any{"text": "<p>hi</p>"},
			map[string]any{"text": "```"},
		}

		got := extractor.Extract(normalizer.Normalize(fragments))

		require.True(t, got.Found)
		assert.Equal(t, "<p>hi</p>", got.HTML)
	})

	t.Run("empty shapes are not found", func(t *testing.T) {
		t.Parallel()

		assert.False(t, extractor.Extract(normalizer.Normalize(map[string]any{})).Found)
		assert.False(t, extractor.Extract(normalizer.Normalize([]any{})).Found)
	})

	t.Run("repeated extraction is identical", func(t *testing.T) {
		t.Parallel()

		response := map[string]any{
			"answer": "intro\n```html\n<html>a</html>\n```",
			"text":   "<html>b</html>",
		}

		first := extractor.Extract(normalizer.Normalize(response))
		second := extractor.Extract(normalizer.Normalize(response))

		assert.Equal(t, first, second)
	})
}

func TestRule_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fenced", extractor.RuleFenced.String())
	assert.Equal(t, "raw_tag", extractor.RuleRawTag.String())
	assert.Equal(t, "none", extractor.RuleNone.String())
}

func TestTrimTrailing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "drops closing remarks", in: "<html></html>\nHope this helps!", want: "<html></html>"},
		{name: "uses last closing tag", in: "<html><!-- </html> --></HTML >tail", want: "<html><!-- </html> --></HTML >"},
		{name: "no closing tag", in: "<p>fragment</p> tail", want: "<p>fragment</p> tail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, extractor.TrimTrailing(tt.in))
		})
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html lang="vi">
<head><title> Jane Doe | Portfolio </title><script>var x;</script></head>
<body>
<h1>Jane</h1>
<section><h2>About</h2></section>
<section><h2>Skills</h2><img src="a.png"></section>
<a href="https://github.com">GitHub</a><a>no href</a>
</body>
</html>`

	got, err := extractor.Inspect(html)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe | Portfolio", got.Title)
	assert.Equal(t, "vi", got.Lang)
	assert.Equal(t, 3, got.Headings)
	assert.Equal(t, 2, got.Sections)
	assert.Equal(t, 1, got.Links)
	assert.Equal(t, 1, got.Images)
	assert.Equal(t, 1, got.Scripts)
	assert.Equal(t, len(html), got.Bytes)
}
