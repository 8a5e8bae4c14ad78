package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	prompt, err := Get(AnalysisFile, "analyze-ats")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "ATS")
}

func TestGet_InvalidFile(t *testing.T) {
	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	_, err := Get(AnalysisFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGet_Cached(t *testing.T) {
	first, err := Get(AnalysisFile, "analyze-ats")
	require.NoError(t, err)
	second, err := Get(AnalysisFile, "calculate-score")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	assert.Len(t, cache[AnalysisFile], 2)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		want     string
		wantKeys []string
	}{
		{
			name:     "all resolved",
			template: "Score {{.Analysis}} for {{.Name}}",
			data:     map[string]string{"Analysis": "{}", "Name": "Jane"},
			want:     "Score {} for Jane",
		},
		{
			name:     "repeated placeholder",
			template: "{{.A}} and {{.A}}",
			data:     map[string]string{"A": "x"},
			want:     "x and x",
		},
		{
			name:     "missing keys reported sorted",
			template: "{{.Zeta}} {{.Alpha}} {{.Zeta}}",
			data:     map[string]string{},
			wantKeys: []string{"Alpha", "Zeta"},
		},
		{
			name:     "placeholder text inside value is not expanded",
			template: "Resume:\n{{.ResumeText}}",
			data:     map[string]string{"ResumeText": "Skills: {{.Secret}}"},
			want:     "Resume:\nSkills: {{.Secret}}",
		},
		{
			name:     "empty value is resolved",
			template: "Keywords: {{.MissingKeywords}}",
			data:     map[string]string{"MissingKeywords": ""},
			want:     "Keywords: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.template, tt.data)
			if tt.wantKeys != nil {
				var unresolved *UnresolvedPlaceholderError
				require.ErrorAs(t, err, &unresolved)
				assert.Equal(t, tt.wantKeys, unresolved.Keys)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderFile_AllPrompts(t *testing.T) {
	tests := []struct {
		file string
		key  string
		data map[string]string
	}{
		{ExtractionFile, "classify-resume", map[string]string{"Text": "t"}},
		{ExtractionFile, "structure-resume", map[string]string{"ResumeText": "t"}},
		{ExtractionFile, "validate-resume", map[string]string{"Record": "{}"}},
		{AnalysisFile, "analyze-ats", map[string]string{"Record": "{}"}},
		{AnalysisFile, "calculate-score", map[string]string{"Analysis": "{}"}},
		{EnhancementFile, "enhance-summary", map[string]string{"Record": "{}", "Feedback": "[]"}},
		{EnhancementFile, "enhance-experience", map[string]string{"Experience": "[]", "MissingKeywords": ""}},
		{EnhancementFile, "enhance-skills", map[string]string{"Skills": "[]", "MissingKeywords": ""}},
		{EnhancementFile, "enhance-education", map[string]string{"Education": "[]"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			rendered, err := RenderFile(tt.file, tt.key, tt.data)
			require.NoError(t, err)
			assert.NotContains(t, rendered, "{{.")
		})
	}
}

func TestRenderFile_MissingData(t *testing.T) {
	_, err := RenderFile(ExtractionFile, "structure-resume", map[string]string{})
	var unresolved *UnresolvedPlaceholderError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, []string{"ResumeText"}, unresolved.Keys)
	assert.Contains(t, err.Error(), "structure-resume")
}

func TestJSON(t *testing.T) {
	got, err := JSON(map[string][]string{"skills": {"Go"}})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"skills\": [\n    \"Go\"\n  ]\n}", got)

	_, err = JSON(make(chan int))
	assert.Error(t, err)
}
