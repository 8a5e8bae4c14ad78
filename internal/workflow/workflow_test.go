package workflow

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-ats/internal/analysis"
	"github.com/jonathan/resume-ats/internal/archive"
	"github.com/jonathan/resume-ats/internal/db"
	"github.com/jonathan/resume-ats/internal/ingestion"
	"github.com/jonathan/resume-ats/internal/llm/llmtest"
	"github.com/jonathan/resume-ats/internal/pipeline"
	"github.com/jonathan/resume-ats/internal/types"
)

const (
	classifyMarker   = "document classifier"
	structureMarker  = "resume information extractor"
	validateMarker   = "resume data validator"
	analyzeMarker    = "ATS (Applicant Tracking System) compatibility expert"
	scoreMarker      = "calculate a final ATS score"
	summaryMarker    = "specializes in professional summaries"
	experienceMarker = "specializes in achievement-focused experience"
	skillsMarker     = "specializes in skills sections"
	educationMarker  = "specializes in education sections"
)

const resumeText = `Jane Smith
jane.smith@example.com | +1 555 0100
Senior Engineer, Acme Corp, 2021-Present
- Built the billing platform
BSc Computer Science, State University, 2016`

const structureReply = "```json\n" + `{
  "name": "Jane Smith",
  "email": "jane.smith@example.com",
  "phone": "+1 555 0100",
  "education": [{"degree": "BSc Computer Science", "institution": "State University", "year": "2016"}],
  "skills": ["Go", "PostgreSQL"],
  "experience": [{"title": "Senior Engineer", "company": "Acme Corp", "duration": "2021-Present", "responsibilities": ["Built the billing platform"]}]
}` + "\n```"

const analysisReply = `{
  "ats_score": 70,
  "keyword_analysis": {"technical_keywords": ["Go"], "soft_skills": [], "missing_important_keywords": ["Kubernetes"]},
  "formatting_issues": [],
  "missing_sections": ["Professional Summary"],
  "suggestions": ["Add a professional summary"]
}`

func fullScript() *llmtest.Scripted {
	return llmtest.New().
		On(classifyMarker, "YES").
		On(structureMarker, structureReply).
		On(validateMarker, "VALID - looks complete.").
		On(analyzeMarker, analysisReply).
		On(scoreMarker, "72").
		On(summaryMarker, "Senior engineer who builds billing platforms.").
		On(experienceMarker, `[{"title": "Senior Engineer", "company": "Acme Corp", "duration": "2021-Present", "responsibilities": ["Built the billing platform on Kubernetes"]}]`).
		On(skillsMarker, `{"technical_skills": ["Go", "PostgreSQL"], "soft_skills": ["Mentoring"], "tools_technologies": ["Kubernetes"]}`).
		On(educationMarker, `[{"degree": "BSc Computer Science", "institution": "State University", "year": "2016"}]`)
}

func textDocument() *ingestion.Document {
	return &ingestion.Document{
		Filename: "jane.txt",
		Format:   ingestion.FormatText,
		Data:     []byte(resumeText),
		Text:     resumeText,
	}
}

// The production adapters satisfy the workflow interfaces
var (
	_ Store    = (*db.DB)(nil)
	_ Archiver = (*archive.Store)(nil)
)

type fakeStore struct {
	id     uuid.UUID
	err    error
	stored []db.StoreParams
}

func (f *fakeStore) Store(_ context.Context, p db.StoreParams) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.stored = append(f.stored, p)
	return f.id, nil
}

type fakeArchive struct {
	ids          []uuid.UUID
	contentTypes []string
}

func (f *fakeArchive) Put(_ context.Context, id uuid.UUID, filename, contentType string, _ []byte) (string, error) {
	f.ids = append(f.ids, id)
	f.contentTypes = append(f.contentTypes, contentType)
	return "uploads/" + id.String() + "/" + filename, nil
}

func TestProcess_AnalyzeOnly(t *testing.T) {
	client := fullScript()

	res, err := Process(context.Background(), client, textDocument(), Options{})
	require.NoError(t, err)

	require.NotNil(t, res.Extraction)
	assert.Equal(t, "Jane Smith", res.Extraction.Record.Name)
	assert.Equal(t, types.ValidationValid, res.Extraction.Validation.Status)
	require.NotNil(t, res.Report)
	assert.Equal(t, 72, res.Report.ATSScore)
	assert.Equal(t, analysis.CategoryGood, res.Report.ScoreCategory)
	assert.Nil(t, res.Enhanced)
	assert.Empty(t, res.PDFPath)
	assert.Equal(t, uuid.Nil, res.ResumeID)

	assert.Equal(t, 0, client.CallCount(summaryMarker))
	assert.Equal(t, 1, client.CallCount(classifyMarker))
}

func TestProcess_EnhanceAndRender(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		t.Run(map[bool]string{false: "sequential", true: "concurrent"}[concurrent], func(t *testing.T) {
			dir := t.TempDir()
			at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

			res, err := Process(context.Background(), fullScript(), textDocument(), Options{
				Enhance:               true,
				ConcurrentEnhancement: concurrent,
				RenderPDF:             true,
				OutputDir:             dir,
				Now:                   func() time.Time { return at },
			})
			require.NoError(t, err)

			require.NotNil(t, res.Enhanced)
			assert.Equal(t, "jane.smith@example.com", res.Enhanced.Email)
			assert.Equal(t, []string{"Kubernetes"}, res.Enhanced.Skills.ToolsTechnologies)
			assert.Equal(t, 72, res.Enhanced.EnhancementMetadata.OriginalATSScore)

			assert.Equal(t, filepath.Join(dir, "Jane_Smith_Enhanced_20240301_093000.pdf"), res.PDFPath)
			data, err := os.ReadFile(res.PDFPath)
			require.NoError(t, err)
			assert.True(t, len(data) > 4 && string(data[:4]) == "%PDF")
		})
	}
}

func TestProcess_ExplicitOutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "resume.pdf")

	res, err := Process(context.Background(), fullScript(), textDocument(), Options{
		Enhance:    true,
		RenderPDF:  true,
		OutputPath: path,
	})
	require.NoError(t, err)
	assert.Equal(t, path, res.PDFPath)
	assert.FileExists(t, path)
}

func TestProcess_NotResume(t *testing.T) {
	client := llmtest.New().On(classifyMarker, "NO")

	res, err := Process(context.Background(), client, textDocument(), Options{})
	require.ErrorIs(t, err, ErrNotResume)
	require.NotNil(t, res)
	assert.Nil(t, res.Extraction)
	assert.Equal(t, 0, client.CallCount(structureMarker))
}

func TestProcess_SkipClassification(t *testing.T) {
	client := fullScript()

	_, err := Process(context.Background(), client, textDocument(), Options{SkipClassification: true})
	require.NoError(t, err)
	assert.Equal(t, 0, client.CallCount(classifyMarker))
}

func TestProcess_OracleUnavailable(t *testing.T) {
	client := llmtest.New().
		On(classifyMarker, "YES").
		On(structureMarker, structureReply).
		On(validateMarker, "VALID").
		Fail(analyzeMarker, errors.New("quota exceeded"))
	store := &fakeStore{id: uuid.New()}

	res, err := Process(context.Background(), client, textDocument(), Options{Store: store})
	require.ErrorIs(t, err, pipeline.ErrOracleUnavailable)

	var oracleErr *pipeline.OracleUnavailableError
	require.ErrorAs(t, err, &oracleErr)
	assert.Equal(t, analysis.StageAnalyze, oracleErr.Stage)

	require.NotNil(t, res.Extraction)
	assert.Nil(t, res.Report)
	assert.Empty(t, store.stored)
}

func TestProcess_StoreAndArchive(t *testing.T) {
	id := uuid.New()
	store := &fakeStore{id: id}
	arch := &fakeArchive{}

	res, err := Process(context.Background(), fullScript(), textDocument(), Options{
		Enhance: true,
		Store:   store,
		Archive: arch,
	})
	require.NoError(t, err)

	require.Len(t, store.stored, 1)
	stored := store.stored[0]
	assert.Equal(t, "jane.txt", stored.Filename)
	assert.Equal(t, []byte(resumeText), stored.FileData)
	assert.Equal(t, 72, stored.Report.ATSScore)
	require.NotNil(t, stored.Enhanced)

	assert.Equal(t, id, res.ResumeID)
	assert.Equal(t, []uuid.UUID{id}, arch.ids)
	assert.Equal(t, []string{"text/plain; charset=utf-8"}, arch.contentTypes)
	assert.Equal(t, "uploads/"+id.String()+"/jane.txt", res.ArchiveKey)
}

func TestProcess_ArchiveWithoutStoreUsesRunID(t *testing.T) {
	runID := uuid.New()
	arch := &fakeArchive{}

	res, err := Process(context.Background(), fullScript(), textDocument(), Options{
		Pipeline: pipeline.Options{RunOptions: pipeline.RunOptions{RunID: runID.String()}},
		Archive:  arch,
	})
	require.NoError(t, err)
	assert.Equal(t, runID.String(), res.RunID)
	assert.Equal(t, []uuid.UUID{runID}, arch.ids)
}

func TestProcess_StoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}

	res, err := Process(context.Background(), fullScript(), textDocument(), Options{Store: store})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store resume")
	require.NotNil(t, res.Report)
}

func TestProcess_SharedRunID(t *testing.T) {
	rec := &pipeline.Recorder{}

	res, err := Process(context.Background(), fullScript(), textDocument(), Options{
		Pipeline: pipeline.Options{RunOptions: pipeline.RunOptions{Observer: rec.Observe}},
		Enhance:  true,
	})
	require.NoError(t, err)

	events := rec.Events()
	require.NotEmpty(t, events)
	pipelines := map[string]bool{}
	for _, e := range events {
		assert.Equal(t, res.RunID, e.RunID)
		pipelines[e.Pipeline] = true
	}
	assert.Len(t, pipelines, 4)
}

func TestProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jane.txt")
	require.NoError(t, os.WriteFile(path, []byte(resumeText), 0o644))

	res, err := ProcessFile(context.Background(), fullScript(), path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "jane.txt", res.Document.Filename)
	assert.Equal(t, 72, res.Report.ATSScore)
}

func TestProcessFile_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}, 0o644))

	_, err := ProcessFile(context.Background(), fullScript(), path, Options{})
	require.Error(t, err)
}
