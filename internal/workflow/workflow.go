// Package workflow runs a resume through every step: classification, extraction, analysis,
// optional enhancement and rendering, then persistence.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-ats/internal/analysis"
	"github.com/jonathan/resume-ats/internal/archive"
	"github.com/jonathan/resume-ats/internal/db"
	"github.com/jonathan/resume-ats/internal/enhancement"
	"github.com/jonathan/resume-ats/internal/extraction"
	"github.com/jonathan/resume-ats/internal/ingestion"
	"github.com/jonathan/resume-ats/internal/llm"
	"github.com/jonathan/resume-ats/internal/logger"
	"github.com/jonathan/resume-ats/internal/pipeline"
	"github.com/jonathan/resume-ats/internal/rendering"
	"github.com/jonathan/resume-ats/internal/types"
)

// ErrNotResume is returned when the classifier rejects the document
var ErrNotResume = errors.New("document is not a resume")

// Store persists a processed resume
type Store interface {
	Store(ctx context.Context, p db.StoreParams) (uuid.UUID, error)
}

// Archiver keeps a copy of the uploaded file
type Archiver interface {
	Put(ctx context.Context, id uuid.UUID, filename, contentType string, data []byte) (string, error)
}

// Options holds configuration for one workflow run
type Options struct {
	Pipeline pipeline.Options

	// SkipClassification trusts the caller that the document is a resume
	SkipClassification bool
	// Enhance runs the enhancement pipeline after analysis
	Enhance bool
	// ConcurrentEnhancement runs the four enhancement generators concurrently
	ConcurrentEnhancement bool
	// RenderPDF writes the enhanced resume as a PDF. Requires Enhance.
	RenderPDF bool
	// OutputPath is the PDF destination. When empty the default file name is used inside OutputDir.
	OutputPath string
	OutputDir  string

	// Now stamps the PDF; time.Now when nil
	Now func() time.Time

	// Store and Archive are optional
	Store   Store
	Archive Archiver

	Logger *zap.Logger
}

// Result collects everything a run produced. Fields stay nil for steps that did not run.
type Result struct {
	RunID      string
	Document   *ingestion.Document
	Extraction *types.Extraction
	Report     *types.ATSReport
	Enhanced   *types.EnhancedResume
	PDFPath    string
	ResumeID   uuid.UUID
	ArchiveKey string
}

// ProcessFile ingests path and processes it
func ProcessFile(ctx context.Context, client llm.Client, path string, opts Options) (*Result, error) {
	doc, err := ingestion.Ingest(path)
	if err != nil {
		return nil, err
	}
	return Process(ctx, client, doc, opts)
}

// Process runs every configured step over an ingested document.
// On error the partially filled result is returned alongside it.
func Process(ctx context.Context, client llm.Client, doc *ingestion.Document, opts Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("no document to process")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	popts := opts.Pipeline
	if popts.RunID == "" {
		popts.RunID = uuid.NewString()
	}
	res := &Result{RunID: popts.RunID, Document: doc}
	log := logger.WithFields(opts.Logger, zap.String("run_id", res.RunID), zap.String(logger.FieldFile, doc.Filename))
	if m := doc.Metadata; m != nil {
		log.Info("document ingested",
			zap.String("format", m.Format),
			zap.Int("size", m.Size),
			zap.Int("characters", m.Characters),
			zap.String("sha256", m.SHA256),
		)
	}

	// Step 1: classify
	if !opts.SkipClassification {
		log.Info("classifying document")
		ok, err := extraction.Classify(ctx, client, doc.Text, popts)
		if err != nil {
			return res, fmt.Errorf("classification failed: %w", err)
		}
		if !ok {
			log.Warn("document rejected by classifier")
			return res, ErrNotResume
		}
	}

	// Step 2: extract
	log.Info("extracting resume data")
	extracted, err := extraction.Run(ctx, client, doc.Text, popts)
	if err != nil {
		return res, fmt.Errorf("extraction failed: %w", err)
	}
	res.Extraction = extracted

	// Step 3: analyze
	log.Info("analyzing ATS compatibility")
	report, err := analysis.Run(ctx, client, extracted.Record, popts)
	if err != nil {
		return res, fmt.Errorf("analysis failed: %w", err)
	}
	res.Report = report
	log.Info("analysis complete", zap.Int("ats_score", report.ATSScore), zap.String("category", report.ScoreCategory))

	// Step 4: enhance
	if opts.Enhance {
		log.Info("enhancing resume", zap.Bool("concurrent", opts.ConcurrentEnhancement))
		eopts := popts
		eopts.Concurrent = opts.ConcurrentEnhancement
		enhanced, err := enhancement.Run(ctx, client, extracted.Record, *report, eopts)
		if err != nil {
			return res, fmt.Errorf("enhancement failed: %w", err)
		}
		res.Enhanced = enhanced

		// Step 5: render
		if opts.RenderPDF {
			path, err := writePDF(enhanced, opts, now())
			if err != nil {
				return res, err
			}
			res.PDFPath = path
			log.Info("PDF written", zap.String("path", path))
		}
	}

	// Step 6: persist
	if opts.Store != nil {
		id, err := opts.Store.Store(ctx, db.StoreParams{
			Filename:   doc.Filename,
			FileData:   doc.Data,
			Extracted:  extracted.Record,
			Validation: extracted.Validation,
			Report:     *report,
			Enhanced:   res.Enhanced,
		})
		if err != nil {
			return res, fmt.Errorf("failed to store resume: %w", err)
		}
		res.ResumeID = id
		log = log.With(zap.String(logger.FieldResumeID, id.String()))
		log.Info("resume stored")
	}

	// Step 7: archive
	if opts.Archive != nil {
		id := res.ResumeID
		if id == uuid.Nil {
			id, _ = uuid.Parse(res.RunID)
			if id == uuid.Nil {
				id = uuid.New()
			}
		}
		key, err := opts.Archive.Put(ctx, id, doc.Filename, archive.ContentType(doc.Filename), doc.Data)
		if err != nil {
			return res, fmt.Errorf("failed to archive upload: %w", err)
		}
		res.ArchiveKey = key
		log.Info("upload archived", zap.String("key", key))
	}

	return res, nil
}

func writePDF(enhanced *types.EnhancedResume, opts Options, at time.Time) (string, error) {
	data, err := rendering.RenderPDF(enhanced, rendering.PDFOptions{GeneratedAt: at, Compress: true})
	if err != nil {
		return "", err
	}

	path := opts.OutputPath
	if path == "" {
		path = filepath.Join(opts.OutputDir, rendering.DefaultFilename(enhanced.Name, at))
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}
	return path, nil
}
