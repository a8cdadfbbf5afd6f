// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/harvest/pkg/types"
)

// Step is a stage of an import session.
type Step int

const (
	StepUpload Step = iota
	StepPreview
	StepImporting
	StepResults
)

func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepPreview:
		return "preview"
	case StepImporting:
		return "importing"
	case StepResults:
		return "results"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// Session errors.
var (
	ErrInvalidTransition = errors.New("invalid import step transition")
	ErrNoValidRows       = errors.New("no valid rows to import")
)

// MsgNoValidRows is shown when every row has errors.
const MsgNoValidRows = "No valid data to import after filtering out errors."

// Importer submits validated papers in one batch.
type Importer interface {
	BulkImport(ctx context.Context, papers []types.PaperFormData, progress types.ProgressFunc) (types.BulkImportResult, error)
}

// Outcome classifies a finished import.
type Outcome int

const (
	OutcomeFailure Outcome = iota
	OutcomePartial
	OutcomeSuccess
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomePartial:
		return "partial"
	}
	return "failure"
}

// Result is what a submitted import produced.
type Result struct {
	types.BulkImportResult

	// Submitted is the number of rows sent; Skipped were held back for
	// validation errors.
	Submitted int
	Skipped   int

	// Err is the transport or backend failure, if the request failed.
	Err error
}

// Outcome reports success when every paper was stored, partial when some
// were, and failure otherwise.
func (r Result) Outcome() Outcome {
	switch {
	case r.Err != nil || r.SuccessCount == 0:
		return OutcomeFailure
	case r.ErrorCount > 0:
		return OutcomePartial
	}
	return OutcomeSuccess
}

// Snapshot is a copy of session state for display.
type Snapshot struct {
	Step     Step
	FileName string
	Format   Format
	Rows     []Row
	Headers  []string
	Report   Report

	// Messages are session-level problems: parse failures, file errors,
	// and import failures.
	Messages []string

	// Progress runs from 0 to 1 while importing and is 1 only once the
	// backend has acknowledged.
	Progress float64
	Result   *Result
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(log *zap.Logger) SessionOption {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithProgress forwards upload progress to fn.
func WithProgress(fn types.ProgressFunc) SessionOption {
	return func(s *Session) { s.onProgress = fn }
}

// Session walks one file through upload, preview, importing, and results.
// It is safe for concurrent use, so state can be read while Submit runs.
type Session struct {
	importer   Importer
	log        *zap.Logger
	onProgress types.ProgressFunc

	mu       sync.Mutex
	step     Step
	fileName string
	format   Format
	rows     []Row
	headers  []string
	report   Report
	messages []string
	progress float64
	result   *Result
}

// NewSession returns a session at the upload step.
func NewSession(imp Importer, opts ...SessionOption) *Session {
	s := &Session{importer: imp, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Step returns the current step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Step:     s.step,
		FileName: s.fileName,
		Format:   s.format,
		Rows:     slices.Clone(s.rows),
		Headers:  slices.Clone(s.headers),
		Report:   s.report,
		Messages: slices.Clone(s.messages),
		Progress: s.progress,
	}
	if s.result != nil {
		res := *s.result
		snap.Result = &res
	}
	return snap
}

// Load parses r in the format implied by name and moves to preview.
func (s *Session) Load(name string, r io.Reader) error {
	f, err := DetectFormat(name)
	if err != nil {
		return err
	}
	return s.LoadAs(name, f, r)
}

// LoadAs parses r as format f and moves to preview. A file that cannot be
// parsed leaves the session at upload with the parse error as a message.
// A file with validation errors still moves to preview.
func (s *Session) LoadAs(name string, f Format, r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step != StepUpload {
		return fmt.Errorf("load in %s step: %w", s.step, ErrInvalidTransition)
	}

	rows, headers, err := Parse(f, r)
	if err != nil {
		msg := fmt.Sprintf("Failed to parse %s file: %v", strings.ToUpper(string(f)), err)
		if errors.Is(err, ErrNotArray) {
			msg = ErrNotArray.Error() + "."
		}
		s.messages = []string{msg}
		return fmt.Errorf("parsing %s: %w", name, err)
	}

	s.fileName, s.format = name, f
	s.rows, s.headers = rows, headers
	s.report = Validate(rows, headers)
	s.messages = slices.Clone(s.report.FileErrors)
	s.step = StepPreview
	s.log.Info("import file loaded",
		zap.String("file", name),
		zap.String("format", string(f)),
		zap.Int("rows", len(rows)),
		zap.Int("valid", s.report.ValidCount()))
	return nil
}

// Submit sends every row without errors to the importer in one call and
// moves to results. When no row is valid it returns ErrNoValidRows and
// stays in preview without contacting the backend. A failed request is
// recorded in the result and messages; Submit itself still returns nil.
func (s *Session) Submit(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.step != StepPreview {
		step := s.step
		s.mu.Unlock()
		return Result{}, fmt.Errorf("submit in %s step: %w", step, ErrInvalidTransition)
	}

	var forms []types.PaperFormData
	for i, row := range s.rows {
		if s.report.Valid(i) {
			forms = append(forms, TransformRow(row))
		}
	}
	if len(forms) == 0 {
		s.messages = []string{MsgNoValidRows}
		s.mu.Unlock()
		return Result{}, ErrNoValidRows
	}

	s.step = StepImporting
	s.progress = 0
	s.messages = nil
	skipped := len(s.rows) - len(forms)
	s.mu.Unlock()

	res, err := s.importer.BulkImport(ctx, forms, s.reportProgress)

	s.mu.Lock()
	defer s.mu.Unlock()
	result := Result{BulkImportResult: res, Submitted: len(forms), Skipped: skipped, Err: err}
	if err != nil {
		s.log.Error("bulk import failed", zap.Int("submitted", len(forms)), zap.Error(err))
		s.messages = []string{"Import failed: " + err.Error()}
		s.progress = 0
	} else {
		s.log.Info("bulk import finished",
			zap.Int("submitted", len(forms)),
			zap.Int("success", res.SuccessCount),
			zap.Int("errors", res.ErrorCount))
		s.progress = 1
	}
	s.result = &result
	s.step = StepResults
	return result, nil
}

// reportProgress records upload progress. It stays below 1 until the
// backend answers.
func (s *Session) reportProgress(sent, total int64) {
	if total > 0 {
		s.mu.Lock()
		s.progress = min(float64(sent)/float64(total), 0.99)
		s.mu.Unlock()
	}
	if s.onProgress != nil {
		s.onProgress(sent, total)
	}
}

// Reset returns to upload and discards the file. It is not allowed while
// an import is in flight.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.step == StepImporting {
		return fmt.Errorf("reset in %s step: %w", s.step, ErrInvalidTransition)
	}
	s.step = StepUpload
	s.fileName, s.format = "", ""
	s.rows, s.headers = nil, nil
	s.report = Report{}
	s.messages = nil
	s.progress = 0
	s.result = nil
	return nil
}
