// Package summarizer implements the summarization strategies (extractive,
// abstractive and hybrid) and the pipeline that dispatches requests to them.
package summarizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/localrivet/distill/internal/engine"
	"github.com/localrivet/distill/internal/errortypes"
)

// Method selects a summarization strategy.
type Method string

// Summarization methods
const (
	MethodExtractive  Method = "extractive"
	MethodAbstractive Method = "abstractive"
	MethodHybrid      Method = "hybrid"
)

const (
	// DefaultMethod is used when a request names no method.
	DefaultMethod = MethodHybrid

	// DefaultEngine is used when a request names no engine.
	DefaultEngine = engine.Bart

	// DefaultMaxSentences is used when a request sets no sentence target.
	DefaultMaxSentences = 5

	// DefaultMaxLength and DefaultMinLength are word bounds used when a
	// request sets neither.
	DefaultMaxLength = 150
	DefaultMinLength = 50

	// DefaultLanguage is the advisory language of a request.
	DefaultLanguage = "english"

	// DefaultMinTextLength is the shortest accepted document, in characters
	// after trimming.
	DefaultMinTextLength = 50

	// DefaultBatchLimit is the largest accepted batch.
	DefaultBatchLimit = 10

	// DefaultBatchConcurrency bounds how many batch documents run at once.
	DefaultBatchConcurrency = 4
)

// Methods lists every method in catalogue order.
func Methods() []Method {
	return []Method{MethodExtractive, MethodAbstractive, MethodHybrid}
}

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	switch m {
	case MethodExtractive, MethodAbstractive, MethodHybrid:
		return true
	}
	return false
}

// Document is already-extracted plain text.
type Document struct {
	Text string `json:"text"`
}

// Request holds the parameters of one summarization.
type Request struct {
	Text         string `json:"text"`
	Method       Method `json:"method"`
	Engine       string `json:"model"`
	MaxSentences int    `json:"max_sentences"`
	MaxLength    int    `json:"max_length"`
	MinLength    int    `json:"min_length"`
	Language     string `json:"language"`
}

// WithDefaults fills unset fields. A zero MaxSentences is unset. Length
// bounds are defaulted together, only when both are zero.
func (r Request) WithDefaults() Request {
	if r.Method == "" {
		r.Method = DefaultMethod
	}
	if r.Engine == "" {
		r.Engine = DefaultEngine
	}
	if r.MaxSentences == 0 {
		r.MaxSentences = DefaultMaxSentences
	}
	if r.MaxLength == 0 && r.MinLength == 0 {
		r.MaxLength = DefaultMaxLength
		r.MinLength = DefaultMinLength
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	return r
}

// Validate checks the request constraints. It does not look at the text.
func (r Request) Validate() error {
	var problems []string
	if !r.Method.Valid() {
		problems = append(problems, fmt.Sprintf("unsupported method %q", r.Method))
	}
	if !engine.IsKnown(r.Engine) {
		problems = append(problems, fmt.Sprintf("unsupported engine %q", r.Engine))
	}
	if r.MaxSentences < 1 {
		problems = append(problems, fmt.Sprintf("max_sentences must be at least 1, got %d", r.MaxSentences))
	}
	if r.MinLength < 0 {
		problems = append(problems, fmt.Sprintf("min_length must not be negative, got %d", r.MinLength))
	}
	if r.MinLength > r.MaxLength {
		problems = append(problems, fmt.Sprintf("min_length (%d) must not exceed max_length (%d)", r.MinLength, r.MaxLength))
	}

	if len(problems) > 0 {
		return errortypes.ValidationError(errors.New(strings.Join(problems, "; ")), "invalid summarization request").
			WithFields(map[string]interface{}{
				"method": string(r.Method),
				"engine": r.Engine,
			})
	}
	return nil
}

func (r Request) bounds() engine.Bounds {
	return engine.Bounds{
		MaxLength:    r.MaxLength,
		MinLength:    r.MinLength,
		MaxSentences: r.MaxSentences,
	}
}

// ValidateText rejects documents shorter than minLength characters after
// trimming surrounding whitespace.
func ValidateText(text string, minLength int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	if n < minLength {
		return errortypes.ValidationError(
			fmt.Errorf("text has %d characters, at least %d required", n, minLength),
			"text too short",
		).WithField("text_length", n)
	}
	return nil
}

// Result is the uniform output of every strategy and engine.
type Result struct {
	Summary          string  `json:"summary"`
	Method           Method  `json:"method"`
	Engine           string  `json:"model"`
	OriginalLength   int     `json:"original_length"`
	SummaryLength    int     `json:"summary_length"`
	CompressionRatio float64 `json:"compression_ratio"`
	ProcessingTime   float64 `json:"processing_time"`
}

// BatchRequest applies one set of parameters to several documents.
type BatchRequest struct {
	Documents    []Document `json:"texts"`
	Method       Method     `json:"method"`
	Engine       string     `json:"model"`
	MaxSentences int        `json:"max_sentences"`
	MaxLength    int        `json:"max_length"`
	MinLength    int        `json:"min_length"`
	Language     string     `json:"language"`
}

// Request returns the request for document i.
func (b BatchRequest) Request(i int) Request {
	return Request{
		Text:         b.Documents[i].Text,
		Method:       b.Method,
		Engine:       b.Engine,
		MaxSentences: b.MaxSentences,
		MaxLength:    b.MaxLength,
		MinLength:    b.MinLength,
		Language:     b.Language,
	}
}

// BatchResult holds one Result per document, in input order.
type BatchResult struct {
	Results             []Result `json:"results"`
	TotalProcessingTime float64  `json:"total_processing_time"`
}
