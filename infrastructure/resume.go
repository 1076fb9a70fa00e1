package infrastructure

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/nguyenthenguyen/docx"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
	"go.uber.org/zap"

	"jobselect/config"
)

// maxExtractChars bounds the stored text of one resume.
const maxExtractChars = 20000

var (
	xmlTag     = regexp.MustCompile(`<[^>]+>`)
	paragraph  = regexp.MustCompile(`</w:p>`)
	whitespace = regexp.MustCompile(`[ \t]+`)
)

// ResumeExtractor pulls plain text out of an uploaded resume.
type ResumeExtractor struct {
	logger *zap.Logger
}

// NewResumeExtractor installs the unidoc metered key when one is configured.
func NewResumeExtractor(cfg *config.Config, logger *zap.Logger) (*ResumeExtractor, error) {
	if cfg.UnidocLicenseKey != "" {
		if err := license.SetMeteredKey(cfg.UnidocLicenseKey); err != nil {
			return nil, fmt.Errorf("set unidoc license: %w", err)
		}
	}
	return &ResumeExtractor{logger: logger}, nil
}

// ExtractText dispatches on the file extension; the content type has already
// been sniffed at intake.
func (e *ResumeExtractor) ExtractText(filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = e.extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	default:
		text = printable(data)
	}
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text could be extracted from %s", filename)
	}
	return truncateRunes(text, maxExtractChars), nil
}

func (e *ResumeExtractor) extractPDF(data []byte) (string, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", fmt.Errorf("get page count: %w", err)
	}
	if numPages == 0 {
		return "", fmt.Errorf("pdf has no pages")
	}

	var b strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			e.logger.Debug("skipping pdf page", zap.Int("page", i), zap.Error(err))
			continue
		}
		ex, err := extractor.New(page)
		if err != nil {
			e.logger.Debug("skipping pdf page", zap.Int("page", i), zap.Error(err))
			continue
		}
		pageText, err := ex.ExtractText()
		if err != nil {
			e.logger.Debug("skipping pdf page", zap.Int("page", i), zap.Error(err))
			continue
		}
		if pageText != "" {
			b.WriteString(pageText)
			b.WriteString("\n\n")
		}
	}
	return b.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer r.Close()

	content := r.Editable().GetContent()
	content = paragraph.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")
	return whitespace.ReplaceAllString(content, " "), nil
}

// printable keeps runs of printable text from a binary document such as a
// legacy .doc file.
func printable(data []byte) string {
	var b strings.Builder
	var run []rune
	flush := func() {
		if len(run) >= 4 {
			b.WriteString(string(run))
			b.WriteByte(' ')
		}
		run = run[:0]
	}
	for _, r := range string(data) {
		if r != unicode.ReplacementChar && (unicode.IsPrint(r) || r == '\n') {
			run = append(run, r)
			continue
		}
		flush()
	}
	flush()
	return whitespace.ReplaceAllString(b.String(), " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
