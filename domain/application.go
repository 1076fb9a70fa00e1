package domain

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Language is the applicant's selected track; the set is closed.
type Language string

const (
	LanguageJava            Language = "Java"
	LanguagePython          Language = "Python"
	LanguageMERN            Language = "MERN"
	LanguageSoftwareTesting Language = "Software Testing"
)

// Languages lists the accepted choices in display order.
var Languages = []Language{LanguageJava, LanguagePython, LanguageMERN, LanguageSoftwareTesting}

// ParseLanguage matches s case-insensitively against the closed set.
func ParseLanguage(s string) (Language, bool) {
	s = strings.TrimSpace(s)
	for _, l := range Languages {
		if strings.EqualFold(s, string(l)) {
			return l, true
		}
	}
	return "", false
}

// Application is an append-only submission against a Job.
type Application struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	JobID             string    `gorm:"size:36;index;not null" json:"jobId"`
	SubmittedByID     string    `gorm:"size:36;index" json:"submittedBy,omitempty"`
	Name              string    `gorm:"size:255;not null" json:"name"`
	Email             string    `gorm:"size:320;not null" json:"email"`
	Location          string    `gorm:"size:255;not null" json:"location"`
	CollegeName       string    `gorm:"size:255;not null" json:"collegeName"`
	TenthPercentage   float64   `gorm:"not null" json:"tenthPercentage"`
	DegreePercentage  float64   `gorm:"not null" json:"degreePercentage"`
	SelectedLanguage  Language  `gorm:"size:32;not null" json:"selectedLanguage"`
	Communication     int       `gorm:"not null" json:"communication"`
	ResumeFilename    string    `gorm:"size:255;not null" json:"resumeFilename"`
	ResumeContentType string    `gorm:"size:128;not null" json:"resumeContentType"`
	ResumeSize        int64     `gorm:"not null" json:"resumeSize"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ApplicationDocument holds the uploaded resume bytes for one Application.
type ApplicationDocument struct {
	ApplicationID string `gorm:"primaryKey;size:36"`
	Data          []byte `gorm:"not null"`
	CreatedAt     time.Time
}

// ApplicationForm is the raw applicant input, as it arrives in a multipart form.
type ApplicationForm struct {
	Name             string
	Email            string
	Location         string
	CollegeName      string
	TenthPercentage  string
	DegreePercentage string
	SelectedLanguage string
	Communication    string
}

// Document is an uploaded file. Size limits belong to the upload transport.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// acceptedDocuments maps each accepted extension to the sniffed media types
// that may back it. A bare zip or OLE container is accepted when the sniffer
// cannot name the format inside; a named non-Word format such as a
// spreadsheet is not.
var acceptedDocuments = map[string][]string{
	".pdf":  {"application/pdf"},
	".doc":  {"application/msword", "application/x-ole-storage"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "application/zip"},
}

// Validate checks the document is present and of an accepted type, and returns
// the sniffed media type.
func (d Document) Validate() (string, error) {
	if len(d.Data) == 0 || strings.TrimSpace(d.Filename) == "" {
		return "", FieldError(KindUnsupportedDocument, "resume", "a resume document is required")
	}
	allowed, ok := acceptedDocuments[strings.ToLower(filepath.Ext(d.Filename))]
	if !ok {
		return "", FieldError(KindUnsupportedDocument, "resume", "resume must be a .pdf, .doc or .docx file")
	}
	detected := mimetype.Detect(d.Data)
	for _, media := range allowed {
		if detected.Is(media) {
			return detected.String(), nil
		}
	}
	return "", FieldError(KindUnsupportedDocument, "resume", "resume content is not a supported document (%s)", detected.String())
}

// ValidateApplication applies the intake rules after the job has been resolved:
// required text, percentages, communication score, language, then document.
// The first failing rule is reported.
func ValidateApplication(form ApplicationForm, doc Document) (Application, error) {
	text := []struct {
		field string
		value string
	}{
		{"name", form.Name},
		{"email", form.Email},
		{"location", form.Location},
		{"collegeName", form.CollegeName},
	}
	for _, t := range text {
		if strings.TrimSpace(t.value) == "" {
			return Application{}, FieldError(KindValidationFailed, t.field, "%s is required", t.field)
		}
	}

	tenth, err := parsePercentage("tenthPercentage", form.TenthPercentage)
	if err != nil {
		return Application{}, err
	}
	degree, err := parsePercentage("degreePercentage", form.DegreePercentage)
	if err != nil {
		return Application{}, err
	}

	communication, err := parseCommunication(form.Communication)
	if err != nil {
		return Application{}, err
	}

	lang, ok := ParseLanguage(form.SelectedLanguage)
	if !ok {
		return Application{}, FieldError(KindInvalidChoice, "selectedLanguage", "selectedLanguage must be one of Java, Python, MERN, Software Testing")
	}

	mediaType, err := doc.Validate()
	if err != nil {
		return Application{}, err
	}

	return Application{
		Name:              strings.TrimSpace(form.Name),
		Email:             strings.TrimSpace(form.Email),
		Location:          strings.TrimSpace(form.Location),
		CollegeName:       strings.TrimSpace(form.CollegeName),
		TenthPercentage:   tenth,
		DegreePercentage:  degree,
		SelectedLanguage:  lang,
		Communication:     communication,
		ResumeFilename:    filepath.Base(doc.Filename),
		ResumeContentType: mediaType,
		ResumeSize:        int64(len(doc.Data)),
	}, nil
}

func parsePercentage(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, FieldError(KindValidationFailed, field, "%s must be a number", field)
	}
	if v < 0 || v > 100 {
		return 0, FieldError(KindOutOfRange, field, "%s must be between 0 and 100", field)
	}
	return v, nil
}

func parseCommunication(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, FieldError(KindValidationFailed, "communication", "communication must be a whole number")
	}
	if v < 1 || v > 10 {
		return 0, FieldError(KindOutOfRange, "communication", "communication must be between 1 and 10")
	}
	return v, nil
}
