package domain

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func validForm() ApplicationForm {
	return ApplicationForm{
		Name:             "Ada",
		Email:            "ada@example.com",
		Location:         "Chennai",
		CollegeName:      "Anna University",
		TenthPercentage:  "88.5",
		DegreePercentage: "76",
		SelectedLanguage: "Java",
		Communication:    "7",
	}
}

func pdfDoc() Document {
	return Document{Filename: "resume.pdf", Data: testPDF}
}

func TestValidateApplicationAccepts(t *testing.T) {
	app, err := ValidateApplication(validForm(), pdfDoc())
	require.NoError(t, err)

	assert.Equal(t, "Ada", app.Name)
	assert.Equal(t, 88.5, app.TenthPercentage)
	assert.Equal(t, 76.0, app.DegreePercentage)
	assert.Equal(t, 7, app.Communication)
	assert.Equal(t, LanguageJava, app.SelectedLanguage)
	assert.Equal(t, "application/pdf", app.ResumeContentType)
	assert.Equal(t, int64(len(testPDF)), app.ResumeSize)
}

func TestValidateApplicationPercentageBounds(t *testing.T) {
	tests := []struct {
		value string
		kind  Kind
	}{
		{"0", ""},
		{"100", ""},
		{"99.99", ""},
		{"-1", KindOutOfRange},
		{"101", KindOutOfRange},
		{"100.01", KindOutOfRange},
		{"ninety", KindValidationFailed},
		{"", KindValidationFailed},
		{"NaN", KindValidationFailed},
	}
	for _, tt := range tests {
		for _, field := range []string{"tenthPercentage", "degreePercentage"} {
			t.Run(field+"="+tt.value, func(t *testing.T) {
				form := validForm()
				if field == "tenthPercentage" {
					form.TenthPercentage = tt.value
				} else {
					form.DegreePercentage = tt.value
				}
				_, err := ValidateApplication(form, pdfDoc())
				if tt.kind == "" {
					assert.NoError(t, err)
					return
				}
				require.Error(t, err)
				assert.Equal(t, tt.kind, KindOf(err))
				assert.Equal(t, field, AsError(err).Field)
			})
		}
	}
}

func TestValidateApplicationCommunicationBounds(t *testing.T) {
	tests := []struct {
		value string
		kind  Kind
	}{
		{"1", ""},
		{"10", ""},
		{"0", KindOutOfRange},
		{"11", KindOutOfRange},
		{"5.5", KindValidationFailed},
		{"good", KindValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			form := validForm()
			form.Communication = tt.value
			_, err := ValidateApplication(form, pdfDoc())
			if tt.kind == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestValidateApplicationReportsFirstFailingRule(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*ApplicationForm)
		doc   Document
		kind  Kind
		field string
	}{
		{
			name: "missing text before bad percentage",
			edit: func(f *ApplicationForm) {
				f.CollegeName = "  "
				f.TenthPercentage = "101"
			},
			doc:   pdfDoc(),
			kind:  KindValidationFailed,
			field: "collegeName",
		},
		{
			name: "percentage before communication",
			edit: func(f *ApplicationForm) {
				f.DegreePercentage = "-1"
				f.Communication = "11"
			},
			doc:   pdfDoc(),
			kind:  KindOutOfRange,
			field: "degreePercentage",
		},
		{
			name: "communication before language",
			edit: func(f *ApplicationForm) {
				f.Communication = "0"
				f.SelectedLanguage = "Rust"
			},
			doc:   pdfDoc(),
			kind:  KindOutOfRange,
			field: "communication",
		},
		{
			name:  "language before document",
			edit:  func(f *ApplicationForm) { f.SelectedLanguage = "Rust" },
			doc:   Document{},
			kind:  KindInvalidChoice,
			field: "selectedLanguage",
		},
		{
			name:  "document last",
			edit:  func(*ApplicationForm) {},
			doc:   Document{},
			kind:  KindUnsupportedDocument,
			field: "resume",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.edit(&form)
			_, err := ValidateApplication(form, tt.doc)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, tt.field, AsError(err).Field)
		})
	}
}

func TestParseLanguage(t *testing.T) {
	lang, ok := ParseLanguage(" software testing ")
	require.True(t, ok)
	assert.Equal(t, LanguageSoftwareTesting, lang)

	lang, ok = ParseLanguage("mern")
	require.True(t, ok)
	assert.Equal(t, LanguageMERN, lang)

	_, ok = ParseLanguage("Go")
	assert.False(t, ok)
}

func TestDocumentValidate(t *testing.T) {
	ole := oleBytes(512)
	word := oleBytes(624)
	copy(word[592:], []byte{0x06, 0x09, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0xc0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46})
	excel := oleBytes(528)
	copy(excel[512:], []byte{0x09, 0x08, 0x10, 0x00, 0x00, 0x06, 0x05, 0x00})

	tests := []struct {
		name string
		doc  Document
		ok   bool
	}{
		{"pdf", Document{Filename: "cv.pdf", Data: testPDF}, true},
		{"uppercase extension", Document{Filename: "CV.PDF", Data: testPDF}, true},
		{"bare ole container as doc", Document{Filename: "cv.doc", Data: ole}, true},
		{"word 97 doc", Document{Filename: "cv.doc", Data: word}, true},
		{"docx", Document{Filename: "cv.docx", Data: officeZip(t, "word/document.xml")}, true},
		{"bare zip as docx", Document{Filename: "cv.docx", Data: officeZip(t, "notes.txt")}, true},
		{"xlsx renamed to docx", Document{Filename: "resume.docx", Data: officeZip(t, "xl/workbook.xml")}, false},
		{"pptx renamed to docx", Document{Filename: "resume.docx", Data: officeZip(t, "ppt/presentation.xml")}, false},
		{"xls renamed to doc", Document{Filename: "resume.doc", Data: excel}, false},
		{"docx renamed to doc", Document{Filename: "resume.doc", Data: officeZip(t, "word/document.xml")}, false},
		{"text renamed to pdf", Document{Filename: "cv.pdf", Data: []byte("just some text")}, false},
		{"pdf renamed to docx", Document{Filename: "cv.docx", Data: testPDF}, false},
		{"unsupported extension", Document{Filename: "cv.txt", Data: []byte("text")}, false},
		{"empty data", Document{Filename: "cv.pdf"}, false},
		{"no filename", Document{Data: testPDF}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.doc.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrUnsupportedDocument)
		})
	}
}

func oleBytes(size int) []byte {
	b := make([]byte, size)
	copy(b, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1})
	return b
}

// officeZip builds an OOXML-shaped archive whose second entry is part.
func officeZip(t *testing.T, part string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := []struct{ name, body string }{
		{"[Content_Types].xml", `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
		{part, `<?xml version="1.0"?><w:document><w:body><w:p><w:r><w:t>Ada</w:t></w:r></w:p></w:body></w:document>`},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
