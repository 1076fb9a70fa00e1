package infrastructure_test

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jobselect/domain"
	"jobselect/infrastructure"
	"jobselect/testutil"
)

func newExtractor(t *testing.T) *infrastructure.ResumeExtractor {
	t.Helper()
	e, err := infrastructure.NewResumeExtractor(testutil.Config(), zap.NewNop())
	require.NoError(t, err)
	return e
}

func docx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0"?><Types/>`},
		{"word/_rels/document.xml.rels", `<?xml version="1.0"?><Relationships/>`},
		{"word/document.xml", `<?xml version="1.0"?><w:document><w:body>` + body + `</w:body></w:document>`},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestResumeExtractorDOCX(t *testing.T) {
	data := docx(t, `<w:p><w:r><w:t>Ada Lovelace</w:t></w:r></w:p><w:p><w:r><w:t>Analyst</w:t></w:r></w:p>`)

	text, err := newExtractor(t).ExtractText("cv.docx", data)
	require.NoError(t, err)
	assert.Contains(t, text, "Ada Lovelace")
	assert.Contains(t, text, "Analyst")
	assert.NotContains(t, text, "<w:")
}

func TestResumeExtractorLegacyDOC(t *testing.T) {
	data := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00, 0x00}
	data = append(data, []byte("Ada Lovelace, Analyst")...)
	data = append(data, 0x00, 0x01, 0x02, 'x', 0x00)

	text, err := newExtractor(t).ExtractText("cv.doc", data)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace, Analyst", text)
}

func TestResumeExtractorTruncates(t *testing.T) {
	data := []byte(strings.Repeat("résumé ", 5000))

	text, err := newExtractor(t).ExtractText("cv.doc", data)
	require.NoError(t, err)
	assert.Equal(t, 20000, utf8.RuneCountInString(text))
}

func TestResumeExtractorFailures(t *testing.T) {
	e := newExtractor(t)

	_, err := e.ExtractText("cv.pdf", []byte("%PDF-1.4 broken"))
	assert.Error(t, err)

	_, err = e.ExtractText("cv.docx", []byte("PK not really a zip"))
	assert.Error(t, err)

	_, err = e.ExtractText("cv.doc", []byte{0x00, 0x01, 0x02})
	assert.Error(t, err)
}

func TestLocalBrokerDeliversEvents(t *testing.T) {
	b := infrastructure.NewLocalBroker(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan domain.ApplicationSubmitted, 1)
	require.NoError(t, b.Consume(ctx, func(_ context.Context, evt domain.ApplicationSubmitted) error {
		got <- evt
		return nil
	}))

	evt := domain.ApplicationSubmitted{ApplicationID: "app-1", JobID: "job-1"}
	require.NoError(t, b.PublishApplicationSubmitted(ctx, evt))

	select {
	case received := <-got:
		assert.Equal(t, evt, received)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}
