package docparse

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haulware/loadlens/internal/domain"
)

func TestParse_PlainText(t *testing.T) {
	text, err := Parse("rate_confirmation.txt", strings.NewReader("Load ID: LD62752\nRate: $1,200"))
	require.NoError(t, err)
	assert.Contains(t, text, "LD62752")
}

func TestParse_UnsupportedExtension(t *testing.T) {
	_, err := Parse("shipment.csv", strings.NewReader("a,b,c"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestParse_ExtensionCaseInsensitive(t *testing.T) {
	_, err := Parse("NOTES.TXT", strings.NewReader("pickup at dock 4"))
	assert.NoError(t, err)
}

func TestParse_EmptyDocument(t *testing.T) {
	_, err := Parse("blank.txt", strings.NewReader("   \n\t "))
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestParse_DOCX(t *testing.T) {
	docXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Shipper: Acme Produce</w:t></w:r></w:p>
    <w:p><w:r><w:t>Consignee: Fresh Mart</w:t></w:r></w:p>
  </w:body>
</w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(docXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	text, err := Parse("bol.docx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Contains(t, text, "Shipper: Acme Produce")
	assert.Contains(t, text, "Consignee: Fresh Mart")

	// Paragraphs must not run together.
	assert.True(t, strings.Index(text, "Acme Produce\n") > 0, "expected newline after first paragraph, got %q", text)
}

func TestParse_CorruptDOCX(t *testing.T) {
	_, err := Parse("bol.docx", bytes.NewReader([]byte("not a zip archive")))
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrUnsupportedFormat))
}
