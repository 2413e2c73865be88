package upload

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"anoa.com/jobboard/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func fieldError(t *testing.T, err error, field string) string {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 422, appErr.Code)
	return appErr.Fields[field]
}

func TestFromBytesAcceptsPDFResume(t *testing.T) {
	f, err := FromBytes("../../cv.pdf", samplePDF, ResumeRule)
	require.NoError(t, err)

	assert.Equal(t, "pdf", f.Ext)
	assert.Equal(t, "cv.pdf", f.Name)
	assert.Equal(t, int64(len(samplePDF)), f.Size)

	got, err := io.ReadAll(f.Reader())
	require.NoError(t, err)
	assert.Equal(t, samplePDF, got)
}

func TestFromBytesSniffsContentNotName(t *testing.T) {
	_, err := FromBytes("resume.pdf", []byte("just some plain text"), ResumeRule)
	require.Error(t, err)
	assert.Equal(t, "resume must be a file of type: pdf, doc, docx", fieldError(t, err, "resume"))
}

func TestFromBytesAllowsTextCoverLetter(t *testing.T) {
	f, err := FromBytes("letter.txt", []byte("Dear hiring manager"), CoverLetterRule)
	require.NoError(t, err)
	assert.Equal(t, "txt", f.Ext)
}

func TestFromBytesRejectsOversized(t *testing.T) {
	data := append(bytes.Clone(samplePDF), make([]byte, 2<<20)...)

	_, err := FromBytes("letter.pdf", data, CoverLetterRule)
	require.Error(t, err)
	assert.Equal(t, "cover letter may not be greater than 2048 kilobytes", fieldError(t, err, "cover_letter"))
}

func TestFromBytesRejectsEmpty(t *testing.T) {
	_, err := FromBytes("logo.png", nil, LogoRule)
	require.Error(t, err)
	assert.Equal(t, "company logo must be a file", fieldError(t, err, "company_logo"))
}

func TestPendingLoadMissing(t *testing.T) {
	var p *Pending

	_, err := p.Load(ResumeRule, true)
	require.Error(t, err)
	assert.Equal(t, "resume is required", fieldError(t, err, "resume"))

	f, err := p.Load(CoverLetterRule, false)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestPendingReady(t *testing.T) {
	assert.Nil(t, Ready(nil))

	f, err := FromBytes("cv.pdf", samplePDF, ResumeRule)
	require.NoError(t, err)

	got, err := Ready(f).Load(ResumeRule, true)
	require.NoError(t, err)
	assert.Same(t, f, got)
}
