package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"anoa.com/jobboard/pkg/apperror"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// Rule describes what a form file field accepts. Types are checked against
// the sniffed content, not the client-supplied name or header.
type Rule struct {
	Field      string
	MaxBytes   int64
	Extensions []string
}

var (
	ResumeRule      = Rule{Field: "resume", MaxBytes: 5 << 20, Extensions: []string{"pdf", "doc", "docx"}}
	CoverLetterRule = Rule{Field: "cover_letter", MaxBytes: 2 << 20, Extensions: []string{"pdf", "doc", "docx", "txt"}}
	LogoRule        = Rule{Field: "company_logo", MaxBytes: 2 << 20, Extensions: []string{"jpg", "jpeg", "png", "gif"}}
	PhotoRule       = Rule{Field: "profile_photo", MaxBytes: 5 << 20, Extensions: []string{"jpg", "jpeg", "png", "gif", "webp"}}
)

// File is an accepted upload held in memory.
type File struct {
	Field       string
	Name        string
	Ext         string
	ContentType string
	Size        int64
	data        []byte
}

func (f *File) Reader() io.Reader {
	return bytes.NewReader(f.data)
}

// FromHeader reads and checks a multipart upload against rule.
func FromHeader(fh *multipart.FileHeader, rule Rule) (*File, error) {
	if fh.Size > rule.MaxBytes {
		return nil, tooLarge(rule)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, invalid(rule, fmt.Sprintf("%s failed to upload", label(rule)))
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, rule.MaxBytes+1))
	if err != nil {
		return nil, invalid(rule, fmt.Sprintf("%s failed to upload", label(rule)))
	}
	return FromBytes(fh.Filename, data, rule)
}

// FromBytes checks raw content against rule.
func FromBytes(name string, data []byte, rule Rule) (*File, error) {
	if len(data) == 0 {
		return nil, invalid(rule, fmt.Sprintf("%s must be a file", label(rule)))
	}
	if int64(len(data)) > rule.MaxBytes {
		return nil, tooLarge(rule)
	}

	mt := mimetype.Detect(data)
	ext := strings.TrimPrefix(mt.Extension(), ".")
	if !slices.Contains(rule.Extensions, ext) {
		return nil, invalid(rule, fmt.Sprintf("%s must be a file of type: %s", label(rule), strings.Join(rule.Extensions, ", ")))
	}

	return &File{
		Field:       rule.Field,
		Name:        filepath.Base(name),
		Ext:         ext,
		ContentType: mt.String(),
		Size:        int64(len(data)),
		data:        data,
	}, nil
}

func label(rule Rule) string {
	return strings.ReplaceAll(rule.Field, "_", " ")
}

func tooLarge(rule Rule) error {
	return invalid(rule, fmt.Sprintf("%s may not be greater than %d kilobytes", label(rule), rule.MaxBytes>>10))
}

func invalid(rule Rule, msg string) error {
	return apperror.Validation("the given data was invalid", map[string]string{rule.Field: msg})
}

// Pending is a form file located in a request but not yet read or checked.
// A nil Pending is a missing file.
type Pending struct {
	header *multipart.FileHeader
	file   *File
	err    bool
}

// Lookup finds field in a multipart request without reading it.
func Lookup(c *gin.Context, field string) *Pending {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil
		}
		return &Pending{err: true}
	}
	return &Pending{header: fh}
}

// Ready wraps an already checked file.
func Ready(f *File) *Pending {
	if f == nil {
		return nil
	}
	return &Pending{file: f}
}

// Load reads and checks the file against rule. A missing optional file
// yields (nil, nil).
func (p *Pending) Load(rule Rule, required bool) (*File, error) {
	switch {
	case p == nil:
		if required {
			return nil, invalid(rule, fmt.Sprintf("%s is required", label(rule)))
		}
		return nil, nil
	case p.err:
		return nil, invalid(rule, fmt.Sprintf("%s failed to upload", label(rule)))
	case p.file != nil:
		return p.file, nil
	default:
		return FromHeader(p.header, rule)
	}
}

// FormFile reads rule.Field from a multipart request. A missing optional file
// yields (nil, nil).
func FormFile(c *gin.Context, rule Rule, required bool) (*File, error) {
	return Lookup(c, rule.Field).Load(rule, required)
}
