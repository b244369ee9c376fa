// Package formspark parses HTTP multipart/form-data request bodies into
// form fields and file uploads using a streaming, bounded-memory scanner.
// Form fields are accumulated in memory and decoded with the configured
// charset; file uploads are spooled to temporary files that live until the
// parser is cleaned up.
package formspark

//go:generate mockgen -package mock -destination internal/mock/reader.go io Reader

import (
	"bytes"
	"mime"

	"golang.org/x/text/encoding"

	"github.com/lsfratel/formspark/internal/scanbuf"
	"github.com/lsfratel/formspark/internal/spool"
	"github.com/lsfratel/formspark/internal/textcodec"
)

// Parser parses one multipart/form-data body. A Parser serves exactly one
// Parse call and must have Cleanup invoked once afterwards; Parse runs
// Cleanup itself before returning any error, so the usual shape is
//
//	p, err := formspark.NewParser(contentType, contentLength)
//	if err != nil { ... }
//	defer p.Cleanup()
//	if err := p.Parse(body); err != nil { ... }
type Parser struct {
	boundary      []byte
	contentLength int64
	charset       encoding.Encoding
	delim         delimiter

	forms    map[string][]string
	files    map[string][]*File
	registry *spool.Registry
	scan     *scanbuf.Buffer
	fieldBuf bytes.Buffer

	parserConfig
}

// NewParser resolves the boundary (and optional charset) from the raw
// Content-Type header and validates the declared content length against
// the body size ceiling. Both checks happen here, before a single byte of
// the stream is touched.
func NewParser(contentType string, contentLength int64, options ...ParserOption) (*Parser, error) {
	c := parserConfig{
		maxBodySize:    defaultMaxBodySize,
		chunkSize:      defaultChunkSize,
		encoding:       defaultEncoding,
		encodingErrors: EncodingStrict,
	}
	for _, opt := range options {
		opt(&c)
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, ErrMissingBoundary
	}
	boundary, ok := params["boundary"]
	if !ok || boundary == "" {
		return nil, ErrMissingBoundary
	}
	if cs := params["charset"]; cs != "" {
		c.encoding = cs
	}

	charset, err := textcodec.Lookup(c.encoding)
	if err != nil {
		return nil, ErrUnsupportedCharset.WithDetails(map[string]string{"charset": c.encoding})
	}

	if contentLength < 0 {
		return nil, ErrLengthRequired
	}
	if DataSize(contentLength) > c.maxBodySize {
		return nil, ErrBodyTooLarge.WithMessage("content length %d exceeds max body size of %d", contentLength, int64(c.maxBodySize))
	}

	return &Parser{
		boundary:      append([]byte("--"), boundary...),
		contentLength: contentLength,
		charset:       charset,
		forms:         make(map[string][]string),
		files:         make(map[string][]*File),
		registry:      spool.NewRegistry(c.tempDir, tempPattern),
		parserConfig:  c,
	}, nil
}

// Cleanup closes and deletes every temp file created during the parse and
// resets the result maps. It is idempotent.
func (p *Parser) Cleanup() error {
	err := p.registry.Cleanup()
	p.forms = make(map[string][]string)
	p.files = make(map[string][]*File)
	p.fieldBuf.Reset()
	p.scan = nil
	return err
}

const tempPattern = "formspark-*.tmp"

type parserConfig struct {
	maxBodySize    DataSize
	chunkSize      int
	encoding       string
	encodingErrors EncodingErrors
	tempDir        string
}

type ParserOption func(*parserConfig)

type DataSize int64

const (
	_ DataSize = 1 << (iota * 10)
	KB
	MB
	GB
)

const (
	defaultMaxBodySize = 2 * MB
	defaultChunkSize   = 4096
	defaultEncoding    = "utf-8"
)

// EncodingErrors selects how undecodable bytes in form field values are
// handled.
type EncodingErrors string

const (
	EncodingStrict  EncodingErrors = "strict"
	EncodingIgnore  EncodingErrors = "ignore"
	EncodingReplace EncodingErrors = "replace"
)

// WithMaxBodySize sets the maximum accepted request body size.
// default: 2MB
func WithMaxBodySize(maxBodySize DataSize) ParserOption {
	return func(c *parserConfig) {
		c.maxBodySize = maxBodySize
	}
}

// WithChunkSize sets the read granularity of the scanner.
// default: 4096
func WithChunkSize(chunkSize int) ParserOption {
	return func(c *parserConfig) {
		c.chunkSize = chunkSize
	}
}

// WithEncoding sets the charset used to decode form field values. A
// charset parameter in the Content-Type header takes precedence.
// default: utf-8
func WithEncoding(name string) ParserOption {
	return func(c *parserConfig) {
		c.encoding = name
	}
}

// WithEncodingErrors sets the decode error policy for form field values.
// default: EncodingStrict
func WithEncodingErrors(policy EncodingErrors) ParserOption {
	return func(c *parserConfig) {
		c.encodingErrors = policy
	}
}

// WithTempDir sets the directory file uploads are spooled into.
// default: the OS temp directory
func WithTempDir(dir string) ParserOption {
	return func(c *parserConfig) {
		c.tempDir = dir
	}
}
