package formspark

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/textproto"
	"os"
	"strings"

	"github.com/lsfratel/formspark/internal/scanbuf"
	"github.com/lsfratel/formspark/internal/textcodec"
)

// delimiter is the line ending used between boundaries and headers within
// one multipart body. It is detected once from the first boundary and
// trusted for the rest of the stream; a body that switches delimiters
// mid-stream is not supported.
type delimiter int

const (
	delimUnknown delimiter = iota
	delimCRLF
	delimLF
)

var (
	crlf    = []byte("\r\n")
	lf      = []byte("\n")
	closing = []byte("--")
)

func (d delimiter) bytes() []byte {
	switch d {
	case delimCRLF:
		return crlf
	case delimLF:
		return lf
	default:
		return nil
	}
}

// Parse consumes the multipart body from r and populates the forms and
// files maps. On any error the parser cleans up after itself (all spooled
// temp files are removed) before the error is returned.
func (p *Parser) Parse(r io.Reader) (err error) {
	defer func() {
		if err != nil {
			if cleanupErr := p.Cleanup(); cleanupErr != nil {
				err = errors.Join(err, cleanupErr)
			}
		}
	}()

	sb := scanbuf.New(r, p.chunkSize, p.contentLength, int64(p.maxBodySize))
	p.scan = sb

	if err := p.consumeFirstBoundary(sb); err != nil {
		return err
	}

	delim := p.delim.bytes()
	doubleDelim := append(append(make([]byte, 0, 2*len(delim)), delim...), delim...)

	for {
		// Top up so delimiter stripping and the terminal "--" check cannot
		// miss a sequence split across two reads.
		for sb.Len() < len(delim)+len(closing) && !sb.Exhausted() {
			if _, fillErr := sb.Fill(); fillErr != nil {
				if errors.Is(fillErr, scanbuf.ErrExhausted) || errors.Is(fillErr, io.EOF) {
					break
				}
				return mapFillErr(fillErr, ErrMalformedHeaders, ErrMalformedHeaders)
			}
		}
		if bytes.HasPrefix(sb.Bytes(), delim) {
			sb.Advance(len(delim))
		}
		if bytes.HasPrefix(sb.Bytes(), closing) {
			return nil
		}

		if err := p.parsePart(sb, delim, doubleDelim); err != nil {
			return err
		}
	}
}

// consumeFirstBoundary detects the line delimiter from the bytes that
// follow the first boundary occurrence, then discards the preamble and the
// boundary itself.
func (p *Parser) consumeFirstBoundary(sb *scanbuf.Buffer) error {
	for {
		if idx := bytes.Index(sb.Bytes(), p.boundary); idx >= 0 {
			rest := sb.Bytes()[idx+len(p.boundary):]
			switch {
			case bytes.HasPrefix(rest, crlf):
				p.delim = delimCRLF
			case len(rest) >= 1 && rest[0] == '\n':
				p.delim = delimLF
			case len(rest) == 0 || (len(rest) == 1 && rest[0] == '\r'):
				// not enough lookahead yet, read more below
			default:
				return ErrUnknownDelimiter
			}
			if p.delim != delimUnknown {
				sb.Advance(idx + len(p.boundary))
				return nil
			}
		}

		if _, err := sb.Fill(); err != nil {
			return mapFillErr(err, ErrUnknownDelimiter, ErrUnknownDelimiter)
		}
	}
}

// parsePart consumes one boundary-delimited segment: its headers, its body
// and the boundary that terminates it. The part is committed to the result
// maps only after its full body has been consumed.
func (p *Parser) parsePart(sb *scanbuf.Buffer, delim, doubleDelim []byte) error {
	hdrEnd := bytes.Index(sb.Bytes(), doubleDelim)
	for hdrEnd < 0 {
		if _, err := sb.Fill(); err != nil {
			return mapFillErr(err, ErrMalformedHeaders, ErrHeaderTerminator)
		}
		hdrEnd = bytes.Index(sb.Bytes(), doubleDelim)
	}

	part, err := parsePartHeaders(sb.Bytes()[:hdrEnd], delim)
	if err != nil {
		return err
	}
	sb.Advance(hdrEnd + len(doubleDelim))

	var (
		sink    io.Writer
		tmp     *os.File
		written int64
	)
	if part.isFile() {
		tmp, err = p.registry.Create()
		if err != nil {
			return err
		}
		sink = tmp
	} else {
		p.fieldBuf.Reset()
		sink = &p.fieldBuf
	}

	// The size-unbounded scan: hunt for the next boundary, flushing every
	// confirmed-safe prefix to the sink and retaining only a tail large
	// enough to hold a boundary split across two reads.
	window := len(p.boundary) + 2
	idx := bytes.Index(sb.Bytes(), p.boundary)
	for idx < 0 {
		if sb.Len() > window {
			n, flushErr := sb.FlushTo(sink, window)
			if flushErr != nil {
				return fmt.Errorf("failed to write part body: %w", flushErr)
			}
			written += int64(n)
		}
		if _, err := sb.Fill(); err != nil {
			return mapFillErr(err, ErrNoClosingBoundary, ErrNoBodyTerminator)
		}
		idx = bytes.Index(sb.Bytes(), p.boundary)
	}

	body := bytes.TrimSuffix(sb.Bytes()[:idx], delim)
	if _, err := sink.Write(body); err != nil {
		return fmt.Errorf("failed to write part body: %w", err)
	}
	written += int64(len(body))
	sb.Advance(idx + len(p.boundary))

	if part.isFile() {
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("failed to rewind temp file: %w", err)
		}
		p.files[part.name] = append(p.files[part.name], &File{
			Filename:    part.filename,
			ContentType: part.contentType,
			Size:        written,
			tmp:         tmp,
		})
		return nil
	}

	value, err := textcodec.Decode(p.charset, textcodec.Policy(p.encodingErrors), p.fieldBuf.Bytes())
	if err != nil {
		return ErrFieldDecode.WithDetails(map[string]string{"field": part.name})
	}
	p.forms[part.name] = append(p.forms[part.name], value)
	return nil
}

// part is the ephemeral record for one boundary-delimited segment. A
// non-empty filename marks a file upload; browsers send filename="" for an
// empty file input, which is treated as a plain field.
type part struct {
	name        string
	filename    string
	contentType string
}

func (pt part) isFile() bool { return pt.filename != "" }

// parsePartHeaders parses the raw bytes between a boundary and the header
// terminator. Lines without a colon are skipped best-effort; a missing
// Content-Disposition header or name parameter fails the parse.
func parsePartHeaders(raw, delim []byte) (part, error) {
	header := make(textproto.MIMEHeader)
	for _, line := range bytes.Split(raw, delim) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		key, value, ok := bytes.Cut(line, []byte(":"))
		if !ok {
			continue
		}
		header.Add(strings.TrimSpace(string(key)), strings.TrimSpace(string(value)))
	}

	disposition := header.Get("Content-Disposition")
	if disposition == "" {
		return part{}, ErrMissingDisposition
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		params = make(map[string]string)
	}

	name, ok := params["name"]
	if !ok || name == "" {
		return part{}, ErrMissingName
	}

	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	return part{
		name:        name,
		filename:    params["filename"],
		contentType: contentType,
	}, nil
}

// mapFillErr translates a scanbuf fill failure into the protocol error for
// the current scan stage: exhausted is used when the declared content
// length ran out, truncated when the stream dried up early.
func mapFillErr(err error, exhausted, truncated Error) error {
	switch {
	case errors.Is(err, scanbuf.ErrExhausted):
		return exhausted
	case errors.Is(err, io.EOF):
		return truncated
	case errors.Is(err, scanbuf.ErrLimitExceeded):
		return ErrBodyTooLarge
	default:
		return ErrStreamRead.WithMessage("failed to read request body: %v", err)
	}
}
