package httpform

import (
	"io"
	"mime"
	"net/http"

	"github.com/lsfratel/formspark"
)

type Parser struct {
	*formspark.Parser
	reader io.Reader
}

func NewParser(req *http.Request, options ...formspark.ParserOption) (*Parser, error) {
	contentType := req.Header.Get("Content-Type")
	d, _, err := mime.ParseMediaType(contentType)
	if err != nil || d != "multipart/form-data" {
		return nil, formspark.ErrNotMultipart
	}

	p, err := formspark.NewParser(contentType, req.ContentLength, options...)
	if err != nil {
		return nil, err
	}

	return &Parser{
		Parser: p,
		reader: req.Body,
	}, nil
}

func (p *Parser) Parse() error {
	return p.Parser.Parse(p.reader)
}
