package echoform

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lsfratel/formspark"
)

type Parser struct {
	*formspark.Parser
	reader io.Reader
}

func NewParser(c echo.Context, options ...formspark.ParserOption) (*Parser, error) {
	contentType := c.Request().Header.Get("Content-Type")
	d, _, err := mime.ParseMediaType(contentType)
	if err != nil || d != "multipart/form-data" {
		return nil, formspark.ErrNotMultipart
	}

	p, err := formspark.NewParser(contentType, c.Request().ContentLength, options...)
	if err != nil {
		return nil, err
	}

	return &Parser{
		Parser: p,
		reader: c.Request().Body,
	}, nil
}

func (p *Parser) Parse() error {
	return p.Parser.Parse(p.reader)
}

// HTTPError translates a parse failure into an *echo.HTTPError carrying
// the parser's status code.
func HTTPError(err error) error {
	var perr formspark.Error
	if errors.As(err, &perr) {
		return echo.NewHTTPError(perr.Status, perr.Message)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
