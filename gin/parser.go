package ginform

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lsfratel/formspark"
)

type Parser struct {
	*formspark.Parser
	reader io.Reader
}

func NewParser(c *gin.Context, options ...formspark.ParserOption) (*Parser, error) {
	contentType := c.GetHeader("Content-Type")
	d, _, err := mime.ParseMediaType(contentType)
	if err != nil || d != "multipart/form-data" {
		return nil, formspark.ErrNotMultipart
	}

	p, err := formspark.NewParser(contentType, c.Request.ContentLength, options...)
	if err != nil {
		return nil, err
	}

	return &Parser{
		Parser: p,
		reader: c.Request.Body,
	}, nil
}

func (p *Parser) Parse() error {
	return p.Parser.Parse(p.reader)
}

// Abort writes the parse failure to the context with the parser's status
// code and aborts the handler chain.
func Abort(c *gin.Context, err error) {
	var perr formspark.Error
	if errors.As(err, &perr) {
		c.AbortWithStatusJSON(perr.Status, gin.H{"error": perr.Message})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
