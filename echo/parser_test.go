package echoform_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/lsfratel/formspark"
	echoform "github.com/lsfratel/formspark/echo"
)

func TestParser(t *testing.T) {
	t.Parallel()

	e := echo.New()
	e.POST("/user", func(c echo.Context) error {
		parser, err := echoform.NewParser(c)
		if err != nil {
			return echoform.HTTPError(err)
		}
		defer parser.Cleanup()

		if err := parser.Parse(); err != nil {
			return echoform.HTTPError(err)
		}

		name, _ := parser.FormValue("name")
		icon, ok := parser.File("icon")
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "icon missing")
		}
		content, err := io.ReadAll(icon.Reader())
		if err != nil {
			return err
		}

		return c.String(http.StatusCreated, name+":"+icon.Filename+":"+string(content))
	})

	req := httptest.NewRequest(http.MethodPost, "/user", strings.NewReader("--boundary\r\n"+
		"Content-Disposition: form-data; name=\"name\"\r\n"+
		"\r\n"+
		"alice\r\n"+
		"--boundary\r\n"+
		"Content-Disposition: form-data; name=\"icon\"; filename=\"icon.png\"\r\n"+
		"Content-Type: image/png\r\n"+
		"\r\n"+
		"icon contents\r\n"+
		"--boundary--\r\n"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=boundary")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status code is wrong: expected: %d, actual: %d", http.StatusCreated, rec.Code)
	}
	if got, want := rec.Body.String(), "alice:icon.png:icon contents"; got != want {
		t.Errorf("unexpected body: got %q, want %q", got, want)
	}
}

func TestParser_NotMultipart(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/user", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	c := e.NewContext(req, httptest.NewRecorder())

	if _, err := echoform.NewParser(c); !errors.Is(err, formspark.ErrNotMultipart) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHTTPError(t *testing.T) {
	t.Parallel()

	err := echoform.HTTPError(formspark.ErrBodyTooLarge)
	var herr *echo.HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("not an echo.HTTPError: %v", err)
	}
	if herr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("unexpected status: %d", herr.Code)
	}

	err = echoform.HTTPError(errors.New("boom"))
	if !errors.As(err, &herr) {
		t.Fatalf("not an echo.HTTPError: %v", err)
	}
	if herr.Code != http.StatusInternalServerError {
		t.Errorf("unexpected status: %d", herr.Code)
	}
}
