package formspark

import "io"

// File is one parsed file upload. The handle returned by Reader is
// positioned at offset 0 and stays readable until Cleanup deletes the
// backing temp file, so callers must consume it before then.
type File struct {
	Filename    string
	ContentType string
	Size        int64

	tmp io.ReadSeeker
}

// Reader returns the spooled file content positioned at offset 0.
func (f *File) Reader() io.ReadSeeker {
	return f.tmp
}

// FormValue returns the first value submitted under name.
func (p *Parser) FormValue(name string) (string, bool) {
	values := p.forms[name]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// FormValues returns all values submitted under name, in stream order.
func (p *Parser) FormValues(name string) ([]string, bool) {
	values, ok := p.forms[name]
	return values, ok
}

// Forms returns all form fields keyed by name, values in stream order.
func (p *Parser) Forms() map[string][]string {
	return p.forms
}

// File returns the first file uploaded under name.
func (p *Parser) File(name string) (*File, bool) {
	files := p.files[name]
	if len(files) == 0 {
		return nil, false
	}
	return files[0], true
}

// Files returns all files uploaded under name, in stream order.
func (p *Parser) Files(name string) ([]*File, bool) {
	files, ok := p.files[name]
	return files, ok
}

// FileMap returns all file uploads keyed by name, entries in stream order.
func (p *Parser) FileMap() map[string][]*File {
	return p.files
}
