package gateway

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
)

// formBody is a multipart/form-data request body. It is encoded on every
// send so the file is read fresh each time.
type formBody struct {
	fields []formField
	files  []formFile
}

type formField struct{ name, value string }

type formFile struct {
	field, path, contentType string
}

func (f *formBody) field(name, value string) *formBody {
	f.fields = append(f.fields, formField{name, value})
	return f
}

func (f *formBody) file(field, path, contentType string) *formBody {
	f.files = append(f.files, formFile{field, path, contentType})
	return f
}

func (f *formBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, fld := range f.fields {
		if err := w.WriteField(fld.name, fld.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", fld.name, err)
		}
	}
	for _, ff := range f.files {
		if err := writeFile(w, ff); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, ff formFile) error {
	src, err := os.Open(ff.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", ff.field, err)
	}
	defer src.Close()

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ff.field, filepath.Base(ff.path)))
	ct := ff.contentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", ff.field, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy %s: %w", ff.field, err)
	}
	return nil
}
