package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/sheetswap/internal/config"
	"github.com/JonMunkholm/sheetswap/internal/core"
	"github.com/go-playground/validator/v10"
)

// multipartMemory is how much of a form is buffered in memory before
// ParseMultipartForm spills files to disk.
const multipartMemory = 32 << 20

// formOverhead covers the non-file parts of the upload form.
const formOverhead = 1 << 20

var errInvalidForm = errors.New("invalid form")

var validate = validator.New()

// fileForm holds the controls submitted for one uploaded file. Control names
// carry the file index: dedup-0, fill-0, columns-0, columns-order-0,
// columns-set-0, chart-0, format-0.
type fileForm struct {
	Index          int `validate:"gte=0"`
	DropDuplicates bool
	FillMissing    bool
	Columns        []string `validate:"dive,max=1024"`
	ColumnsSet     bool
	Visualize      bool
	Format         string `validate:"omitempty,oneof=CSV Excel csv excel xlsx"`
}

// options converts the form into pipeline options.
func (f fileForm) options() core.Options {
	format, _ := core.ParseExportFormat(f.Format)
	return core.Options{
		Clean: core.CleanOptions{
			DropDuplicates: f.DropDuplicates,
			FillMissing:    f.FillMissing,
		},
		Columns:    f.Columns,
		ColumnsSet: f.ColumnsSet,
		Visualize:  f.Visualize,
		Export:     format,
	}
}

// uploadForm is a decoded upload: the files in upload order and the
// controls for each.
type uploadForm struct {
	Files []core.FileInput
	forms []fileForm
}

// OptionsFor implements core.OptionsFunc.
func (u *uploadForm) OptionsFor(i int, _ string) core.Options {
	if i < 0 || i >= len(u.forms) {
		return core.Options{}
	}
	return u.forms[i].options()
}

// parseUploadForm reads the multipart upload form. File contents are read up
// to one byte past the size limit so the loader can report oversized files
// individually.
func parseUploadForm(w http.ResponseWriter, r *http.Request, cfg *config.UploadConfig) (*uploadForm, error) {
	maxBody := cfg.MaxFileSize*int64(cfg.MaxFiles) + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, fmt.Errorf("%w: upload exceeds %d bytes", core.ErrFileTooLarge, maxBody)
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return nil, errNoFile
		default:
			return nil, fmt.Errorf("%w: %v", errInvalidForm, err)
		}
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		return nil, errNoFile
	}
	if cfg.MaxFiles > 0 && len(headers) > cfg.MaxFiles {
		return nil, fmt.Errorf("%w: %d files, limit is %d", core.ErrTooManyFiles, len(headers), cfg.MaxFiles)
	}

	u := &uploadForm{
		Files: make([]core.FileInput, len(headers)),
		forms: make([]fileForm, len(headers)),
	}
	values := r.MultipartForm.Value

	for i, fh := range headers {
		data, err := readPart(fh, cfg.MaxFileSize)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", errInvalidForm, fh.Filename, err)
		}
		u.Files[i] = core.FileInput{Name: fh.Filename, Data: data}

		form := decodeFileForm(values, i)
		if err := validate.Struct(form); err != nil {
			return nil, fmt.Errorf("%w: options for %s: %v", errInvalidForm, fh.Filename, err)
		}
		u.forms[i] = form
	}

	return u, nil
}

func readPart(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit+1))
}

func decodeFileForm(values map[string][]string, i int) fileForm {
	key := func(name string) string { return name + "-" + strconv.Itoa(i) }
	first := func(name string) string {
		if v := values[key(name)]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	on := func(name string) bool {
		v := first(name)
		if v == "on" {
			return true
		}
		b, _ := strconv.ParseBool(v)
		return b
	}

	return fileForm{
		Index:          i,
		DropDuplicates: on("dedup"),
		FillMissing:    on("fill"),
		Columns:        orderColumns(values[key("columns")], values[key("columns-order")]),
		ColumnsSet:     first("columns-set") != "",
		Visualize:      on("chart"),
		Format:         first("format"),
	}
}

// orderColumns returns the selected columns in the order the user picked
// them. A multi-select submits in document order, so the page keeps the
// pick order in columns-order-<i>; names there that are no longer selected
// are dropped and selected names missing from it follow in document order.
func orderColumns(selected, order []string) []string {
	if len(order) == 0 {
		return selected
	}
	want := make(map[string]bool, len(selected))
	for _, name := range selected {
		want[name] = true
	}

	out := make([]string, 0, len(selected))
	for _, name := range order {
		if want[name] {
			out = append(out, name)
			delete(want, name)
		}
	}
	for _, name := range selected {
		if want[name] {
			out = append(out, name)
			delete(want, name)
		}
	}
	return out
}

// fileIndex parses a file index path parameter against the upload.
func fileIndex(param string, n int) (int, error) {
	i, err := strconv.Atoi(param)
	if err != nil || i < 0 || i >= n {
		return 0, fmt.Errorf("%w: no file at index %q", errNoFile, param)
	}
	return i, nil
}
