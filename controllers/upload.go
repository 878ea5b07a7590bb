package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"vegmart/apperrors"
	"vegmart/storage"
)

var errNoFile = errors.New("no file")

var (
	imageTypes    = []string{"image/jpeg", "image/png", "image/webp"}
	documentTypes = []string{"image/jpeg", "image/png", "application/pdf"}
)

func muxVar(r *http.Request, name string) string { return mux.Vars(r)[name] }

// multipartForm parses a multipart or urlencoded body. maxFiles bounds the
// total body size together with the per-file limit.
type multipartForm struct {
	maxFileBytes int64
	form         *multipart.Form
	closers      []multipart.File
}

func (f *multipartForm) parse(w http.ResponseWriter, r *http.Request, maxFiles int) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxFiles)*f.maxFileBytes+maxJSONBody)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(f.maxFileBytes); err != nil {
			return apperrors.Validation("Invalid multipart form or upload too large")
		}
		f.form = r.MultipartForm
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return apperrors.Validation("Invalid form")
	}
	return nil
}

func (f *multipartForm) open(fh *multipart.FileHeader, allowed []string) (storage.File, error) {
	if fh.Size > f.maxFileBytes {
		return storage.File{}, apperrors.Validation(fmt.Sprintf("%s exceeds %d MB", fh.Filename, f.maxFileBytes>>20))
	}
	ct := fh.Header.Get("Content-Type")
	if !contains(allowed, ct) {
		return storage.File{}, apperrors.Validation(fmt.Sprintf("%s: unsupported file type %q", fh.Filename, ct))
	}
	body, err := fh.Open()
	if err != nil {
		return storage.File{}, apperrors.Validation("Could not read " + fh.Filename)
	}
	f.closers = append(f.closers, body)
	return storage.File{Name: fh.Filename, ContentType: ct, Size: fh.Size, Body: body}, nil
}

// files opens every part under key
func (f *multipartForm) files(r *http.Request, key string, allowed []string) ([]storage.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var out []storage.File
	for _, fh := range r.MultipartForm.File[key] {
		file, err := f.open(fh, allowed)
		if err != nil {
			return nil, err
		}
		out = append(out, file)
	}
	return out, nil
}

// file opens the single part under key, errNoFile when absent
func (f *multipartForm) file(r *http.Request, key string, allowed []string) (*storage.File, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[key]) == 0 {
		return nil, errNoFile
	}
	file, err := f.open(r.MultipartForm.File[key][0], allowed)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *multipartForm) close() {
	for _, c := range f.closers {
		c.Close()
	}
	if f.form != nil {
		f.form.RemoveAll()
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// formString returns a pointer to the trimmed value when key was sent
func formString(r *http.Request, key string) *string {
	if _, ok := r.Form[key]; !ok {
		return nil
	}
	v := strings.TrimSpace(r.Form.Get(key))
	return &v
}

// keepList reads existingImages. Absent means keep everything (nil). The
// field may repeat or hold a JSON array; an empty value means keep none.
func keepList(r *http.Request) ([]string, error) {
	values, ok := r.Form["existingImages"]
	if !ok {
		values, ok = r.Form["existingImages[]"]
	}
	if !ok {
		return nil, nil
	}
	ids := []string{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		switch {
		case v == "":
		case strings.HasPrefix(v, "["):
			var arr []string
			if err := json.Unmarshal([]byte(v), &arr); err != nil {
				return nil, apperrors.Validation("existingImages must be a list of storage ids")
			}
			for _, id := range arr {
				if id = strings.TrimSpace(id); id != "" {
					ids = append(ids, id)
				}
			}
		default:
			ids = append(ids, v)
		}
	}
	return ids, nil
}

func requireFile(err error, what string) error {
	if errors.Is(err, errNoFile) {
		return apperrors.Validation(what + " is required")
	}
	return err
}
