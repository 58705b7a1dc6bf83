// Package imports turns uploaded spreadsheets (optionally zipped with item
// images) into item and purchase order records.
package imports

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ssth/ssth-inventory/internal/platform/httpx"
)

// Client-facing messages for malformed uploads.
const (
	MsgFileUploadRequired = "File upload required"
	MsgNoExcelInZip       = "No Excel file found in ZIP"
	MsgExcelEmpty         = "Excel file is empty"
	MsgInvalidBoundary    = "Invalid multipart boundary"
	MsgNoFileInUpload     = "No file found in upload"
)

var (
	spreadsheetExts = map[string]bool{".xlsx": true, ".xls": true}
	imageExts       = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}
)

// Upload is the decoded payload of an import request.
type Upload struct {
	// Spreadsheet holds the workbook bytes.
	Spreadsheet []byte
	// Images maps ImageKey of each entry name to image bytes. Empty unless the
	// payload was a ZIP archive.
	Images map[string][]byte
}

// ImageKey is the lookup key for an image filename: the NFC-normalized,
// lowercased base name. Archives built on macOS store decomposed names while
// spreadsheet cells hold composed text.
func ImageKey(name string) string {
	return norm.NFC.String(strings.ToLower(path.Base(strings.TrimSpace(name))))
}

func badRequest(msg string) error {
	return httpx.NewStatusError(http.StatusBadRequest, msg)
}

// DecodeBody undoes base64 transfer encoding when flagged.
func DecodeBody(body []byte, base64Encoded bool) ([]byte, error) {
	if !base64Encoded {
		return body, nil
	}
	cleaned := bytes.Map(func(r rune) rune {
		if r == '\r' || r == '\n' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, body)
	out := make([]byte, base64.StdEncoding.DecodedLen(len(cleaned)))
	n, err := base64.StdEncoding.Decode(out, cleaned)
	if err != nil {
		return nil, badRequest("Invalid base64 body")
	}
	return out[:n], nil
}

// ReadItemsUpload decodes an item import body. The first multipart file part
// is the payload when present, otherwise the whole body is. A ZIP payload is
// unpacked into a spreadsheet and an image map.
func ReadItemsUpload(contentType string, body []byte, base64Encoded bool) (Upload, error) {
	boundary, err := multipartBoundary(contentType)
	if err != nil {
		return Upload{}, err
	}
	raw, err := DecodeBody(body, base64Encoded)
	if err != nil {
		return Upload{}, err
	}
	payload := raw
	if boundary != "" {
		part, err := firstFilePart(raw, boundary)
		if err == nil && len(part) > 0 {
			payload = part
		}
	}
	return unpack(payload)
}

// ReadPOUpload decodes a purchase order import body. A boundary and a file
// part are both required; bundled images are not supported.
func ReadPOUpload(contentType string, body []byte, base64Encoded bool) ([]byte, error) {
	boundary, err := multipartBoundary(contentType)
	if err != nil {
		return nil, err
	}
	if boundary == "" {
		return nil, badRequest(MsgInvalidBoundary)
	}
	raw, err := DecodeBody(body, base64Encoded)
	if err != nil {
		return nil, err
	}
	part, err := firstFilePart(raw, boundary)
	if err != nil || len(part) == 0 {
		return nil, badRequest(MsgNoFileInUpload)
	}
	return part, nil
}

func multipartBoundary(contentType string) (string, error) {
	if !strings.Contains(strings.ToLower(contentType), "multipart/form-data") {
		return "", badRequest(MsgFileUploadRequired)
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", nil
	}
	return params["boundary"], nil
}

var errNoFilePart = errors.New("imports: no file part")

func firstFilePart(body []byte, boundary string) ([]byte, error) {
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errNoFilePart
		}
		if err != nil {
			return nil, err
		}
		if part.FileName() == "" {
			_ = part.Close()
			continue
		}
		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, err
		}
		return data, nil
	}
}

// isZip reports whether data starts with the ZIP local file header magic.
func isZip(data []byte) bool {
	return len(data) >= 2 && data[0] == 'P' && data[1] == 'K'
}

func unpack(payload []byte) (Upload, error) {
	up := Upload{Spreadsheet: payload, Images: map[string][]byte{}}
	if !isZip(payload) {
		return up, nil
	}
	archive, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return Upload{}, badRequest("Invalid ZIP archive")
	}
	if isWorkbook(archive) {
		return up, nil
	}

	up.Spreadsheet = nil
	for _, f := range archive.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		base := path.Base(f.Name)
		ext := strings.ToLower(path.Ext(base))
		switch {
		case spreadsheetExts[ext]:
			data, err := readEntry(f)
			if err != nil {
				return Upload{}, badRequest("Unable to read " + base + " from ZIP")
			}
			up.Spreadsheet = data
		case imageExts[ext]:
			data, err := readEntry(f)
			if err != nil {
				return Upload{}, badRequest("Unable to read " + base + " from ZIP")
			}
			up.Images[ImageKey(base)] = data
		}
	}
	if up.Spreadsheet == nil {
		return Upload{}, badRequest(MsgNoExcelInZip)
	}
	return up, nil
}

// isWorkbook detects an .xlsx sent directly, which is itself a ZIP container.
func isWorkbook(archive *zip.Reader) bool {
	for _, f := range archive.File {
		if f.Name == "[Content_Types].xml" {
			return true
		}
	}
	return false
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
