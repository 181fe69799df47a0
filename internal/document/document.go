// Package document turns uploaded resume files into plain text.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize is the largest accepted upload.
const MaxFileSize = 10 << 20

// File is an uploaded document.
type File struct {
	Name    string
	Size    int64
	Content []byte
}

type format int

const (
	formatUnknown format = iota
	formatPDF
	formatDOCX
	formatText
)

var formats = map[string]format{
	".pdf":  formatPDF,
	".docx": formatDOCX,
	".txt":  formatText,
	".md":   formatText,
}

// Supported reports whether the file name has an extension Extract can handle.
func Supported(name string) bool {
	return formatOf(name) != formatUnknown
}

func formatOf(name string) format {
	return formats[strings.ToLower(filepath.Ext(name))]
}

// FromPath loads a file from disk. Files over MaxFileSize are returned without content
// so Extract can reject them without reading them into memory.
func FromPath(path string) (File, error) {
	name := filepath.Base(path)

	info, err := os.Stat(path)
	if err != nil {
		return File{Name: name}, newError(name, ErrIO, err)
	}
	if info.IsDir() {
		return File{Name: name}, newError(name, ErrIO, fmt.Errorf("%s is a directory", path))
	}

	file := File{Name: name, Size: info.Size()}
	if file.Size > MaxFileSize {
		return file, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return file, newError(name, ErrIO, err)
	}
	file.Content = content
	file.Size = int64(len(content))

	return file, nil
}

// Extract returns the normalised text of the file. Failures are *ExtractionError.
func Extract(file File) (string, error) {
	size := max(file.Size, int64(len(file.Content)))
	if size > MaxFileSize {
		return "", newError(file.Name, ErrFileTooLarge, fmt.Errorf("%d bytes exceeds the %d byte limit", size, MaxFileSize))
	}

	var (
		text string
		err  error
	)
	switch formatOf(file.Name) {
	case formatPDF:
		text, err = extractPDF(file.Content)
	case formatDOCX:
		text, err = extractDOCX(file.Content)
	case formatText:
		text = decodeText(file.Content)
	default:
		return "", newError(file.Name, ErrUnsupportedFormat, fmt.Errorf("extension %q", filepath.Ext(file.Name)))
	}
	if err != nil {
		return "", newError(file.Name, ErrIO, err)
	}

	text = Normalize(text)
	if text == "" {
		return "", newError(file.Name, ErrEmptyExtraction, nil)
	}

	return text, nil
}
