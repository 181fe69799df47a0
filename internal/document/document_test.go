package document

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Skills: </w:t></w:r><w:r><w:t>Go, Python</w:t></w:r></w:p>
<w:p></w:p>
<w:p><w:r><w:t>Senior</w:t><w:tab/><w:t>10 years</w:t></w:r></w:p>
</w:body>
</w:document>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	files := map[string]string{
		"word/document.xml":            body,
		"word/_rels/document.xml.rels": relsXML,
	}
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func assertKind(t *testing.T, err, kind error, fileName string) {
	t.Helper()

	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
	var extractionErr *ExtractionError
	if !errors.As(err, &extractionErr) {
		t.Fatalf("expected *ExtractionError, got %T", err)
	}
	if extractionErr.FileName != fileName {
		t.Fatalf("expected file name %q, got %q", fileName, extractionErr.FileName)
	}
}

func TestExtractPlainText(t *testing.T) {
	t.Parallel()

	content := "John Smith  \r\nGo developer\r\n\r\n\r\n\r\nBerlin\t\r\n"
	text, err := Extract(File{Name: "cv.TXT", Content: []byte(content)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "John Smith\nGo developer\n\nBerlin"
	if text != want {
		t.Fatalf("expected %q, got %q", want, text)
	}
}

func TestExtractPlainTextReplacesInvalidUTF8(t *testing.T) {
	t.Parallel()

	text, err := Extract(File{Name: "cv.md", Content: []byte("Jos\xe9 Garcia")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Jos\uFFFD Garcia" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractRejectsLargeFiles(t *testing.T) {
	t.Parallel()

	_, err := Extract(File{Name: "big.pdf", Size: MaxFileSize + 1})
	assertKind(t, err, ErrFileTooLarge, "big.pdf")

	_, err = Extract(File{Name: "big.txt", Content: make([]byte, MaxFileSize+1)})
	assertKind(t, err, ErrFileTooLarge, "big.txt")
}

func TestExtractAcceptsFileAtLimit(t *testing.T) {
	t.Parallel()

	content := bytes.Repeat([]byte("a"), MaxFileSize)
	if _, err := Extract(File{Name: "limit.txt", Content: content}); err != nil {
		t.Fatalf("file at the limit must be accepted: %v", err)
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"photo.png", "resume.doc", "noext"} {
		_, err := Extract(File{Name: name, Content: []byte("data")})
		assertKind(t, err, ErrUnsupportedFormat, name)
	}
}

func TestExtractEmptyText(t *testing.T) {
	t.Parallel()

	_, err := Extract(File{Name: "blank.txt", Content: []byte(" \n\t\r\n ")})
	assertKind(t, err, ErrEmptyExtraction, "blank.txt")
}

func TestExtractBrokenPDF(t *testing.T) {
	t.Parallel()

	_, err := Extract(File{Name: "broken.pdf", Content: []byte("this is not a pdf")})
	assertKind(t, err, ErrIO, "broken.pdf")
}

func TestExtractDOCX(t *testing.T) {
	t.Parallel()

	text, err := Extract(File{Name: "cv.docx", Content: buildDOCX(t, documentXML)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Jane Doe\nSkills: Go, Python\n\nSenior\t10 years"
	if text != want {
		t.Fatalf("expected %q, got %q", want, text)
	}
}

func TestExtractDOCXWithoutText(t *testing.T) {
	t.Parallel()

	body := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p></w:p></w:body></w:document>`
	_, err := Extract(File{Name: "scan.docx", Content: buildDOCX(t, body)})
	assertKind(t, err, ErrEmptyExtraction, "scan.docx")
}

func TestExtractBrokenDOCX(t *testing.T) {
	t.Parallel()

	_, err := Extract(File{Name: "broken.docx", Content: []byte("PK not really")})
	assertKind(t, err, ErrIO, "broken.docx")
}

func TestFromPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	if err := os.WriteFile(path, []byte("Ann Lee"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	file, err := FromPath(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if file.Name != "resume.txt" || file.Size != 7 || string(file.Content) != "Ann Lee" {
		t.Fatalf("unexpected file: %+v", file)
	}

	_, err = FromPath(filepath.Join(dir, "missing.txt"))
	assertKind(t, err, ErrIO, "missing.txt")
}

func TestSupportedAndKindName(t *testing.T) {
	t.Parallel()

	if !Supported("a.PDF") || !Supported("b.docx") || Supported("c.xlsx") {
		t.Fatalf("unexpected Supported results")
	}

	err := newError("x.exe", ErrUnsupportedFormat, nil)
	if KindName(err) != "unsupported_format" {
		t.Fatalf("unexpected kind name %q", KindName(err))
	}
	if KindName(errors.New("other")) != "" {
		t.Fatalf("expected empty kind name")
	}
	if !strings.Contains(err.Error(), "x.exe") {
		t.Fatalf("error must mention the file: %v", err)
	}
}
