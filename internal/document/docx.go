package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

func extractDOCX(content []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	paragraphs, err := paragraphs(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("parse docx body: %w", err)
	}

	return strings.Join(paragraphs, "\n"), nil
}

// paragraphs walks WordprocessingML and returns the text of every w:p element.
func paragraphs(body string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(body))

	var (
		result  []string
		current strings.Builder
		inText  bool
		inPara  bool
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = true
			case "tab":
				current.WriteString("\t")
			case "br", "cr":
				current.WriteString("\n")
			}
		case xml.EndElement:
			switch tok.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara {
					result = append(result, current.String())
				}
				inPara = false
			}
		case xml.CharData:
			if inText {
				current.Write(tok)
			}
		}
	}

	return result, nil
}
