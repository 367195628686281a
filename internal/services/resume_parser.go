package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/models"
)

const (
	FileTypePDF  = "pdf"
	FileTypeDOCX = "docx"
)

var experiencePattern = regexp.MustCompile(`(\d{1,2})\+?\s*(?:years?|yrs?)`)

// ResumeParser turns an uploaded resume into plain text and a ResumeProfile.
type ResumeParser interface {
	ExtractText(data []byte, fileType string) (string, error)
	ExtractFile(path string) (string, error)
	ExtractProfile(data []byte, fileType string) (*models.ResumeProfile, error)
}

type resumeParser struct {
	skillKeywords []string
	maxFileSize   int64
}

func NewResumeParser(catalog *config.Catalog, maxFileSize int64) ResumeParser {
	return &resumeParser{
		skillKeywords: catalog.SkillKeywords,
		maxFileSize:   maxFileSize,
	}
}

// DetectFileType maps a filename to a supported resume type.
func DetectFileType(filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FileTypePDF, nil
	case ".docx":
		return FileTypeDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func (p *resumeParser) ExtractText(data []byte, fileType string) (string, error) {
	if p.maxFileSize > 0 && int64(len(data)) > p.maxFileSize {
		return "", fmt.Errorf("%w: %d bytes exceeds limit of %d", models.ErrFileTooLarge, len(data), p.maxFileSize)
	}

	var (
		text string
		err  error
	)
	switch fileType {
	case FileTypePDF:
		text, err = extractPDF(data)
	case FileTypeDOCX:
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, fileType)
	}
	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if text == "" {
		return "", models.ErrEmptyDocument
	}
	return text, nil
}

func (p *resumeParser) ExtractFile(path string) (string, error) {
	fileType, err := DetectFileType(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.ExtractText(data, fileType)
}

func (p *resumeParser) ExtractProfile(data []byte, fileType string) (*models.ResumeProfile, error) {
	text, err := p.ExtractText(data, fileType)
	if err != nil {
		return nil, err
	}

	lowered := strings.ToLower(text)
	skills := p.extractSkills(lowered)
	years := extractExperienceYears(lowered)

	return &models.ResumeProfile{
		RawText:         text,
		Skills:          skills,
		ExperienceYears: years,
		ATSScore:        min(100, len(skills)*10+years*5),
		FileType:        fileType,
	}, nil
}

// extractSkills returns the known skills found in text ordered by first appearance.
func (p *resumeParser) extractSkills(text string) []string {
	type hit struct {
		skill string
		pos   int
	}

	seen := make(map[string]struct{})
	var hits []hit
	for _, keyword := range p.skillKeywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if _, dup := seen[keyword]; dup || keyword == "" {
			continue
		}
		seen[keyword] = struct{}{}
		if pos := termIndex(text, keyword); pos >= 0 {
			hits = append(hits, hit{skill: keyword, pos: pos})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	skills := make([]string, 0, len(hits))
	for _, h := range hits {
		skills = append(skills, h.skill)
	}
	return skills
}

func extractExperienceYears(text string) int {
	match := experiencePattern.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	years, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return years
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to open PDF: %v", models.ErrValidation, err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

// extractDOCX reads the paragraphs of word/document.xml.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to open DOCX: %v", models.ErrValidation, err)
	}

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: failed to read DOCX body: %v", models.ErrValidation, err)
		}
		defer rc.Close()
		return docxText(rc)
	}

	return "", fmt.Errorf("%w: DOCX has no document body", models.ErrValidation)
}

func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		builder strings.Builder
		inText  bool
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: malformed DOCX body: %v", models.ErrValidation, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				builder.WriteString("\t")
			case "br":
				builder.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				builder.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				builder.Write(t)
			}
		}
	}

	return builder.String(), nil
}

// CleanText trims every line and drops empty ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
