package parsers

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// TerrainParser reads terrn2 descriptors, an INI dialect with [General] and [Authors] sections.
type TerrainParser struct{}

// Parse reads a single terrain descriptor.
func (TerrainParser) Parse(r io.Reader, scope string) ([]Record, error) {
	rec := Record{CategoryID: -1, Version: -1, UniqueID: "-1"}
	var fatal []Message

	section := ""
	line := 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, ";") || strings.HasPrefix(text, "#") {
			continue
		}
		if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
			section = strings.ToLower(strings.TrimSpace(text[1 : len(text)-1]))
			continue
		}

		if section == "description" {
			if rec.Description != "" {
				rec.Description += "\n"
			}
			rec.Description += text
			continue
		}

		key, value, ok := strings.Cut(text, "=")
		if !ok {
			rec.Warnings = append(rec.Warnings, Message{Line: line, Section: section, Text: "expected key=value"})
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch section {
		case "general":
			switch strings.ToLower(key) {
			case "name":
				rec.Name = value
			case "guid":
				rec.GUID = value
			case "categoryid":
				v, err := strconv.Atoi(value)
				if err != nil {
					fatal = append(fatal, Message{Line: line, Section: section, Text: "invalid CategoryID " + strconv.Quote(value)})
					continue
				}
				rec.CategoryID = v
			case "version":
				v, err := strconv.Atoi(value)
				if err != nil {
					fatal = append(fatal, Message{Line: line, Section: section, Text: "invalid Version " + strconv.Quote(value)})
					continue
				}
				rec.Version = v
				rec.HasFileInfo = true
			}
		case "authors":
			rec.Authors = append(rec.Authors, Author{Type: key, Name: value, ID: -1})
		}
	}
	if err := sc.Err(); err != nil {
		fatal = append(fatal, Message{Line: line, Text: err.Error()})
	}
	if rec.Name == "" {
		fatal = append(fatal, Message{Section: "general", Text: "missing Name"})
	}
	if len(fatal) > 0 {
		return nil, &ParseError{Messages: fatal}
	}
	return []Record{rec}, nil
}
