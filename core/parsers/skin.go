package parsers

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// SkinParser reads skin descriptors made of one or more skin ... end_skin blocks.
type SkinParser struct{}

// Parse yields one record per skin block.
func (SkinParser) Parse(r io.Reader, scope string) ([]Record, error) {
	var (
		out     []Record
		current *Record
		fatal   []Message
		author  *Author
	)

	line := 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "//") || strings.HasPrefix(text, ";") {
			continue
		}

		keyword, rest, _ := strings.Cut(text, " ")
		keyword = strings.ToLower(keyword)
		rest = strings.TrimSpace(rest)

		if current == nil {
			if keyword != "skin" || rest == "" {
				fatal = append(fatal, Message{Line: line, Text: "expected 'skin <name>'"})
				continue
			}
			current = &Record{
				Name:       rest,
				CategoryID: -1,
				Version:    -1,
				UniqueID:   "-1",
				Skin: &SkinDef{
					Name:             rest,
					ReplaceTextures:  map[string]string{},
					ReplaceMaterials: map[string]string{},
				},
			}
			author = nil
			continue
		}

		warn := func(msg string) {
			current.Warnings = append(current.Warnings, Message{Line: line, Section: current.Name, Text: msg})
		}

		switch keyword {
		case "end_skin":
			current.Skin.Name = current.Name
			current.Skin.Description = current.Description
			current.Skin.GUID = current.GUID
			current.Skin.Thumbnail = current.Thumbnail
			out = append(out, *current)
			current = nil
		case "description":
			current.Description = strings.Trim(rest, "\"")
		case "guid":
			current.GUID = rest
		case "preview":
			current.Thumbnail = rest
		case "name":
			current.Name = rest
		case "author_name":
			if author == nil {
				current.Authors = append(current.Authors, Author{ID: -1})
				author = &current.Authors[len(current.Authors)-1]
			}
			author.Name = rest
		case "author_id":
			id, err := strconv.Atoi(rest)
			if err != nil {
				warn("invalid author_id " + strconv.Quote(rest))
				continue
			}
			if author == nil {
				current.Authors = append(current.Authors, Author{ID: -1})
				author = &current.Authors[len(current.Authors)-1]
			}
			author.ID = id
		case "replace_texture", "replace_material":
			from, to, ok := strings.Cut(rest, " ")
			if !ok {
				warn(keyword + " needs a source and a replacement")
				continue
			}
			if keyword == "replace_texture" {
				current.Skin.ReplaceTextures[from] = strings.TrimSpace(to)
			} else {
				current.Skin.ReplaceMaterials[from] = strings.TrimSpace(to)
			}
		default:
			warn("unknown keyword " + strconv.Quote(keyword))
		}
	}
	if err := sc.Err(); err != nil {
		fatal = append(fatal, Message{Line: line, Text: err.Error()})
	}
	if current != nil {
		fatal = append(fatal, Message{Line: line, Section: current.Name, Text: "skin not terminated by end_skin"})
	}
	if len(fatal) > 0 {
		return nil, &ParseError{Messages: fatal}
	}
	return out, nil
}
