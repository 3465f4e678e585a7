package parsers

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// sections whose data lines are counted into a record field.
var countedSections = map[string]func(*Record){
	"nodes":          func(r *Record) { r.Nodes++ },
	"nodes2":         func(r *Record) { r.Nodes++ },
	"beams":          func(r *Record) { r.Beams++ },
	"shocks":         func(r *Record) { r.Shocks++ },
	"shocks2":        func(r *Record) { r.Shocks++ },
	"shocks3":        func(r *Record) { r.Shocks++ },
	"fixes":          func(r *Record) { r.Fixes++ },
	"hydros":         func(r *Record) { r.Hydros++ },
	"commands":       func(r *Record) { r.Commands++ },
	"commands2":      func(r *Record) { r.Commands++ },
	"flares":         func(r *Record) { r.Flares++ },
	"flares2":        func(r *Record) { r.Flares++ },
	"props":          func(r *Record) { r.Props++ },
	"wings":          func(r *Record) { r.Wings++ },
	"turboprops":     func(r *Record) { r.Turboprops++ },
	"turboprops2":    func(r *Record) { r.Turboprops++ },
	"pistonprops":    func(r *Record) { r.Turboprops++ },
	"turbojets":      func(r *Record) { r.Turbojets++ },
	"rotators":       func(r *Record) { r.Rotators++ },
	"rotators2":      func(r *Record) { r.Rotators++ },
	"exhausts":       func(r *Record) { r.Exhausts++ },
	"soundsources":   func(r *Record) { r.SoundSources++ },
	"soundsources2":  func(r *Record) { r.SoundSources++ },
	"screwprops":     func(*Record) {},
	"particles":      func(r *Record) { r.CustomParticles = true },
	"cab":            func(*Record) {},
	"texcoords":      func(*Record) {},
	"guisettings":    func(*Record) {},
	"globals":        func(*Record) {},
	"engine":         func(*Record) {},
	"engoption":      func(*Record) {},
	"axles":          func(*Record) {},
	"flexbodies":     func(*Record) {},
	"wheels":         func(*Record) {},
	"wheels2":        func(*Record) {},
	"meshwheels":     func(*Record) {},
	"meshwheels2":    func(*Record) {},
	"flexbodywheels": func(*Record) {},
}

// field index of the propulsion flag per wheel section.
var propulsionIndex = map[string]int{
	"wheels":         7,
	"wheels2":        8,
	"meshwheels":     8,
	"meshwheels2":    8,
	"flexbodywheels": 8,
}

// TruckParser reads the line-based vehicle family formats (truck, car, boat,
// airplane, trailer, load, train, fixed, machine).
type TruckParser struct {
	ext string
}

// NewTruckParser creates a parser for files with the given extension.
func NewTruckParser(ext string) TruckParser {
	return TruckParser{ext: strings.ToLower(ext)}
}

type truckState struct {
	rec         Record
	section     string
	line        int
	inDesc      bool
	desc        []string
	axles       int
	hasEngine   bool
	hasScrew    bool
	hasAirprops bool
	fatal       []Message
}

func (s *truckState) warn(text string) {
	s.rec.Warnings = append(s.rec.Warnings, Message{Line: s.line, Section: s.section, Text: text})
}

func (s *truckState) fail(text string) {
	s.fatal = append(s.fatal, Message{Line: s.line, Section: s.section, Text: text})
}

// Parse reads a single vehicle definition.
func (p TruckParser) Parse(r io.Reader, scope string) ([]Record, error) {
	st := &truckState{rec: Record{CategoryID: -1, Version: -1, UniqueID: "-1"}}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	named := false
	for sc.Scan() {
		st.line++
		raw := strings.TrimRight(sc.Text(), "\r")

		if !named {
			name := strings.TrimSpace(raw)
			if name == "" {
				continue
			}
			st.rec.Name = name
			named = true
			continue
		}

		if st.inDesc {
			if strings.EqualFold(strings.TrimSpace(raw), "end_description") {
				st.inDesc = false
				continue
			}
			st.desc = append(st.desc, strings.TrimSpace(raw))
			continue
		}

		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "//") {
			continue
		}

		fields := strings.FieldsFunc(line, func(c rune) bool { return c == ',' || unicode.IsSpace(c) })
		keyword := strings.ToLower(fields[0])

		if keyword == "end" {
			break
		}
		if p.directive(st, keyword, fields[1:]) {
			continue
		}
		if _, ok := countedSections[keyword]; ok {
			st.section = keyword
			p.enterSection(st, keyword)
			continue
		}
		p.dataLine(st, fields)
	}
	if err := sc.Err(); err != nil {
		st.fail(err.Error())
	}

	if !named {
		st.fail("missing vehicle name on first line")
	}
	if st.inDesc {
		st.warn("description not terminated by end_description")
	}
	if len(st.fatal) > 0 {
		return nil, &ParseError{Messages: st.fatal}
	}

	p.finish(st)
	return []Record{st.rec}, nil
}

// directive handles single-line keywords that do not open a section.
func (p TruckParser) directive(st *truckState, keyword string, args []string) bool {
	switch keyword {
	case "author":
		// author <type> <forum id> <name> <email>
		a := Author{ID: -1}
		if len(args) > 0 {
			a.Type = args[0]
		}
		if len(args) > 1 {
			if id, err := strconv.Atoi(args[1]); err == nil && id >= 0 {
				a.ID = id
			} else if err != nil {
				st.warn("invalid author id " + strconv.Quote(args[1]))
			}
		}
		if len(args) > 2 {
			a.Name = strings.ReplaceAll(args[2], "_", " ")
		}
		if len(args) > 3 {
			a.Email = args[3]
		}
		st.rec.Authors = append(st.rec.Authors, a)
	case "fileinfo":
		// fileinfo <unique id> <category id> <version>
		st.rec.HasFileInfo = true
		if len(args) > 0 {
			st.rec.UniqueID = args[0]
		}
		if len(args) > 1 {
			v, err := strconv.Atoi(args[1])
			if err != nil {
				st.fail("invalid category id " + strconv.Quote(args[1]))
			} else {
				st.rec.CategoryID = v
			}
		}
		if len(args) > 2 {
			v, err := strconv.Atoi(args[2])
			if err != nil {
				st.fail("invalid file version " + strconv.Quote(args[2]))
			} else {
				st.rec.Version = v
			}
		}
	case "guid":
		if len(args) > 0 {
			st.rec.GUID = args[0]
		}
	case "fileformatversion":
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				st.fail("invalid file format version " + strconv.Quote(args[0]))
			} else {
				st.rec.FileFormatVersion = v
			}
		}
	case "description":
		st.inDesc = true
	case "sectionconfig":
		// sectionconfig <version> <name>
		if len(args) > 1 {
			st.rec.SectionConfigs = append(st.rec.SectionConfigs, args[1])
		} else {
			st.warn("sectionconfig without a name")
		}
	case "section", "end_section":
	case "forwardcommands":
		st.rec.ForwardCommands = true
	case "importcommands":
		st.rec.ImportCommands = true
	case "rescuer":
		st.rec.Rescuer = true
	case "submesh":
		st.rec.HasSubmeshes = true
		st.section = keyword
	default:
		return strings.HasPrefix(keyword, "set_") || (keyword == "forset" && st.section == "flexbodies")
	}
	return true
}

func (p TruckParser) enterSection(st *truckState, keyword string) {
	switch keyword {
	case "screwprops":
		st.hasScrew = true
	case "turbojets", "pistonprops", "turboprops", "turboprops2":
		st.hasAirprops = true
	}
}

func (p TruckParser) dataLine(st *truckState, fields []string) {
	switch st.section {
	case "":
		st.warn("data outside of any section")
		return
	case "engine":
		p.engine(st, fields)
	case "engoption":
		st.rec.EngineType = "t"
		if len(fields) > 1 && strings.EqualFold(fields[1], "c") {
			st.rec.EngineType = "c"
		}
	case "globals":
		if len(fields) > 0 {
			st.rec.TruckMass = st.number(fields[0])
		}
		if len(fields) > 1 {
			st.rec.LoadMass = st.number(fields[1])
		}
	case "axles":
		st.axles++
	case "flexbodies":
		st.rec.Flexbodies++
	case "guisettings":
		if strings.EqualFold(fields[0], "tachomaterial") {
			st.rec.CustomTach = true
		}
	case "wheels", "wheels2", "meshwheels", "meshwheels2", "flexbodywheels":
		st.rec.Wheels++
		if idx := propulsionIndex[st.section]; len(fields) > idx && fields[idx] != "0" {
			st.rec.PropWheels++
		}
	default:
		if count, ok := countedSections[st.section]; ok {
			count(&st.rec)
		}
	}
}

// engine reads: min rpm, max rpm, torque, differential, reverse gear, forward gears..., -1
func (p TruckParser) engine(st *truckState, fields []string) {
	if len(fields) < 3 {
		st.fail("engine needs at least min rpm, max rpm and torque")
		return
	}
	st.hasEngine = true
	st.rec.MinRPM = st.number(fields[0])
	st.rec.MaxRPM = st.number(fields[1])
	st.rec.Torque = st.number(fields[2])
	if st.rec.EngineType == "" {
		st.rec.EngineType = "t"
	}

	gears := 0
	for i := 5; i < len(fields); i++ {
		v := st.number(fields[i])
		if v <= -1 {
			break
		}
		gears++
	}
	st.rec.NumGears = gears
}

func (s *truckState) number(v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		s.fail("invalid number " + strconv.Quote(v))
		return 0
	}
	return f
}

func (p TruckParser) finish(st *truckState) {
	st.rec.Description = strings.Join(st.desc, "\n")

	if st.axles > 0 {
		st.rec.PropWheels = st.axles * 2
	}

	// later matches take precedence
	kind := NotDriveable
	if st.hasEngine {
		kind = Truck
	}
	if st.hasScrew {
		kind = Boat
	}
	if st.hasAirprops {
		kind = Airplane
	}
	if p.ext == "machine" && kind == NotDriveable {
		kind = Machine
	}
	st.rec.Kind = kind
}
