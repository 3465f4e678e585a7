package parsers

import (
	"fmt"
	"io"
	"strings"
)

// VehicleKind classifies what a vehicle definition can drive as.
type VehicleKind int

const (
	NotDriveable VehicleKind = iota
	Truck
	Airplane
	Boat
	Machine
)

// String returns the lower-case kind name.
func (k VehicleKind) String() string {
	switch k {
	case Truck:
		return "truck"
	case Airplane:
		return "airplane"
	case Boat:
		return "boat"
	case Machine:
		return "machine"
	default:
		return "notdriveable"
	}
}

// Author is one credited author of a content file. ID is -1 without a forum account.
type Author struct {
	Type  string
	Name  string
	Email string
	ID    int
}

// Message is a diagnostic raised while parsing.
type Message struct {
	Line    int
	Section string
	Text    string
}

func (m Message) String() string {
	if m.Section == "" {
		return fmt.Sprintf("line %d: %s", m.Line, m.Text)
	}
	return fmt.Sprintf("line %d [%s]: %s", m.Line, m.Section, m.Text)
}

// ParseError is returned when a file is too malformed to produce a record.
type ParseError struct {
	Messages []Message
}

func (e *ParseError) Error() string {
	parts := make([]string, len(e.Messages))
	for i, m := range e.Messages {
		parts[i] = m.String()
	}
	return "parse failed: " + strings.Join(parts, "; ")
}

// SkinDef holds the texture and material replacements of one skin.
type SkinDef struct {
	Name             string
	Description      string
	GUID             string
	Thumbnail        string
	ReplaceTextures  map[string]string
	ReplaceMaterials map[string]string
}

// Record is the metadata a parser extracts from one definition.
type Record struct {
	Name        string
	Description string
	GUID        string
	// UniqueID and Version come from a fileinfo directive; HasFileInfo is false otherwise.
	UniqueID    string
	CategoryID  int
	Version     int
	HasFileInfo bool
	Tags        string
	Authors     []Author

	FileFormatVersion int
	HasSubmeshes      bool

	Nodes        int
	Beams        int
	Shocks       int
	Fixes        int
	Hydros       int
	Wheels       int
	PropWheels   int
	Commands     int
	Flares       int
	Props        int
	Wings        int
	Turboprops   int
	Turbojets    int
	Rotators     int
	Exhausts     int
	Flexbodies   int
	SoundSources int
	NumGears     int

	TruckMass float64
	LoadMass  float64
	MinRPM    float64
	MaxRPM    float64
	Torque    float64

	CustomTach      bool
	CustomParticles bool
	ForwardCommands bool
	ImportCommands  bool
	Rescuer         bool

	EngineType     string
	Kind           VehicleKind
	SectionConfigs []string

	// Thumbnail is the preview file a skin declares.
	Thumbnail string
	Skin      *SkinDef

	// Warnings are non-fatal diagnostics.
	Warnings []Message
}

// Parser extracts records from a definition stream. scope names the group
// the stream was opened from and is only used for diagnostics.
type Parser interface {
	Parse(r io.Reader, scope string) ([]Record, error)
}

// Registry maps file extensions to parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// DefaultRegistry registers the built-in vehicle, terrain and skin parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, ext := range []string{"truck", "car", "boat", "airplane", "trailer", "load", "train", "fixed", "machine"} {
		r.Register(ext, NewTruckParser(ext))
	}
	r.Register("terrn2", TerrainParser{})
	r.Register("skin", SkinParser{})
	return r
}

// Register binds a parser to an extension (without dot).
func (r *Registry) Register(ext string, p Parser) {
	r.parsers[strings.ToLower(ext)] = p
}

// Lookup returns the parser bound to ext.
func (r *Registry) Lookup(ext string) (Parser, bool) {
	p, ok := r.parsers[strings.ToLower(ext)]
	return p, ok
}
