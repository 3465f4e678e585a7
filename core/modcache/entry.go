package modcache

import (
	"path"
	"strings"

	"content-cache/core/content"
	"content-cache/core/parsers"
)

// Author is a credited author of an entry. ID is -1 without a forum account.
type Author struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Email string `json:"email"`
	ID    int    `json:"id"`
}

// Entry is one cataloged piece of content.
type Entry struct {
	Number       int   `json:"number"`
	UsageCounter int   `json:"usagecounter"`
	AddTimestamp int64 `json:"addtimestamp"`

	BundleType      content.BundleType `json:"resource_bundle_type"`
	BundlePath      string             `json:"resource_bundle_path"`
	Fpath           string             `json:"fpath"`
	Fname           string             `json:"fname"`
	FnameWithoutUID string             `json:"fname_without_uid"`
	Fext            string             `json:"fext"`
	FileTime        int64              `json:"filetime"`

	DisplayName   string   `json:"dname"`
	CategoryID    int      `json:"categoryid"`
	CategoryName  string   `json:"categoryname"`
	UniqueID      string   `json:"uniqueid"`
	GUID          string   `json:"guid"`
	Version       int      `json:"version"`
	FileCacheName string   `json:"filecachename"`
	Authors       []Author `json:"authors"`
	Description   string   `json:"description"`
	Tags          string   `json:"tags"`

	FileFormatVersion int  `json:"fileformatversion"`
	HasSubmeshes      bool `json:"hasSubmeshs"`

	NodeCount        int `json:"nodecount"`
	BeamCount        int `json:"beamcount"`
	ShockCount       int `json:"shockcount"`
	FixesCount       int `json:"fixescount"`
	HydrosCount      int `json:"hydroscount"`
	WheelCount       int `json:"wheelcount"`
	PropWheelCount   int `json:"propwheelcount"`
	CommandsCount    int `json:"commandscount"`
	FlaresCount      int `json:"flarescount"`
	PropsCount       int `json:"propscount"`
	WingsCount       int `json:"wingscount"`
	TurbopropsCount  int `json:"turbopropscount"`
	TurbojetCount    int `json:"turbojetcount"`
	RotatorsCount    int `json:"rotatorscount"`
	ExhaustsCount    int `json:"exhaustscount"`
	FlexbodiesCount  int `json:"flexbodiescount"`
	SoundSourceCount int `json:"soundsourcescount"`

	TruckMass float64 `json:"truckmass"`
	LoadMass  float64 `json:"loadmass"`
	MinRPM    float64 `json:"minrpm"`
	MaxRPM    float64 `json:"maxrpm"`
	Torque    float64 `json:"torque"`

	CustomTach      bool                `json:"customtach"`
	CustomParticles bool                `json:"custom_particles"`
	ForwardCommands bool                `json:"forwardcommands"`
	ImportCommands  bool                `json:"importcommands"`
	Rescuer         bool                `json:"rescuer"`
	Driveable       parsers.VehicleKind `json:"driveable"`
	NumGears        int                 `json:"numgears"`
	EngineType      string              `json:"enginetype"`
	SectionConfigs  []string            `json:"sectionconfigs"`

	// Deleted entries stay addressable in-process but are never persisted or returned by lookups.
	Deleted bool `json:"-"`
	// ResourceGroup is set on first materialization.
	ResourceGroup string `json:"-"`
	// SkinDef is filled lazily for skin entries.
	SkinDef *parsers.SkinDef `json:"-"`
}

// Ref returns the bundle the entry was read from.
func (e *Entry) Ref() content.Ref {
	return content.Ref{Type: e.BundleType, Path: e.BundlePath}
}

// IsSkin reports whether the entry describes a skin.
func (e *Entry) IsSkin() bool {
	return e.Fext == "skin"
}

// IsTerrain reports whether the entry describes a terrain.
func (e *Entry) IsTerrain() bool {
	return e.Fext == "terrn2"
}

// fromRecord copies parser output into a new entry. Slices are copied so the
// entry never aliases the record.
func fromRecord(rec parsers.Record) *Entry {
	e := &Entry{
		DisplayName:       rec.Name,
		Description:       rec.Description,
		GUID:              strings.ToLower(strings.TrimSpace(rec.GUID)),
		UniqueID:          rec.UniqueID,
		CategoryID:        rec.CategoryID,
		Version:           rec.Version,
		Tags:              rec.Tags,
		FileFormatVersion: rec.FileFormatVersion,
		HasSubmeshes:      rec.HasSubmeshes,
		NodeCount:         rec.Nodes,
		BeamCount:         rec.Beams,
		ShockCount:        rec.Shocks,
		FixesCount:        rec.Fixes,
		HydrosCount:       rec.Hydros,
		WheelCount:        rec.Wheels,
		PropWheelCount:    rec.PropWheels,
		CommandsCount:     rec.Commands,
		FlaresCount:       rec.Flares,
		PropsCount:        rec.Props,
		WingsCount:        rec.Wings,
		TurbopropsCount:   rec.Turboprops,
		TurbojetCount:     rec.Turbojets,
		RotatorsCount:     rec.Rotators,
		ExhaustsCount:     rec.Exhausts,
		FlexbodiesCount:   rec.Flexbodies,
		SoundSourceCount:  rec.SoundSources,
		TruckMass:         rec.TruckMass,
		LoadMass:          rec.LoadMass,
		MinRPM:            rec.MinRPM,
		MaxRPM:            rec.MaxRPM,
		Torque:            rec.Torque,
		CustomTach:        rec.CustomTach,
		CustomParticles:   rec.CustomParticles,
		ForwardCommands:   rec.ForwardCommands,
		ImportCommands:    rec.ImportCommands,
		Rescuer:           rec.Rescuer,
		Driveable:         rec.Kind,
		NumGears:          rec.NumGears,
		EngineType:        rec.EngineType,
		Authors:           make([]Author, 0, len(rec.Authors)),
		SectionConfigs:    append([]string{}, rec.SectionConfigs...),
	}

	if !rec.HasFileInfo {
		e.UniqueID = "-1"
		e.CategoryID = -1
		e.Version = -1
	}
	if e.UniqueID == "" {
		e.UniqueID = "-1"
	}

	for _, a := range rec.Authors {
		id := a.ID
		if id < 0 {
			id = -1
		}
		e.Authors = append(e.Authors, Author{Type: a.Type, Name: a.Name, Email: a.Email, ID: id})
	}

	if rec.Skin != nil {
		e.SkinDef = copySkin(rec.Skin)
	}
	return e
}

func copySkin(s *parsers.SkinDef) *parsers.SkinDef {
	out := *s
	out.ReplaceTextures = make(map[string]string, len(s.ReplaceTextures))
	for k, v := range s.ReplaceTextures {
		out.ReplaceTextures[k] = v
	}
	out.ReplaceMaterials = make(map[string]string, len(s.ReplaceMaterials))
	for k, v := range s.ReplaceMaterials {
		out.ReplaceMaterials[k] = v
	}
	return &out
}

// StripUID removes a UID segment from a content file name. Both the trailing
// form ("rig1-UID-abc123.truck") and the leading form ("abc123UID-rig1.truck")
// are recognised; the marker is case-sensitive. Names without one are
// returned unchanged.
func StripUID(filename string) string {
	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	if i := strings.Index(base, "-"); i >= 3 && base[i-3:i] == "UID" && i+1 < len(base) && !strings.ContainsAny(base[:i], "_ ") {
		return base[i+1:] + ext
	}

	for _, marker := range []string{"-UID-", "_UID-"} {
		if i := strings.LastIndex(base, marker); i > 0 {
			return base[:i] + ext
		}
	}
	return filename
}
