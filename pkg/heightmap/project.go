package heightmap

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const projectFileVersion = "1"
const projectExtension = ".heightproj"

// ProjectManager persists and reloads a generation project (its config
// plus an optional authoring layer stack) to/from disk. Adapted from the
// teacher's SaveManager (pkg/saveload/manager.go): a directory-scoped
// manager with a validated name, a marshal step, and a write step — but
// the write step here is truly atomic (temp file + rename), which the
// teacher's writeSaveFile never was.
type ProjectManager struct {
	fs     afero.Fs
	dir    string
	logger *logrus.Entry
}

// NewProjectManager creates a project manager rooted at dir, creating the
// directory if it doesn't exist.
func NewProjectManager(fs afero.Fs, dir string, logger *logrus.Entry) (*ProjectManager, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errIO("project", fmt.Errorf("create project directory: %w", err))
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	return &ProjectManager{fs: fs, dir: dir, logger: logger.WithField("component", "project")}, nil
}

// Project is the in-memory handle for one project file. LoadProject
// returns one; passing that same value back to SaveProject carries
// forward every field this version doesn't model — not just the Config
// and Layers it understands — satisfying spec §6's "unknown fields must
// be preserved on round-trip". A zero-value (or NewProject-built) Project
// has no passthrough fields, as for a project that has never touched disk.
type Project struct {
	Config Config
	Layers *LayerStack

	topExtra    map[string]json.RawMessage
	zoneExtra   map[string]json.RawMessage
	metadata    json.RawMessage
	settings    json.RawMessage
	connections json.RawMessage
}

// NewProject wraps a fresh config and optional layer stack with no
// passthrough fields.
func NewProject(cfg Config, stack *LayerStack) *Project {
	return &Project{Config: cfg, Layers: stack}
}

// projectSavedAt is a seam so tests can stub the clock for byte-identical
// round-trip assertions; production calls time.Now().UTC().Format.
var projectSavedAt = func() string { return time.Now().UTC().Format(time.RFC3339) }

// topLevelKeys and zoneKeys are the field names this version understands
// at each level of the document; everything else round-trips verbatim.
var topLevelKeys = []string{"version", "metadata", "world", "settings", "last_saved"}
var zoneKeys = []string{"config", "layers", "connections"}

// projectLayers is spec §6's "layers: {layers: [...], order: [...]}"
// shape: the layer definitions plus an explicit bottom-to-top id order,
// distinct from (but normally matching) the array's own order.
type projectLayers struct {
	Layers []projectLayer `json:"layers,omitempty"`
	Order  []string       `json:"order,omitempty"`
}

type projectLayer struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Visible  bool              `json:"visible"`
	Locked   bool              `json:"locked"`
	Opacity  float64           `json:"opacity"`
	Blend    BlendMode         `json:"blend_mode"`
	Color    [3]uint8          `json:"color"`
	Data     string            `json:"data"` // base64
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SaveProject writes p under name, adding the project extension if
// missing. The document shape is spec §6's
// {version, metadata, world:{zones:[{layers:{layers,order}, connections}]},
// settings, last_saved}. This package models a single zone; any fields a
// richer host attached to the top-level document or to that zone (loaded
// via LoadProject and still carried on p) are merged back in verbatim.
func (m *ProjectManager) SaveProject(name string, p *Project) error {
	if err := validateProjectName(name); err != nil {
		return err
	}
	if p == nil {
		p = &Project{}
	}

	var pl projectLayers
	if p.Layers != nil {
		for _, l := range p.Layers.layers {
			pl.Layers = append(pl.Layers, projectLayer{
				ID: l.ID, Name: l.Name, Type: l.Type, Visible: l.Visible,
				Locked: l.Locked, Opacity: l.Opacity, Blend: l.Blend, Color: l.Color,
				Data: base64.StdEncoding.EncodeToString(l.Data), Metadata: l.Metadata,
			})
			pl.Order = append(pl.Order, l.ID)
		}
	}
	layersJSON, err := json.Marshal(pl)
	if err != nil {
		return errIO("project", fmt.Errorf("marshal layers: %w", err))
	}
	configJSON, err := json.Marshal(p.Config)
	if err != nil {
		return errIO("project", fmt.Errorf("marshal config: %w", err))
	}
	connections := p.connections
	if connections == nil {
		connections = json.RawMessage("[]")
	}

	zone := map[string]json.RawMessage{
		"config":      configJSON,
		"layers":      layersJSON,
		"connections": connections,
	}
	for k, v := range p.zoneExtra {
		if _, exists := zone[k]; !exists {
			zone[k] = v
		}
	}
	zoneJSON, err := json.Marshal(zone)
	if err != nil {
		return errIO("project", fmt.Errorf("marshal zone: %w", err))
	}
	zonesJSON, err := json.Marshal([]json.RawMessage{zoneJSON})
	if err != nil {
		return errIO("project", fmt.Errorf("marshal zones: %w", err))
	}
	worldJSON, err := json.Marshal(map[string]json.RawMessage{"zones": zonesJSON})
	if err != nil {
		return errIO("project", fmt.Errorf("marshal world: %w", err))
	}

	metadata := p.metadata
	if metadata == nil {
		metadata = json.RawMessage("{}")
	}
	settings := p.settings
	if settings == nil {
		settings = json.RawMessage("{}")
	}
	versionJSON, err := json.Marshal(projectFileVersion)
	if err != nil {
		return errIO("project", fmt.Errorf("marshal version: %w", err))
	}
	lastSavedJSON, err := json.Marshal(projectSavedAt())
	if err != nil {
		return errIO("project", fmt.Errorf("marshal last_saved: %w", err))
	}

	doc := map[string]json.RawMessage{
		"version":    versionJSON,
		"metadata":   metadata,
		"world":      worldJSON,
		"settings":   settings,
		"last_saved": lastSavedJSON,
	}
	for k, v := range p.topExtra {
		if _, exists := doc[k]; !exists {
			doc[k] = v
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		m.logger.WithError(err).WithField("name", name).Error("failed to marshal project")
		return errIO("project", fmt.Errorf("marshal project: %w", err))
	}

	if err := m.atomicWrite(m.path(name), data); err != nil {
		return err
	}
	m.logger.WithFields(logrus.Fields{"name": name, "size": len(data)}).Info("project saved")
	return nil
}

// LoadProject reads back a *Project: its Config, a reconstructed
// LayerStack if one was saved, and every field this version doesn't model
// (captured so a later SaveProject of the same value round-trips them).
func (m *ProjectManager) LoadProject(name string) (*Project, error) {
	if err := validateProjectName(name); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(m.fs, m.path(name))
	if err != nil {
		return nil, errIO("project", fmt.Errorf("read project %s: %w", name, err))
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errIO("project", fmt.Errorf("unmarshal project %s: %w", name, err))
	}

	var version string
	if v, ok := doc["version"]; ok {
		if err := json.Unmarshal(v, &version); err != nil {
			return nil, errIO("project", fmt.Errorf("unmarshal version: %w", err))
		}
	}
	if version != projectFileVersion {
		return nil, errIO("project", fmt.Errorf("project %s has unsupported version %q", name, version))
	}

	var world struct {
		Zones []map[string]json.RawMessage `json:"zones"`
	}
	if w, ok := doc["world"]; ok {
		if err := json.Unmarshal(w, &world); err != nil {
			return nil, errIO("project", fmt.Errorf("unmarshal world: %w", err))
		}
	}
	if len(world.Zones) == 0 {
		return nil, errIO("project", fmt.Errorf("project %s has no zones", name))
	}
	zone := world.Zones[0]

	p := &Project{
		metadata: doc["metadata"],
		settings: doc["settings"],
		topExtra: extraKeys(doc, topLevelKeys),
	}

	if cfgRaw, ok := zone["config"]; ok {
		if err := json.Unmarshal(cfgRaw, &p.Config); err != nil {
			return nil, errIO("project", fmt.Errorf("unmarshal config: %w", err))
		}
	}
	p.connections = zone["connections"]
	p.zoneExtra = extraKeys(zone, zoneKeys)

	if layersRaw, ok := zone["layers"]; ok {
		var pl projectLayers
		if err := json.Unmarshal(layersRaw, &pl); err != nil {
			return nil, errIO("project", fmt.Errorf("unmarshal layers: %w", err))
		}
		if stack := buildLayerStack(pl, p.Config); stack != nil {
			p.Layers = stack
		}
	}

	return p, nil
}

// extraKeys returns every entry of doc whose key is not in known, so a
// later save can merge it back in unmodified.
func extraKeys(doc map[string]json.RawMessage, known []string) map[string]json.RawMessage {
	extra := make(map[string]json.RawMessage, len(doc))
	for k, v := range doc {
		if containsKey(known, k) {
			continue
		}
		extra[k] = v
	}
	return extra
}

func containsKey(keys []string, k string) bool {
	for _, key := range keys {
		if key == k {
			return true
		}
	}
	return false
}

func buildLayerStack(pl projectLayers, cfg Config) *LayerStack {
	if len(pl.Layers) == 0 {
		return nil
	}
	stack := &LayerStack{Cols: cfg.Cols(), Rows: cfg.Rows()}
	byID := make(map[string]*Layer, len(pl.Layers))
	for _, l := range pl.Layers {
		raw, err := base64.StdEncoding.DecodeString(l.Data)
		if err != nil {
			continue
		}
		byID[l.ID] = &Layer{
			ID: l.ID, Name: l.Name, Type: l.Type, Visible: l.Visible,
			Locked: l.Locked, Opacity: l.Opacity, Blend: l.Blend, Color: l.Color,
			Data: raw, Cols: stack.Cols, Rows: stack.Rows, Metadata: l.Metadata,
		}
	}
	order := pl.Order
	if len(order) == 0 {
		for _, l := range pl.Layers {
			order = append(order, l.ID)
		}
	}
	for _, id := range order {
		if layer, ok := byID[id]; ok {
			stack.layers = append(stack.layers, layer)
		}
	}
	return stack
}

// ProjectExists reports whether a project file of this name is present.
func (m *ProjectManager) ProjectExists(name string) bool {
	if err := validateProjectName(name); err != nil {
		return false
	}
	_, err := m.fs.Stat(m.path(name))
	return err == nil
}

func (m *ProjectManager) path(name string) string {
	if !strings.HasSuffix(name, projectExtension) {
		name += projectExtension
	}
	return filepath.Join(m.dir, name)
}

func validateProjectName(name string) error {
	if name == "" {
		return errConfigInvalid("name", "project name cannot be empty")
	}
	trimmed := strings.TrimSuffix(name, projectExtension)
	if strings.ContainsAny(trimmed, "/\\") {
		return errConfigInvalid("name", "project name cannot contain path separators")
	}
	return nil
}

func (m *ProjectManager) atomicWrite(dst string, data []byte) error {
	tmp := dst + ".tmp"
	f, err := m.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errIO("project", fmt.Errorf("create temp project file: %w", err))
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		m.fs.Remove(tmp)
		return errIO("project", fmt.Errorf("write temp project file: %w", err))
	}
	if err := f.Close(); err != nil {
		m.fs.Remove(tmp)
		return errIO("project", fmt.Errorf("close temp project file: %w", err))
	}
	if err := m.fs.Rename(tmp, dst); err != nil {
		m.fs.Remove(tmp)
		return errIO("project", fmt.Errorf("rename project file into place: %w", err))
	}
	return nil
}
