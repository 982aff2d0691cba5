// Package app provides application state, navigation, and events.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"neuron-tracer/internal/config"
	"neuron-tracer/internal/edit"
	"neuron-tracer/internal/fileio"
	"neuron-tracer/internal/picker"
)

var (
	// ErrSelectionInvalid is the user-facing failure for edit actions that
	// need exactly one selected point.
	ErrSelectionInvalid = errors.New("select exactly one point first")

	// ErrAmbiguousName is returned by JumpToName when several files share
	// the requested stem.
	ErrAmbiguousName = errors.New("ambiguous file name")
)

// Renderer is the viewport surface the controller drives. All methods run
// on the UI thread. A nil Renderer is legal and turns rendering into a
// no-op, which headless use relies on.
type Renderer interface {
	// ShowDocument replaces the displayed geometry. maskedOnly restricts a
	// tree to its subtree mask.
	ShowDocument(doc *Document, maskedOnly bool)
	ShowMesh(mesh *fileio.Mesh)
	HideMesh()
}

// EventType identifies different application events.
type EventType int

const (
	EventFolderOpened EventType = iota
	EventDocumentLoaded
	EventDocumentSaved
	EventFileListChanged
	EventModified
	EventSelectionMode
	EventSelectionChanged
	EventTreeEdited
	EventSubtreeView
	EventMeshChanged
	EventScaleChanged
	EventFlagChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State holds the application state: the open folder and file list, the
// current document with its caches, selection mode, and display toggles.
//
// All mutating methods are UI-thread calls; the mutex only guards the
// fields the folder watcher goroutine reads.
type State struct {
	mu sync.RWMutex

	cfg   config.Config
	files *fileio.Manager
	log   *slog.Logger

	renderer Renderer
	selector *picker.Selector
	tools    *edit.Tools

	// Folder navigation
	folder   string
	fileList []string
	index    int // -1 when nothing from the list is loaded

	doc  *Document
	mesh *fileio.Mesh

	modified    bool
	autoSave    bool
	showMesh    bool
	showSubtree bool

	scaleLengthNM int64
	scaleUnits    string

	listeners map[EventType][]EventListener
}

// NewState creates the application state from configuration.
func NewState(cfg config.Config, files *fileio.Manager, log *slog.Logger) *State {
	if files == nil {
		files = fileio.NewManager(cfg.Files.MeshExtensions)
	}
	if log == nil {
		log = slog.Default()
	}
	return &State{
		cfg:           cfg,
		files:         files,
		log:           log,
		tools:         edit.New(),
		index:         -1,
		autoSave:      cfg.Files.AutoSave,
		showMesh:      cfg.View.ShowMesh,
		scaleLengthNM: cfg.View.ScaleBarLength,
		scaleUnits:    cfg.View.ScaleBarUnits,
		listeners:     make(map[EventType][]EventListener),
	}
}

// Config returns the configuration the state was built from.
func (s *State) Config() config.Config { return s.cfg }

// FileManager returns the I/O manager.
func (s *State) FileManager() *fileio.Manager { return s.files }

// AttachRenderer wires the viewport in. Must be called before any load
// when a display is present.
func (s *State) AttachRenderer(r Renderer) { s.renderer = r }

// AttachSelector wires the point selector in and forwards its
// selection-changed callback onto the event bus.
func (s *State) AttachSelector(sel *picker.Selector) {
	s.selector = sel
	if sel != nil {
		sel.SetThreshold(s.cfg.Selection.PickThreshold)
		sel.OnSelectionChanged(func(count int) {
			s.Emit(EventSelectionChanged, count)
		})
	}
}

// Selector returns the attached point selector, nil before AttachSelector.
func (s *State) Selector() *picker.Selector { return s.selector }

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the current document as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	changed := s.modified != modified
	s.modified = modified
	s.mu.Unlock()
	if changed {
		s.Emit(EventModified, modified)
	}
}

// Modified reports whether the current document has unsaved edits.
func (s *State) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// Document returns the current snapshot, nil when nothing is loaded.
func (s *State) Document() *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Folder returns the open folder, empty when a single file was opened.
func (s *State) Folder() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.folder
}

// Files returns a copy of the navigation file list.
func (s *State) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.fileList...)
}

// CurrentPath returns the path of the loaded document, empty when none.
func (s *State) CurrentPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return ""
	}
	return s.doc.Path()
}

// FileCounter returns the 1-based position of the current file and the
// list length, (0, n) when nothing from the list is loaded.
func (s *State) FileCounter() (current, total int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index < 0 {
		return 0, len(s.fileList)
	}
	return s.index + 1, len(s.fileList)
}

// OpenFile loads a single file. The navigation list collapses to just
// this file; use OpenFolder for folder browsing.
func (s *State) OpenFile(path string) error {
	if err := s.loadPath(path); err != nil {
		return err
	}
	s.mu.Lock()
	s.folder = ""
	s.fileList = []string{path}
	s.index = 0
	s.mu.Unlock()
	s.Emit(EventFolderOpened, s.Files())
	return nil
}

// OpenFolder scans a folder for reconstruction files and loads the first.
func (s *State) OpenFolder(folder string) error {
	list, err := s.files.ScanFolder(folder)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("no reconstruction files in %s", folder)
	}
	if err := s.loadPath(list[0]); err != nil {
		return err
	}
	s.mu.Lock()
	s.folder = folder
	s.fileList = list
	s.index = 0
	s.mu.Unlock()
	s.Emit(EventFolderOpened, s.Files())
	return nil
}

// RefreshFileList rescans the open folder, keeping the current document
// loaded. The current file keeps its position when it still exists;
// otherwise the index clamps to the nearest remaining entry.
func (s *State) RefreshFileList() error {
	s.mu.RLock()
	folder := s.folder
	s.mu.RUnlock()
	if folder == "" {
		return nil
	}
	list, err := s.files.ScanFolder(folder)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.fileList = list
	current := ""
	if s.doc != nil {
		current = s.doc.Path()
	}
	s.index = -1
	for i, f := range list {
		if f == current {
			s.index = i
			break
		}
	}
	if s.index < 0 && len(list) > 0 {
		s.index = len(list) - 1
	}
	s.mu.Unlock()

	s.Emit(EventFileListChanged, s.Files())
	return nil
}

// NextFile navigates to the next file in the list. Returns false at the
// end of the list, when no list is loaded, or when the pre-navigation
// auto-save fails.
func (s *State) NextFile() bool {
	s.mu.RLock()
	target := s.index + 1
	ok := s.index >= 0 && target < len(s.fileList)
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return s.navigateTo(target)
}

// PrevFile navigates to the previous file in the list. Returns false at
// index 0, when no list is loaded, or when the auto-save fails.
func (s *State) PrevFile() bool {
	s.mu.RLock()
	target := s.index - 1
	ok := s.index > 0
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return s.navigateTo(target)
}

// JumpToIndex navigates to the n-th file, 1-based as typed by the user.
func (s *State) JumpToIndex(n int) error {
	s.mu.RLock()
	total := len(s.fileList)
	s.mu.RUnlock()
	if n < 1 || n > total {
		return fmt.Errorf("file number %d out of range 1..%d", n, total)
	}
	if !s.navigateTo(n - 1) {
		return fmt.Errorf("could not load file %d", n)
	}
	return nil
}

// JumpToName navigates to the file whose stem matches name, ignoring
// case. Several files sharing the stem is an error rather than a silent
// first match.
func (s *State) JumpToName(name string) error {
	s.mu.RLock()
	var matches []int
	for i, f := range s.fileList {
		if strings.EqualFold(fileio.Stem(f), name) {
			matches = append(matches, i)
		}
	}
	s.mu.RUnlock()

	switch len(matches) {
	case 0:
		return fmt.Errorf("no file named %q", name)
	case 1:
		if !s.navigateTo(matches[0]) {
			return fmt.Errorf("could not load %q", name)
		}
		return nil
	default:
		var paths []string
		s.mu.RLock()
		for _, i := range matches {
			paths = append(paths, filepath.Base(s.fileList[i]))
		}
		s.mu.RUnlock()
		return fmt.Errorf("%w: %q matches %s", ErrAmbiguousName, name, strings.Join(paths, ", "))
	}
}

// navigateTo saves the current document when auto-save demands it, then
// loads the file at list position i. A failed save aborts the move; a
// failed load keeps the previous document and index.
func (s *State) navigateTo(i int) bool {
	if !s.saveBeforeNavigate() {
		return false
	}
	s.mu.RLock()
	if i < 0 || i >= len(s.fileList) {
		s.mu.RUnlock()
		return false
	}
	path := s.fileList[i]
	s.mu.RUnlock()

	if err := s.loadPath(path); err != nil {
		s.log.Error("load failed", "path", path, "error", err)
		return false
	}
	s.mu.Lock()
	s.index = i
	s.mu.Unlock()
	return true
}

// saveBeforeNavigate runs the auto-save guard. Returns false only when
// auto-save is on and the save failed.
func (s *State) saveBeforeNavigate() bool {
	s.mu.RLock()
	needed := s.autoSave && s.modified && s.doc != nil && s.doc.HasTree()
	s.mu.RUnlock()
	if !needed {
		return true
	}
	if err := s.Save(); err != nil {
		s.log.Error("auto-save failed, navigation aborted", "error", err)
		return false
	}
	return true
}

// loadPath runs the load sequence: parse the file, build a fresh
// snapshot, and only then replace the current document and every derived
// cache together. Selection mode is shut down first so the selector can
// never see stale points. On error the previous document stays intact.
func (s *State) loadPath(path string) error {
	res, err := s.files.Load(path)
	if err != nil {
		return err
	}

	var doc *Document
	if res.Tree != nil {
		doc, err = NewDocument(path, res.Tree)
		if err != nil {
			return err
		}
	} else {
		doc = NewPointCloudDocument(path, res.VertexCoords)
	}

	s.DeactivateSelection()

	s.mu.Lock()
	s.doc = doc
	s.mesh = nil
	s.modified = false
	s.showSubtree = false
	s.mu.Unlock()
	s.tools.SetTree(doc.Tree(), doc.NodeIDs())

	s.render()
	s.reloadMesh()

	s.log.Info("loaded", "path", path, "tree", doc.HasTree(),
		"vertices", len(doc.VertexCoords()), "points", len(doc.PointCoords()))
	s.Emit(EventDocumentLoaded, doc)
	return nil
}

// Save writes the current document back to its file.
func (s *State) Save() error {
	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()
	if doc == nil {
		return ErrNoDocument
	}
	if !doc.HasTree() {
		return errors.New("point clouds cannot be saved")
	}
	if err := s.files.Save(doc.Tree(), doc.Path()); err != nil {
		return err
	}
	s.SetModified(false)
	s.Emit(EventDocumentSaved, doc.Path())
	return nil
}

// SaveAs writes the current document to a new path and switches the
// document to it.
func (s *State) SaveAs(path string) error {
	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()
	if doc == nil {
		return ErrNoDocument
	}
	if !doc.HasTree() {
		return errors.New("point clouds cannot be saved")
	}
	if err := s.files.Save(doc.Tree(), path); err != nil {
		return err
	}
	renamed, err := NewDocument(path, doc.Tree())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.doc = renamed
	s.mu.Unlock()
	s.SetModified(false)
	s.Emit(EventDocumentSaved, path)
	return nil
}

// AutoSave reports whether navigation saves edits automatically.
func (s *State) AutoSave() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoSave
}

// SetAutoSave toggles the auto-save-on-navigate behavior.
func (s *State) SetAutoSave(v bool) {
	s.mu.Lock()
	s.autoSave = v
	s.mu.Unlock()
}

// ActivateSelection arms the point selector with the current document's
// interaction points. Returns false when there is nothing pickable (no
// document, a point cloud, or no selector attached). The mesh overlay is
// hidden while selection mode is active.
func (s *State) ActivateSelection() bool {
	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()
	if s.selector == nil || doc == nil || len(doc.PointCoords()) == 0 {
		return false
	}
	if s.selector.Active() {
		return true
	}
	if err := s.selector.Activate(doc.PointCoords()); err != nil {
		s.log.Error("activate selection", "error", err)
		return false
	}
	if s.renderer != nil {
		s.renderer.HideMesh()
	}
	s.Emit(EventSelectionMode, true)
	return true
}

// DeactivateSelection leaves selection mode and restores the mesh overlay
// when it is enabled. Safe to call at any time.
func (s *State) DeactivateSelection() {
	if s.selector == nil {
		return
	}
	wasActive := s.selector.Active()
	s.selector.Deactivate()
	if !wasActive {
		return
	}
	s.mu.RLock()
	mesh, show := s.mesh, s.showMesh
	s.mu.RUnlock()
	if show && mesh != nil && s.renderer != nil {
		s.renderer.ShowMesh(mesh)
	}
	s.Emit(EventSelectionMode, false)
}

// SelectionActive reports whether selection mode is on.
func (s *State) SelectionActive() bool {
	return s.selector != nil && s.selector.Active()
}

// SelectionCount returns the number of selected points.
func (s *State) SelectionCount() int {
	if s.selector == nil {
		return 0
	}
	return s.selector.SelectionCount()
}

// ClearSelection resets the mask without leaving selection mode.
func (s *State) ClearSelection() {
	if s.selector != nil {
		s.selector.ClearSelection()
	}
}

// RerootAtSelection reroots the tree at the single selected point. The
// mutated tree becomes a fresh snapshot, selection mode ends, and the
// viewport re-renders.
func (s *State) RerootAtSelection() error {
	if s.selector == nil {
		return ErrSelectionInvalid
	}
	selected := s.selector.SelectedIndices()
	if !s.tools.ValidateForReroot(selected) {
		return ErrSelectionInvalid
	}
	res, err := s.tools.Reroot(selected)
	if err != nil {
		return err
	}

	s.mu.RLock()
	path := s.doc.Path()
	s.mu.RUnlock()
	doc, err := NewDocument(path, res.Tree)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	s.tools.SetTree(doc.Tree(), doc.NodeIDs())

	s.DeactivateSelection()
	s.SetModified(true)
	s.render()
	s.log.Info("rerooted", "path", path, "points", len(doc.PointCoords()))
	s.Emit(EventTreeEdited, doc)
	return nil
}

// ExtractSubtreeAtSelection masks the tree to the subtree rooted at the
// single selected point and switches the view to it. The full tree stays
// in memory; only rendering is restricted.
func (s *State) ExtractSubtreeAtSelection() error {
	if s.selector == nil {
		return ErrSelectionInvalid
	}
	selected := s.selector.SelectedIndices()
	if !s.tools.ValidateForSubtree(selected) {
		return ErrSelectionInvalid
	}
	if err := s.tools.CreateSubtreeMask(selected); err != nil {
		return err
	}

	s.mu.Lock()
	s.showSubtree = true
	doc := s.doc
	s.mu.Unlock()

	s.DeactivateSelection()
	s.SetModified(true)
	s.render()
	s.Emit(EventSubtreeView, true)
	s.Emit(EventTreeEdited, doc)
	return nil
}

// ShowSubtree reports whether rendering is restricted to the mask.
func (s *State) ShowSubtree() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showSubtree
}

// SetShowSubtree toggles between full-tree and masked rendering.
func (s *State) SetShowSubtree(v bool) {
	s.mu.Lock()
	if s.showSubtree == v {
		s.mu.Unlock()
		return
	}
	s.showSubtree = v
	s.mu.Unlock()
	s.render()
	s.Emit(EventSubtreeView, v)
}

// ClearSubtree removes the mask entirely and returns to the full tree.
func (s *State) ClearSubtree() {
	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()
	if doc == nil || !doc.HasTree() {
		return
	}
	doc.Tree().ClearMask()
	s.SetShowSubtree(false)
}

// FlagState reads the current tree's flag annotation.
func (s *State) FlagState() (bool, error) {
	return s.tools.GetFlagState()
}

// SetFlagState overwrites the flag annotation and marks the document
// modified.
func (s *State) SetFlagState(v bool) error {
	if err := s.tools.UpdateFlagState(v); err != nil {
		return err
	}
	s.SetModified(true)
	s.Emit(EventFlagChanged, v)
	return nil
}

// ShowMesh reports whether the companion mesh overlay is enabled.
func (s *State) ShowMesh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.showMesh
}

// SetShowMesh toggles the companion mesh overlay. The mesh stays hidden
// while selection mode is active regardless of this setting.
func (s *State) SetShowMesh(v bool) {
	s.mu.Lock()
	s.showMesh = v
	s.mu.Unlock()
	if v {
		s.reloadMesh()
	} else if s.renderer != nil {
		s.renderer.HideMesh()
	}
	s.Emit(EventMeshChanged, v)
}

// Mesh returns the loaded companion mesh, nil when none was found.
func (s *State) Mesh() *fileio.Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mesh
}

// reloadMesh resolves and displays the stem-matched companion mesh. The
// overlay is best effort: missing or unreadable meshes are logged, never
// surfaced as load failures.
func (s *State) reloadMesh() {
	s.mu.RLock()
	doc := s.doc
	show := s.showMesh
	s.mu.RUnlock()
	if !show || doc == nil || !doc.HasTree() || s.SelectionActive() {
		return
	}
	path, ok := s.files.FindMeshCompanion(doc.Path())
	if !ok {
		return
	}
	mesh, err := fileio.LoadMesh(path)
	if err != nil {
		s.log.Warn("companion mesh unreadable", "path", path, "error", err)
		return
	}
	s.mu.Lock()
	s.mesh = mesh
	s.mu.Unlock()
	if s.renderer != nil {
		s.renderer.ShowMesh(mesh)
	}
	s.log.Info("mesh overlay", "path", path, "segments", len(mesh.Segments))
}

// render pushes the current document to the viewport.
func (s *State) render() {
	if s.renderer == nil {
		return
	}
	s.mu.RLock()
	doc, masked := s.doc, s.showSubtree
	s.mu.RUnlock()
	s.renderer.ShowDocument(doc, masked)
}
