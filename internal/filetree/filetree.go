// Package filetree implements the directory tree panel the editor controller
// shows when red is started against a directory (or with no path), grounded
// on the teacher's internal/project/workspace root-detection idea but
// rebuilt as a plain lazily-expanded tree instead of a multi-root project
// model — this editor has exactly one tree panel for one root.
package filetree

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"
)

// Node is one entry in the tree: a directory (possibly with children
// loaded) or a file.
type Node struct {
	Name     string
	Path     string
	IsDir    bool
	Expanded bool
	Children []*Node
}

// Tree is the file-tree panel's model: a root node plus a live fsnotify
// watch on the root directory whose raw events (git checkout, a file
// created by another process) arrive on Events. The Tree does not apply
// them itself; Refresh reloads a directory's children when called.
type Tree struct {
	Root    *Node
	watcher *fsnotify.Watcher
	Events  <-chan fsnotify.Event
}

// Open builds a Tree rooted at root and starts watching it. Call Close when
// the panel is torn down.
func Open(root string) (*Tree, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	node, err := loadNode(abs, filepath.Base(abs))
	if err != nil {
		return nil, err
	}
	node.Expanded = true

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(abs); err != nil {
		w.Close()
		return nil, err
	}

	return &Tree{Root: node, watcher: w, Events: w.Events}, nil
}

// Close stops the filesystem watch.
func (t *Tree) Close() error {
	if t.watcher == nil {
		return nil
	}
	return t.watcher.Close()
}

// Toggle expands or collapses the directory at path, lazily loading its
// children the first time it is expanded.
func (t *Tree) Toggle(path string) error {
	n := find(t.Root, path)
	if n == nil || !n.IsDir {
		return nil
	}
	if !n.Expanded && n.Children == nil {
		children, err := loadChildren(n.Path)
		if err != nil {
			return err
		}
		n.Children = children
	}
	n.Expanded = !n.Expanded
	return nil
}

// Refresh reloads the children of the directory at path in place, used
// after an fsnotify event fires for it.
func (t *Tree) Refresh(path string) error {
	n := find(t.Root, path)
	if n == nil || !n.IsDir || n.Children == nil {
		return nil
	}
	children, err := loadChildren(n.Path)
	if err != nil {
		return err
	}
	n.Children = children
	return nil
}

// Flatten returns the visible nodes in display order (depth-first,
// skipping children of collapsed directories), for the render pipeline to
// draw one line per entry.
func (t *Tree) Flatten() []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n)
		if n.IsDir && n.Expanded {
			for _, c := range n.Children {
				walk(c)
			}
		}
	}
	for _, c := range t.Root.Children {
		walk(c)
	}
	return out
}

func find(n *Node, path string) *Node {
	if n.Path == path {
		return n
	}
	for _, c := range n.Children {
		if found := find(c, path); found != nil {
			return found
		}
	}
	return nil
}

func loadNode(path, name string) (*Node, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	n := &Node{Name: name, Path: path, IsDir: info.IsDir()}
	if n.IsDir {
		children, err := loadChildren(path)
		if err != nil {
			return nil, err
		}
		n.Children = children
	}
	return n, nil
}

func loadChildren(dir string) ([]*Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	children := make([]*Node, 0, len(entries))
	for _, e := range entries {
		if e.Name()[0] == '.' {
			continue
		}
		children = append(children, &Node{
			Name:  e.Name(),
			Path:  filepath.Join(dir, e.Name()),
			IsDir: e.IsDir(),
		})
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].IsDir != children[j].IsDir {
			return children[i].IsDir
		}
		return children[i].Name < children[j].Name
	})
	return children, nil
}
