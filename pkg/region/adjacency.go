package region

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Centroid is a representative coordinate for a geographic unit, used for
// inverse-distance weighting when contiguity data is absent.
type Centroid struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// adjacencyFile is the on-disk YAML shape.
type adjacencyFile struct {
	Neighbors map[string][]string `yaml:"neighbors"`
	Centroids map[string]Centroid `yaml:"centroids"`
}

// Adjacency holds contiguity and centroid data for states. It is safe for
// concurrent readers and supports hot reload from its backing file.
type Adjacency struct {
	mu        sync.RWMutex
	path      string
	neighbors map[string]map[string]bool
	centroids map[string]Centroid
}

// LoadAdjacency reads an adjacency YAML file. A missing path returns an
// empty Adjacency so analyses fall back to uniform weights.
func LoadAdjacency(path string) (*Adjacency, error) {
	a := &Adjacency{
		path:      path,
		neighbors: make(map[string]map[string]bool),
		centroids: make(map[string]Centroid),
	}
	if path == "" {
		return a, nil
	}
	if err := a.reload(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Adjacency) reload() error {
	data, err := os.ReadFile(a.path)
	if err != nil {
		return fmt.Errorf("failed to read adjacency file: %w", err)
	}
	var file adjacencyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse adjacency file: %w", err)
	}

	neighbors := make(map[string]map[string]bool, len(file.Neighbors))
	for state, list := range file.Neighbors {
		set := make(map[string]bool, len(list))
		for _, n := range list {
			set[n] = true
		}
		neighbors[state] = set
	}
	// Contiguity is symmetric even if the file only lists one direction.
	for state, set := range neighbors {
		for n := range set {
			if neighbors[n] == nil {
				neighbors[n] = make(map[string]bool)
			}
			neighbors[n][state] = true
		}
	}

	centroids := make(map[string]Centroid, len(file.Centroids))
	for state, c := range file.Centroids {
		centroids[state] = c
	}

	a.mu.Lock()
	a.neighbors = neighbors
	a.centroids = centroids
	a.mu.Unlock()
	return nil
}

// Watch reloads the adjacency file whenever it changes on disk. It blocks
// until ctx is cancelled, so run it in its own goroutine. onError receives
// reload failures; the previous data stays in effect after a bad reload.
func (a *Adjacency) Watch(ctx context.Context, onError func(error)) error {
	if a.path == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(a.path); err != nil {
		return fmt.Errorf("failed to watch adjacency file: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := a.reload(); err != nil && onError != nil {
				onError(err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}

// Neighbors reports whether two states are declared contiguous.
func (a *Adjacency) Neighbors(s1, s2 string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.neighbors[s1][s2]
}

// HasNeighborData reports whether the state appears in the contiguity data.
func (a *Adjacency) HasNeighborData(state string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.neighbors[state]
	return ok
}

// CentroidOf returns the centroid for a state if one is configured.
func (a *Adjacency) CentroidOf(state string) (Centroid, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	c, ok := a.centroids[state]
	return c, ok
}
