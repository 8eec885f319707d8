// Package spatial computes global and local spatial autocorrelation
// statistics (Moran's I, Getis-Ord Gi*) over a per-analysis weight matrix.
package spatial

import (
	"math"

	"github.com/regionpulse/regionpulse/pkg/region"
)

// WeightMatrix maps ordered region pairs to non-negative weights. The
// diagonal is always zero. Matrices are built fresh for each analysis call
// and never shared between calls.
type WeightMatrix struct {
	regions []region.Region
	index   map[string]int
	w       [][]float64
}

// NewWeightMatrix builds weights for the given regions. Contiguity weights
// (1 for declared neighbors) are used when the adjacency data covers every
// state present; otherwise inverse-distance weights from centroids; uniform
// weights when neither is available.
func NewWeightMatrix(regions []region.Region, adj *region.Adjacency) *WeightMatrix {
	m := newEmptyMatrix(regions)
	if adj != nil && m.fillContiguity(adj) {
		return m
	}
	if adj != nil && m.fillInverseDistance(adj) {
		return m
	}
	m.fillUniform()
	return m
}

// NewUniformMatrix connects every region pair with weight 1.
func NewUniformMatrix(regions []region.Region) *WeightMatrix {
	m := newEmptyMatrix(regions)
	m.fillUniform()
	return m
}

func newEmptyMatrix(regions []region.Region) *WeightMatrix {
	n := len(regions)
	m := &WeightMatrix{
		regions: regions,
		index:   make(map[string]int, n),
		w:       make([][]float64, n),
	}
	for i, r := range regions {
		m.index[r.Key()] = i
		m.w[i] = make([]float64, n)
	}
	return m
}

func (m *WeightMatrix) fillContiguity(adj *region.Adjacency) bool {
	for _, r := range m.regions {
		if !adj.HasNeighborData(r.State) {
			return false
		}
	}
	connected := false
	for i, ri := range m.regions {
		for j, rj := range m.regions {
			if i == j {
				continue
			}
			// District-level regions inherit their states' contiguity;
			// districts within one state are always contiguous.
			if ri.State == rj.State || adj.Neighbors(ri.State, rj.State) {
				m.w[i][j] = 1
				connected = true
			}
		}
	}
	return connected
}

func (m *WeightMatrix) fillInverseDistance(adj *region.Adjacency) bool {
	centroids := make([]region.Centroid, len(m.regions))
	for i, r := range m.regions {
		c, ok := adj.CentroidOf(r.State)
		if !ok {
			return false
		}
		centroids[i] = c
	}
	for i := range m.regions {
		for j := range m.regions {
			if i == j {
				continue
			}
			d := haversineKm(centroids[i], centroids[j])
			if d < 1 {
				d = 1
			}
			m.w[i][j] = 1 / d
		}
	}
	return true
}

func (m *WeightMatrix) fillUniform() {
	for i := range m.regions {
		for j := range m.regions {
			if i != j {
				m.w[i][j] = 1
			}
		}
	}
}

// Regions returns the region ordering of the matrix rows.
func (m *WeightMatrix) Regions() []region.Region { return m.regions }

// Weight returns w(i,j) for region keys, zero for unknown regions.
func (m *WeightMatrix) Weight(a, b region.Region) float64 {
	i, ok1 := m.index[a.Key()]
	j, ok2 := m.index[b.Key()]
	if !ok1 || !ok2 {
		return 0
	}
	return m.w[i][j]
}

// SetWeight overrides a single symmetric pair weight. Diagonal writes are
// ignored to preserve the zero-diagonal invariant.
func (m *WeightMatrix) SetWeight(a, b region.Region, weight float64) {
	i, ok1 := m.index[a.Key()]
	j, ok2 := m.index[b.Key()]
	if !ok1 || !ok2 || i == j {
		return
	}
	m.w[i][j] = weight
	m.w[j][i] = weight
}

// S0 is the sum of all weights.
func (m *WeightMatrix) S0() float64 {
	var sum float64
	for i := range m.w {
		for j := range m.w[i] {
			sum += m.w[i][j]
		}
	}
	return sum
}

func haversineKm(a, b region.Centroid) float64 {
	const earthRadiusKm = 6371
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
