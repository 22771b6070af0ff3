package measure

import (
	"encoding/json"
	"fmt"

	"github.com/philipparndt/gosplat/pkg/geometry"
	"github.com/philipparndt/gosplat/pkg/store"
)

// StateVersion gates backward-incompatible schema changes. A mismatch on
// restore falls back to an empty default state.
const StateVersion = 1

// StateData represents the JSON structure for saved measurement state
type StateData struct {
	Version        int           `json:"version"`
	Scale          float64       `json:"scale"`
	Nodes          []NodeData    `json:"nodes"`
	Measurements   []SegmentData `json:"measurements"`
	Areas          []AreaData    `json:"areas"`
	SegmentCounter int           `json:"segmentCounter"`
	AreaCounter    int           `json:"areaCounter"`
}

// NodeData represents a saved shared node
type NodeData struct {
	ID         string      `json:"id"`
	Local      Vector3Data `json:"local"`
	PointIndex *int        `json:"pointIndex"`
}

// SegmentData represents a saved measurement segment
type SegmentData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	StartNodeID string `json:"startNodeId"`
	EndNodeID   string `json:"endNodeId"`
	Axis        string `json:"axis,omitempty"`
}

// AreaData represents a saved area polygon
type AreaData struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Vertices           []Vector3Data `json:"vertices"`
	VertexPointIndices []*int        `json:"vertexPointIndices"`
}

// Vector3Data represents a 3D vector for JSON serialization
type Vector3Data struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func toVector3Data(v geometry.Vector3) Vector3Data {
	return Vector3Data{X: v.X, Y: v.Y, Z: v.Z}
}

func fromVector3Data(v Vector3Data) geometry.Vector3 {
	return geometry.NewVector3(v.X, v.Y, v.Z)
}

func toIndexData(index int) *int {
	if index < 0 {
		return nil
	}
	i := index
	return &i
}

func fromIndexData(index *int) int {
	if index == nil {
		return -1
	}
	return *index
}

func toAxisData(axis int) string {
	switch axis {
	case geometry.AxisX:
		return "x"
	case geometry.AxisY:
		return "y"
	case geometry.AxisZ:
		return "z"
	}
	return ""
}

func fromAxisData(axis string) int {
	switch axis {
	case "x":
		return geometry.AxisX
	case "y":
		return geometry.AxisY
	case "z":
		return geometry.AxisZ
	}
	return geometry.AxisNone
}

// Serialize encodes the engine's persistent state as JSON
func (e *Engine) Serialize() (string, error) {
	data := StateData{
		Version:        StateVersion,
		Scale:          e.scale,
		Nodes:          make([]NodeData, 0, len(e.nodes)),
		Measurements:   make([]SegmentData, 0, len(e.segments)),
		Areas:          make([]AreaData, 0, len(e.areas)),
		SegmentCounter: e.segmentCounter,
		AreaCounter:    e.areaCounter,
	}

	for _, n := range e.nodes {
		data.Nodes = append(data.Nodes, NodeData{
			ID:         n.ID,
			Local:      toVector3Data(n.Local),
			PointIndex: toIndexData(n.PointIndex),
		})
	}

	for _, s := range e.segments {
		data.Measurements = append(data.Measurements, SegmentData{
			ID:          s.ID,
			Name:        s.Name,
			StartNodeID: s.StartNodeID,
			EndNodeID:   s.EndNodeID,
			Axis:        toAxisData(s.Axis),
		})
	}

	for _, a := range e.areas {
		areaData := AreaData{
			ID:                 a.ID,
			Name:               a.Name,
			Vertices:           make([]Vector3Data, 0, len(a.Vertices)),
			VertexPointIndices: make([]*int, 0, len(a.VertexPointIndices)),
		}
		for i, v := range a.Vertices {
			areaData.Vertices = append(areaData.Vertices, toVector3Data(v))
			areaData.VertexPointIndices = append(areaData.VertexPointIndices, toIndexData(a.VertexPointIndices[i]))
		}
		data.Areas = append(data.Areas, areaData)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal measurement state: %w", err)
	}
	return string(jsonData), nil
}

// Restore replaces the engine's state from serialized JSON. Malformed input
// or a version mismatch resets to the empty default state instead of
// failing; existing data is never partially overwritten.
func (e *Engine) Restore(serialized string) {
	e.reset()

	var data StateData
	if err := json.Unmarshal([]byte(serialized), &data); err != nil {
		return
	}
	if data.Version != StateVersion {
		return
	}

	if data.Scale > 0 {
		e.scale = data.Scale
	}
	e.segmentCounter = data.SegmentCounter
	e.areaCounter = data.AreaCounter

	for _, n := range data.Nodes {
		if n.ID == "" {
			continue
		}
		e.nodes[n.ID] = &Node{
			ID:         n.ID,
			Local:      fromVector3Data(n.Local),
			PointIndex: fromIndexData(n.PointIndex),
		}
	}

	for _, s := range data.Measurements {
		if _, ok := e.nodes[s.StartNodeID]; !ok {
			continue
		}
		if _, ok := e.nodes[s.EndNodeID]; !ok {
			continue
		}
		e.segments = append(e.segments, &Segment{
			ID:          s.ID,
			Name:        s.Name,
			StartNodeID: s.StartNodeID,
			EndNodeID:   s.EndNodeID,
			Axis:        fromAxisData(s.Axis),
		})
	}

	for _, a := range data.Areas {
		area := &Area{
			ID:                 a.ID,
			Name:               a.Name,
			Vertices:           make([]geometry.Vector3, 0, len(a.Vertices)),
			VertexPointIndices: make([]int, 0, len(a.Vertices)),
		}
		for i, v := range a.Vertices {
			area.Vertices = append(area.Vertices, fromVector3Data(v))
			if i < len(a.VertexPointIndices) {
				area.VertexPointIndices = append(area.VertexPointIndices, fromIndexData(a.VertexPointIndices[i]))
			} else {
				area.VertexPointIndices = append(area.VertexPointIndices, -1)
			}
		}
		e.areas = append(e.areas, area)
	}

	e.pruneNodes()
}

// reset returns the engine to the empty default state
func (e *Engine) reset() {
	e.scale = 1
	e.nodes = make(map[string]*Node)
	e.segments = nil
	e.areas = nil
	e.segmentCounter = 0
	e.areaCounter = 0
	e.CancelPending()
}

// SaveTo mirrors the engine state into the store under the given key.
// An empty engine removes the key instead of storing an empty blob.
func (e *Engine) SaveTo(st store.Store, key string) error {
	if len(e.segments) == 0 && len(e.areas) == 0 && e.scale == 1 {
		return st.Remove(key)
	}
	serialized, err := e.Serialize()
	if err != nil {
		return err
	}
	return st.Set(key, serialized)
}

// LoadFrom rehydrates the engine from the store. A missing key yields the
// empty default state.
func (e *Engine) LoadFrom(st store.Store, key string) {
	serialized, ok := st.Get(key)
	if !ok {
		e.reset()
		return
	}
	e.Restore(serialized)
}
