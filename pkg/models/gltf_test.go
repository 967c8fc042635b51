package models

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/planetarium/pkg/math3d"
)

// writeGLB writes a single-primitive GLB with float positions and ushort
// indices.
func writeGLB(t *testing.T, positions []math3d.Vec3, indices []uint16) string {
	t.Helper()

	var bin bytes.Buffer
	for _, p := range positions {
		for _, c := range [3]float64{p.X, p.Y, p.Z} {
			binary.Write(&bin, binary.LittleEndian, float32(c))
		}
	}
	posLen := bin.Len()
	for _, i := range indices {
		binary.Write(&bin, binary.LittleEndian, i)
	}
	idxLen := bin.Len() - posLen
	for bin.Len()%4 != 0 {
		bin.WriteByte(0)
	}

	doc := map[string]any{
		"asset":   map[string]any{"version": "2.0"},
		"buffers": []any{map[string]any{"byteLength": bin.Len()}},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": posLen},
			map[string]any{"buffer": 0, "byteOffset": posLen, "byteLength": idxLen},
		},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": 5126, "count": len(positions), "type": "VEC3"},
			map[string]any{"bufferView": 1, "componentType": 5123, "count": len(indices), "type": "SCALAR"},
		},
		"meshes": []any{map[string]any{
			"name": "tri",
			"primitives": []any{map[string]any{
				"attributes": map[string]any{"POSITION": 0},
				"indices":    1,
			}},
		}},
	}
	js, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}

	var glb bytes.Buffer
	glb.WriteString("glTF")
	binary.Write(&glb, binary.LittleEndian, uint32(2))
	binary.Write(&glb, binary.LittleEndian, uint32(12+8+len(js)+8+bin.Len()))
	binary.Write(&glb, binary.LittleEndian, uint32(len(js)))
	binary.Write(&glb, binary.LittleEndian, uint32(0x4E4F534A))
	glb.Write(js)
	binary.Write(&glb, binary.LittleEndian, uint32(bin.Len()))
	binary.Write(&glb, binary.LittleEndian, uint32(0x004E4942))
	glb.Write(bin.Bytes())

	path := filepath.Join(t.TempDir(), "model.glb")
	if err := os.WriteFile(path, glb.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Error("NewGLTFLoader returned nil")
		return
	}
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
	if !loader.SmoothNormals {
		t.Error("SmoothNormals should default to true")
	}
	if !loader.FitUnitSphere {
		t.Error("FitUnitSphere should default to true")
	}
}

func TestLoadGLBTriangle(t *testing.T) {
	path := writeGLB(t,
		[]math3d.Vec3{{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 0, Y: 2, Z: 0}},
		[]uint16{0, 1, 2},
	)

	loader := NewGLTFLoader()
	loader.FitUnitSphere = false
	mesh, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mesh.Name != "model.glb" {
		t.Errorf("Name = %q", mesh.Name)
	}
	if mesh.VertexCount() != 3 || mesh.TriangleCount() != 1 {
		t.Fatalf("got %d vertices, %d faces", mesh.VertexCount(), mesh.TriangleCount())
	}
	if got := mesh.GetFace(0); got != [3]int{0, 1, 2} {
		t.Errorf("winding changed: %v", got)
	}
	if got := mesh.Vertices[1].Position; got != math3d.V3(2, 0, 0) {
		t.Errorf("vertex 1 = %v", got)
	}
	// CCW in the XY plane faces +Z.
	if n := mesh.Vertices[0].Normal; math.Abs(n.Z-1) > 1e-9 {
		t.Errorf("normal = %v, want +Z", n)
	}
	if mesh.BoundsMax != math3d.V3(2, 2, 0) {
		t.Errorf("BoundsMax = %v", mesh.BoundsMax)
	}
}

func TestLoadGLBFitsUnitSphere(t *testing.T) {
	path := writeGLB(t,
		[]math3d.Vec3{{X: 10, Y: 10, Z: 10}, {X: 14, Y: 10, Z: 10}, {X: 10, Y: 14, Z: 10}},
		[]uint16{0, 1, 2},
	)
	mesh, err := LoadGLB(path)
	if err != nil {
		t.Fatalf("LoadGLB: %v", err)
	}

	var farthest float64
	for _, v := range mesh.Vertices {
		farthest = max(farthest, v.Position.Len())
	}
	if math.Abs(farthest-1) > 1e-9 {
		t.Errorf("farthest vertex at %f, want 1", farthest)
	}
	if c := mesh.Center(); c.Len() > 1e-9 {
		t.Errorf("center = %v, want origin", c)
	}
}

func TestLoadGLBIndexOutOfRange(t *testing.T) {
	path := writeGLB(t,
		[]math3d.Vec3{{X: 0}, {X: 1}, {Y: 1}},
		[]uint16{0, 1, 7},
	)
	if _, err := LoadGLB(path); err == nil {
		t.Error("expected error for out-of-range index")
	}
}

func TestLoadGLBNoGeometry(t *testing.T) {
	path := writeGLB(t, []math3d.Vec3{{X: 0}, {X: 1}, {Y: 1}}, []uint16{0, 1})
	if _, err := LoadGLB(path); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("err = %v, want ErrNoGeometry", err)
	}
}
