package geometry

// PolygonArea computes the area of a closed 3D vertex ring using the
// generalized shoelace (Newell) formula: half the magnitude of the sum of
// successive vertex cross products. The result is exact for planar rings and
// well-behaved for near-planar ones, independent of the projection axis and
// of traversal direction.
func PolygonArea(vertices []Vector3) float64 {
	if len(vertices) < 3 {
		return 0
	}

	var sum Vector3
	for i := range vertices {
		j := (i + 1) % len(vertices)
		sum = sum.Add(vertices[i].Cross(vertices[j]))
	}
	return sum.Length() / 2.0
}

// PolygonPerimeter computes the perimeter of a closed vertex ring, including
// the closing edge from the last vertex back to the first.
func PolygonPerimeter(vertices []Vector3) float64 {
	if len(vertices) < 2 {
		return 0
	}

	total := 0.0
	for i := range vertices {
		j := (i + 1) % len(vertices)
		total += vertices[i].Distance(vertices[j])
	}
	return total
}

// PolygonCentroid returns the arithmetic mean of the vertex ring
func PolygonCentroid(vertices []Vector3) Vector3 {
	if len(vertices) == 0 {
		return Vector3{}
	}
	var sum Vector3
	for _, v := range vertices {
		sum = sum.Add(v)
	}
	return sum.Mul(1.0 / float64(len(vertices)))
}
