package scenario

import (
	"context"
	stdmath "math"
	"os"
	"runtime"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/pkg/errors"
	m "pfeifer.dev/avsim/math"
	"pfeifer.dev/avsim/obstacles"
)

const (
	METERS_PER_DEGREE_LAT = 110540.0
	METERS_PER_DEGREE_LON = 111320.0
)

type OSMOptions struct {
	// Lat and Lon pick the point mapped to the arena centre. When both are
	// zero the centroid of the matching nodes is used.
	Lat float64
	Lon float64
	// VehicleRadius sizes the clearing kept around the start pose.
	VehicleRadius float64
}

// obstacleRadius returns the footprint of a mapped point feature, or zero when
// the node is not something a vehicle could hit.
func obstacleRadius(tags osm.Tags) float64 {
	if tags.Find("natural") == "tree" {
		return 0.8
	}
	switch tags.Find("barrier") {
	case "":
	case "bollard", "post":
		return 0.3
	case "block", "boulder", "jersey_barrier":
		return 0.7
	default:
		return 0.5
	}
	switch tags.Find("highway") {
	case "street_lamp", "traffic_signals", "stop":
		return 0.3
	}
	return 0
}

// LoadOSM scans an OSM PBF extract for trees, barriers and street furniture
// and lays them out as static obstacles around the chosen point.
func LoadOSM(ctx context.Context, path string, world m.Box, opts OSMOptions) (Layout, error) {
	file, err := os.Open(path)
	if err != nil {
		return Layout{}, errors.Wrap(err, "could not open osm extract")
	}
	defer file.Close()

	scanner := osmpbf.New(ctx, file, runtime.GOMAXPROCS(-1))
	scanner.SkipWays = true
	scanner.SkipRelations = true
	defer scanner.Close()

	nodes := []*osm.Node{}
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok || obstacleRadius(node.Tags) == 0 {
			continue
		}
		nodes = append(nodes, node)
	}
	if err := scanner.Err(); err != nil {
		return Layout{}, errors.Wrap(err, "could not scan osm extract")
	}

	return LayoutFromNodes(nodes, world, opts), nil
}

// LayoutFromNodes projects tagged nodes into the arena with an
// equirectangular projection. Nodes that fall outside the arena or crowd the
// start pose are dropped.
func LayoutFromNodes(nodes []*osm.Node, world m.Box, opts OSMOptions) Layout {
	lat0, lon0 := opts.Lat, opts.Lon
	if lat0 == 0 && lon0 == 0 && len(nodes) > 0 {
		for _, n := range nodes {
			lat0 += n.Lat
			lon0 += n.Lon
		}
		lat0 /= float64(len(nodes))
		lon0 /= float64(len(nodes))
	}

	start := DefaultStart(world)
	keepClear := m.Circle{Center: start.Position, Radius: opts.VehicleRadius + START_CLEARANCE}
	cosLat := stdmath.Cos(lat0 * m.TO_RADIANS)
	center := world.Center()

	layout := Layout{Name: "osm", Start: start}
	for _, n := range nodes {
		radius := obstacleRadius(n.Tags)
		if radius == 0 {
			continue
		}
		pos := m.Vector{
			X: center.X + (n.Lon-lon0)*cosLat*METERS_PER_DEGREE_LON,
			Y: center.Y + (n.Lat-lat0)*METERS_PER_DEGREE_LAT,
		}
		if !world.CircleInside(pos, radius) || keepClear.Overlaps(m.Circle{Center: pos, Radius: radius}) {
			continue
		}
		layout.Obstacles = append(layout.Obstacles, obstacles.Obstacle{
			Position: pos,
			Radius:   radius,
			Kind:     obstacles.STATIC,
		})
	}
	return layout
}
