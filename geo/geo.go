// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package geo

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"github.com/golang/geo/s2"
	"github.com/poiesic/matchmaker/core"
)

// Unknown is returned by DistanceKm when a location cannot be resolved.
const Unknown = -1.0

// earthRadiusKm is the IUGG mean Earth radius.
const earthRadiusKm = 6371.0088

// Resolver computes distances between locations.
// Implementations must be safe for concurrent use.
type Resolver interface {
	// DistanceKm returns the distance in kilometres, or Unknown.
	DistanceKm(a, b core.Location) float64
}

// Point is a resolved coordinate pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

var _ Resolver = (*Gazetteer)(nil)

// Gazetteer resolves symbolic place names to coordinates.
type Gazetteer struct {
	mu     sync.RWMutex
	places map[string]Point
	logger *slog.Logger
}

// Option configures a Gazetteer.
type Option func(*Gazetteer) error

// WithLogger sets the logger for the gazetteer.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gazetteer) error {
		g.logger = logger
		return nil
	}
}

// WithPlace registers an additional place and its aliases.
func WithPlace(name string, lat, lon float64, aliases ...string) Option {
	return func(g *Gazetteer) error {
		return g.Add(name, lat, lon, aliases...)
	}
}

// WithoutDefaults starts from an empty gazetteer.
func WithoutDefaults() Option {
	return func(g *Gazetteer) error {
		g.places = make(map[string]Point)
		return nil
	}
}

// NewGazetteer creates a gazetteer preloaded with DefaultPlaces.
func NewGazetteer(opts ...Option) (*Gazetteer, error) {
	g := &Gazetteer{places: make(map[string]Point, len(DefaultPlaces)*2)}
	for _, p := range DefaultPlaces {
		g.add(p)
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	g.logger = g.logger.With("component", "gazetteer")
	return g, nil
}

// Add registers a place under its name and aliases. Later registrations win.
func (g *Gazetteer) Add(name string, lat, lon float64, aliases ...string) error {
	if NormalizePlace(name) == "" {
		return fmt.Errorf("place name cannot be empty")
	}
	if !validPoint(lat, lon) {
		return fmt.Errorf("place %q: coordinates out of range (%f, %f)", name, lat, lon)
	}
	g.add(Place{Name: name, Lat: lat, Lon: lon, Aliases: aliases})
	return nil
}

func (g *Gazetteer) add(p Place) {
	g.mu.Lock()
	defer g.mu.Unlock()
	pt := Point{Lat: p.Lat, Lon: p.Lon}
	g.places[NormalizePlace(p.Name)] = pt
	for _, alias := range p.Aliases {
		if key := NormalizePlace(alias); key != "" {
			g.places[key] = pt
		}
	}
}

// Lookup returns the coordinates of a place name.
func (g *Gazetteer) Lookup(place string) (Point, bool) {
	key := NormalizePlace(place)
	if key == "" {
		return Point{}, false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	pt, ok := g.places[key]
	return pt, ok
}

// Resolve turns a location into coordinates. Explicit coordinates win over
// the place name.
func (g *Gazetteer) Resolve(loc core.Location) (Point, bool) {
	if loc.HasCoordinates {
		if !validPoint(loc.Lat, loc.Lon) {
			return Point{}, false
		}
		return Point{Lat: loc.Lat, Lon: loc.Lon}, true
	}
	return g.Lookup(loc.Place)
}

// DistanceKm implements Resolver.
func (g *Gazetteer) DistanceKm(a, b core.Location) float64 {
	pa, ok := g.Resolve(a)
	if !ok {
		g.logger.Debug("unresolved location", "place", a.Place)
		return Unknown
	}
	pb, ok := g.Resolve(b)
	if !ok {
		g.logger.Debug("unresolved location", "place", b.Place)
		return Unknown
	}
	return GreatCircleKm(pa, pb)
}

// GreatCircleKm returns the great-circle distance between two points in kilometres.
func GreatCircleKm(a, b Point) float64 {
	angle := a.latLng().Distance(b.latLng())
	return angle.Radians() * earthRadiusKm
}

func (p Point) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lon)
}

// NormalizePlace canonicalizes a place name for lookup:
// lowercase, trimmed, with spaces and hyphens folded to underscores and
// apostrophes removed.
func NormalizePlace(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("'", "", "\"", "", "-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), "_")
}

func validPoint(lat, lon float64) bool {
	return !math.IsNaN(lat) && !math.IsNaN(lon) && math.Abs(lat) <= 90 && math.Abs(lon) <= 180
}
