package generator_test

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/okian/horus/internal/domain/generator"
	"github.com/okian/horus/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// scripted returns a fixed sequence of values and then repeats the last one.
type scripted struct {
	floats []float64
	ints   []int
}

func (s *scripted) Float64() float64 {
	v := s.floats[0]
	if len(s.floats) > 1 {
		s.floats = s.floats[1:]
	}
	return v
}

func (s *scripted) Intn(n int) int {
	v := s.ints[0]
	if len(s.ints) > 1 {
		s.ints = s.ints[1:]
	}
	return v % n
}

func TestCartesian(t *testing.T) {
	Convey("Given a seeded radar generator", t, func() {
		g := generator.NewCartesian(generator.WithSource(rand.New(rand.NewSource(7))))

		Convey("Then it reports the radar kind", func() {
			So(g.Kind(), ShouldEqual, model.KindRadar)
		})

		Convey("When generating many markers", func() {
			markers := make([]model.Marker, 2000)
			for i := range markers {
				markers[i] = g.Generate(i)
			}

			Convey("Then every position stays inside the square and off center", func() {
				for _, m := range markers {
					So(m.Position.Layout, ShouldEqual, model.LayoutCartesian)
					So(m.Position.X, ShouldBeBetweenOrEqual, generator.CartesianMin, generator.CartesianMax)
					So(m.Position.Y, ShouldBeBetweenOrEqual, generator.CartesianMin, generator.CartesianMax)
					So(m.Position.X == 0.5 && m.Position.Y == 0.5, ShouldBeFalse)
				}
			})

			Convey("Then tone cycles with the index", func() {
				for i, m := range markers {
					So(m.Tone, ShouldEqual, model.Tones[i%3])
				}
			})

			Convey("Then ids are unique", func() {
				ids := make(map[string]struct{}, len(markers))
				for _, m := range markers {
					ids[m.ID] = struct{}{}
				}
				So(len(ids), ShouldEqual, len(markers))
			})
		})

		Convey("When the source returns its extremes", func() {
			lo := generator.NewCartesian(generator.WithSource(&scripted{floats: []float64{0}, ints: []int{0}}))
			hi := generator.NewCartesian(generator.WithSource(&scripted{floats: []float64{math.Nextafter(1, 0)}, ints: []int{0}}))

			Convey("Then positions sit on the bounds", func() {
				So(lo.Generate(0).Position.X, ShouldAlmostEqual, generator.CartesianMin)
				So(hi.Generate(0).Position.Y, ShouldAlmostEqual, generator.CartesianMax)
			})
		})
	})
}

func TestPolar(t *testing.T) {
	Convey("Given a hex radar generator", t, func() {
		Convey("When the radius draw is below the minimum", func() {
			g := generator.NewPolar(generator.WithSource(&scripted{floats: []float64{0.01, 0.25}, ints: []int{1}}))
			m := g.Generate(0)

			Convey("Then the radius is clamped away from the center", func() {
				So(m.Position.Radius, ShouldEqual, generator.RadiusMin)
				So(m.Position.Angle, ShouldAlmostEqual, math.Pi/2)
				So(m.Tone, ShouldEqual, model.ToneFuchsia)
				So(m.Label, ShouldEqual, "Suspicious pattern")
			})
		})

		Convey("When the radius draw is near one", func() {
			g := generator.NewPolar(generator.WithSource(&scripted{floats: []float64{0.99, 0}, ints: []int{2}}))
			m := g.Generate(0)

			Convey("Then the radius is clamped away from the rim", func() {
				So(m.Position.Radius, ShouldEqual, generator.RadiusMax)
				So(m.Label, ShouldEqual, "Integrity OK")
			})
		})

		Convey("When generating many seeded markers", func() {
			g := generator.NewPolar(generator.WithSource(rand.New(rand.NewSource(11))))

			Convey("Then all stay inside the polar bounds", func() {
				for i := 0; i < 2000; i++ {
					p := g.Generate(i).Position
					So(p.Radius, ShouldBeBetweenOrEqual, generator.RadiusMin, generator.RadiusMax)
					So(p.Angle, ShouldBeGreaterThanOrEqualTo, 0)
					So(p.Angle, ShouldBeLessThan, 2*math.Pi)
				}
			})
		})
	})
}

func TestLane(t *testing.T) {
	Convey("Given a waveform generator", t, func() {
		g := generator.NewLane(generator.WithSource(rand.New(rand.NewSource(3))))

		Convey("Then markers spawn past the right edge on a valid lane", func() {
			for i := 0; i < 500; i++ {
				p := g.Generate(i).Position
				So(p.Layout, ShouldEqual, model.LayoutLane)
				So(p.Offset, ShouldBeGreaterThanOrEqualTo, generator.SpawnMin)
				So(p.Offset, ShouldBeLessThan, generator.SpawnMin+generator.SpawnSpan)
				So(p.Lane, ShouldBeBetweenOrEqual, 0, model.LaneCount-1)
			}
		})
	})
}

func TestLabelDeterminism(t *testing.T) {
	Convey("Given every generator kind", t, func() {
		for _, kind := range model.Kinds {
			g, err := generator.ForKind(kind, generator.WithSource(rand.New(rand.NewSource(42))))
			So(err, ShouldBeNil)
			So(g.Kind(), ShouldEqual, kind)

			Convey("Then the label of "+string(kind)+" depends only on tone", func() {
				byTone := map[model.Tone]string{}
				for i := 0; i < 300; i++ {
					m := g.Generate(i)
					if l, ok := byTone[m.Tone]; ok {
						So(m.Label, ShouldEqual, l)
					}
					byTone[m.Tone] = m.Label
				}
				So(len(byTone), ShouldEqual, 3)
			})
		}
	})

	Convey("Given an unknown kind", t, func() {
		_, err := generator.ForKind("sonar")

		Convey("Then ForKind fails", func() {
			So(errors.Is(err, model.ErrUnknownKind), ShouldBeTrue)
		})
	})
}

func TestIDs(t *testing.T) {
	Convey("Given the default id builder", t, func() {
		id := generator.DefaultID(4)

		Convey("Then it embeds the index between the timestamp and the suffix", func() {
			parts := strings.SplitN(id, "-", 3)
			So(parts, ShouldHaveLength, 3)
			So(parts[1], ShouldEqual, "4")
			So(generator.DefaultID(4), ShouldNotEqual, id)
		})
	})

	Convey("Given a custom id builder", t, func() {
		g := generator.NewLane(generator.WithIDFunc(func(i int) string { return "ev" }))

		Convey("Then markers use it", func() {
			So(g.Generate(0).ID, ShouldEqual, "ev")
		})
	})
}
