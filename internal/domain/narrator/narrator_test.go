package narrator_test

import (
	"testing"

	"github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/internal/domain/narrator"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPhaseCycle(t *testing.T) {
	Convey("Given a radar narrator", t, func() {
		script := narrator.ScriptFor(model.KindRadar)
		n := narrator.New(script)

		Convey("Then it starts scanning", func() {
			So(n.Phase(), ShouldEqual, narrator.Scanning)
			So(n.Status(), ShouldEqual, "Scanning environment…")
			So(n.Overridden(), ShouldBeFalse)
		})

		Convey("When advanced without selections", func() {
			want := []narrator.Phase{narrator.Correlating, narrator.Enforcing, narrator.Scanning}

			Convey("Then it visits every phase in strict round-robin order", func() {
				for round := 0; round < 5; round++ {
					for _, p := range want {
						So(n.Advance(), ShouldEqual, p)
						So(n.Status(), ShouldEqual, script.Line(p))
					}
				}
			})
		})
	})
}

func TestSelectionOverride(t *testing.T) {
	Convey("Given a narrator in its first phase", t, func() {
		n := narrator.New(narrator.ScriptFor(model.KindHexRadar))

		Convey("When a marker is selected", func() {
			n.Select("Suspicious pattern")

			Convey("Then the label shows immediately and the phase is unchanged", func() {
				So(n.Status(), ShouldEqual, "Suspicious pattern")
				So(n.Phase(), ShouldEqual, narrator.Scanning)
				So(n.Overridden(), ShouldBeTrue)
			})

			Convey("And the next phase tick fires", func() {
				n.Advance()

				Convey("Then the next phase's narration replaces the label", func() {
					So(n.Phase(), ShouldEqual, narrator.Correlating)
					So(n.Status(), ShouldEqual, "AI: correlating signals…")
					So(n.Overridden(), ShouldBeFalse)
				})
			})
		})

		Convey("When two selections arrive before a tick", func() {
			n.Select("Network anomaly")
			n.Select("Integrity OK")

			Convey("Then the latest wins", func() {
				So(n.Status(), ShouldEqual, "Integrity OK")
			})
		})
	})
}

func TestScripts(t *testing.T) {
	Convey("Given the per-kind scripts", t, func() {
		Convey("Then every kind narrates three distinct phases", func() {
			for _, kind := range model.Kinds {
				s := narrator.ScriptFor(kind)
				So(s[0], ShouldNotEqual, s[1])
				So(s[1], ShouldNotEqual, s[2])
			}
			So(narrator.ScriptFor("unknown"), ShouldResemble, narrator.ScriptFor(model.KindRadar))
			So(narrator.ScriptFor(model.KindWaveform).Line(narrator.Enforcing), ShouldEqual, "Anti-cheat: action / mitigation")
		})

		Convey("Then phases have names", func() {
			So(narrator.Scanning.String(), ShouldEqual, "scanning")
			So(narrator.Enforcing.Next(), ShouldEqual, narrator.Scanning)
			So(narrator.Phase(9).String(), ShouldEqual, "unknown")
		})
	})
}
