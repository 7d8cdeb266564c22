package sensor_test

import (
	"testing"

	"github.com/okian/eyeflow/internal/adapters/sensor"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSelectBest(t *testing.T) {
	Convey("Given detector hits", t, func() {
		Convey("When there are none", func() {
			_, ok := sensor.SelectBest(nil)
			_, gazeOK := sensor.GazeFromFaces(nil)

			Convey("Then no face and no sample is produced", func() {
				So(ok, ShouldBeFalse)
				So(gazeOK, ShouldBeFalse)
			})
		})

		Convey("When two faces have similar scores but different sizes", func() {
			far := sensor.Face{W: 0.1, H: 0.1, Score: 0.9}
			near := sensor.Face{
				W: 0.5, H: 0.6, Score: 0.85,
				LeftEye:  sensor.Point{X: 0.3, Y: 0.1},
				RightEye: sensor.Point{X: 0.5, Y: 0.1},
			}
			best, ok := sensor.SelectBest([]sensor.Face{far, near})

			Convey("Then the nearer face wins", func() {
				So(ok, ShouldBeTrue)
				So(best, ShouldResemble, near)
			})

			Convey("And its eye midpoint becomes the gaze sample", func() {
				g, ok := sensor.GazeFromFaces([]sensor.Face{far, near})
				So(ok, ShouldBeTrue)
				So(g.X, ShouldAlmostEqual, 0.4, 1e-12)
				So(g.Y, ShouldAlmostEqual, 0.1, 1e-12)
				So(g.Confidence, ShouldEqual, 1)
			})
		})

		Convey("When one face is far more confident", func() {
			weak := sensor.Face{W: 0.4, H: 0.4, Score: 0.2}
			strong := sensor.Face{W: 0.2, H: 0.2, Score: 0.99}
			best, _ := sensor.SelectBest([]sensor.Face{weak, strong})

			Convey("Then confidence dominates", func() {
				So(best, ShouldResemble, strong)
			})
		})
	})
}
