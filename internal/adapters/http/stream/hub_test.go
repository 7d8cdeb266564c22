package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/eyeflow/internal/domain/model"
	"github.com/okian/eyeflow/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func waitSubscribers(h *Hub, n int) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.Subscribers() == n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestStreamRenderer(t *testing.T) {
	_ = logger.Init()

	Convey("Given a running hub behind an HTTP server", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		hub := NewHub()
		go hub.Run(ctx)
		srv := httptest.NewServer(hub)
		defer srv.Close()

		url := "ws" + strings.TrimPrefix(srv.URL, "http")
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		So(err, ShouldBeNil)
		defer conn.Close()
		So(waitSubscribers(hub, 1), ShouldBeTrue)

		Convey("When a scroll signal is rendered", func() {
			NewRenderer(hub).ApplyScroll(ctx, model.ScrollSignal{DeltaY: -10.8})

			Convey("Then the subscriber receives it as JSON", func() {
				_ = conn.SetReadDeadline(time.Now().Add(time.Second))
				_, data, err := conn.ReadMessage()
				So(err, ShouldBeNil)

				var got model.ScrollSignal
				So(json.Unmarshal(data, &got), ShouldBeNil)
				So(got.DeltaY, ShouldEqual, -10.8)
			})
		})

		Convey("When the subscriber disconnects", func() {
			_ = conn.Close()

			Convey("Then the hub forgets it", func() {
				So(waitSubscribers(hub, 0), ShouldBeTrue)
			})
		})

		Convey("When the hub stops", func() {
			cancel()

			Convey("Then subscribers are released", func() {
				So(waitSubscribers(hub, 0), ShouldBeTrue)
			})
		})
	})
}

func TestBroadcastWithoutSubscribers(t *testing.T) {
	_ = logger.Init()

	Convey("Given a hub with nobody listening", t, func() {
		hub := NewHub()

		Convey("Then broadcasting never blocks", func() {
			for i := 0; i < broadcastBuffer*2; i++ {
				hub.Broadcast([]byte("{}"))
			}
			So(hub.Subscribers(), ShouldEqual, 0)
		})
	})
}
