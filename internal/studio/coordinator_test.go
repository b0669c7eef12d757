package studio

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/park285/pubg-card-studio/internal/domain"
	"github.com/park285/pubg-card-studio/internal/service/card"
)

type stubNotifier struct {
	mu        sync.Mutex
	publish   func(domain.Toast)
	succeeded int
	failed    int
	images    int
}

func (n *stubNotifier) ExportSucceeded(string) {
	n.mu.Lock()
	n.succeeded++
	n.mu.Unlock()
	n.publish(domain.Toast{Title: "ok"})
}

func (n *stubNotifier) ExportFailed() {
	n.mu.Lock()
	n.failed++
	n.mu.Unlock()
	n.publish(domain.Toast{Title: "fail", Variant: domain.ToastDestructive})
}

func (n *stubNotifier) ImageFailed(string, error) {
	n.mu.Lock()
	n.images++
	n.mu.Unlock()
	n.publish(domain.Toast{Title: "image", Variant: domain.ToastDestructive})
}

func (n *stubNotifier) Active() []domain.Toast { return nil }

func newTestCoordinator(t *testing.T) (*Coordinator, *stubNotifier) {
	t.Helper()
	n := &stubNotifier{}
	c, err := NewCoordinator("s1", domain.DefaultPlayerInfo(), domain.DefaultTheme(), Options{
		NewNotifier: func(publish func(domain.Toast)) Notifier {
			n.publish = publish
			return n
		},
	})
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	t.Cleanup(c.Close)
	return c, n
}

func nextEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatalf("subscription closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("no event")
	}
	return Event{}
}

func TestCoordinatorStartsFromSeed(t *testing.T) {
	c, _ := newTestCoordinator(t)
	st := c.State()
	if st.PlayerInfo != domain.DefaultPlayerInfo() || st.Theme != domain.DefaultTheme() {
		t.Fatalf("unexpected seed state")
	}
	if st.Version != 0 || c.Surface() == nil {
		t.Fatalf("initial preview missing")
	}
	if st.Layout.Subtitle() != `"WraithKiller" FRAGGER` {
		t.Fatalf("layout: %q", st.Layout.Subtitle())
	}
}

func TestFieldEditUpdatesPreviewAndPublishes(t *testing.T) {
	c, _ := newTestCoordinator(t)
	events, cancel := c.Subscribe(4)
	defer cancel()

	before := c.Surface()
	st, err := c.SetField("teamName", "Night Owls")
	if err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if st.PlayerInfo.TeamName != "Night Owls" || st.Version != 1 {
		t.Fatalf("state: %+v", st)
	}
	if c.Surface() == before || c.Surface().Layout.Header.TeamName != "Night Owls" {
		t.Fatalf("preview not re-rendered")
	}
	ev := nextEvent(t, events)
	if ev.Type != EventSnapshot || ev.State.PlayerInfo.TeamName != "Night Owls" {
		t.Fatalf("event: %+v", ev)
	}
}

func TestUnknownInputsLeaveStateUntouched(t *testing.T) {
	c, _ := newTestCoordinator(t)
	if _, err := c.SetField("alias", "x"); !errors.Is(err, domain.ErrUnknownField) {
		t.Fatalf("field: %v", err)
	}
	if _, err := c.SelectRole("Medic"); !errors.Is(err, domain.ErrUnknownRole) {
		t.Fatalf("role: %v", err)
	}
	if _, err := c.SelectTheme("Neon"); !errors.Is(err, domain.ErrUnknownTheme) {
		t.Fatalf("theme: %v", err)
	}
	if c.State().Version != 0 {
		t.Fatalf("state changed on rejected input")
	}
}

func TestThemeSelection(t *testing.T) {
	c, _ := newTestCoordinator(t)
	st, err := c.SelectTheme("Light")
	if err != nil {
		t.Fatalf("SelectTheme: %v", err)
	}
	want, _ := domain.ThemeByName("Light")
	if st.Theme != want || c.Surface().Theme != want {
		t.Fatalf("theme not applied")
	}
	if st.PlayerInfo != domain.DefaultPlayerInfo() {
		t.Fatalf("theme change touched player info")
	}
}

func TestImageSelectionAndFailure(t *testing.T) {
	c, n := newTestCoordinator(t)

	var buf bytes.Buffer
	_ = png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)))
	if err := <-c.SelectImage("me.png", &buf); err != nil {
		t.Fatalf("SelectImage: %v", err)
	}
	if !strings.HasPrefix(c.State().PlayerInfo.ProfileImage, "data:image/png;base64,") {
		t.Fatalf("image not stored")
	}
	if c.Surface().Layout.Portrait.Placeholder {
		t.Fatalf("preview still shows placeholder")
	}

	prev := c.State().PlayerInfo.ProfileImage
	if err := <-c.SelectImage("empty.png", bytes.NewReader(nil)); err == nil {
		t.Fatalf("expected failure")
	}
	if c.State().PlayerInfo.ProfileImage != prev {
		t.Fatalf("failed decode replaced image")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.images != 1 {
		t.Fatalf("image failure not notified")
	}
}

func TestExportUsesCurrentIGN(t *testing.T) {
	c, n := newTestCoordinator(t)
	events, cancel := c.Subscribe(8)
	defer cancel()

	if _, err := c.SetField("inGameName", ""); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	nextEvent(t, events)

	var got card.Download
	res := c.Export(context.Background(), func(_ context.Context, d card.Download) error {
		got = d
		return nil
	})
	if !res.OK {
		t.Fatalf("export failed: %v", res.Err)
	}
	if got.Filename != "player_card.png" || got.Width != 2*card.CardWidth {
		t.Fatalf("download: %s %dx%d", got.Filename, got.Width, got.Height)
	}
	ev := nextEvent(t, events)
	if ev.Type != EventToast || ev.Toast.Title != "ok" {
		t.Fatalf("expected success toast, got %+v", ev)
	}
	if c.State().ExportState != card.ExportDone || n.succeeded != 1 {
		t.Fatalf("export state: %s", c.State().ExportState)
	}
}

func TestClosedCoordinatorRejectsEdits(t *testing.T) {
	c, _ := newTestCoordinator(t)
	events, _ := c.Subscribe(1)
	c.Close()
	if _, ok := <-events; ok {
		t.Fatalf("subscription should be closed")
	}
	if _, err := c.SetField("kd", "1.0"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := <-c.SelectImage("x.png", bytes.NewReader([]byte{1})); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed from image, got %v", err)
	}
	ch, _ := c.Subscribe(1)
	if _, ok := <-ch; ok {
		t.Fatalf("subscribe after close should yield a closed channel")
	}
}
