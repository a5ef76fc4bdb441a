package ui

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/tuffrabit/tinygo-oledpager/pkg/display"
	"github.com/tuffrabit/tinygo-oledpager/pkg/errcode"
	"github.com/tuffrabit/tinygo-oledpager/pkg/layout"
	"github.com/tuffrabit/tinygo-oledpager/pkg/textbuf"
)

// fakeInput reports a queued press once.
type fakeInput struct {
	mu      sync.Mutex
	pending bool
	polls   int
}

func (f *fakeInput) Poll() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	p := f.pending
	f.pending = false
	return p
}

func (f *fakeInput) queue() {
	f.mu.Lock()
	f.pending = true
	f.mu.Unlock()
}

type textCall struct {
	s    string
	x, y int
}

// recordingSurface keeps the calls of the last frame.
type recordingSurface struct {
	mu       sync.Mutex
	texts    []textCall
	hlines   [][3]int
	vlines   [][3]int
	fills    int
	presents int
}

func (r *recordingSurface) Fill(display.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fills++
	r.texts = nil
	r.hlines = nil
	r.vlines = nil
}

func (r *recordingSurface) HLine(x, y, l int, _ display.Color) {
	r.mu.Lock()
	r.hlines = append(r.hlines, [3]int{x, y, l})
	r.mu.Unlock()
}

func (r *recordingSurface) VLine(x, y, l int, _ display.Color) {
	r.mu.Lock()
	r.vlines = append(r.vlines, [3]int{x, y, l})
	r.mu.Unlock()
}

func (r *recordingSurface) Text(s string, x, y int) {
	r.mu.Lock()
	r.texts = append(r.texts, textCall{s, x, y})
	r.mu.Unlock()
}

func (r *recordingSurface) Present() error {
	r.mu.Lock()
	r.presents++
	r.mu.Unlock()
	return nil
}

func (r *recordingSurface) hasText(s string, x, y int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.texts {
		if c == (textCall{s, x, y}) {
			return true
		}
	}
	return false
}

// row reassembles the characters drawn on text line n.
func (r *recordingSurface) row(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	cells := map[int]string{}
	max := -1
	for _, c := range r.texts {
		if c.y != n*8 || len(c.s) != 1 {
			continue
		}
		col := c.x / 8
		cells[col] = c.s
		if col > max {
			max = col
		}
	}
	out := ""
	for i := 0; i <= max; i++ {
		out += cells[i]
	}
	return out
}

type harness struct {
	m                     *Machine
	surface               *recordingSurface
	store                 *textbuf.Buffer
	left, right, up, down *fakeInput
}

func newHarness(t *testing.T, modes []ModeSpec) *harness {
	t.Helper()
	geo, err := layout.New(128, 64)
	if err != nil {
		t.Fatalf("layout.New failed: %v", err)
	}
	h := &harness{
		surface: &recordingSurface{},
		store:   textbuf.New(geo.LineLength(), geo.Lines(), 8),
		left:    &fakeInput{},
		right:   &fakeInput{},
		up:      &fakeInput{},
		down:    &fakeInput{},
	}
	m, err := New(Config{
		Surface:  h.surface,
		Geometry: geo,
		Store:    h.store,
		Inputs:   Inputs{Left: h.left, Right: h.right, Up: h.up, Down: h.down},
		Modes:    modes,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.m = m
	return h
}

// press queues the given buttons and runs one tick.
func (h *harness) press(dirs ...Direction) {
	for _, d := range dirs {
		switch d {
		case Left:
			h.left.queue()
		case Right:
			h.right.queue()
		case Up:
			h.up.queue()
		case Down:
			h.down.queue()
		}
	}
	h.m.Tick()
}

func (h *harness) fillLines(n int) {
	for i := 0; i < n; i++ {
		h.store.Append("line " + strconv.Itoa(i) + "\n")
	}
}

func TestNewDefaults(t *testing.T) {
	h := newHarness(t, nil)

	if h.m.Mode() != ModeText {
		t.Errorf("expected initial mode text, got %q", h.m.Mode())
	}
	modes := h.m.Modes()
	if len(modes) != 2 || modes[0] != ModeText || modes[1] != ModeInfo {
		t.Errorf("unexpected default modes %v", modes)
	}
	if h.m.Selection() != 0 || h.m.Page() != 0 {
		t.Errorf("selection and page should start at 0")
	}
}

func TestNewRejectsMissingCollaborators(t *testing.T) {
	geo, _ := layout.New(128, 64)
	in := &fakeInput{}
	full := Inputs{Left: in, Right: in, Up: in, Down: in}
	store := textbuf.New(16, 7, 1)
	surface := &recordingSurface{}

	cases := []struct {
		name string
		cfg  Config
	}{
		{"no surface", Config{Geometry: geo, Store: store, Inputs: full}},
		{"no store", Config{Surface: surface, Geometry: geo, Inputs: full}},
		{"no down input", Config{Surface: surface, Geometry: geo, Store: store, Inputs: Inputs{Left: in, Right: in, Up: in}}},
		{"zero geometry", Config{Surface: surface, Store: store, Inputs: full}},
	}
	for _, tc := range cases {
		_, err := New(tc.cfg)
		if errcode.Of(err) != errcode.InvalidParams {
			t.Errorf("%s: expected invalid_params, got %v", tc.name, err)
		}
		if !errcode.IsConfig(err) {
			t.Errorf("%s: expected a configuration error", tc.name)
		}
	}
}

func noopHandle(*Machine, Directions) {}
func noopRender(*Machine)             {}

func TestModeTableValidation(t *testing.T) {
	geo, _ := layout.New(128, 64)
	in := &fakeInput{}
	base := Config{
		Surface:  &recordingSurface{},
		Geometry: geo,
		Store:    textbuf.New(16, 7, 1),
		Inputs:   Inputs{Left: in, Right: in, Up: in, Down: in},
	}

	cases := []struct {
		name  string
		modes []ModeSpec
		code  errcode.Code
		part  Part
	}{
		{"empty table", []ModeSpec{}, errcode.InvalidParams, 0},
		{"reserved name", []ModeSpec{{Name: ModeSelect, Handle: noopHandle, Render: noopRender}}, errcode.InvalidMode, 0},
		{"empty name", []ModeSpec{{Handle: noopHandle, Render: noopRender}}, errcode.InvalidMode, 0},
		{"duplicate", []ModeSpec{
			{Name: "a", Handle: noopHandle, Render: noopRender},
			{Name: "a", Handle: noopHandle, Render: noopRender},
		}, errcode.InvalidMode, 0},
		{"missing handler", []ModeSpec{{Name: "clock", Render: noopRender}}, errcode.IncompleteMode, PartHandler},
		{"missing renderer", []ModeSpec{{Name: "clock", Handle: noopHandle}}, errcode.IncompleteMode, PartRenderer},
	}
	for _, tc := range cases {
		cfg := base
		cfg.Modes = tc.modes
		_, err := New(cfg)
		if errcode.Of(err) != tc.code {
			t.Errorf("%s: expected %q, got %v", tc.name, tc.code, err)
			continue
		}
		if tc.part != 0 {
			var ime *IncompleteModeError
			if !errors.As(err, &ime) {
				t.Errorf("%s: expected *IncompleteModeError, got %T", tc.name, err)
				continue
			}
			if ime.Part != tc.part || ime.Mode != "clock" {
				t.Errorf("%s: expected %s of clock, got %s of %s", tc.name, tc.part, ime.Part, ime.Mode)
			}
			if !errors.Is(err, errcode.IncompleteMode) {
				t.Errorf("%s: errors.Is(IncompleteMode) should hold", tc.name)
			}
		}
	}
}

func TestUnknownInitialMode(t *testing.T) {
	geo, _ := layout.New(128, 64)
	in := &fakeInput{}
	_, err := New(Config{
		Surface:  &recordingSurface{},
		Geometry: geo,
		Store:    textbuf.New(16, 7, 1),
		Inputs:   Inputs{Left: in, Right: in, Up: in, Down: in},
		Initial:  "graph",
	})
	if !errors.Is(err, errcode.InvalidMode) {
		t.Errorf("expected invalid_mode, got %v", err)
	}
}

func TestSetMode(t *testing.T) {
	h := newHarness(t, nil)

	if err := h.m.SetMode(ModeInfo); err != nil {
		t.Fatalf("SetMode(info) failed: %v", err)
	}
	if h.m.Mode() != ModeInfo {
		t.Errorf("expected info, got %q", h.m.Mode())
	}
	if err := h.m.SetMode(ModeSelect); err != nil {
		t.Errorf("select must always be settable, got %v", err)
	}

	err := h.m.SetMode("graph")
	if errcode.Of(err) != errcode.InvalidMode {
		t.Errorf("expected invalid_mode, got %v", err)
	}
	if h.m.Mode() != ModeSelect {
		t.Errorf("failed SetMode must not change the mode")
	}
	if !h.m.HasMode(ModeText) || !h.m.HasMode(ModeSelect) || h.m.HasMode("graph") {
		t.Errorf("HasMode disagrees with the table")
	}
}

func TestLeftRightOpensMenuFromAnyMode(t *testing.T) {
	for _, start := range []Mode{ModeText, ModeInfo, ModeSelect} {
		h := newHarness(t, nil)
		h.fillLines(20)
		h.press(Right)
		if err := h.m.SetMode(start); err != nil {
			t.Fatalf("SetMode(%s) failed: %v", start, err)
		}
		h.m.selection = 1
		page := h.m.Page()

		h.press(Left, Right)

		if h.m.Mode() != ModeSelect {
			t.Errorf("from %s: expected select, got %q", start, h.m.Mode())
		}
		if h.m.Selection() != 0 {
			t.Errorf("from %s: selection should reset to 0, got %d", start, h.m.Selection())
		}
		if h.m.Page() != page {
			t.Errorf("from %s: the mode handler must not run on the menu shortcut", start)
		}
	}
}

func TestMenuShortcutPreemptsHandler(t *testing.T) {
	var handled int
	modes := []ModeSpec{{
		Name:   "count",
		Handle: func(*Machine, Directions) { handled++ },
		Render: noopRender,
	}}
	h := newHarness(t, modes)

	h.press(Up)
	h.press(Left, Right, Up)
	if handled != 1 {
		t.Errorf("expected the handler to run once, ran %d times", handled)
	}
	if h.m.Mode() != ModeSelect {
		t.Errorf("expected select, got %q", h.m.Mode())
	}
}

func TestSelectionClampsSingleMode(t *testing.T) {
	modes := []ModeSpec{{Name: ModeText, Handle: (*Machine).handleText, Render: (*Machine).renderText}}
	h := newHarness(t, modes)
	h.press(Left, Right)

	for i := 0; i < 10; i++ {
		h.press(Right)
		if h.m.Selection() != 0 {
			t.Fatalf("with one mode selection must stay 0, got %d", h.m.Selection())
		}
	}
	h.press(Left)
	if h.m.Selection() != 0 {
		t.Errorf("selection must not go below 0, got %d", h.m.Selection())
	}
}

func TestSelectionClampsBothEnds(t *testing.T) {
	h := newHarness(t, nil)
	h.press(Left, Right)

	for i := 0; i < 5; i++ {
		h.press(Right)
	}
	if h.m.Selection() != 1 {
		t.Errorf("expected selection clamped to 1, got %d", h.m.Selection())
	}
	for i := 0; i < 5; i++ {
		h.press(Left)
	}
	if h.m.Selection() != 0 {
		t.Errorf("expected selection clamped to 0, got %d", h.m.Selection())
	}
}

func TestCommitSelection(t *testing.T) {
	for _, commit := range []Direction{Up, Down} {
		for i, want := range []Mode{ModeText, ModeInfo} {
			h := newHarness(t, nil)
			h.press(Left, Right)
			for j := 0; j < i; j++ {
				h.press(Right)
			}
			h.press(commit)
			if h.m.Mode() != want {
				t.Errorf("commit with %s at %d: expected %q, got %q", commit, i, want, h.m.Mode())
			}
		}
	}
}

func TestSelectRightWinsOverCommit(t *testing.T) {
	h := newHarness(t, nil)
	h.press(Left, Right)
	h.press(Right, Up)
	if h.m.Mode() != ModeSelect || h.m.Selection() != 1 {
		t.Errorf("right should move the cursor without committing, mode %q selection %d", h.m.Mode(), h.m.Selection())
	}
}

func TestTextPagingClamps(t *testing.T) {
	h := newHarness(t, nil)
	h.fillLines(15) // 3 pages of 7

	for i := 0; i < 6; i++ {
		h.press(Right)
	}
	if h.m.Page() != 2 {
		t.Errorf("expected page clamped to 2, got %d", h.m.Page())
	}
	h.press(Left)
	if h.m.Page() != 1 {
		t.Errorf("expected page 1, got %d", h.m.Page())
	}
	for i := 0; i < 6; i++ {
		h.press(Left)
	}
	if h.m.Page() != 0 {
		t.Errorf("expected page clamped to 0, got %d", h.m.Page())
	}
}

func TestTextUpDownClears(t *testing.T) {
	h := newHarness(t, nil)
	h.fillLines(20)
	h.press(Right)
	h.press(Right)

	h.press(Up, Down)

	if h.m.Page() != 0 {
		t.Errorf("expected page 0 after clear, got %d", h.m.Page())
	}
	if h.store.Lines() != 0 || h.store.PageCount() != 1 {
		t.Errorf("text store should be empty after clear")
	}
}

func TestEveryInputPolledOncePerTick(t *testing.T) {
	h := newHarness(t, nil)
	h.m.Tick()
	h.m.Tick()
	for name, in := range map[string]*fakeInput{"left": h.left, "right": h.right, "up": h.up, "down": h.down} {
		if in.polls != 2 {
			t.Errorf("%s polled %d times in 2 ticks", name, in.polls)
		}
	}
}

func TestRenderText(t *testing.T) {
	h := newHarness(t, nil)
	h.store.Append("hello\nworld\n")

	if err := h.m.Draw(); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	s := h.surface
	if s.presents != 1 {
		t.Errorf("expected one present, got %d", s.presents)
	}
	if !s.hasText("text", 17, 57) {
		t.Errorf("mode name missing from the status bar: %v", s.texts)
	}
	if !s.hasText("1", 0, 57) {
		t.Errorf("current page indicator missing")
	}
	if !s.hasText("1", 113, 57) {
		t.Errorf("page count indicator missing")
	}
	if !s.hasText("3%", 88, 57) {
		t.Errorf("used percentage missing: %v", s.texts)
	}
	if got := s.row(0); got != "hello" {
		t.Errorf("line 0: expected hello, got %q", got)
	}
	if got := s.row(1); got != "world" {
		t.Errorf("line 1: expected world, got %q", got)
	}
	foundDivider := false
	for _, v := range s.vlines {
		if v == [3]int{86, 57, 8} {
			foundDivider = true
		}
	}
	if !foundDivider {
		t.Errorf("capacity divider missing: %v", s.vlines)
	}
}

func TestRenderSecondPage(t *testing.T) {
	h := newHarness(t, nil)
	h.fillLines(10)
	h.press(Right)

	if err := h.m.Draw(); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if !h.surface.hasText("2", 0, 57) || !h.surface.hasText("2", 113, 57) {
		t.Errorf("expected page 2 of 2 in the status bar: %v", h.surface.texts)
	}
	if got := h.surface.row(0); got != "line 7" {
		t.Errorf("expected line 7 at the top of page 2, got %q", got)
	}
}

func TestRenderSelect(t *testing.T) {
	h := newHarness(t, nil)
	h.press(Left, Right)
	h.press(Right)

	if err := h.m.Draw(); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	s := h.surface
	if !s.hasText("select", 17, 57) {
		t.Errorf("select mode name missing")
	}
	if !s.hasText("2", 0, 57) || !s.hasText("2", 113, 57) {
		t.Errorf("expected selection 2 of 2: %v", s.texts)
	}
	if s.row(0) != "text" || s.row(1) != "info" {
		t.Errorf("expected mode list, got %q / %q", s.row(0), s.row(1))
	}
	want := [3]int{0, 16, 32}
	found := false
	for _, l := range s.hlines {
		if l == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected underline %v, got %v", want, s.hlines)
	}
}

func TestRenderSelectScrolls(t *testing.T) {
	var modes []ModeSpec
	for i := 0; i < 9; i++ {
		modes = append(modes, ModeSpec{Name: Mode("m" + strconv.Itoa(i)), Handle: noopHandle, Render: noopRender})
	}
	h := newHarness(t, modes)
	h.press(Left, Right)
	for i := 0; i < 8; i++ {
		h.press(Right)
	}
	if h.m.Selection() != 8 {
		t.Fatalf("expected selection 8, got %d", h.m.Selection())
	}
	if err := h.m.Draw(); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if h.surface.row(0) != "m7" || h.surface.row(1) != "m8" {
		t.Errorf("expected the second screen of the menu, got %q / %q", h.surface.row(0), h.surface.row(1))
	}
}

func TestRenderInfo(t *testing.T) {
	h := newHarness(t, nil)
	clock := time.Unix(0, 0)
	h.m.now = func() time.Time { return clock }
	h.m.started = clock.Add(-90 * time.Second)
	if err := h.m.SetMode(ModeInfo); err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}
	h.press(Left)
	h.press(Right)

	if err := h.m.Draw(); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if got := h.surface.row(3); got != "keys  2" {
		t.Errorf("expected press counter, got %q", got)
	}
	if got := h.surface.row(4); got != "up    1m30s" {
		t.Errorf("expected uptime, got %q", got)
	}

	h.press(Up, Down)
	if h.m.presses != 0 {
		t.Errorf("up+down should reset the press counter, got %d", h.m.presses)
	}
}

func TestCustomModeDispatch(t *testing.T) {
	var got Directions
	var rendered bool
	modes := []ModeSpec{
		{Name: ModeText, Handle: (*Machine).handleText, Render: (*Machine).renderText},
		{Name: "probe", Handle: func(_ *Machine, d Directions) { got = d }, Render: func(*Machine) { rendered = true }},
	}
	h := newHarness(t, modes)
	if err := h.m.SetMode("probe"); err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}

	h.press(Up, Left)
	if got != Press(Up, Left) {
		t.Errorf("handler got %s, expected [left up]", got)
	}
	if err := h.m.Draw(); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if !rendered {
		t.Errorf("custom renderer not called")
	}
}

func TestCommands(t *testing.T) {
	h := newHarness(t, nil)
	h.fillLines(20)

	if !h.m.Post(Command{Kind: CmdPage, Page: 99}) {
		t.Fatalf("Post failed")
	}
	h.m.Tick()
	if h.m.Page() != 2 {
		t.Errorf("page command should clamp to 2, got %d", h.m.Page())
	}

	h.m.Post(Command{Kind: CmdMode, Mode: ModeInfo})
	h.m.Tick()
	if h.m.Mode() != ModeInfo {
		t.Errorf("expected info, got %q", h.m.Mode())
	}

	h.m.Post(Command{Kind: CmdMode, Mode: "graph"})
	h.m.Tick()
	if h.m.Mode() != ModeInfo {
		t.Errorf("unknown mode command must be ignored, got %q", h.m.Mode())
	}

	h.m.Post(Command{Kind: CmdClear})
	h.m.Tick()
	if h.store.Lines() != 0 || h.m.Page() != 0 {
		t.Errorf("clear command should empty the store and reset the page")
	}
}

func TestPostQueueFull(t *testing.T) {
	h := newHarness(t, nil)
	for i := 0; i < commandQueue; i++ {
		if !h.m.Post(Command{Kind: CmdClear}) {
			t.Fatalf("Post %d failed before the queue was full", i)
		}
	}
	if h.m.Post(Command{Kind: CmdClear}) {
		t.Errorf("Post should report false on a full queue")
	}
}

func TestRandomPressesKeepInvariants(t *testing.T) {
	h := newHarness(t, nil)
	h.fillLines(30)
	rng := rand.New(rand.NewSource(7))
	all := []Direction{Left, Right, Up, Down}

	for i := 0; i < 2000; i++ {
		var dirs []Direction
		for _, d := range all {
			if rng.Intn(3) == 0 {
				dirs = append(dirs, d)
			}
		}
		if rng.Intn(50) == 0 {
			h.fillLines(rng.Intn(10))
		}
		h.press(dirs...)

		if s := h.m.Selection(); s < 0 || s > len(h.m.Modes())-1 {
			t.Fatalf("step %d: selection %d out of range", i, s)
		}
		if p := h.m.Page(); p < 0 || p > h.store.PageCount()-1 {
			t.Fatalf("step %d: page %d out of range [0,%d]", i, p, h.store.PageCount()-1)
		}
		if !h.m.HasMode(h.m.Mode()) {
			t.Fatalf("step %d: active mode %q not registered", i, h.m.Mode())
		}
	}
}

func TestRun(t *testing.T) {
	geo, _ := layout.New(128, 64)
	surface := &recordingSurface{}
	store := textbuf.New(geo.LineLength(), geo.Lines(), 2)
	in := &fakeInput{}

	m, err := New(Config{
		Surface:   surface,
		Geometry:  geo,
		Store:     store,
		Inputs:    Inputs{Left: in, Right: in, Up: in, Down: in},
		TickDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = m.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if page := store.Page(0); len(page) == 0 || string(page[0]) != "Starting..." {
		t.Errorf("expected the boot line in the store, got %q", page)
	}
	surface.mu.Lock()
	presents := surface.presents
	surface.mu.Unlock()
	if presents < 2 {
		t.Errorf("expected the boot frame and at least one tick frame, got %d presents", presents)
	}
}
