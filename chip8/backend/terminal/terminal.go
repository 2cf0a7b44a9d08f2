package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/terminal/render"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	width  = video.FramebufferWidth
	height = video.FramebufferHeight

	gameAreaHeight = height / 2
	registerHeight = 11
	disasmHeight   = 9
	minTermWidth   = 100
	minTermHeight  = 24
	logBufferSize  = 200
)

// Key expiry timeout. Terminals only report key presses, so a key counts as
// held while its auto-repeat keeps arriving.
const keyTimeout = 150 * time.Millisecond

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen    tcell.Screen
	newScreen func() (tcell.Screen, error)
	running   bool
	logBuffer *render.LogBuffer
	logLevel  *slog.LevelVar
	config    backend.Config
	signals   chan os.Signal

	eventQueue []backend.InputEvent         // UI actions collected between updates
	keyStates  map[action.Action]time.Time // Last time each keypad key was seen
	activeKeys map[action.Action]bool      // Keypad keys active in the previous update

	debugProvider backend.DebugDataProvider
	currentFrame  *video.FrameBuffer
	status        backend.Status
	now           func() time.Time
}

// New creates a new terminal backend on the process terminal
func New() *Backend {
	return NewWithScreen(nil)
}

// NewWithScreen creates a terminal backend drawing to the given screen,
// which must not be initialized yet. A nil screen means the process terminal.
func NewWithScreen(screen tcell.Screen) *Backend {
	b := &Backend{
		newScreen: tcell.NewScreen,
		logLevel:  new(slog.LevelVar),
		now:       time.Now,
	}
	if screen != nil {
		b.newScreen = func() (tcell.Screen, error) { return screen, nil }
	}
	return b
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.Config) error {
	t.config = config
	t.debugProvider = config.DebugProvider
	t.eventQueue = make([]backend.InputEvent, 0)
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	screen, err := t.newScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	t.screen = screen
	t.running = true

	// Route logging into the on-screen panel, stderr is hidden behind the screen
	t.logBuffer = render.NewLogBuffer(logBufferSize)
	t.logLevel.Set(slog.LevelInfo)
	if config.ShowDebug {
		t.logLevel.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, t.logLevel)))

	slog.Info("Terminal backend initialized", "title", config.Title)
	if config.ShowDebug {
		slog.Debug("Debug mode enabled")
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	return nil
}

// Update renders a frame and processes events
func (t *Backend) Update(frame *video.FrameBuffer, status backend.Status) ([]backend.InputEvent, error) {
	var events []backend.InputEvent
	now := t.now()

	select {
	case sig := <-t.signals:
		slog.Info("Received signal, shutting down", "signal", sig)
		t.running = false
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.EmulatorQuit, Type: event.Press})
	default:
	}

	// Poll for input events synchronously
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	currentlyActive := make(map[action.Action]bool)

	for act, lastPressed := range t.keyStates {
		if now.Sub(lastPressed) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}

		currentlyActive[act] = true
		if !t.activeKeys[act] {
			slog.Debug("Key press", "action", action.GetInfo(act).Description)
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		} else {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		}
	}

	// Released keys were active last update but expired since
	for act := range t.activeKeys {
		if !currentlyActive[act] {
			slog.Debug("Key release", "action", action.GetInfo(act).Description)
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = currentlyActive

	if len(t.eventQueue) > 0 {
		for _, evt := range t.eventQueue {
			slog.Debug("UI event", "action", action.GetInfo(evt.Action).Description, "type", evt.Type)
		}
		events = append(events, t.eventQueue...)
	}
	t.eventQueue = nil

	if !t.running {
		return events, nil
	}

	// Ring the terminal bell once when the tone starts
	if status.Beep && !t.status.Beep {
		if err := t.screen.Beep(); err != nil {
			slog.Debug("Terminal bell unavailable", "error", err)
		}
	}
	t.status = status

	t.currentFrame = frame
	t.render(frame)
	t.screen.Show()

	return events, nil
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
		t.screen = nil
	}
	return nil
}

// HandleAction processes backend-specific actions
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.EmulatorSnapshot:
		debug.TakeSnapshot(t.currentFrame)
	case action.EmulatorDebugToggle:
		t.config.ShowDebug = !t.config.ShowDebug
		if t.config.ShowDebug {
			slog.Info("Debug display enabled")
		} else {
			slog.Info("Debug display disabled")
		}
	case action.DebugLogLevelIncrease:
		t.changeLogLevel(1)
	case action.DebugLogLevelDecrease:
		t.changeLogLevel(-1)
	}
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEscape: "Escape",
	tcell.KeyF5:     "F5",
	tcell.KeyF10:    "F10",
	tcell.KeyF12:    "F12",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)

	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}

	mapping[tcell.KeyCtrlC] = action.EmulatorQuit

	return mapping
}

// keyMapping maps tcell keys to actions
var keyMapping = buildKeyMapping()

// runeAction maps a typed rune to its default action. Letters are matched
// case-insensitively so caps lock does not disable the keypad.
func runeAction(r rune) (action.Action, bool) {
	if r == ' ' {
		return input.GetDefaultMapping("Space")
	}
	return input.GetDefaultMapping(string(unicode.ToLower(r)))
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		act, ok = runeAction(ev.Rune())
	}
	if !ok {
		return
	}

	if act == action.EmulatorQuit {
		t.running = false
	}

	if _, isKeypad := action.KeypadIndex(act); isKeypad {
		t.keyStates[act] = now
		return
	}
	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
}

func (t *Backend) changeLogLevel(direction int) {
	oldLevel := t.logLevel.Level()
	newLevel := oldLevel
	switch direction {
	case -1:
		switch oldLevel {
		case slog.LevelDebug:
			newLevel = slog.LevelInfo
		case slog.LevelInfo:
			newLevel = slog.LevelWarn
		case slog.LevelWarn:
			newLevel = slog.LevelError
		}
	case 1:
		switch oldLevel {
		case slog.LevelError:
			newLevel = slog.LevelWarn
		case slog.LevelWarn:
			newLevel = slog.LevelInfo
		case slog.LevelInfo:
			newLevel = slog.LevelDebug
		}
	}
	if oldLevel != newLevel {
		// log before raising the threshold so the change stays visible
		slog.Info("Log filter changed", "from", oldLevel, "to", newLevel)
		t.logLevel.Set(newLevel)
	}
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, style)
		return
	}

	dividerX := width + 1
	rightPanelX := dividerX + 2
	rightPanelWidth := termWidth - rightPanelX

	t.drawBorders(termWidth, termHeight, dividerX)
	t.drawScreen(frame)

	logsY := 1
	if t.config.ShowDebug && t.debugProvider != nil {
		data := t.debugProvider.ExtractDebugData()
		t.drawRegisters(data, rightPanelX, 1, rightPanelWidth)
		t.drawDisassembly(data, rightPanelX, registerHeight+2, rightPanelWidth)
		logsY = registerHeight + disasmHeight + 3
	}
	t.drawLogs(rightPanelX, logsY, rightPanelWidth, termHeight)
}

func (t *Backend) drawText(x, y, maxWidth int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		if i >= maxWidth {
			return
		}
		t.screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}

func (t *Backend) drawBorders(termWidth, termHeight, dividerX int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}

	title := " " + t.config.Title + " "
	if t.status.Paused {
		title += "[PAUSED] "
	}
	if t.status.Beep {
		title += "♪ "
	}
	t.drawText(1, 0, dividerX-1, title, titleStyle)

	panelX := dividerX + 2
	panelWidth := termWidth - panelX
	if t.config.ShowDebug && t.debugProvider != nil {
		registerEndY := registerHeight + 1
		disasmEndY := registerEndY + disasmHeight + 1
		for _, y := range []int{registerEndY, disasmEndY} {
			for x := dividerX + 1; x < termWidth; x++ {
				t.screen.SetContent(x, y, '─', nil, borderStyle)
			}
			t.screen.SetContent(dividerX, y, '├', nil, borderStyle)
		}
		t.drawText(panelX, 0, panelWidth, " CPU State ", titleStyle)
		t.drawText(panelX, registerEndY, panelWidth, " Disassembly ", titleStyle)
		t.drawText(panelX, disasmEndY, panelWidth, t.logTitle(), titleStyle)
	} else {
		t.drawText(panelX, 0, panelWidth, t.logTitle(), titleStyle)
	}

	helpText := " Keypad: 1234/QWER/ASDF/ZXCV | SPACE=pause N=step F5=reset F10=debug F12=snapshot ESC=quit | Logs: +/- "
	t.drawText(0, termHeight-1, termWidth, helpText, borderStyle)
}

func (t *Backend) logTitle() string {
	return fmt.Sprintf(" Logs [%s] (-/+ filter) ", t.logLevel.Level())
}

func (t *Backend) drawScreen(frame *video.FrameBuffer) {
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen).Background(tcell.ColorBlack)
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			top := frame.IsSet(uint(x), uint(y))
			bottom := y+1 < height && frame.IsSet(uint(x), uint(y+1))
			t.screen.SetContent(x, y/2+1, render.GetHalfBlockChar(top, bottom), nil, style)
		}
	}
}

func (t *Backend) drawRegisters(data *debug.CompleteDebugData, startX, startY, width int) {
	if data == nil || data.CPU == nil || width <= 0 {
		return
	}
	cpu := data.CPU

	lines := []string{
		fmt.Sprintf("Status: %s", strings.ToUpper(data.DebuggerState.String())),
		fmt.Sprintf("PC: 0x%03X  I: 0x%03X  SP: %d", cpu.PC, cpu.I, cpu.SP),
	}
	for row := 0; row < 4; row++ {
		var sb strings.Builder
		for col := 0; col < 4; col++ {
			n := row*4 + col
			fmt.Fprintf(&sb, "V%X:%02X ", n, cpu.V[n])
		}
		lines = append(lines, sb.String())
	}
	lines = append(lines,
		fmt.Sprintf("DT: %02X  ST: %02X", cpu.DelayTimer, cpu.SoundTimer),
		fmt.Sprintf("Cycles: %d", cpu.Cycles),
		fmt.Sprintf("Stack: %s", formatStack(cpu.Stack)),
		fmt.Sprintf("Last: %s", cpu.Instruction),
	)

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	for i, line := range lines {
		if i >= registerHeight {
			break
		}
		t.drawText(startX, startY+i, width, line, style)
	}
}

func formatStack(stack []uint16) string {
	if len(stack) == 0 {
		return "-"
	}
	parts := make([]string, len(stack))
	for i, ret := range stack {
		parts[i] = fmt.Sprintf("%03X", ret)
	}
	return strings.Join(parts, " ")
}

func (t *Backend) drawDisassembly(data *debug.CompleteDebugData, startX, startY, width int) {
	if data == nil || data.CPU == nil || data.Memory == nil || width <= 0 {
		return
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	currentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	for i, line := range debug.CreateDisassembly(data.Memory, data.CPU.PC, disasmHeight) {
		text := fmt.Sprintf("  0x%03X: %s", line.Address, line.Instruction)
		useStyle := style
		if line.IsCurrent {
			text = "→" + text[1:]
			useStyle = currentStyle
		}
		t.drawText(startX, startY+i, width, text, useStyle)
	}
}

func (t *Backend) drawLogs(startX, startY, width, termHeight int) {
	availableHeight := termHeight - startY - 2
	if width <= 0 || availableHeight <= 0 {
		return
	}

	logs := t.logBuffer.GetRecent(availableHeight)
	for i, entry := range logs {
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		switch entry.Level {
		case slog.LevelDebug:
			style = style.Foreground(tcell.ColorGray)
		case slog.LevelWarn:
			style = style.Foreground(tcell.ColorYellow)
		case slog.LevelError:
			style = style.Foreground(tcell.ColorRed)
		}
		// newest entry at the bottom
		y := startY + len(logs) - i
		t.drawText(startX, y, width, render.FormatLogEntry(entry), style)
	}
}
