package action

import "fmt"

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// Hex keypad, Key0..KeyF map to keypad indices 0x0..0xF
	Key0 Action = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF

	// Emulator features
	EmulatorPauseToggle
	EmulatorStepInstruction
	EmulatorSnapshot
	EmulatorReset
	EmulatorDebugToggle
	EmulatorQuit

	// Debug controls
	DebugLogLevelIncrease
	DebugLogLevelDecrease
)

// Category groups actions by who consumes them.
type Category int

const (
	CategoryKeypad Category = iota
	CategoryEmulator
	CategoryDebug
)

// Info describes an action for logs and help screens.
type Info struct {
	Description string
	Category    Category
}

var infos = map[Action]Info{
	EmulatorPauseToggle:     {"Pause/resume", CategoryEmulator},
	EmulatorStepInstruction: {"Step one instruction", CategoryEmulator},
	EmulatorSnapshot:        {"Save snapshot", CategoryEmulator},
	EmulatorReset:           {"Reset machine", CategoryEmulator},
	EmulatorDebugToggle:     {"Toggle debug view", CategoryDebug},
	EmulatorQuit:            {"Quit", CategoryEmulator},
	DebugLogLevelIncrease:   {"More verbose logs", CategoryDebug},
	DebugLogLevelDecrease:   {"Less verbose logs", CategoryDebug},
}

// GetInfo returns the description and category of an action.
func GetInfo(act Action) Info {
	if index, ok := KeypadIndex(act); ok {
		return Info{Description: fmt.Sprintf("Keypad %X", index), Category: CategoryKeypad}
	}
	if info, ok := infos[act]; ok {
		return info
	}
	return Info{Description: "Unknown", Category: CategoryEmulator}
}

// KeypadIndex returns the hex keypad index of a keypad action.
func KeypadIndex(act Action) (uint8, bool) {
	if act >= Key0 && act <= KeyF {
		return uint8(act - Key0), true
	}
	return 0, false
}
