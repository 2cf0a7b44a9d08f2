package input

import "github.com/valerio/go-chip8/chip8/addr"

// Keypad tracks which of the 16 hex keys are held.
type Keypad struct {
	keys [addr.KeyCount]bool
}

func NewKeypad() *Keypad {
	return &Keypad{}
}

// Press marks a key as held. Out of range keys are ignored.
func (k *Keypad) Press(key uint8) {
	if key < addr.KeyCount {
		k.keys[key] = true
	}
}

// Release marks a key as no longer held.
func (k *Keypad) Release(key uint8) {
	if key < addr.KeyCount {
		k.keys[key] = false
	}
}

func (k *Keypad) IsPressed(key uint8) bool {
	return key < addr.KeyCount && k.keys[key]
}

// FirstPressed returns the lowest held key.
func (k *Keypad) FirstPressed() (uint8, bool) {
	for i, held := range k.keys {
		if held {
			return uint8(i), true
		}
	}
	return 0, false
}

// Reset releases every key.
func (k *Keypad) Reset() {
	k.keys = [addr.KeyCount]bool{}
}
