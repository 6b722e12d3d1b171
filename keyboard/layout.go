// Package keyboard holds keyboard layouts used to synthesize key events.
package keyboard

// ModifierKey is a key modifier like ALT, CTRL, or Shift.
type ModifierKey int64

const (
	// ModifierKeyAlt is the ALT key modifier.
	ModifierKeyAlt ModifierKey = 1 << iota
	// ModifierKeyControl is the CTRL key modifier.
	ModifierKeyControl
	// ModifierKeyMeta is the meta key modifier.
	ModifierKeyMeta
	// ModifierKeyShift is the Shift key modifier.
	ModifierKeyShift
)

// Key is a keyboard key name.
type Key string

// Definition represents information about a keyboard key.
type Definition struct {
	Code         string
	Key          string
	KeyCode      int64
	ShiftKey     string
	ShiftKeyCode int64
	Text         string
	Location     int64
}

// Layout represents a keyboard layout, like US.
type Layout struct {
	Name      string
	Keys      map[Key]Definition
	ValidKeys map[Key]bool
}

// KeyDefinition returns the key definition of a given key input and whether
// the layout knows the key.
func (l Layout) KeyDefinition(key Key) (Definition, bool) {
	for _, d := range l.Keys {
		if d.Key == string(key) {
			return d, true
		}
	}
	return Definition{}, false
}

// ShiftKeyDefinition returns the definition of the key that produces the
// given input when shifted. It returns an empty definition if none does.
func (l Layout) ShiftKeyDefinition(key Key) Definition {
	for _, d := range l.Keys {
		if d.ShiftKey == string(key) {
			return d
		}
	}
	return Definition{}
}

// ModifiedKeyDefinition resolves a key input to the definition of the event
// to dispatch, applying the given modifier state. Inputs reachable only
// through Shift (e.g. uppercase letters) resolve to their base key with the
// Shift modifier implied in the returned definition.
func (l *Layout) ModifiedKeyDefinition(key Key, m ModifierKey) Definition {
	shift := m & ModifierKeyShift

	srcKeyDef, ok := l.Keys[key]
	if !ok {
		srcKeyDef, ok = l.KeyDefinition(key)
	}
	if !ok {
		srcKeyDef = l.ShiftKeyDefinition(key)
		shift = m | ModifierKeyShift
	}

	var keyDef Definition
	if srcKeyDef.Key != "" {
		keyDef.Key = srcKeyDef.Key
		keyDef.Text = srcKeyDef.Key
	}
	if shift != 0 && srcKeyDef.ShiftKeyCode != 0 {
		keyDef.KeyCode = srcKeyDef.ShiftKeyCode
	}
	if srcKeyDef.KeyCode != 0 {
		keyDef.KeyCode = srcKeyDef.KeyCode
	}
	if key != "" {
		keyDef.Code = string(key)
	}
	if srcKeyDef.Code != "" {
		keyDef.Code = srcKeyDef.Code
	}
	if srcKeyDef.Location != 0 {
		keyDef.Location = srcKeyDef.Location
	}
	if srcKeyDef.Text != "" {
		keyDef.Text = srcKeyDef.Text
	}
	if shift != 0 && srcKeyDef.ShiftKey != "" {
		keyDef.Key = srcKeyDef.ShiftKey
		keyDef.Text = srcKeyDef.ShiftKey
	}
	// If any modifiers besides shift are pressed, no text should be sent.
	if m & ^ModifierKeyShift != 0 {
		keyDef.Text = ""
	}

	return keyDef
}

// ModifierBitFromKey returns the modifier key value from string.
func (l *Layout) ModifierBitFromKey(key string) ModifierKey {
	switch key {
	case "Alt":
		return ModifierKeyAlt
	case "Control":
		return ModifierKeyControl
	case "Meta":
		return ModifierKeyMeta
	case "Shift":
		return ModifierKeyShift
	}

	return 0
}

// IsValidKey returns true if the layout has the key.
func (l *Layout) IsValidKey(key Key) bool {
	_, ok := l.ValidKeys[key]
	return ok
}
