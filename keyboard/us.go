package keyboard

import "fmt"

// The US layout covers the printable ASCII range plus the control and
// navigation keys that typed input needs. Letter and digit definitions are
// generated, the rest is tabled.
func init() {
	keys := make(map[Key]Definition)

	for c := 'a'; c <= 'z'; c++ {
		up := c - 'a' + 'A'
		keys[Key(fmt.Sprintf("Key%c", up))] = Definition{
			Code:     fmt.Sprintf("Key%c", up),
			Key:      string(c),
			ShiftKey: string(up),
			KeyCode:  int64(up),
		}
	}

	digitShift := []string{")", "!", "@", "#", "$", "%", "^", "&", "*", "("}
	for c := '0'; c <= '9'; c++ {
		keys[Key(fmt.Sprintf("Digit%c", c))] = Definition{
			Code:     fmt.Sprintf("Digit%c", c),
			Key:      string(c),
			ShiftKey: digitShift[c-'0'],
			KeyCode:  int64(c),
		}
	}

	for _, d := range []Definition{
		{Code: "Space", Key: " ", KeyCode: 32},
		{Code: "Minus", Key: "-", ShiftKey: "_", KeyCode: 189},
		{Code: "Equal", Key: "=", ShiftKey: "+", KeyCode: 187},
		{Code: "BracketLeft", Key: "[", ShiftKey: "{", KeyCode: 219},
		{Code: "BracketRight", Key: "]", ShiftKey: "}", KeyCode: 221},
		{Code: "Backslash", Key: `\`, ShiftKey: "|", KeyCode: 220},
		{Code: "Semicolon", Key: ";", ShiftKey: ":", KeyCode: 186},
		{Code: "Quote", Key: "'", ShiftKey: `"`, KeyCode: 222},
		{Code: "Backquote", Key: "`", ShiftKey: "~", KeyCode: 192},
		{Code: "Comma", Key: ",", ShiftKey: "<", KeyCode: 188},
		{Code: "Period", Key: ".", ShiftKey: ">", KeyCode: 190},
		{Code: "Slash", Key: "/", ShiftKey: "?", KeyCode: 191},

		{Code: "Enter", Key: "Enter", Text: "\r", KeyCode: 13},
		{Code: "Tab", Key: "Tab", Text: "\t", KeyCode: 9},
		{Code: "Backspace", Key: "Backspace", KeyCode: 8},
		{Code: "Delete", Key: "Delete", KeyCode: 46},
		{Code: "Escape", Key: "Escape", KeyCode: 27},
		{Code: "ArrowDown", Key: "ArrowDown", KeyCode: 40},
		{Code: "ArrowLeft", Key: "ArrowLeft", KeyCode: 37},
		{Code: "ArrowRight", Key: "ArrowRight", KeyCode: 39},
		{Code: "ArrowUp", Key: "ArrowUp", KeyCode: 38},
		{Code: "Home", Key: "Home", KeyCode: 36},
		{Code: "End", Key: "End", KeyCode: 35},
		{Code: "PageUp", Key: "PageUp", KeyCode: 33},
		{Code: "PageDown", Key: "PageDown", KeyCode: 34},
		{Code: "ShiftLeft", Key: "Shift", KeyCode: 16, Location: 1},
		{Code: "ShiftRight", Key: "Shift", KeyCode: 16, Location: 2},
		{Code: "ControlLeft", Key: "Control", KeyCode: 17, Location: 1},
		{Code: "ControlRight", Key: "Control", KeyCode: 17, Location: 2},
		{Code: "AltLeft", Key: "Alt", KeyCode: 18, Location: 1},
		{Code: "AltRight", Key: "Alt", KeyCode: 18, Location: 2},
		{Code: "MetaLeft", Key: "Meta", KeyCode: 91, Location: 1},
		{Code: "MetaRight", Key: "Meta", KeyCode: 92, Location: 2},
	} {
		keys[Key(d.Code)] = d
	}

	// Valid inputs are the key codes plus everything a key produces with
	// and without Shift, so "a", "A" and "KeyA" all resolve.
	validKeys := make(map[Key]bool, len(keys))
	for k, d := range keys {
		validKeys[k] = true
		if d.Key != "" {
			validKeys[Key(d.Key)] = true
		}
		if d.ShiftKey != "" {
			validKeys[Key(d.ShiftKey)] = true
		}
	}

	register("us", validKeys, keys)
}
