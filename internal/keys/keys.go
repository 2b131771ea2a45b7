// Package keys contains HID key codes and the bounded key report built each tick.
// This package has NO external dependencies (no GPIO, Bluetooth, OS, or time).
package keys

import (
	"fmt"
	"strings"
)

// Code is a USB HID usage ID on the Keyboard/Keypad page (0x07).
type Code uint8

// CodeNone marks an empty report slot on the wire. It is never a valid key.
const CodeNone Code = 0x00

const (
	CodeA Code = 0x04 + iota
	CodeB
	CodeC
	CodeD
	CodeE
	CodeF
	CodeG
	CodeH
	CodeI
	CodeJ
	CodeK
	CodeL
	CodeM
	CodeN
	CodeO
	CodeP
	CodeQ
	CodeR
	CodeS
	CodeT
	CodeU
	CodeV
	CodeW
	CodeX
	CodeY
	CodeZ
)

const (
	Code1 Code = 0x1E + iota
	Code2
	Code3
	Code4
	Code5
	Code6
	Code7
	Code8
	Code9
	Code0
)

const (
	CodeEnter     Code = 0x28
	CodeEscape    Code = 0x29
	CodeBackspace Code = 0x2A
	CodeTab       Code = 0x2B
	CodeSpace     Code = 0x2C
	CodePageUp    Code = 0x4B
	CodePageDown  Code = 0x4E
	CodeHome      Code = 0x4A
	CodeEnd       Code = 0x4D

	CodeRightArrow Code = 0x4F
	CodeLeftArrow  Code = 0x50
	CodeDownArrow  Code = 0x51
	CodeUpArrow    Code = 0x52
)

const (
	CodeF1 Code = 0x3A + iota
	CodeF2
	CodeF3
	CodeF4
	CodeF5
	CodeF6
	CodeF7
	CodeF8
	CodeF9
	CodeF10
	CodeF11
	CodeF12
)

var names = map[Code]string{
	CodeEnter:      "ENTER",
	CodeEscape:     "ESCAPE",
	CodeBackspace:  "BACKSPACE",
	CodeTab:        "TAB",
	CodeSpace:      "SPACE",
	CodePageUp:     "PAGE_UP",
	CodePageDown:   "PAGE_DOWN",
	CodeHome:       "HOME",
	CodeEnd:        "END",
	CodeRightArrow: "RIGHT_ARROW",
	CodeLeftArrow:  "LEFT_ARROW",
	CodeDownArrow:  "DOWN_ARROW",
	CodeUpArrow:    "UP_ARROW",
}

var byName = map[string]Code{}

func init() {
	for c := CodeA; c <= CodeZ; c++ {
		names[c] = string(rune('A' + int(c-CodeA)))
	}
	for c := Code1; c <= Code9; c++ {
		names[c] = string(rune('1' + int(c-Code1)))
	}
	names[Code0] = "0"
	for c := CodeF1; c <= CodeF12; c++ {
		names[c] = fmt.Sprintf("F%d", int(c-CodeF1)+1)
	}
	for c, n := range names {
		byName[n] = c
	}
}

// String returns the canonical name, or the hex usage ID for unnamed codes.
func (c Code) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return fmt.Sprintf("0x%02X", uint8(c))
}

// ParseCode resolves a key name such as "LEFT_ARROW", "a" or "F5".
// Hex usage IDs ("0x50") are accepted for keys without a name.
func ParseCode(s string) (Code, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if c, ok := byName[name]; ok {
		return c, nil
	}
	var v uint8
	if _, err := fmt.Sscanf(name, "0X%02X", &v); err == nil && len(name) == 4 {
		if Code(v) == CodeNone {
			return CodeNone, fmt.Errorf("key code 0x00 is reserved")
		}
		return Code(v), nil
	}
	return CodeNone, fmt.Errorf("unknown key %q", s)
}
