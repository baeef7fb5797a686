package hotkeys

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	vkBack   VKey = 0x08
	vkTab    VKey = 0x09
	vkReturn VKey = 0x0D
	vkEscape VKey = 0x1B
	vkSpace  VKey = 0x20
	vkPrior  VKey = 0x21
	vkNext   VKey = 0x22
	vkEnd    VKey = 0x23
	vkHome   VKey = 0x24
	vkLeft   VKey = 0x25
	vkUp     VKey = 0x26
	vkRight  VKey = 0x27
	vkDown   VKey = 0x28
	vkInsert VKey = 0x2D
	vkDelete VKey = 0x2E
	vkF1     VKey = 0x70
	vkF24    VKey = 0x87

	vkOem1      VKey = 0xBA
	vkOemPlus   VKey = 0xBB
	vkOemComma  VKey = 0xBC
	vkOemMinus  VKey = 0xBD
	vkOemPeriod VKey = 0xBE
	vkOem2      VKey = 0xBF
	vkOem3      VKey = 0xC0
	vkOem4      VKey = 0xDB
	vkOem5      VKey = 0xDC
	vkOem6      VKey = 0xDD
	vkOem7      VKey = 0xDE
)

var modifierByName = map[string]Modifier{
	"CTRL":    ModCtrl,
	"CONTROL": ModCtrl,
	"ALT":     ModAlt,
	"OPTION":  ModAlt,
	"SHIFT":   ModShift,
	"SUPER":   ModSuper,
	"WIN":     ModSuper,
	"META":    ModSuper,
	"CMD":     ModSuper,
	"COMMAND": ModSuper,
}

type namedKey struct {
	code VKey
	name string
}

var keyByName = map[string]namedKey{
	"SPACE":      {vkSpace, "Space"},
	"SPACEBAR":   {vkSpace, "Space"},
	"TAB":        {vkTab, "Tab"},
	"ENTER":      {vkReturn, "Enter"},
	"RETURN":     {vkReturn, "Enter"},
	"ESC":        {vkEscape, "Escape"},
	"ESCAPE":     {vkEscape, "Escape"},
	"BACKSPACE":  {vkBack, "Backspace"},
	"DELETE":     {vkDelete, "Delete"},
	"INSERT":     {vkInsert, "Insert"},
	"HOME":       {vkHome, "Home"},
	"END":        {vkEnd, "End"},
	"PAGEUP":     {vkPrior, "PageUp"},
	"PAGEDOWN":   {vkNext, "PageDown"},
	"UP":         {vkUp, "Up"},
	"ARROWUP":    {vkUp, "Up"},
	"DOWN":       {vkDown, "Down"},
	"ARROWDOWN":  {vkDown, "Down"},
	"LEFT":       {vkLeft, "Left"},
	"ARROWLEFT":  {vkLeft, "Left"},
	"RIGHT":      {vkRight, "Right"},
	"ARROWRIGHT": {vkRight, "Right"},
	"`":          {vkOem3, "`"},
	"BACKQUOTE":  {vkOem3, "`"},
	"GRAVE":      {vkOem3, "`"},

	// US-layout punctuation. "+" is the separator, so "=" has no plus alias.
	";":            {vkOem1, ";"},
	"SEMICOLON":    {vkOem1, ";"},
	"=":            {vkOemPlus, "="},
	"EQUAL":        {vkOemPlus, "="},
	",":            {vkOemComma, ","},
	"COMMA":        {vkOemComma, ","},
	"-":            {vkOemMinus, "-"},
	"MINUS":        {vkOemMinus, "-"},
	".":            {vkOemPeriod, "."},
	"PERIOD":       {vkOemPeriod, "."},
	"/":            {vkOem2, "/"},
	"SLASH":        {vkOem2, "/"},
	"[":            {vkOem4, "["},
	"BRACKETLEFT":  {vkOem4, "["},
	"\\":           {vkOem5, "\\"},
	"BACKSLASH":    {vkOem5, "\\"},
	"]":            {vkOem6, "]"},
	"BRACKETRIGHT": {vkOem6, "]"},
	"'":            {vkOem7, "'"},
	"QUOTE":        {vkOem7, "'"},
}

// ParseBinding parses a binding like "Ctrl+Shift+F12". Tokens are
// case-insensitive; the last token is the key and every earlier token must be
// a modifier. At least one modifier is required.
func ParseBinding(spec string) (Binding, error) {
	raw := strings.TrimSpace(spec)
	if raw == "" {
		return Binding{}, fmt.Errorf("hotkey spec is empty")
	}

	parts := strings.Split(raw, "+")
	if len(parts) < 2 {
		return Binding{}, fmt.Errorf("hotkey must include modifiers and key: %s", raw)
	}

	var modifiers Modifier
	for _, token := range parts[:len(parts)-1] {
		name := strings.ToUpper(strings.TrimSpace(token))
		if name == "" {
			return Binding{}, fmt.Errorf("empty modifier token in hotkey %q", raw)
		}
		mod, ok := modifierByName[name]
		if !ok {
			if _, _, err := parseKey(token); err == nil {
				return Binding{}, fmt.Errorf("hotkey %q names more than one key", raw)
			}
			return Binding{}, fmt.Errorf("unknown modifier %q in hotkey %q", strings.TrimSpace(token), raw)
		}
		modifiers |= mod
	}

	keyToken := strings.TrimSpace(parts[len(parts)-1])
	if _, isMod := modifierByName[strings.ToUpper(keyToken)]; isMod {
		return Binding{}, fmt.Errorf("hotkey %q has no key after its modifiers", raw)
	}
	key, keyName, err := parseKey(keyToken)
	if err != nil {
		return Binding{}, err
	}

	if modifiers == 0 {
		return Binding{}, fmt.Errorf("at least one modifier is required: %q", raw)
	}

	return Binding{
		modifiers:  modifiers,
		key:        key,
		keyName:    keyName,
		normalized: modifiers.String() + "+" + keyName,
	}, nil
}

// MustParseBinding is like ParseBinding but panics on error. Intended for
// compile-time constants such as the default shortcut.
func MustParseBinding(spec string) Binding {
	b, err := ParseBinding(spec)
	if err != nil {
		panic(err)
	}
	return b
}

func parseKey(raw string) (VKey, string, error) {
	token := strings.ToUpper(strings.TrimSpace(raw))
	if token == "" {
		return 0, "", fmt.Errorf("missing hotkey key token")
	}

	if key, ok := keyByName[token]; ok {
		return key.code, key.name, nil
	}

	if len(token) == 1 {
		ch := token[0]
		if (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			return VKey(ch), token, nil
		}
	}

	if n, ok := functionKeyNumber(token); ok {
		return vkF1 + VKey(n-1), "F" + strconv.Itoa(n), nil
	}

	if strings.HasPrefix(token, "0X") {
		value, err := strconv.ParseUint(token[2:], 16, 16)
		if err != nil {
			return 0, "", fmt.Errorf("invalid hex key %q", raw)
		}
		if value == 0 || value > 0xFE {
			return 0, "", fmt.Errorf("key code %s is not a valid virtual key", token)
		}
		return VKey(value), fmt.Sprintf("0x%02X", value), nil
	}

	return 0, "", fmt.Errorf("unknown key %q in hotkey spec", strings.TrimSpace(raw))
}

func functionKeyNumber(token string) (int, bool) {
	if len(token) < 2 || token[0] != 'F' {
		return 0, false
	}
	n, err := strconv.Atoi(token[1:])
	if err != nil || n < 1 || VKey(n-1) > vkF24-vkF1 {
		return 0, false
	}
	return n, true
}
