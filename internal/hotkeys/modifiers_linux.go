//go:build linux

package hotkeys

import "golang.design/x/hotkey"

// NeedsRunningMainLoop is false: the X11 backend opens its own display
// connection.
const NeedsRunningMainLoop = false

// X11 maps Alt to Mod1 and Super to Mod4 on stock keymaps.
var xModifierByModifier = map[Modifier]hotkey.Modifier{
	ModCtrl:  hotkey.ModCtrl,
	ModShift: hotkey.ModShift,
	ModAlt:   hotkey.Mod1,
	ModSuper: hotkey.Mod4,
}
