//go:build darwin

package hotkeys

import "golang.design/x/hotkey"

// NeedsRunningMainLoop is true when Register must run off the main thread
// after the host run loop has started. Registration on macOS hops to the main
// dispatch queue and blocks until the run loop services it.
const NeedsRunningMainLoop = true

var xModifierByModifier = map[Modifier]hotkey.Modifier{
	ModCtrl:  hotkey.ModCtrl,
	ModShift: hotkey.ModShift,
	ModAlt:   hotkey.ModOption,
	ModSuper: hotkey.ModCmd,
}
