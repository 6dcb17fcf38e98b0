package hotkey

import hk "golang.design/x/hotkey"

func comboModifiers(c Combo) []hk.Modifier {
	var mods []hk.Modifier
	if c.Ctrl {
		mods = append(mods, hk.ModCtrl)
	}
	if c.Shift {
		mods = append(mods, hk.ModShift)
	}
	if c.Alt {
		mods = append(mods, hk.ModOption)
	}
	if c.Super {
		mods = append(mods, hk.ModCmd)
	}
	return mods
}
