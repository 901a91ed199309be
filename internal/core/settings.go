package core

import "strings"

// SettingAutoStart controls whether a stopped workspace is started when observed.
const SettingAutoStart = "che.workspace.auto_start"

// AutoStartEnabled reads the auto-start setting. An absent key means true;
// any present value other than "true" (case-insensitive) means false.
func AutoStartEnabled(settings map[string]string) bool {
	v, ok := settings[SettingAutoStart]
	if !ok {
		return true
	}
	return strings.EqualFold(v, "true")
}
