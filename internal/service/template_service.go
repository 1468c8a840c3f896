package service

import (
	"strings"
)

// RenderTemplate substitutes {placeholder} tokens. Empty values render as
// <unknown> so a half-filled lead never produces a blank application line.
func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		if v == "" {
			v = "<unknown>"
		}
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}
