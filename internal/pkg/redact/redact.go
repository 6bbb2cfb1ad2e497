// redact маскирует чувствительные значения (e-mail, телефон, секреты)
// перед записью в логи.
package redact

import "strings"

// Email маскирует локальную часть адреса, сохраняя домен.
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := []rune(parts[0]), parts[1]
	if len(local) > 2 {
		return string(local[:2]) + "***@" + domain
	}

	return "***@" + domain
}

// Phone оставляет видимыми только последние две цифры номера.
func Phone(s string) string {
	r := []rune(s)
	if len(r) <= 2 {
		return "***"
	}

	return "***" + string(r[len(r)-2:])
}

func Token() string    { return "[REDACTED_TOKEN]" }
func Password() string { return "[REDACTED_PASSWORD]" }
