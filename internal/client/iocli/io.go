// Package iocli абстрагирует терминальный ввод/вывод CLI команд.
package iocli

// IO — терминал с точки зрения команды. В тестах подменяется моком
// со скриптованными ответами
type IO interface {
	// Println печатает строку вывода
	Println(a ...any)
	// Printf печатает форматированный вывод
	Printf(format string, a ...any)
	// ReadInput показывает prompt и читает строку (с trim)
	ReadInput(prompt string) (string, error)
	// ReadPassword показывает prompt и читает ввод без эха
	ReadPassword(prompt string) (string, error)
}
