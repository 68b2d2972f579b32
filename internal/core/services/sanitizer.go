package services

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// SanitizeInput neutraliza caracteres HTML de campos de texto livre e remove
// espaços nas extremidades.
func SanitizeInput(input string) string {
	return strings.TrimSpace(htmlEscaper.Replace(input))
}

// EscapeHTML faz as mesmas substituições sem trim, para saída de markup bruto.
func EscapeHTML(html string) string {
	return htmlEscaper.Replace(html)
}
