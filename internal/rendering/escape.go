package rendering

import "strings"

var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`^`, `\textasciicircum{}`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`<`, `\textless{}`,
	`>`, `\textgreater{}`,
	"•", `\textbullet{}`,
	"\r\n", " ",
	"\n", " ",
)

// EscapeLaTeX escapes characters with a special meaning in LaTeX.
// Line breaks inside a value collapse to spaces.
func EscapeLaTeX(text string) string {
	return latexReplacer.Replace(text)
}
