package pipeline

import "strings"

// InjectCSS inserts css as a <style> block into an HTML document.
// Tries </head> first, then right after <body>, then prepends.
func InjectCSS(htmlContent, css string) string {
	if css == "" {
		return htmlContent
	}

	block := styleBlock(css)
	lower := strings.ToLower(htmlContent)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return htmlContent[:idx] + block + htmlContent[idx:]
	}

	if idx := strings.Index(lower, "<body"); idx != -1 {
		if closeIdx := strings.Index(htmlContent[idx:], ">"); closeIdx != -1 {
			pos := idx + closeIdx + 1
			return htmlContent[:pos] + block + htmlContent[pos:]
		}
	}

	return block + htmlContent
}

// styleBlock wraps css in a <style> element. "</" is escaped so the
// stylesheet cannot close the element early.
func styleBlock(css string) string {
	return "<style>" + strings.ReplaceAll(css, "</", `<\/`) + "</style>"
}
