package pipeline

import "regexp"

// Code block patterns as emitted by Markdown converters: goldmark writes
// class="language-x", older converters write class="x".
var (
	languageBlock = regexp.MustCompile(`(?s)<pre><code class="(?:language-)?([[:alnum:]]+)">(.*?)</code></pre>`)
	anyBlock      = regexp.MustCompile(`(?s)<pre><code(?: class="[^"]*")?>(.*?)</code></pre>`)
)

// ShortcodeOptions enables the two code block rewrite stages.
type ShortcodeOptions struct {
	Language bool // <pre><code class="x"> -> [sourcecode language="x"]
	Generic  bool // remaining blocks -> [sourcecode] instead of <pre>
}

// RewriteShortcodes turns code blocks into WordPress sourcecode shortcodes.
// Language-tagged blocks are rewritten first when Language is set; every
// remaining block then becomes either an untagged [sourcecode] shortcode or a
// plain <pre> block, depending on Generic. Reversing the stages would let the
// second pattern swallow tagged blocks.
func RewriteShortcodes(htmlContent string, opts ShortcodeOptions) string {
	if opts.Language {
		htmlContent = languageBlock.ReplaceAllString(htmlContent, `[sourcecode language="$1"]$2[/sourcecode]`)
	}
	if opts.Generic {
		return anyBlock.ReplaceAllString(htmlContent, `[sourcecode]$1[/sourcecode]`)
	}
	return anyBlock.ReplaceAllString(htmlContent, `<pre>$1</pre>`)
}
