// Package pipeline holds the in-process text stages shared by the HTML,
// publish and chrome routes:
//   - Markdown to HTML conversion via goldmark (fragment or standalone)
//   - stylesheet injection and chroma highlighting CSS
//   - relative link resolution for documents printed from a temp file
//   - blog shortcode rewriting of code blocks
//   - transcoding of rendered text to UTF-8
//
// Nothing here spawns processes; external compilers live in the root package.
package pipeline
