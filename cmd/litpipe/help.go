package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: litpipe <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  pdf        Render literate documents and compile them to PDF")
	fmt.Fprintln(w, "  html       Render literate Markdown and convert it to HTML")
	fmt.Fprintln(w, "  publish    Render a document and post it to a WordPress blog")
	fmt.Fprintln(w, "  watch      Recompile documents whenever they change")
	fmt.Fprintln(w, "  doctor     Check that the external programs are installed")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'litpipe help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Log every external command")
}

func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --render <program>    Renderer program, e.g. Rscript (default: none)")
	fmt.Fprintln(w, "      --render-arg <arg>    Renderer argument, repeatable; {input}, {output}")
	fmt.Fprintln(w, "                            and {encoding} are substituted")
	fmt.Fprintln(w, "  -r, --rendered <path>     Rendered document path (single input only)")
	fmt.Fprintln(w, "  -e, --encoding <name>     Source encoding, e.g. latin1 (default: utf-8)")
}

// printPDFUsage prints usage for the pdf command.
func printPDFUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: litpipe pdf <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render each input and compile the result to PDF, one at a time.")
	fmt.Fprintln(w, "The PDF is written next to the rendered document.")
	fmt.Fprintln(w)
	printRenderUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compiling:")
	fmt.Fprintln(w, "      --compiler <name>     rst2pdf, chrome, or a LaTeX engine")
	fmt.Fprintln(w, "                            (default: from the rendered extension)")
	fmt.Fprintln(w, "      --engine <name>       Default LaTeX engine (default: pdflatex)")
	fmt.Fprintln(w, "      --opt=<arg>           Extra compiler argument, repeatable")
	fmt.Fprintln(w, "      --pdf-css <ref>       Stylesheet for the chrome compiler (name or path)")
	fmt.Fprintln(w, "      --timeout <d>         Chrome page load timeout (default: 30s)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printHTMLUsage prints usage for the html command.
func printHTMLUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: litpipe html <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render each input and convert the Markdown result to HTML.")
	fmt.Fprintln(w)
	printRenderUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "  -o, --output <path>       HTML output path (single input only)")
	fmt.Fprintln(w, "      --title <s>           Document title (default: front matter title)")
	fmt.Fprintln(w, "      --css <ref>           Stylesheet to embed: a .css path, or a name")
	fmt.Fprintln(w, "                            from html.styleDir or the built-ins")
	fmt.Fprintln(w, "                            (default, report, compact)")
	fmt.Fprintln(w, "      --fragment            Emit the body only")
	fmt.Fprintln(w, "      --strict              Fail on documents for another markdown dialect")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printPublishUsage prints usage for the publish command.
func printPublishUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: litpipe publish <input> --title <s> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render the input, convert it to an HTML fragment and post it.")
	fmt.Fprintln(w)
	printRenderUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Publishing:")
	fmt.Fprintln(w, "  -a, --action <s>          create, update, or page (default: create)")
	fmt.Fprintln(w, "      --id <n>              Item to update (update only)")
	fmt.Fprintln(w, "  -t, --title <s>           Post title (required)")
	fmt.Fprintln(w, "      --draft               Save as draft instead of publishing")
	fmt.Fprintln(w, "      --category <n>        Category ID, repeatable")
	fmt.Fprintln(w, "      --tag <n>             Tag ID, repeatable")
	fmt.Fprintln(w, "      --shortcode-language  Tagged code blocks become [sourcecode language=\"x\"]")
	fmt.Fprintln(w, "      --shortcode-generic   Other code blocks become [sourcecode]")
	fmt.Fprintln(w, "      --endpoint <url>      WordPress REST base URL")
	fmt.Fprintln(w, "      --user <s>            WordPress user")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The password is read from LITPIPE_WP_PASSWORD (a .env file works too).")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printWatchUsage prints usage for the watch command.
func printWatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: litpipe watch <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Compile every input once, then poll and recompile each input whose")
	fmt.Fprintln(w, "modification time advances. Stop with Ctrl+C.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Watching:")
	fmt.Fprintln(w, "      --to <format>         pdf or html (default: pdf)")
	fmt.Fprintln(w, "      --interval <d>        Pause between polls (default: 1s)")
	fmt.Fprintln(w, "      --keep-going          Log compile failures and keep watching")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The rendering, compiling and document flags of pdf and html apply.")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "pdf":
		printPDFUsage(env.Stdout)
	case "html":
		printHTMLUsage(env.Stdout)
	case "publish":
		printPublishUsage(env.Stdout)
	case "watch":
		printWatchUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: litpipe doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check the renderer, compilers and browser.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: litpipe version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: litpipe help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
