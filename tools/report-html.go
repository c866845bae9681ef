package tools

import (
	"fmt"
	"io"

	md "github.com/russross/blackfriday/v2"
)

// RenderReportHTML wraps the Markdown report body in a minimal HTML
// page.
func RenderReportHTML(title string, body []byte, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<!DOCTYPE html>`)
	f(`<html><head><meta charset="utf-8"><title>%s</title>`, title)
	f(`<style>`)
	f(`body { font-family: sans-serif; margin: 2em; }`)
	f(`table { border-collapse: collapse; }`)
	f(`td, th { border: 1px solid #ccc; padding: 0.3em 0.6em; }`)
	f(`code { background: #f4f4f4; }`)
	f(`</style></head><body>`)

	if _, err := out.Write(md.Run(body)); err != nil {
		return err
	}

	f(`</body></html>`)
	return nil
}
