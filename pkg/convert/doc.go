// Package convert finds Mermaid sources and renders them to PNG.
//
// A Converter wraps a mermaid.Renderer and handles everything around it:
// validating inputs, computing output paths, walking directories in a
// stable order and folding per-file outcomes into a single verdict.
// Work is strictly sequential. Each render blocks until the renderer exits.
//
// Per-file progress is delivered to a Reporter so the CLI decides how it
// looks. Nothing in this package writes to stdout.
//
// # Example
//
//	c := convert.NewConverter(mermaid.NewCLI(""), nil, reporter, logger)
//	res := c.ConvertDirectory(ctx, "docs/diagrams", convert.Options{Recursive: true})
//	if !res.OK() {
//	    os.Exit(1)
//	}
package convert
