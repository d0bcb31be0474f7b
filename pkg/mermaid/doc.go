// Package mermaid drives the Mermaid CLI (mmdc) as an external renderer.
//
// The renderer is treated as an opaque collaborator: this package never parses
// diagram text. It only checks that the binary answers a version probe and
// invokes it with a fixed argument convention:
//
//	mmdc -i <input> -o <output> -s <scale> --backgroundColor <background>
//
// Failures are reported as *errors.Error values from pkg/errors so callers
// can tell a missing binary apart from a diagram the renderer rejected.
//
// # Example
//
//	r := mermaid.NewCLI("")
//	if _, err := r.Probe(ctx); err != nil {
//	    return err
//	}
//	err := r.Render(ctx, mermaid.Request{
//	    Input:      "docs/flow.mmd",
//	    Output:     "docs/flow.png",
//	    Scale:      4,
//	    Background: "white",
//	})
package mermaid
