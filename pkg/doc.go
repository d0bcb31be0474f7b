// Package pkg provides the libraries behind the mmd2png command.
//
// # Overview
//
// mmd2png turns Mermaid diagram sources into PNG images by driving the
// Mermaid CLI. The pkg directory is organized as:
//
//  1. [convert] - finding sources and converting files or directories
//  2. [mermaid] - probing and invoking the external renderer
//  3. [cache] - records of past renders for incremental runs
//  4. [errors] - coded errors shared by all of the above
//  5. [buildinfo] - version information injected at build time
//
// # Architecture
//
//	.mmd file or directory
//	         ↓
//	    [convert] package (validate, enumerate, compute output paths)
//	         ↓
//	    [mermaid] package (mmdc -i … -o … -s … --backgroundColor …)
//	         ↓
//	    PNG next to the source or in the output directory
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/mmd2png/pkg/convert"
//	    "github.com/matzehuels/mmd2png/pkg/mermaid"
//	)
//
//	r := mermaid.NewCLI("")
//	if _, err := r.Probe(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	c := convert.NewConverter(r, nil, nil, nil)
//	res := c.ConvertDirectory(ctx, "docs/diagrams", convert.Options{Recursive: true})
//	fmt.Printf("%d of %d converted\n", res.Succeeded(), res.Found)
package pkg
