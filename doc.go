/*
Package bonsai compiles annotated decision trees into the Bonsai bidding-tree
language: a whitespace-indented, switch/if-based DSL describing how a bid
branches on feature values (segment, age, geography, hour, ...).

Input is a rooted decision graph built externally (see pkg/tree and
pkg/adapters/graphdoc); output is Bonsai source text, guaranteed
syntactically valid and semantically equivalent to the tree.

# Pipeline

A conversion is a fixed sequence of in-place passes over the caller-owned
tree: split normalization, feature-value validation and clamping, branch
slicing/pruning, deterministic sibling ordering, indentation assignment,
switch-header synthesis and finally code emission. Compiling the same tree
with the same configuration always yields byte-identical text.

# Usage

	t, err := graphdoc.Parse(document)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load("conversion.yaml")
	if err != nil {
		log.Fatal(err)
	}

	text, err := bonsai.Convert(t, cfg)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(text)

Conversion is all-or-nothing and synchronous. A failed conversion is a
deterministic function of the input graph and configuration, so retrying
without changing either is pointless; errors carry the failing feature,
value or node. Conversions over independent trees share no state and run
concurrently without coordination.
*/
package bonsai
