// Package preview renders a best-effort static HTML document from a set of
// Liquid template sources for iframe display.
//
// This is deliberately not a Liquid interpreter. Each file passes through a
// fixed, ordered chain of textual substitutions: variable outputs are filled
// with runtime values, control-flow blocks are stripped (their contents are
// dropped entirely, a known fidelity limitation), section tags become
// deterministic placeholders, and anything still resembling tag syntax is
// removed. Stylesheet blocks are extracted and concatenated into a single
// prepended style element alongside brand color variables.
//
// [Render] is pure: identical inputs always produce byte-identical output, no
// I/O is performed, and malformed template syntax degrades to "stripped"
// rather than an error.
package preview
