// Package prompt builds the seeded system prompt and assistant greeting for
// new study sessions.
//
// Build is a pure function over (exam, target, mode): no I/O, deterministic
// output. Each study mode's instruction block lives in a lookup table keyed
// by a closed Mode variant, so individual mode templates are testable in
// isolation. Unknown exam or mode strings never fail; they fall back to
// generic instruction text because the UI layer owns input validation.
//
// The seeded greeting names the student's exam, target, and mode explicitly.
// Wording about the prompt machinery itself is kept out of model-visible
// text.
package prompt
