/*
Package markov provides an in-memory, n-th order Markov chain for generating
random sentences from a corpus of text.

A Chain interns every token into a Word (folding ASCII case, keeping every
observed surface form as a weighted variant) and groups consecutive words into
States whose transition tables are re-estimated online as training data
arrives. Generation starts from a random State and walks the transition tables
until an end-of-sentence transition is drawn.

Chains are built fresh per input and are not safe for concurrent use. For a
complete usage example, see Build and the server in cmd/main.
*/
package markov
