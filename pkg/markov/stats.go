package markov

// Stats holds aggregated counts for a Chain.
type Stats struct {
	Order        int // Words per state
	Words        int // Distinct canonical words
	Variants     int // Distinct surface forms over all words
	States       int // Distinct states
	Transitions  int // Distinct state -> next links, end-of-sentence included
	Observations int // Sum of observations over all states; the number of trained transitions
	Sentences    int // Transitions into end-of-sentence; the number of trained sentences
}

// Stats returns a snapshot of the chain's size.
func (c *Chain) Stats() Stats {
	st := Stats{
		Order:  c.order,
		Words:  c.words.size(),
		States: c.states.size(),
	}
	for _, w := range c.words.words {
		st.Variants += len(w.variants.outcomes)
	}
	for _, s := range c.states.states {
		st.Transitions += len(s.next.outcomes)
		st.Observations += s.next.total
		for _, o := range s.next.outcomes {
			if o.value == EndOfSentence {
				// prob * total recovers the raw count; round to undo drift
				st.Sentences += int(o.prob*float64(s.next.total) + 0.5)
			}
		}
	}
	return st
}
