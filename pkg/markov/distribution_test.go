package markov

import "testing"

func TestDistributionPick(t *testing.T) {
	var d distribution[string]
	if _, ok := d.pick(0.5); ok {
		t.Fatal("pick on an empty distribution reported a value")
	}

	d.observe("a")
	d.observe("b")
	d.observe("b")
	d.observe("c") // a 0.25, b 0.5, c 0.25

	testCases := []struct {
		u    float64
		want string
	}{
		{0, "a"},
		{0.2, "a"},
		{0.3, "b"},
		{0.7, "b"},
		{0.8, "c"},
		{0.9999999999, "c"},
	}
	for _, tc := range testCases {
		got, ok := d.pick(tc.u)
		if !ok || got != tc.want {
			t.Errorf("pick(%v) = %q, %v; want %q, true", tc.u, got, ok, tc.want)
		}
	}
}

func TestDistributionPickDrift(t *testing.T) {
	// Mass deliberately short of one, as rounding could leave it.
	d := distribution[int]{
		outcomes: []outcome[int]{{value: 1, prob: 0.3}, {value: 2, prob: 0.6999}},
		total:    10,
	}
	if got, _ := d.pick(0.99995); got != 2 {
		t.Errorf("pick above total mass = %d, want the last outcome 2", got)
	}
}

func TestDistributionMatchesCounts(t *testing.T) {
	var d distribution[WordID]
	sequence := []WordID{3, EndOfSentence, 3, 7, 3, 7, EndOfSentence, 3, 3, 1}
	counts := make(map[WordID]int)
	for _, v := range sequence {
		d.observe(v)
		counts[v]++

		for _, o := range d.outcomes {
			want := float64(counts[o.value]) / float64(d.total)
			if !approxEqual(o.prob, want) {
				t.Fatalf("after %d observations p(%d) = %v, want %v", d.total, o.value, o.prob, want)
			}
		}
	}

	wantOrder := []WordID{3, EndOfSentence, 7, 1}
	if len(d.outcomes) != len(wantOrder) {
		t.Fatalf("got %d outcomes, want %d", len(d.outcomes), len(wantOrder))
	}
	for i, v := range wantOrder {
		if d.outcomes[i].value != v {
			t.Errorf("outcome %d = %d, want %d (first-seen order)", i, d.outcomes[i].value, v)
		}
	}
}
