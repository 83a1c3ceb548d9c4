package domain

// Outcome is the per-track result of a pipeline run.
type Outcome string

const (
	OutcomeDownloaded   Outcome = "downloaded"
	OutcomeNoMatch      Outcome = "no_match"
	OutcomeSearchFailed Outcome = "search_failed"
	OutcomeFetchFailed  Outcome = "fetch_failed"
	OutcomeStoreFailed  Outcome = "store_failed"
	OutcomeMalformed    Outcome = "malformed"
)

// Result describes what happened to a single playlist entry.
type Result struct {
	Track   *Track  `json:"track,omitempty"`
	Outcome Outcome `json:"outcome"`
	VideoID string  `json:"video_id,omitempty"`
	Path    string  `json:"path,omitempty"`
	Err     error   `json:"-"`
}

// Report collects the results of a playlist run in playlist order.
type Report struct {
	Playlist string    `json:"playlist,omitempty"`
	Results  []*Result `json:"results"`
}

func (r *Report) Add(res *Result) {
	r.Results = append(r.Results, res)
}

// Count returns how many results ended with the given outcome.
func (r *Report) Count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []*Result {
	var failed []*Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}
