package frontier

// ExpansionRecord is the append-only per-iteration log entry spec §3
// requires: which path was chosen, which nodes got expanded through it,
// and the score that won it the ranking.
type ExpansionRecord struct {
	Iteration    uint32   `json:"iteration"`
	PathExpanded string   `json:"path_expanded"`
	NodeExpanded []string `json:"node_expanded"`
	Score        float64  `json:"score"`
}

// SubgraphInfo is the per-iteration size snapshot spec §3 requires.
type SubgraphInfo struct {
	SubgraphNbEvent       int `json:"subgraph_nb_event"`
	SubgraphNbEventUnique int `json:"subgraph_nb_event_unique"`
}
