package cluster

// trimIntraEdges drops dominated internal edges in place. When several edges
// leave one entrance toward border tiles that all cross into the same
// neighboring cluster, only the cheapest crossing option matters; ties keep
// the lower destination id. Edges whose destination entrance has no paired
// neighbor are kept untouched. Returns the number of edges removed.
func trimIntraEdges(graph *Graph) int {
	byID := make(map[int64]*Entrance, len(graph.Entrances))
	for i := range graph.Entrances {
		byID[graph.Entrances[i].ID] = &graph.Entrances[i]
	}
	exitCluster := make(map[int64]ID, len(graph.Inter))
	for _, e := range graph.Inter {
		if to, ok := byID[e.To]; ok {
			exitCluster[e.From] = to.Cluster
		}
	}

	type exitKey struct {
		from int64
		exit ID
	}
	keep := make(map[int]struct{}, len(graph.Intra))
	best := make(map[exitKey]int)
	for i, e := range graph.Intra {
		exit, ok := exitCluster[e.To]
		if !ok {
			keep[i] = struct{}{}
			continue
		}
		k := exitKey{from: e.From, exit: exit}
		j, seen := best[k]
		if !seen {
			best[k] = i
			continue
		}
		b := graph.Intra[j]
		if e.Cost < b.Cost || (e.Cost == b.Cost && e.To < b.To) {
			best[k] = i
		}
	}
	for _, i := range best {
		keep[i] = struct{}{}
	}
	if len(keep) == len(graph.Intra) {
		return 0
	}

	kept := make([]IntraEdge, 0, len(keep))
	for i, e := range graph.Intra {
		if _, ok := keep[i]; ok {
			kept = append(kept, e)
		}
	}
	trimmed := len(graph.Intra) - len(kept)
	graph.Intra = kept
	return trimmed
}
