package retrieval

// MinMaxNormalize rescales raw lexical scores into [0,1].
// When every raw score is equal the whole set maps to 1.0, so a uniform
// lexical match is not zeroed out of the fusion.
func MinMaxNormalize(raw map[string]float64) map[string]float64 {
	if len(raw) == 0 {
		return map[string]float64{}
	}

	var mn, mx float64
	first := true
	for _, v := range raw {
		if first {
			mn, mx = v, v
			first = false
			continue
		}
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}

	out := make(map[string]float64, len(raw))
	if mx == mn {
		for id := range raw {
			out[id] = 1.0
		}
		return out
	}

	span := mx - mn
	for id, v := range raw {
		out[id] = (v - mn) / span
	}
	return out
}
