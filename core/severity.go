package core

// ArgMaxSeverity picks the severity level with the highest probability.
// Exact probability ties favor the higher-severity class, a conservative
// bias for triage. Returns SeverityLow with zero confidence for an empty map.
func ArgMaxSeverity(probs map[SeverityLevel]float64) (SeverityLevel, float64) {
	best := SeverityLow
	bestProb := -1.0
	for _, level := range SeverityLevels {
		p, ok := probs[level]
		if !ok {
			continue
		}
		// >= walks levels in ascending order, so ties resolve upward.
		if p >= bestProb {
			best = level
			bestProb = p
		}
	}
	if bestProb < 0 {
		return SeverityLow, 0
	}
	return best, bestProb
}
