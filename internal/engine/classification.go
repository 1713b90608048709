package engine

// modernScheme is the preferred classification scheme name; records from
// any other scheme lose regardless of dates.
const modernScheme = "AddressBase Premium Classification Scheme"

func schemeRank(scheme string) int {
	if scheme == modernScheme {
		return 0
	}
	return 1
}

// betterClassification orders candidates by scheme preference, then latest
// end date (missing = infinite future), then latest last-update date
// (missing = epoch). Remaining ties keep the incumbent.
func betterClassification(a, b Classification) bool {
	ar, br := schemeRank(a.Scheme), schemeRank(b.Scheme)
	if ar != br {
		return ar < br
	}
	ae, be := endOrMax(a.EndDate), endOrMax(b.EndDate)
	if !ae.Equal(be) {
		return ae.After(be)
	}
	return updateOrMin(a.LastUpdate).After(updateOrMin(b.LastUpdate))
}

// ResolveClassifications picks one winning classification per UPRN.
func ResolveClassifications(records []Classification) map[int64]Classification {
	best := make(map[int64]Classification)
	for _, c := range records {
		if cur, ok := best[c.UPRN]; !ok || betterClassification(c, cur) {
			best[c.UPRN] = c
		}
	}
	return best
}
