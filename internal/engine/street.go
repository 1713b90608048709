package engine

// streetLangKey partitions street descriptors by USRN and language.
type streetLangKey struct {
	usrn     int64
	language string
}

// StreetLookup resolves the best street descriptor for a USRN, preferring a
// descriptor in the requesting record's language and falling back to the
// best descriptor in any language.
type StreetLookup struct {
	byLang map[streetLangKey]StreetDescriptor
	any    map[int64]StreetDescriptor
}

// fresherStreet reports whether a beats b under the descriptor ordering:
// latest end date (missing = infinite future), then latest last-update date
// (missing = epoch). Ties keep the incumbent, so input order is stable.
func fresherStreet(a, b StreetDescriptor) bool {
	ae, be := endOrMax(a.EndDate), endOrMax(b.EndDate)
	if !ae.Equal(be) {
		return ae.After(be)
	}
	return updateOrMin(a.LastUpdate).After(updateOrMin(b.LastUpdate))
}

// ResolveStreets builds both views in one pass over the input relation.
func ResolveStreets(descriptors []StreetDescriptor) *StreetLookup {
	l := &StreetLookup{
		byLang: make(map[streetLangKey]StreetDescriptor),
		any:    make(map[int64]StreetDescriptor),
	}
	for _, sd := range descriptors {
		lk := streetLangKey{usrn: sd.USRN, language: sd.Language}
		if cur, ok := l.byLang[lk]; !ok || fresherStreet(sd, cur) {
			l.byLang[lk] = sd
		}
		if cur, ok := l.any[sd.USRN]; !ok || fresherStreet(sd, cur) {
			l.any[sd.USRN] = sd
		}
	}
	return l
}

// Lookup returns the best descriptor for the USRN in the given language,
// else the best in any language.
func (l *StreetLookup) Lookup(usrn int64, language string) (StreetDescriptor, bool) {
	if sd, ok := l.byLang[streetLangKey{usrn: usrn, language: language}]; ok {
		return sd, true
	}
	sd, ok := l.any[usrn]
	return sd, ok
}
