package resolver

import "strings"

// aliasGroups is the canonical alias table. Names in the same group refer to
// the same team; matching is symmetric.
var aliasGroups = [][]string{
	{"india", "ind", "team india"},
	{"pakistan", "pak"},
	{"australia", "aus"},
	{"england", "eng"},
	{"new zealand", "nz", "black caps"},
	{"south africa", "sa", "rsa", "proteas"},
	{"sri lanka", "sl", "lanka"},
	{"bangladesh", "ban", "bd"},
	{"west indies", "wi", "windies"},
	{"afghanistan", "afg"},
	{"zimbabwe", "zim"},
	{"ireland", "ire"},
	{"netherlands", "ned"},
	{"scotland", "sco"},
	{"mumbai indians", "mi"},
	{"chennai super kings", "csk"},
	{"royal challengers bengaluru", "royal challengers bangalore", "rcb"},
	{"kolkata knight riders", "kkr"},
	{"delhi capitals", "dc"},
	{"rajasthan royals", "rr"},
	{"sunrisers hyderabad", "srh"},
	{"punjab kings", "pbks", "kings xi punjab"},
	{"lucknow super giants", "lsg"},
	{"gujarat titans", "gt"},
}

// aliasIndex maps every normalized alias to its group id.
var aliasIndex = func() map[string]int {
	idx := make(map[string]int)
	for i, group := range aliasGroups {
		for _, name := range group {
			idx[name] = i
		}
	}
	return idx
}()

func normalizeTeam(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), " ")
}

// TeamsMatch reports whether two team names refer to the same team. The check
// is symmetric: exact match after normalization, substring containment in
// either direction, or membership in the same alias group ("IND" ≈ "India").
func TeamsMatch(a, b string) bool {
	na, nb := normalizeTeam(a), normalizeTeam(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	ga, okA := aliasIndex[na]
	gb, okB := aliasIndex[nb]
	return okA && okB && ga == gb
}

// PickTeam maps a name extracted from free text onto one of the two stored
// participant names, returning the stored form. The second return is false
// when the name matches neither participant.
func PickTeam(candidate, team1, team2 string) (string, bool) {
	switch {
	case TeamsMatch(candidate, team1):
		return team1, true
	case TeamsMatch(candidate, team2):
		return team2, true
	default:
		return "", false
	}
}

// ResultCovers reports whether a raw result is about the given two teams,
// in either order.
func ResultCovers(raw RawResult, team1, team2 string) bool {
	if len(raw.Participants) < 2 {
		return false
	}
	p1, p2 := raw.Participants[0], raw.Participants[1]
	if TeamsMatch(p1, team1) && TeamsMatch(p2, team2) {
		return true
	}
	return TeamsMatch(p1, team2) && TeamsMatch(p2, team1)
}
