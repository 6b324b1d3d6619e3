package trainkind

import "github.com/BearBump/TrainBox/internal/models"

// Rule maps a set of normalized tokens to a train kind.
type Rule struct {
	Tokens []string
	Kind   models.TrainKind
}

func (r Rule) matches(token string) bool {
	for _, t := range r.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

func rule(code, label string, cat models.TrainCategory, tokens ...string) Rule {
	return Rule{Tokens: tokens, Kind: models.TrainKind{ShortCode: code, LongLabel: label, Category: cat}}
}

// Evaluated first-match-wins. Specific multi-letter codes stay above the
// generic single-letter fallbacks at the bottom.
var rules = []Rule{
	rule("FR", "Frecciarossa", models.CategoryHighSpeed, "FR", "FRAV", "FR AV", "FRECCIAROSSA", "FRECCIAROSSA AV", "FRECCIAROSSA 1000"),
	rule("FA", "Frecciargento", models.CategoryHighSpeed, "FA", "FAAV", "FA AV", "FRECCIARGENTO", "FRECCIARGENTO AV"),
	rule("FB", "Frecciabianca", models.CategoryIntercity, "FB", "FRECCIABIANCA"),
	rule("ITA", "Italo", models.CategoryHighSpeed, "ITA", "NTV", "ITALO", "ITALO AV"),
	rule("ES", "Eurostar", models.CategoryHighSpeed, "ES", "ESAV", "ES AV", "ES*", "EUROSTAR", "EUROSTAR CITY"),
	rule("TGV", "TGV", models.CategoryHighSpeed, "TGV", "TGV INOUI"),
	rule("EC", "EuroCity", models.CategoryIntercity, "EC", "EUROCITY"),
	rule("EN", "EuroNight", models.CategoryIntercity, "EN", "EURONIGHT"),
	rule("ICN", "Intercity Notte", models.CategoryIntercity, "ICN", "INTERCITY NOTTE", "IC NOTTE"),
	rule("IC", "Intercity", models.CategoryIntercity, "IC", "INTERCITY", "INTERCITY GIORNO"),
	rule("RJ", "Railjet", models.CategoryIntercity, "RJ", "RAILJET"),
	rule("NJ", "Nightjet", models.CategoryIntercity, "NJ", "NIGHTJET"),
	rule("RV", "Regionale Veloce", models.CategoryRegional, "RV", "RGV", "REGIONALE VELOCE"),
	rule("IR", "Interregionale", models.CategoryRegional, "IR", "INTERREGIONALE"),
	rule("LEX", "Leonardo Express", models.CategoryRegional, "LEX", "LEONARDO EXPRESS"),
	rule("MXP", "Malpensa Express", models.CategoryRegional, "MXP", "MALPENSA EXPRESS"),
	rule("MET", "Metropolitano", models.CategoryRegional, "MET", "METROPOLITANO", "SFM"),
	rule("REG", "Regionale", models.CategoryRegional, "REG", "RE", "REGIONALE", "TRENORD", "TPER"),
	rule("BUS", "Autobus", models.CategoryBus, "BUS", "BU", "AUTOBUS", "SOS", "SERVIZIO SOSTITUTIVO"),
	rule("S", "Suburbano", models.CategoryRegional, "S", "SUBURBANO"),
	rule("D", "Diretto", models.CategoryRegional, "D", "DIR", "DIRETTO"),
	rule("REG", "Regionale", models.CategoryRegional, "R"),
}

var unknown = models.TrainKind{ShortCode: "UNK", LongLabel: "Sconosciuto", Category: models.CategoryUnknown}

// Unknown is the kind returned when nothing matches.
func Unknown() models.TrainKind { return unknown }

// Rules returns a copy of the rule table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}
