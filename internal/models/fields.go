package models

// Upstream field names. Lists are in priority order: earlier aliases are
// fresher or more specific than later ones.
const (
	FieldStops     = "fermate"
	FieldStopName  = "stazione"
	FieldStopCode  = "id"
	FieldDelay     = "ritardo"
	FieldDelayText = "compRitardo"

	FieldSuppressedStops   = "fermateSoppresse"
	FieldStopKind          = "actualFermataType"
	FieldLastDetectedPlace = "stazioneUltimoRilevamento"
	FieldLastDetectedTime  = "oraUltimoRilevamento"
)

// Stop kind reported by the upstream for a stop that will not be served.
const StopKindSuppressed = 3

var (
	StopScheduledDeparture = []string{"partenza_teorica", "partenzaTeorica", "partenzaProgrammata", "programmata", "partenza"}
	StopScheduledArrival   = []string{"arrivo_teorico", "arrivoTeorico", "arrivoProgrammato", "programmata", "arrivo"}
	StopActualArrival      = []string{"arrivoReale", "arrivo_reale", "arrivoRealeZero", "arrivoEffettivo", "arrivoRealeTTT"}
	StopActualDeparture    = []string{"partenzaReale", "partenza_reale", "partenzaRealeZero", "partenzaEffettiva", "partenzaRealeTTT"}
	StopSuppressedFlags    = []string{"soppressa", "fermataSoppressa"}

	RunScheduledDeparture = []string{"orarioPartenza", "orarioPartenzaZero"}
	RunCancelledFlags     = []string{"trenoSoppresso", "soppresso", "cancellato"}

	// Category text, most authoritative first.
	RunCategoryText = []string{"categoriaDescrizione", "categoria", "compNumeroTreno", "compTipologiaTreno"}
)
