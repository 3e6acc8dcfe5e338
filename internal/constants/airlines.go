package constants

// AirlineIATAToICAO maps common two-letter IATA airline designators to the
// three-letter ICAO codes the upstream flight API prefers. Used to retry a
// lookup when a user types "BA284" and upstream only knows "BAW284".
var AirlineIATAToICAO = map[string]string{
	"AA": "AAL", // American
	"AC": "ACA", // Air Canada
	"AF": "AFR", // Air France
	"AM": "AMX", // Aeromexico
	"AS": "ASA", // Alaska
	"AY": "FIN", // Finnair
	"AZ": "ITY", // ITA Airways
	"B6": "JBU", // JetBlue
	"BA": "BAW", // British Airways
	"CA": "CCA", // Air China
	"CX": "CPA", // Cathay Pacific
	"DL": "DAL", // Delta
	"EK": "UAE", // Emirates
	"EY": "ETD", // Etihad
	"F9": "FFT", // Frontier
	"HA": "HAL", // Hawaiian
	"IB": "IBE", // Iberia
	"JL": "JAL", // Japan Airlines
	"KE": "KAL", // Korean Air
	"KL": "KLM", // KLM
	"LH": "DLH", // Lufthansa
	"LX": "SWR", // Swiss
	"NH": "ANA", // All Nippon
	"NK": "NKS", // Spirit
	"NZ": "ANZ", // Air New Zealand
	"OS": "AUA", // Austrian
	"QF": "QFA", // Qantas
	"QR": "QTR", // Qatar Airways
	"SK": "SAS", // SAS
	"SQ": "SIA", // Singapore Airlines
	"TK": "THY", // Turkish
	"UA": "UAL", // United
	"VS": "VIR", // Virgin Atlantic
	"WN": "SWA", // Southwest
	"WS": "WJA", // WestJet
}
