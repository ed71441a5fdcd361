package identity

import (
	"sort"
	"strings"
)

// locale bundles every table needed to compose records for one country.
// Tables are package-level and immutable; they are resolved once per
// Compose call, never re-read.
type locale struct {
	code        string
	male        []string
	female      []string
	neutral     []string
	lastNames   []string
	streets     []string
	states      []string
	cities      map[string][]string // keyed by state
	phoneFormat string              // '#' expands to a random digit
}

// domains for synthesized (non-provisioned) email addresses.
// RFC 2606 reserved names so test data never points at a real inbox.
var emailDomains = []string{
	"example.com", "example.net", "example.org", "mail.example",
}

func lookupLocale(code string) (*locale, bool) {
	l, ok := locales[strings.ToUpper(code)]
	return l, ok
}

// LocaleCodes returns the supported country codes, sorted.
func LocaleCodes() []string {
	codes := make([]string, 0, len(locales))
	for c := range locales {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

var locales = map[string]*locale{
	"US": {
		code: "US",
		male: []string{
			"James", "Robert", "John", "Michael", "David", "William",
			"Richard", "Joseph", "Thomas", "Charles", "Daniel", "Matthew",
			"Anthony", "Mark", "Steven", "Andrew",
		},
		female: []string{
			"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Barbara",
			"Susan", "Jessica", "Sarah", "Karen", "Lisa", "Nancy",
			"Sandra", "Ashley", "Emily", "Michelle",
		},
		neutral: []string{
			"Alex", "Taylor", "Jordan", "Casey", "Riley", "Morgan",
			"Avery", "Quinn", "Cameron", "Skyler", "Rowan", "Emerson",
		},
		lastNames: []string{
			"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia",
			"Miller", "Davis", "Rodriguez", "Martinez", "Wilson", "Anderson",
			"Taylor", "Thomas", "Moore", "Jackson",
		},
		streets: []string{
			"Main St", "Oak Ave", "Maple Dr", "Cedar Ln", "Elm St",
			"Washington Blvd", "Park Ave", "Lake Rd", "Hill St", "River Way",
		},
		states: []string{"CA", "NY", "TX", "WA", "IL"},
		cities: map[string][]string{
			"CA": {"San Francisco", "Los Angeles", "San Diego", "Sacramento"},
			"NY": {"New York", "Albany", "Buffalo", "Rochester"},
			"TX": {"Houston", "Austin", "Dallas", "San Antonio"},
			"WA": {"Seattle", "Spokane", "Tacoma"},
			"IL": {"Chicago", "Springfield", "Peoria"},
		},
		phoneFormat: "+1-###-###-####",
	},
	"GB": {
		code: "GB",
		male: []string{
			"Oliver", "George", "Harry", "Jack", "Charlie", "Thomas",
			"Oscar", "William", "James", "Henry", "Leo", "Alfie",
		},
		female: []string{
			"Olivia", "Amelia", "Isla", "Emily", "Ava", "Sophia",
			"Grace", "Freya", "Charlotte", "Daisy", "Poppy", "Alice",
		},
		neutral: []string{
			"Charlie", "Frankie", "Robin", "Ashley", "Sam", "Alex",
			"Jamie", "Morgan",
		},
		lastNames: []string{
			"Smith", "Jones", "Taylor", "Brown", "Williams", "Wilson",
			"Johnson", "Davies", "Patel", "Wright", "Thompson", "Evans",
		},
		streets: []string{
			"High St", "Station Rd", "Church Ln", "Victoria Rd", "Green Ln",
			"Manor Rd", "Kings Rd", "Queens Rd", "Mill Ln", "The Avenue",
		},
		states: []string{"ENG", "SCT", "WLS"},
		cities: map[string][]string{
			"ENG": {"London", "Manchester", "Birmingham", "Leeds"},
			"SCT": {"Edinburgh", "Glasgow", "Aberdeen"},
			"WLS": {"Cardiff", "Swansea", "Newport"},
		},
		phoneFormat: "+44-####-######",
	},
	"DE": {
		code: "DE",
		male: []string{
			"Lukas", "Leon", "Finn", "Paul", "Jonas", "Felix",
			"Maximilian", "Elias", "Noah", "Ben", "Moritz", "Jan",
		},
		female: []string{
			"Mia", "Emma", "Hannah", "Sofia", "Anna", "Lea",
			"Emilia", "Marie", "Lena", "Clara", "Laura", "Johanna",
		},
		neutral: []string{
			"Kim", "Toni", "Luca", "Sascha", "Nika", "Alex",
		},
		lastNames: []string{
			"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer",
			"Wagner", "Becker", "Schulz", "Hoffmann", "Koch", "Richter",
		},
		streets: []string{
			"Hauptstraße", "Schulstraße", "Gartenstraße", "Bahnhofstraße",
			"Dorfstraße", "Bergstraße", "Lindenweg", "Waldweg",
		},
		states: []string{"BY", "BE", "NW"},
		cities: map[string][]string{
			"BY": {"München", "Nürnberg", "Augsburg"},
			"BE": {"Berlin"},
			"NW": {"Köln", "Düsseldorf", "Dortmund", "Essen"},
		},
		phoneFormat: "+49-###-#######",
	},
	"ES": {
		code: "ES",
		male: []string{
			"Hugo", "Martín", "Pablo", "Lucas", "Alejandro", "Daniel",
			"Adrián", "Diego", "Mario", "Álvaro", "Javier", "Carlos",
		},
		female: []string{
			"Lucía", "Sofía", "María", "Martina", "Paula", "Julia",
			"Emma", "Valeria", "Carla", "Alba", "Carmen", "Sara",
		},
		neutral: []string{
			"Cruz", "Reyes", "Trini", "Ariel", "Mar", "Loreto",
		},
		lastNames: []string{
			"García", "Rodríguez", "González", "Fernández", "López",
			"Martínez", "Sánchez", "Pérez", "Gómez", "Martín", "Jiménez",
			"Ruiz",
		},
		streets: []string{
			"Calle Mayor", "Gran Vía", "Calle Real", "Avenida de la Paz",
			"Calle Sol", "Paseo del Prado", "Calle Luna", "Rambla Nova",
		},
		states: []string{"MD", "CT", "AN"},
		cities: map[string][]string{
			"MD": {"Madrid", "Alcalá de Henares", "Getafe"},
			"CT": {"Barcelona", "Girona", "Tarragona"},
			"AN": {"Sevilla", "Málaga", "Granada", "Córdoba"},
		},
		phoneFormat: "+34-###-###-###",
	},
	"IN": {
		code: "IN",
		male: []string{
			"Aarav", "Vivaan", "Aditya", "Arjun", "Rohan", "Krishna",
			"Ishaan", "Kabir", "Rahul", "Vikram", "Sanjay", "Amit",
		},
		female: []string{
			"Saanvi", "Aanya", "Diya", "Priya", "Ananya", "Isha",
			"Kavya", "Meera", "Neha", "Pooja", "Riya", "Sneha",
		},
		neutral: []string{
			"Kiran", "Jyoti", "Shashi", "Akash", "Noor", "Deep",
		},
		lastNames: []string{
			"Sharma", "Verma", "Patel", "Gupta", "Singh", "Kumar",
			"Reddy", "Nair", "Iyer", "Mehta", "Joshi", "Desai",
		},
		streets: []string{
			"MG Road", "Park Street", "Brigade Road", "Linking Road",
			"Anna Salai", "FC Road", "Station Road", "Mall Road",
		},
		states: []string{"MH", "DL", "KA"},
		cities: map[string][]string{
			"MH": {"Mumbai", "Pune", "Nagpur"},
			"DL": {"New Delhi", "Dwarka", "Rohini"},
			"KA": {"Bengaluru", "Mysuru", "Mangaluru"},
		},
		phoneFormat: "+91-#####-#####",
	},
}
