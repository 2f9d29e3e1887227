package seed

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Size scales the generated data set. Zero or negative fields fall back to
// the defaults, so a partially filled Size is usable.
type Size struct {
	Festivals       int
	DaysPerFestival int
	EventsPerDay    int
	TicketsPerEvent int
	Artists         int
	Bands           int
	Visitors        int
	Staff           int
	Seed            int64
}

// DefaultSize returns a data set large enough that every catalog query has
// rows to chew on while staying quick to load.
func DefaultSize() Size {
	return Size{
		Festivals:       8,
		DaysPerFestival: 3,
		EventsPerDay:    4,
		TicketsPerEvent: 40,
		Artists:         60,
		Bands:           10,
		Visitors:        200,
		Staff:           45,
		Seed:            42,
	}
}

func (s Size) withDefaults() Size {
	def := DefaultSize()
	if s.Festivals <= 0 {
		s.Festivals = def.Festivals
	}
	if s.DaysPerFestival <= 0 {
		s.DaysPerFestival = def.DaysPerFestival
	}
	if s.EventsPerDay <= 0 {
		s.EventsPerDay = def.EventsPerDay
	}
	if s.TicketsPerEvent <= 0 {
		s.TicketsPerEvent = def.TicketsPerEvent
	}
	if s.Artists <= 0 {
		s.Artists = def.Artists
	}
	if s.Bands <= 0 {
		s.Bands = def.Bands
	}
	if s.Visitors <= 0 {
		s.Visitors = def.Visitors
	}
	if s.Staff <= 0 {
		s.Staff = def.Staff
	}
	if s.Seed == 0 {
		s.Seed = def.Seed
	}
	return s
}

// tableData carries one table's column order and generated rows.
type tableData struct {
	table   string
	columns []string
	rows    [][]interface{}
}

// firstFestivalYear anchors the festival series; year i is
// firstFestivalYear + i.
const firstFestivalYear = 2018

var locationPool = []struct {
	city, country, continent string
}{
	{"Athens", "Greece", "Europe"},
	{"Austin", "United States", "North America"},
	{"Osaka", "Japan", "Asia"},
	{"Cape Town", "South Africa", "Africa"},
	{"Valparaiso", "Chile", "South America"},
	{"Melbourne", "Australia", "Oceania"},
	{"Porto", "Portugal", "Europe"},
	{"Montreal", "Canada", "North America"},
}

var stagePool = []struct {
	name     string
	capacity int
	price    float64
}{
	{"Main Stage", 12000, 95},
	{"Arena Hall", 5000, 70},
	{"Club Tent", 800, 45},
	{"Acoustic Garden", 300, 25},
}

var (
	firstNames = []string{
		"Nova", "Elena", "Marcus", "Ingrid", "Theo", "Yara", "Dimitra", "Felix",
		"Amara", "Jonas", "Lucia", "Ravi", "Petra", "Omar", "Sofia", "Kasper",
		"Nadia", "Bruno", "Helena", "Tomas",
	}
	lastNames = []string{
		"Reyes", "Okafor", "Lindqvist", "Papadopoulos", "Tanaka", "Moreau",
		"Kowalski", "Silva", "Eriksen", "Novak", "Castellanos", "Berg",
		"Ferreira", "Ivanova", "Duarte", "Nilsen", "Marino", "Costa",
		"Vasquez", "Holm",
	}
	bandNames = []string{
		"Velvet Harbor", "The Night Owls", "Paper Lanterns", "Iron Meridian",
		"Glass Animals Tribute", "Salt and Cedar", "Neon Cartel",
		"The Quiet Storm", "Harbor Lights", "Midnight Syndicate",
		"Copper Veins", "Wildflower Union",
	}
	genrePool = []string{
		"Rock", "Pop", "Jazz", "Electronic", "Hip Hop", "Folk", "Metal",
		"Classical", "Rock/Metal", "Jazz/Funk", "Pop/Electronic", "Folk/Indie",
	}
	subgenrePool = []string{
		"Alternative", "Progressive", "Ambient", "Acoustic", "Symphonic",
		"Underground",
	}
	performanceTypes = []string{"Warm Up", "Headline", "Special Guest"}
	paymentMethods   = []string{"Credit Card", "Debit Card", "Cash", "Bank Transfer"}
	staffRoles       = []string{"Technician", "Security", "Support"}
	experienceLevels = []string{"Trainee", "Beginner", "Intermediate", "Experienced", "Expert"}
)

// generate builds every table's rows for one deterministic data set. Row
// existence and all cross-references follow from Size arithmetic alone;
// the seeded generator only jitters values such as prices and ratings, so
// the same Size always yields the same data.
//
// The shape is arranged so the catalog queries return rows: two artists
// collect all of a festival's warm-up slots, a small star pool headlines
// across every festival (and so across continents), split genres appear
// in the artist rotation, nine in ten tickets are marked used, every used
// ticket leaves a review, and a tail of support staff is never assigned.
func generate(size Size) []tableData {
	size = size.withDefaults()
	rng := rand.New(rand.NewSource(size.Seed))

	locations := buildLocations()
	festivals := buildFestivals(size)
	days := buildFestivalDays(size)
	stages := buildStages()
	events, eventStages := buildEvents(size)
	artists := buildArtists(size)
	bands := buildBands(size)
	types := buildPerformanceTypes()
	performances, eventPerformances := buildPerformances(size)
	visitors := buildVisitors(size)
	methods := buildPaymentMethods()
	tickets := buildTickets(size, rng, eventStages)
	reviews := buildReviews(size, rng, tickets, eventPerformances)
	levels := buildExperienceLevels()
	roles := buildStaffRoles()
	staff := buildStaff(size)
	assignments := buildAssignments(size, staff)

	return []tableData{
		{"Location", []string{"location_id", "city", "country", "continent"}, locations},
		{"Festival", []string{"festival_id", "name", "year", "location_id"}, festivals},
		{"FestivalDay", []string{"day_id", "festival_id", "festival_date"}, days},
		{"Stage", []string{"stage_id", "name", "capacity"}, stages},
		{"Event", []string{"event_id", "name", "day_id", "stage_id"}, events},
		{"Artist", []string{"artist_id", "name", "pseudonym", "genre", "subgenre", "birthdate"}, artists},
		{"Band", []string{"band_id", "name"}, bands},
		{"PerformanceType", []string{"type_id", "name"}, types},
		{"Performance", []string{"performance_id", "event_id", "type_id", "artist_id", "band_id"}, performances},
		{"Visitor", []string{"visitor_id", "first_name", "last_name"}, visitors},
		{"PaymentMethod", []string{"method_id", "name"}, methods},
		{"Ticket", []string{"ticket_id", "event_id", "visitor_id", "method_id", "price", "is_active"}, tickets},
		{"Review", []string{"review_id", "performance_id", "visitor_id", "artist_rating", "sound_rating", "stage_rating", "organization_rating", "overall_rating"}, reviews},
		{"ExperienceLevel", []string{"level_id", "name"}, levels},
		{"StaffRole", []string{"role_id", "name"}, roles},
		{"Staff", []string{"staff_id", "name", "age", "level_id", "role_id"}, staff},
		{"Staff_Assignment", []string{"assignment_id", "staff_id", "event_id", "role_id"}, assignments},
	}
}

func buildLocations() [][]interface{} {
	rows := make([][]interface{}, len(locationPool))
	for i, loc := range locationPool {
		rows[i] = []interface{}{i + 1, loc.city, loc.country, loc.continent}
	}
	return rows
}

// buildFestivals cycles the festivals through the location pool, so artists
// who keep headlining accumulate continents.
func buildFestivals(size Size) [][]interface{} {
	rows := make([][]interface{}, size.Festivals)
	for i := 0; i < size.Festivals; i++ {
		loc := locationPool[i%len(locationPool)]
		year := firstFestivalYear + i
		rows[i] = []interface{}{
			i + 1,
			fmt.Sprintf("%s Waves %d", loc.city, year),
			year,
			i%len(locationPool) + 1,
		}
	}
	return rows
}

func buildFestivalDays(size Size) [][]interface{} {
	rows := make([][]interface{}, 0, size.Festivals*size.DaysPerFestival)
	for f := 0; f < size.Festivals; f++ {
		year := firstFestivalYear + f
		for d := 0; d < size.DaysPerFestival; d++ {
			date := time.Date(year, time.July, 10+d, 0, 0, 0, 0, time.UTC)
			rows = append(rows, []interface{}{
				f*size.DaysPerFestival + d + 1,
				f + 1,
				date.Format("2006-01-02"),
			})
		}
	}
	return rows
}

func buildStages() [][]interface{} {
	rows := make([][]interface{}, len(stagePool))
	for i, s := range stagePool {
		rows[i] = []interface{}{i + 1, s.name, s.capacity}
	}
	return rows
}

// buildEvents returns the event rows plus each event's stage index, which
// the ticket builder needs for pricing.
func buildEvents(size Size) ([][]interface{}, []int) {
	total := size.Festivals * size.DaysPerFestival * size.EventsPerDay
	rows := make([][]interface{}, 0, total)
	stageIdx := make([]int, 0, total)
	for dd := 0; dd < size.Festivals*size.DaysPerFestival; dd++ {
		for k := 0; k < size.EventsPerDay; k++ {
			id := dd*size.EventsPerDay + k + 1
			stage := (dd + k) % len(stagePool)
			rows = append(rows, []interface{}{
				id,
				fmt.Sprintf("%s Session %d", stagePool[stage].name, id),
				dd + 1,
				stage + 1,
			})
			stageIdx = append(stageIdx, stage)
		}
	}
	return rows, stageIdx
}

func buildArtists(size Size) [][]interface{} {
	rows := make([][]interface{}, size.Artists)
	for i := 0; i < size.Artists; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames)+i)%len(lastNames)]

		var pseudonym interface{}
		if i%3 == 0 {
			pseudonym = "DJ " + first
		}
		var subgenre interface{}
		if i%2 == 0 {
			subgenre = subgenrePool[i%len(subgenrePool)]
		}

		birth := time.Date(1960+(i*7)%45, time.Month(i%12+1), i%27+1, 0, 0, 0, 0, time.UTC)
		rows[i] = []interface{}{
			i + 1,
			first + " " + last,
			pseudonym,
			genrePool[i%len(genrePool)],
			subgenre,
			birth.Format("2006-01-02"),
		}
	}
	return rows
}

func buildBands(size Size) [][]interface{} {
	rows := make([][]interface{}, size.Bands)
	for i := 0; i < size.Bands; i++ {
		name := bandNames[i%len(bandNames)]
		if i >= len(bandNames) {
			name = fmt.Sprintf("%s %d", name, i/len(bandNames)+1)
		}
		rows[i] = []interface{}{i + 1, name}
	}
	return rows
}

func buildPerformanceTypes() [][]interface{} {
	rows := make([][]interface{}, len(performanceTypes))
	for i, name := range performanceTypes {
		rows[i] = []interface{}{i + 1, name}
	}
	return rows
}

// buildPerformances gives every event a warm-up and a headline slot, and
// every second event a special guest. Warm-up slots within one festival
// rotate over just two artists, so each passes the "more than twice in the
// same festival" bar. Every fifth headline goes to a band; the rest
// alternate between an eight-artist star pool and the full roster.
func buildPerformances(size Size) ([][]interface{}, [][]int) {
	eventCount := size.Festivals * size.DaysPerFestival * size.EventsPerDay
	rows := make([][]interface{}, 0, eventCount*3)
	byEvent := make([][]int, eventCount)

	id := 0
	add := func(event, typeID int, artist, band interface{}) {
		id++
		rows = append(rows, []interface{}{id, event + 1, typeID, artist, band})
		byEvent[event] = append(byEvent[event], id)
	}

	perFestival := size.DaysPerFestival * size.EventsPerDay
	for ev := 0; ev < eventCount; ev++ {
		festival := ev / perFestival

		warmup := (festival*2+ev%2)%size.Artists + 1
		add(ev, 1, warmup, nil)

		if ev%5 == 4 {
			add(ev, 2, nil, ev/5%size.Bands+1)
		} else if ev%2 == 0 {
			add(ev, 2, ev%8%size.Artists+1, nil)
		} else {
			add(ev, 2, (ev*7)%size.Artists+1, nil)
		}

		if ev%2 == 0 {
			add(ev, 3, (ev*5+3)%size.Artists+1, nil)
		}
	}
	return rows, byEvent
}

func buildVisitors(size Size) [][]interface{} {
	rows := make([][]interface{}, size.Visitors)
	for i := 0; i < size.Visitors; i++ {
		rows[i] = []interface{}{
			i + 1,
			firstNames[(i*3)%len(firstNames)],
			lastNames[i%len(lastNames)],
		}
	}
	return rows
}

func buildPaymentMethods() [][]interface{} {
	rows := make([][]interface{}, len(paymentMethods))
	for i, name := range paymentMethods {
		rows[i] = []interface{}{i + 1, name}
	}
	return rows
}

// buildTickets marks every tenth ticket still active (unused); the rest are
// used and later reviewed. Visitor assignment overlaps heavily, so the same
// attendance counts recur across visitors.
func buildTickets(size Size, rng *rand.Rand, eventStages []int) [][]interface{} {
	rows := make([][]interface{}, 0, len(eventStages)*size.TicketsPerEvent)
	id := 0
	for ev := range eventStages {
		base := stagePool[eventStages[ev]].price
		for t := 0; t < size.TicketsPerEvent; t++ {
			id++
			price := math.Round((base+rng.Float64()*10)*100) / 100
			rows = append(rows, []interface{}{
				id,
				ev + 1,
				(ev*size.TicketsPerEvent+t*3)%size.Visitors + 1,
				(t+ev)%len(paymentMethods) + 1,
				price,
				t%10 == 0,
			})
		}
	}
	return rows
}

// buildReviews writes one review per used ticket, against one of the
// performances of the ticket's event.
func buildReviews(size Size, rng *rand.Rand, tickets [][]interface{}, eventPerformances [][]int) [][]interface{} {
	rows := make([][]interface{}, 0, len(tickets))
	id := 0
	for _, ticket := range tickets {
		if ticket[5].(bool) {
			continue
		}
		event := ticket[1].(int) - 1
		perfs := eventPerformances[event]
		if len(perfs) == 0 {
			continue
		}
		id++
		rows = append(rows, []interface{}{
			id,
			perfs[ticket[0].(int)%len(perfs)],
			ticket[2],
			2 + rng.Intn(4),
			2 + rng.Intn(4),
			1 + rng.Intn(5),
			1 + rng.Intn(5),
			3 + rng.Intn(3),
		})
	}
	return rows
}

func buildExperienceLevels() [][]interface{} {
	rows := make([][]interface{}, len(experienceLevels))
	for i, name := range experienceLevels {
		rows[i] = []interface{}{i + 1, name}
	}
	return rows
}

func buildStaffRoles() [][]interface{} {
	rows := make([][]interface{}, len(staffRoles))
	for i, name := range staffRoles {
		rows[i] = []interface{}{i + 1, name}
	}
	return rows
}

func buildStaff(size Size) [][]interface{} {
	rows := make([][]interface{}, size.Staff)
	for i := 0; i < size.Staff; i++ {
		rows[i] = []interface{}{
			i + 1,
			firstNames[(i*7)%len(firstNames)] + " " + lastNames[(i*5)%len(lastNames)],
			20 + (i*5)%45,
			(i*2)%len(experienceLevels) + 1,
			i%len(staffRoles) + 1,
		}
	}
	return rows
}

// buildAssignments staffs every event with two technicians, three security
// and two support staff. Support assignments draw from the first four
// fifths of the support roster, leaving a tail that is scheduled nowhere.
func buildAssignments(size Size, staff [][]interface{}) [][]interface{} {
	byRole := make([][]int, len(staffRoles))
	for _, s := range staff {
		role := s[4].(int) - 1
		byRole[role] = append(byRole[role], s[0].(int))
	}

	support := byRole[2]
	if cut := len(support) * 4 / 5; cut > 0 {
		support = support[:cut]
	}
	pools := [][]int{byRole[0], byRole[1], support}
	perEvent := []int{2, 3, 2}

	eventCount := size.Festivals * size.DaysPerFestival * size.EventsPerDay
	rows := make([][]interface{}, 0, eventCount*7)
	id := 0
	for ev := 0; ev < eventCount; ev++ {
		for role, pool := range pools {
			if len(pool) == 0 {
				continue
			}
			for j := 0; j < perEvent[role]; j++ {
				id++
				rows = append(rows, []interface{}{
					id,
					pool[(ev+j)%len(pool)],
					ev + 1,
					role + 1,
				})
			}
		}
	}
	return rows
}
