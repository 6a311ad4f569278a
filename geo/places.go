package geo

// Place is a gazetteer entry.
type Place struct {
	Name    string
	Lat     float64
	Lon     float64
	Aliases []string
}

// DefaultPlaces covers the towns the profile population is drawn from.
var DefaultPlaces = []Place{
	{Name: "jerusalem", Lat: 31.7683, Lon: 35.2137, Aliases: []string{"ירושלים"}},
	{Name: "tel aviv", Lat: 32.0853, Lon: 34.7818, Aliases: []string{"תל אביב", "tel aviv yafo"}},
	{Name: "haifa", Lat: 32.7940, Lon: 34.9896, Aliases: []string{"חיפה"}},
	{Name: "rishon lezion", Lat: 31.9730, Lon: 34.7925, Aliases: []string{"ראשון לציון"}},
	{Name: "petah tikva", Lat: 32.0840, Lon: 34.8878, Aliases: []string{"פתח תקווה", "petach tikva"}},
	{Name: "ashdod", Lat: 31.8014, Lon: 34.6435, Aliases: []string{"אשדוד"}},
	{Name: "netanya", Lat: 32.3215, Lon: 34.8532, Aliases: []string{"נתניה"}},
	{Name: "beersheba", Lat: 31.2518, Lon: 34.7913, Aliases: []string{"באר שבע", "beer sheva"}},
	{Name: "bnei brak", Lat: 32.0807, Lon: 34.8338, Aliases: []string{"בני ברק"}},
	{Name: "holon", Lat: 32.0158, Lon: 34.7874, Aliases: []string{"חולון"}},
	{Name: "ramat gan", Lat: 32.0684, Lon: 34.8248, Aliases: []string{"רמת גן"}},
	{Name: "ashkelon", Lat: 31.6688, Lon: 34.5743, Aliases: []string{"אשקלון"}},
	{Name: "rehovot", Lat: 31.8928, Lon: 34.8113, Aliases: []string{"רחובות"}},
	{Name: "bat yam", Lat: 32.0132, Lon: 34.7480, Aliases: []string{"בת ים"}},
	{Name: "kfar saba", Lat: 32.1750, Lon: 34.9069, Aliases: []string{"כפר סבא"}},
	{Name: "herzliya", Lat: 32.1624, Lon: 34.8447, Aliases: []string{"הרצליה"}},
	{Name: "modiin", Lat: 31.8980, Lon: 35.0104, Aliases: []string{"מודיעין"}},
	{Name: "lod", Lat: 31.9510, Lon: 34.8881, Aliases: []string{"לוד"}},
	{Name: "ramla", Lat: 31.9292, Lon: 34.8656, Aliases: []string{"רמלה"}},
	{Name: "nazareth", Lat: 32.6996, Lon: 35.3035, Aliases: []string{"נצרת"}},
	{Name: "acre", Lat: 32.9281, Lon: 35.0818, Aliases: []string{"עכו", "akko"}},
	{Name: "nahariya", Lat: 33.0059, Lon: 35.0941, Aliases: []string{"נהריה"}},
	{Name: "tiberias", Lat: 32.7959, Lon: 35.5310, Aliases: []string{"טבריה"}},
	{Name: "safed", Lat: 32.9646, Lon: 35.4960, Aliases: []string{"צפת", "tzfat"}},
	{Name: "beit shemesh", Lat: 31.7470, Lon: 34.9881, Aliases: []string{"בית שמש"}},
	{Name: "elad", Lat: 32.0522, Lon: 34.9510, Aliases: []string{"אלעד"}},
	{Name: "emmanuel", Lat: 32.1610, Lon: 35.1340, Aliases: []string{"עמנואל"}},
	{Name: "beitar illit", Lat: 31.6960, Lon: 35.1150, Aliases: []string{"ביתר עילית"}},
	{Name: "kiryat sefer", Lat: 31.9330, Lon: 35.0410, Aliases: []string{"קרית ספר", "modiin illit"}},
}
