package config

import (
	"time"

	"github.com/xabarchi/newsbot/internal/core/domain"
)

// Category keys. CategoryGeneral is a pseudo-category: it is never assigned
// by the classifier but broadcasts to every active subscriber.
const (
	CategoryPolitics   = "siyosat"
	CategoryEconomy    = "iqtisod"
	CategorySociety    = "jamiyat"
	CategorySport      = "sport"
	CategoryTechnology = "texnologiya"
	CategoryWorld      = "dunyo"
	CategoryHealth     = "salomatlik"
	CategoryWeather    = "obhavo"
	CategoryGeneral    = "umumiy"
)

// CategoryPriority is the tie-break order for the classifier, most to least
// authoritative. Tie-breaking must never depend on map iteration order.
var CategoryPriority = []string{
	CategoryPolitics,
	CategoryEconomy,
	CategorySociety,
	CategoryWorld,
	CategoryHealth,
	CategoryTechnology,
	CategorySport,
	CategoryWeather,
}

// CategoryKeywords binds one category to its ordered keyword list.
type CategoryKeywords struct {
	Category string
	Keywords []string
}

// Categories returns the keyword table in a stable order. Keyword lists mix
// Uzbek Latin, Uzbek Cyrillic and, where sources use them, English and
// Russian forms.
func Categories() []CategoryKeywords {
	return categoryTable
}

// IsKnownCategory reports whether the label belongs to the configured
// taxonomy (the general pseudo-category included).
func IsKnownCategory(label string) bool {
	if label == CategoryGeneral {
		return true
	}

	for _, c := range categoryTable {
		if c.Category == label {
			return true
		}
	}

	return false
}

var categoryTable = []CategoryKeywords{
	{Category: CategoryPolitics, Keywords: []string{
		"prezident", "parlament", "saylov", "hukumat", "vazir", "qonun", "davlat",
		"hokimiyat", "senat", "oliy majlis", "deputat", "farmon", "qaror", "lavozim",
		"ishdan olindi", "tayinlandi", "vazirlik", "hokimlik",
		"президент", "парламент", "сайлов", "ҳукумат", "вазир", "қонун", "давлат",
		"ҳокимият", "сенат", "олий мажлис", "депутат", "фармон", "қарор", "лавозим",
		"ишдан олинди", "тайинланди", "вазирлик", "ҳокимлик",
	}},
	{Category: CategoryEconomy, Keywords: []string{
		"dollar", "narx", "bozor", "bank", "investitsiya", "biznes", "iqtisodiyot",
		"savdo", "valyuta", "kurs", "pul", "moliya", "soliq", "byudjet",
		"ish haqi", "ish haq", "maosh", "daromad", "o'sish", "kamayish",
		"real", "nominal", "foiz", "statistika", "iqtisod",
		"доллар", "нарх", "бозор", "банк", "инвестиция", "бизнес", "иқтисодиёт",
		"савдо", "валюта", "курс", "пул", "молия", "солиқ", "бюджет",
		"иш ҳақи", "иш ҳақ", "маош", "даромад", "ўсиш", "камайиш",
		"реал", "номинал", "фоиз", "статистика", "иқтисод",
	}},
	{Category: CategorySociety, Keywords: []string{
		"ta'lim", "madaniyat", "aholi", "ijtimoiy", "jamiyat", "xalq",
		"maktab", "universitet", "o'quvchi", "talaba", "o'qituvchi",
		"imtihon", "test", "grant", "stipendiya", "ta'lim tizimi",
		"bog'cha", "kollej", "litsey", "akademiya",
		"festival", "konsert", "teatr", "kino", "san'at", "rasm",
		"musiqa", "she'r", "adabiyot", "kitob", "kutubxona",
		"transport", "avtomobil", "mashina", "yo'l", "yo'lovchi", "haydovchi",
		"avtobus", "metro", "tramvay", "taksi", "yuk", "yuk mashinasi",
		"avtotransport", "yo'l-transport", "hodisa", "baxtsiz hodisa",
		"ekologiya", "atrof-muhit", "tabiat", "iflos", "toza", "havo",
		"ekostiker", "stiker", "raqam", "davlat raqami", "texnik ko'rik",
		"guvohnoma", "haydovchilik guvohnomasi", "prava", "jarima",
		"yo'l qoidalari", "yo'l belgisi", "svetofor", "piyoda",
		"dayjest", "hafta", "haftalik", "xulosa", "sharh", "tahlil",
		"ko'rib chiqish", "umumiy", "turli", "har xil", "aralash",
		"ortda qolayotgan", "o'tgan hafta", "o'tgan kun",
		"таълим", "маданият", "аҳоли", "ижтимоий", "жамият", "халқ",
		"мактаб", "университет", "ўқувчи", "талаба", "ўқитувчи",
		"имтиҳон", "тест", "грант", "стипендия", "таълим тизими",
		"боғча", "коллеж", "лицей", "академия",
		"фестивал", "концерт", "театр", "кино", "санъат", "расм",
		"мусиқа", "шеър", "адабиёт", "китоб", "кутубхона",
		"транспорт", "автомобил", "машина", "йўл", "йўловчи", "ҳайдовчи",
		"автобус", "метро", "трамвай", "такси", "юк", "юк машинаси",
		"автотранспорт", "йўл-транспорт", "ҳодиса", "бахтсиз ҳодиса",
		"экология", "атроф-муҳит", "табиат", "ифлос", "тоза", "ҳаво",
		"экостикер", "стикер", "рақам", "давлат рақами", "техник кўрик",
		"гувоҳнома", "ҳайдовчилик гувоҳномаси", "права", "жарима",
		"йўл қоидалари", "йўл белгиси", "светофор", "пиёда",
		"дайжест", "ҳафта", "ҳафталик", "хулоса", "шарҳ", "таҳлил",
	}},
	{Category: CategorySport, Keywords: []string{
		"futbol", "o'yin", "jamoa", "chempion", "liga", "kubok", "o'yinchi",
		"murabbiy", "stadion", "gol", "tennis", "boks", "kurash", "basketbol",
		"voleybol", "olimpiada", "medal", "sport", "turnir", "match", "g'alaba",
		"mag'lubiyat", "durang", "final", "yarim final", "pley-off", "transfer",
		"kontrak", "jazo", "sariq kartochka", "qizil kartochka", "penalti",
		"футбол", "ўйин", "жамоа", "чемпион", "лига", "кубок", "ўйинчи",
		"мураббий", "стадион", "гол", "теннис", "бокс", "кураш", "баскетбол",
		"волейбол", "олимпиада", "медал", "спорт", "турнир", "матч", "ғалаба",
		"мағлубият", "дуранг", "финал", "ярим финал", "плей-офф", "трансфер",
		"контракт", "жазо", "сариқ карточка", "қизил карточка", "пеналти",
		"football", "soccer", "basketball", "boxing", "goal",
		"champion", "league", "cup", "player", "coach", "stadium", "win", "lose",
	}},
	{Category: CategoryTechnology, Keywords: []string{
		"apple", "google", "iphone", "dastur", "AI", "sun'iy intellekt",
		"texnologiya", "internet", "telefon", "kompyuter", "android",
		"дастур", "сунъий интеллект", "технология", "интернет", "телефон", "компьютер",
	}},
	{Category: CategoryWorld, Keywords: []string{
		"xalqaro", "mamlakatlar", "urush", "tinchlik", "jahon", "dunyo",
		"aqsh", "rossiya", "xitoy", "yevropa",
		"халқаро", "мамлакатлар", "уруш", "тинчлик", "жаҳон", "дунё",
		"россия", "хитой", "европа",
	}},
	{Category: CategoryHealth, Keywords: []string{
		"kasallik", "shifokor", "bemor", "shifoxona", "salomatlik", "tibbiyot",
		"dori", "homila", "tuxum", "ovqat", "parhez", "vitamin",
		"касаллик", "шифокор", "бемор", "шифохона", "саломатлик", "тиббиёт",
		"дори", "ҳомила", "тухум", "овқат", "парҳез", "витамин",
	}},
	{Category: CategoryWeather, Keywords: []string{
		"ob-havo", "obhavo", "havo", "harorat", "yomg'ir", "qor", "shamol",
		"bulut", "quyosh", "sovuq", "issiq", "nam", "prognoz", "iqlim",
		"daraja", "gradus", "celsius", "tuman", "yog'in", "chang", "bo'ron",
		"об-ҳаво", "обҳаво", "ҳаво", "ҳарорат", "ёмғир", "қор", "шамол",
		"булут", "қуёш", "совуқ", "иссиқ", "нам", "прогноз", "иқлим",
		"даража", "градус", "цельсий", "туман", "ёғин", "чанг", "бўрон",
		"weather", "temperature", "rain", "snow", "wind", "forecast",
		"degree", "cloud", "sun", "cold", "hot", "humidity",
		"погода", "температура", "дождь", "снег", "ветер", "прогноз",
		"градус", "облако", "солнце", "холод", "жара",
	}},
}

// EconomyIndicators are strong economic markers used by the classifier's
// override stage to pull number-heavy social text out of the weather bucket.
var EconomyIndicators = []string{
	"ish haqi", "ish haq", "maosh", "daromad", "pul", "dollar", "so'm", "narx",
	"o'sish", "kamayish", "foiz", "statistika", "real", "nominal",
	"зарплата", "доход", "деньги", "рост", "снижение", "процент",
}

// WeatherIndicators are strong meteorological markers for the same stage.
var WeatherIndicators = []string{
	"ob-havo", "obhavo", "harorat", "gradus", "yomg'ir", "qor", "shamol",
	"prognoz", "iqlim", "sovuq", "issiq", "bulut", "quyosh",
	"погода", "температура", "дождь", "снег", "ветер", "прогноз",
	"weather", "temperature", "rain", "snow", "forecast",
}

// ClimateAmbiguous lists short weather words that also appear in
// environmental and social vocabulary. They only score for the weather
// category when accompanied by one of WeatherContext.
var ClimateAmbiguous = []string{"havo", "ҳаво", "nam", "нам", "qor", "қор"}

// WeatherContext lists the co-occurring words that confirm a weather reading
// of a ClimateAmbiguous keyword.
var WeatherContext = []string{
	"ob-havo", "обҳаво", "prognoz", "прогноз", "harorat", "ҳарорат", "gradus", "градус",
}

// Plan keys.
const (
	PlanBasic   = "basic"
	PlanPremium = "premium"
)

const planDurationDays = 30

var basicCategoryLimit = 3

// Plans returns the paid tiers in display order.
func Plans() []domain.Plan {
	return []domain.Plan{
		{
			Key:           PlanBasic,
			Name:          "Basic",
			Price:         7000,
			Duration:      planDurationDays * 24 * time.Hour,
			CategoryLimit: &basicCategoryLimit,
		},
		{
			Key:           PlanPremium,
			Name:          "Premium",
			Price:         15000,
			Duration:      planDurationDays * 24 * time.Hour,
			CategoryLimit: nil,
		},
	}
}

// PlanByKey looks up a plan by its key.
func PlanByKey(key string) (domain.Plan, bool) {
	for _, p := range Plans() {
		if p.Key == key {
			return p, true
		}
	}

	return domain.Plan{}, false
}
