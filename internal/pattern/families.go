package pattern

// Keyword families. Each phrase counts once per text when present; a phrase
// listed twice counts twice.

var absurdClaims = []string{
	// medical
	"vindecă cancerul în", "elimină complet diabetul", "vindecă orice boală",
	"crește iq-ul cu", "dezvoltă puteri", "puteri telepatice", "puteri supranaturale",
	"controlează vremea", "controlează timpul", "controlează gravitația",
	"să trăiască 200", "să trăiască 150", "să trăiască 100 de ani",
	"energie infinită", "mișcare perpetuă", "teleportare", "citește gândurile",
	"vindecă în 3 zile", "vindecă în 48 ore", "vindecă instant",
	"elimină complet", "vindecă 100%", "funcționează 100%",
	"prelungește viața cu", "crește viața cu", "adaugă ani de viață",

	// technology
	"cipuri microscopice", "controlul mental", "mind control",
	"cipuri în apă", "cipuri în vaccin", "tracking chips",
	"tehnologie secretă", "arme secrete", "experimente secrete",

	// common substances
	"bicarbonatul vindecă", "oțetul vindecă", "mierea vindecă totul",
	"apa vindecă", "aerul vindecă", "soarele vindecă",
	"berea crește", "cafeaua vindecă", "ceaiul elimină",
	"mirositul florilor", "dormitul cu telefonul", "privitul la",

	"cures cancer in", "eliminates diabetes completely", "increases iq by",
	"develops telepathic powers", "live 200 years", "live 150 years",
	"microscopic chips", "mind control chips", "secret technology",
}

var exaggeration = []string{
	"complet", "total", "absolut", "perfect", "exact", "100%", "garantat",
	"revoluționar", "incredibil", "șocant", "uimitor", "fantastic",
	"completely", "totally", "absolutely", "perfectly", "guaranteed",
	"revolutionary", "incredible", "shocking", "amazing", "fantastic",
}

var fakeCredibleSources = []string{
	"institutul internațional de", "centrul mondial pentru", "fundația globală",
	"organizația mondială de", "institutul avansat de", "centrul de cercetări avansate",
	"laboratorul secret", "institutul secret", "centrul confidențial",
	"international institute of", "global center for", "advanced research center",
	"world organization of", "secret laboratory", "confidential center",

	// real universities used as vague authority
	"cercetătorii de la harvard", "experții de la mit", "oamenii de știință de la stanford",
	"researchers from harvard", "experts from mit", "scientists from stanford",

	"experții anonimi", "surse anonime", "informatori din interior",
	"doctorii ascund", "medicii nu vor să știi", "industria ascunde",
	"anonymous experts", "anonymous sources", "inside sources",
	"doctors hide", "medical industry hides", "big pharma blocks",
}

var conspiracy = []string{
	"big pharma", "industria farmaceutică", "industria medicală",
	"guvernul ascunde", "guvernele interzic", "mass-media refuză",
	"industria tech suprimă", "companiile blochează", "corporațiile ascund",
	"agenda ascunsă", "complot mondial", "conspirația medicală",
	"government hides", "governments ban", "mass media refuses",
	"tech industry suppresses", "companies block", "corporations hide",
	"hidden agenda", "global conspiracy", "medical conspiracy",
}

var urgency = []string{
	"urgent!", "breaking!", "ultimă oră!", "atenție!", "alertă!",
	"acționează acum", "nu aștepta", "timpul se scurge", "înainte să fie prea târziu",
	"urgent!", "breaking!", "attention!", "alert!",
	"act now", "don't wait", "time running out", "before it's too late",
}

// fakeScience entries are regular expressions: a credible-sounding subject
// followed later in the text by an extraordinary claim.
var fakeScience = []string{
	`harvard.*vindecă`, `mit.*elimină`, `stanford.*crește`,
	`universitatea.*puteri`, `cercetătorii.*secret`, `studiul.*ascuns`,
	`journal.*vindecă`, `research.*elimină`, `scientists.*secret`,

	`studiile dovedesc că.*vindecă`, `cercetarea confirmă că.*elimină`,
	`analiza arată că.*crește`, `datele demonstrează că.*dezvoltă`,
	`research proves.*cures`, `studies confirm.*eliminates`,
	`analysis shows.*increases`, `data demonstrates.*develops`,

	`metodă științifică.*secret`, `descoperire medicală.*ascuns`,
	`breakthrough.*hidden`, `discovery.*suppressed`,
}

var credible = []string{
	"ministerul", "primăria", "guvernul român", "parlamentul",
	"comisia europeană", "organizația mondială a sănătății",
	"ministry", "government", "parliament", "european commission",
	"world health organization", "official statement",

	"conform studiului", "potrivit cercetării", "datele arată",
	"statisticile indică", "analiza dezvăluie", "raportul confirmă",
	"according to study", "research indicates", "data shows",
	"statistics indicate", "analysis reveals", "report confirms",

	"ieri", "astăzi", "săptămâna trecută", "luna aceasta",
	"prețul", "temperatura", "traficul", "lucrările",
	"yesterday", "today", "last week", "this month",
	"price", "temperature", "traffic", "construction",
}

// Lexicons for linguistic manipulation analysis.

var superlatives = []string{
	"best", "worst", "most", "least", "greatest", "smallest", "highest", "lowest",
	"only", "perfect", "ultimate", "absolute", "complete", "total", "entire",
	"cel mai bun", "cel mai rău", "cel mai mare", "cel mai mic", "cel mai înalt",
	"singurul", "perfect", "ultim", "absolut", "complet", "total",
}

var emotionalWords = []string{
	"shocking", "amazing", "incredible", "unbelievable", "devastating", "terrifying",
	"stunning", "mind-blowing", "extraordinary", "phenomenal", "miraculous",
	"outrageous", "scandalous", "explosive", "bombshell", "sensational",
	"șocant", "uimitor", "incredibil", "de necrezut", "devastator", "terifiant",
	"extraordinar", "fenomenal", "miraculos", "scandulos", "senzațional",
}

var intensifiers = []string{
	"extremely", "incredibly", "absolutely", "completely", "totally", "perfectly",
	"dramatically", "significantly", "remarkably", "extraordinarily", "phenomenally",
	"extrem de", "incredibil de", "absolut", "complet", "total", "perfect",
	"dramatic", "semnificativ", "remarcabil", "extraordinar",
}
