package ml

// Reference corpora for the embedding extractor. Input texts are compared
// against every sentence; the closest match on each side drives the verdict.

var knownFake = []string{
	"Breaking news: The president was replaced by a robot.",
	"Scientists discovered a new species of flying pigs.",
	"The moon is actually made of cheese, NASA confirms.",
	"Breaking: Aliens landed in New York City last night.",
	"The government is hiding the truth about COVID-19.",
	"Breaking: World War 3 has started in Europe.",
	"Scientists found a cure for all diseases.",
	"The stock market will crash tomorrow, insiders say.",
	"Breaking: The Earth is flat, new evidence shows.",

	// subtle
	"Experts agree this revolutionary method changes everything instantly.",
	"New research from prestigious institute proves remarkable breakthrough.",
	"Scientists baffled by incredible results that defy explanation.",
	"Authorities confirm shocking discovery that transforms understanding.",
	"Leading specialists announce unprecedented findings about common practice.",
	"International organization reveals hidden truth about everyday activity.",
	"Top researchers stunned by dramatic improvements using simple technique.",
	"Breakthrough study shows amazing benefits of controversial method.",
	"Renowned experts discover secret that changes lives immediately.",
	"Revolutionary findings prove what authorities don't want you to know.",

	// vague sourcing
	"Sources close to the matter confirm shocking revelation.",
	"Insider information reveals government cover-up of major discovery.",
	"Anonymous expert shares secret method that guarantees success.",
	"Confidential report shows incredible results from new approach.",
	"Leaked documents prove authorities have been hiding the truth.",

	"Ultimă oră: Președintele a fost înlocuit cu un robot.",
	"Oamenii de știință au descoperit o nouă specie de porci zburători.",
	"Luna este de fapt făcută din brânză, confirmă NASA.",
	"Guvernul ascunde adevărul despre COVID-19.",
	"Experții confirmă această metodă revoluționară schimbă totul.",
	"Cercetare nouă de la institut prestigios dovedește descoperire remarcabilă.",
	"Specialiști de top anunță descoperiri fără precedent despre practică comună.",
}

var knownReal = []string{
	"Scientists discovered water on Mars.",
	"The stock market showed moderate growth today.",
	"New climate change report shows rising temperatures.",
	"Tech company announces new smartphone features.",
	"Local community raises funds for charity.",
	"Sports team wins championship after close game.",
	"New study shows benefits of regular exercise.",
	"City council approves new infrastructure project.",
	"Scientists develop new renewable energy technology.",
	"Education department announces new curriculum changes.",
	"Oamenii de știință au descoperit apă pe Marte.",
	"Piața de acțiuni a înregistrat o creștere moderată astăzi.",
	"Noul raport privind schimbările climatice arată temperaturi în creștere.",
	"Compania tech anunță noi funcții pentru smartphone.",
	"Comunitatea locală strânge fonduri pentru caritate.",
}

// KnownFake returns a copy of the fake reference corpus.
func KnownFake() []string { return append([]string(nil), knownFake...) }

// KnownReal returns a copy of the real reference corpus.
func KnownReal() []string { return append([]string(nil), knownReal...) }
