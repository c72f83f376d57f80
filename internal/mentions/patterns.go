package mentions

// DefaultInfluencePatterns returns the curated influence-indicator phrases.
// Matching any of these marks a sentence as influence context.
func DefaultInfluencePatterns() []string {
	return []string{
		`influenced by`,
		`influence of`,
		`reminiscent of`,
		`in the vein of`,
		`in the tradition of`,
		`sounds? like`,
		`owes? a debt to`,
		`following in the footsteps of`,
		`draws? (on|from)`,
		`drawing (on|from)`,
		`echoes of`,
		`recalls`,
		`evokes`,
		`indebted to`,
		`channeling`,
		`channels`,
		`inspired by`,
		`compared to`,
		`comparisons? to`,
		`nods? to`,
		`shades of`,
		`borrow(s|ed|ing)? from`,
		`descend(s|ed)? from`,
		`torch(bearer)? (of|for)`,
		`heir to`,
		`disciple of`,
	}
}

// DefaultFalsePositives returns normalized names that look like artist
// mentions but never are: generic review phrases, cities and regions,
// publications, platforms, months and days.
func DefaultFalsePositives() []string {
	return []string{
		// Generic review phrases.
		"the album", "the band", "the record", "the song", "the track",
		"the single", "the group", "the artist", "the music", "the sound",
		"the scene", "the label", "the producer", "the chorus", "the verse",
		"the bridge", "the hook", "the beat", "the mix", "the show",
		"the tour", "the set", "the duo", "the trio", "the quartet",
		"album", "band", "record", "song", "track", "single", "music",
		"sound", "scene", "vinyl", "deluxe", "reissue", "remaster",
		"side one", "side two", "intro", "outro", "lead single",
		"new album", "debut album", "sophomore album", "greatest hits",
		// Cities and regions that show up constantly in reviews.
		"new york", "new york city", "los angeles", "san francisco",
		"london", "chicago", "detroit", "berlin", "manchester", "brooklyn",
		"tokyo", "paris", "memphis", "nashville", "seattle", "atlanta",
		"houston", "philadelphia", "oakland", "compton", "bristol",
		"sheffield", "glasgow", "dublin", "toronto", "montreal", "austin",
		"portland", "minneapolis", "new orleans", "america", "american",
		"england", "britain", "british", "europe", "european", "japan",
		"germany", "france", "africa", "jamaica", "kingston",
		"west coast", "east coast", "midwest", "deep south",
		// Publications and platforms.
		"pitchfork", "rolling stone", "nme", "billboard", "spin",
		"stereogum", "allmusic", "mojo", "uncut", "paste", "the quietus",
		"resident advisor", "the wire", "the guardian", "the fader",
		"fader", "complex", "vice", "noisey", "consequence",
		"bandcamp", "spotify", "youtube", "apple music", "tidal",
		"soundcloud", "mtv", "bbc", "npr", "kexp", "kcrw",
		// Awards and festivals.
		"grammy", "grammys", "the grammys", "coachella", "glastonbury",
		"lollapalooza", "sxsw", "bonnaroo", "primavera",
		// Months and days.
		"january", "february", "march", "april", "may", "june", "july",
		"august", "september", "october", "november", "december",
		"monday", "tuesday", "wednesday", "thursday", "friday",
		"saturday", "sunday",
	}
}

// commonWords are sentence-initial English words that pick up a capital
// letter from orthography alone. Only single-word candidates are checked
// against this set; multi-word runs like "New Order" must survive.
var commonWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "this", "that", "these", "those", "there", "here",
		"they", "their", "them", "then", "than", "thus", "though",
		"when", "where", "while", "which", "what", "whose", "whether",
		"who", "whom", "why", "how", "all", "any", "both", "each",
		"every", "few", "many", "most", "much", "some", "several",
		"one", "two", "three", "first", "second", "third", "last",
		"next", "early", "later", "soon", "now", "not", "never",
		"always", "often", "sometimes", "rarely", "still", "yet",
		"just", "even", "also", "again", "once", "only", "rather",
		"quite", "almost", "nearly", "really", "truly", "simply",
		"merely", "very", "such", "like", "unlike", "with", "without",
		"within", "from", "into", "over", "under", "after", "before",
		"during", "since", "until", "unless", "upon", "about", "above",
		"below", "between", "behind", "beyond", "across", "around",
		"among", "amid", "against", "toward", "towards", "through",
		"throughout", "despite", "because", "although", "however",
		"moreover", "meanwhile", "nevertheless", "nonetheless",
		"otherwise", "regardless", "similarly", "likewise", "instead",
		"elsewhere", "indeed", "anyway", "besides", "perhaps", "maybe",
		"clearly", "certainly", "obviously", "arguably", "ultimately",
		"eventually", "finally", "naturally", "suddenly", "somehow",
		"therefore", "furthermore", "additionally", "consequently",
		"his", "her", "its", "our", "your", "you", "she", "him",
		"was", "were", "are", "been", "being", "has", "had", "have",
		"does", "did", "will", "would", "could", "should", "might",
		"must", "can", "may", "another", "other", "others", "anyone",
		"everyone", "someone", "nobody", "somebody", "everybody",
		"nothing", "something", "everything", "anything", "whatever",
		"whenever", "wherever", "whoever", "whichever", "whereas",
		"listen", "listening", "hearing", "imagine", "think", "take",
		"produced", "recorded", "released", "featuring", "mixed",
		"today", "tomorrow", "yesterday", "but", "and", "nor", "for",
		"out", "off", "yes", "new", "old", "big", "long", "good",
		"great", "best", "worst", "more", "less", "own", "same",
	} {
		commonWords[w] = struct{}{}
	}
}
