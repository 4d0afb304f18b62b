package extract

// Country maps a lowercase country name to the provider's two-letter code.
type Country struct {
	Name string
	Code string
}

// Countries lists every country the news provider supports for top-headlines
// filtering. Matching iterates in this order and the first hit wins, so the
// slice must stay sorted by name to keep extraction deterministic.
var Countries = []Country{
	{"argentina", "ar"},
	{"australia", "au"},
	{"austria", "at"},
	{"belgium", "be"},
	{"brazil", "br"},
	{"bulgaria", "bg"},
	{"canada", "ca"},
	{"china", "cn"},
	{"colombia", "co"},
	{"cuba", "cu"},
	{"czech republic", "cz"},
	{"egypt", "eg"},
	{"france", "fr"},
	{"germany", "de"},
	{"greece", "gr"},
	{"hong kong", "hk"},
	{"hungary", "hu"},
	{"india", "in"},
	{"indonesia", "id"},
	{"ireland", "ie"},
	{"israel", "il"},
	{"italy", "it"},
	{"japan", "jp"},
	{"latvia", "lv"},
	{"lithuania", "lt"},
	{"malaysia", "my"},
	{"mexico", "mx"},
	{"morocco", "ma"},
	{"netherlands", "nl"},
	{"new zealand", "nz"},
	{"nigeria", "ng"},
	{"norway", "no"},
	{"philippines", "ph"},
	{"poland", "pl"},
	{"portugal", "pt"},
	{"romania", "ro"},
	{"russia", "ru"},
	{"saudi arabia", "sa"},
	{"serbia", "rs"},
	{"singapore", "sg"},
	{"slovakia", "sk"},
	{"slovenia", "si"},
	{"south africa", "za"},
	{"south korea", "kr"},
	{"sweden", "se"},
	{"switzerland", "ch"},
	{"taiwan", "tw"},
	{"thailand", "th"},
	{"turkey", "tr"},
	{"uae", "ae"},
	{"ukraine", "ua"},
	{"united kingdom", "gb"},
	{"united states", "us"},
	{"venezuela", "ve"},
}

// Categories are the topic keywords recognized in queries.
var Categories = []string{
	"politics",
	"finance",
	"technology",
	"sports",
	"entertainment",
	"health",
}
