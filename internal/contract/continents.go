package contract

// Continents maps folded country names to their continent.
var Continents = map[string]string{
	// Africa
	"algeria":                  "Africa",
	"angola":                   "Africa",
	"benin":                    "Africa",
	"botswana":                 "Africa",
	"burkina faso":             "Africa",
	"burundi":                  "Africa",
	"cabo verde":               "Africa",
	"cameroon":                 "Africa",
	"central african republic": "Africa",
	"chad":                     "Africa",
	"comoros":                  "Africa",
	"congo, dem. rep.":         "Africa",
	"congo, rep.":              "Africa",
	"cote d'ivoire":            "Africa",
	"djibouti":                 "Africa",
	"egypt":                    "Africa",
	"egypt, arab rep.":         "Africa",
	"equatorial guinea":        "Africa",
	"eritrea":                  "Africa",
	"eswatini":                 "Africa",
	"ethiopia":                 "Africa",
	"gabon":                    "Africa",
	"gambia, the":              "Africa",
	"ghana":                    "Africa",
	"guinea":                   "Africa",
	"guinea-bissau":            "Africa",
	"kenya":                    "Africa",
	"lesotho":                  "Africa",
	"liberia":                  "Africa",
	"libya":                    "Africa",
	"madagascar":               "Africa",
	"malawi":                   "Africa",
	"mali":                     "Africa",
	"mauritania":               "Africa",
	"mauritius":                "Africa",
	"morocco":                  "Africa",
	"mozambique":               "Africa",
	"namibia":                  "Africa",
	"niger":                    "Africa",
	"nigeria":                  "Africa",
	"rwanda":                   "Africa",
	"sao tome and principe":    "Africa",
	"senegal":                  "Africa",
	"seychelles":               "Africa",
	"sierra leone":             "Africa",
	"somalia":                  "Africa",
	"south africa":             "Africa",
	"south sudan":              "Africa",
	"sudan":                    "Africa",
	"tanzania":                 "Africa",
	"togo":                     "Africa",
	"tunisia":                  "Africa",
	"uganda":                   "Africa",
	"zambia":                   "Africa",
	"zimbabwe":                 "Africa",
	// Asia
	"afghanistan":          "Asia",
	"armenia":              "Asia",
	"azerbaijan":           "Asia",
	"bahrain":              "Asia",
	"bangladesh":           "Asia",
	"bhutan":               "Asia",
	"brunei darussalam":    "Asia",
	"cambodia":             "Asia",
	"china":                "Asia",
	"georgia":              "Asia",
	"hong kong sar, china": "Asia",
	"india":                "Asia",
	"indonesia":            "Asia",
	"iran, islamic rep.":   "Asia",
	"iraq":                 "Asia",
	"israel":               "Asia",
	"japan":                "Asia",
	"jordan":               "Asia",
	"kazakhstan":           "Asia",
	"korea, rep.":          "Asia",
	"kuwait":               "Asia",
	"kyrgyz republic":      "Asia",
	"lao pdr":              "Asia",
	"lebanon":              "Asia",
	"macao sar, china":     "Asia",
	"malaysia":             "Asia",
	"maldives":             "Asia",
	"mongolia":             "Asia",
	"myanmar":              "Asia",
	"nepal":                "Asia",
	"oman":                 "Asia",
	"pakistan":             "Asia",
	"philippines":          "Asia",
	"qatar":                "Asia",
	"saudi arabia":         "Asia",
	"singapore":            "Asia",
	"sri lanka":            "Asia",
	"syrian arab republic": "Asia",
	"tajikistan":           "Asia",
	"thailand":             "Asia",
	"timor-leste":          "Asia",
	"turkiye":              "Asia",
	"turkmenistan":         "Asia",
	"united arab emirates": "Asia",
	"uzbekistan":           "Asia",
	"viet nam":             "Asia",
	"vietnam":              "Asia",
	"west bank and gaza":   "Asia",
	"yemen, rep.":          "Asia",
	// Europe
	"albania":                "Europe",
	"andorra":                "Europe",
	"austria":                "Europe",
	"belarus":                "Europe",
	"belgium":                "Europe",
	"bosnia and herzegovina": "Europe",
	"bulgaria":               "Europe",
	"croatia":                "Europe",
	"cyprus":                 "Europe",
	"czechia":                "Europe",
	"denmark":                "Europe",
	"estonia":                "Europe",
	"finland":                "Europe",
	"france":                 "Europe",
	"germany":                "Europe",
	"greece":                 "Europe",
	"hungary":                "Europe",
	"iceland":                "Europe",
	"ireland":                "Europe",
	"italy":                  "Europe",
	"kosovo":                 "Europe",
	"latvia":                 "Europe",
	"liechtenstein":          "Europe",
	"lithuania":              "Europe",
	"luxembourg":             "Europe",
	"malta":                  "Europe",
	"moldova":                "Europe",
	"monaco":                 "Europe",
	"montenegro":             "Europe",
	"netherlands":            "Europe",
	"north macedonia":        "Europe",
	"norway":                 "Europe",
	"poland":                 "Europe",
	"portugal":               "Europe",
	"romania":                "Europe",
	"russian federation":     "Europe",
	"san marino":             "Europe",
	"serbia":                 "Europe",
	"slovak republic":        "Europe",
	"slovenia":               "Europe",
	"spain":                  "Europe",
	"sweden":                 "Europe",
	"switzerland":            "Europe",
	"ukraine":                "Europe",
	"united kingdom":         "Europe",
	// North America
	"antigua and barbuda":            "North America",
	"bahamas, the":                   "North America",
	"barbados":                       "North America",
	"belize":                         "North America",
	"canada":                         "North America",
	"costa rica":                     "North America",
	"cuba":                           "North America",
	"dominica":                       "North America",
	"dominican republic":             "North America",
	"el salvador":                    "North America",
	"grenada":                        "North America",
	"guatemala":                      "North America",
	"haiti":                          "North America",
	"honduras":                       "North America",
	"jamaica":                        "North America",
	"mexico":                         "North America",
	"nicaragua":                      "North America",
	"panama":                         "North America",
	"puerto rico":                    "North America",
	"st. kitts and nevis":            "North America",
	"st. lucia":                      "North America",
	"st. vincent and the grenadines": "North America",
	"trinidad and tobago":            "North America",
	"united states":                  "North America",
	// South America
	"argentina":     "South America",
	"bolivia":       "South America",
	"brazil":        "South America",
	"chile":         "South America",
	"colombia":      "South America",
	"ecuador":       "South America",
	"guyana":        "South America",
	"paraguay":      "South America",
	"peru":          "South America",
	"suriname":      "South America",
	"uruguay":       "South America",
	"venezuela, rb": "South America",
	// Oceania
	"australia":             "Oceania",
	"fiji":                  "Oceania",
	"kiribati":              "Oceania",
	"marshall islands":      "Oceania",
	"micronesia, fed. sts.": "Oceania",
	"nauru":                 "Oceania",
	"new zealand":           "Oceania",
	"palau":                 "Oceania",
	"papua new guinea":      "Oceania",
	"samoa":                 "Oceania",
	"solomon islands":       "Oceania",
	"tonga":                 "Oceania",
	"tuvalu":                "Oceania",
	"vanuatu":               "Oceania",
}

// ContinentOf returns the continent for a country name, matched on its
// FoldKey so case and accents are ignored. ok is false for unknown countries and aggregates
// such as "World" or "Euro area".
func ContinentOf(country string) (string, bool) {
	c, ok := Continents[FoldKey(country)]
	return c, ok
}
