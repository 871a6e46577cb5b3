package genre

// names maps canonical slugs to display names.
var names = map[string]string{
	"fiction":               "Fiction",
	"non-fiction":           "Non-Fiction",
	"fantasy":               "Fantasy",
	"epic-fantasy":          "Epic Fantasy",
	"urban-fantasy":         "Urban Fantasy",
	"romantasy":             "Romantasy",
	"science-fiction":       "Science Fiction",
	"space-opera":           "Space Opera",
	"cyberpunk":             "Cyberpunk",
	"mystery":               "Mystery",
	"thriller":              "Thriller",
	"crime":                 "Crime",
	"horror":                "Horror",
	"romance":               "Romance",
	"historical-fiction":    "Historical Fiction",
	"literary-fiction":      "Literary Fiction",
	"classics":              "Classics",
	"young-adult":           "Young Adult",
	"children":              "Children's",
	"graphic-novels":        "Graphic Novels",
	"poetry":                "Poetry",
	"humor":                 "Humor",
	"biography-memoir":      "Biography & Memoir",
	"history":               "History",
	"science":               "Science",
	"self-help":             "Self-Help",
	"business-finance":      "Business & Finance",
	"philosophy":            "Philosophy",
	"religion-spirituality": "Religion & Spirituality",
	"politics-social":       "Politics & Social Sciences",
	"travel":                "Travel",
	"true-crime":            "True Crime",
}

// aliases maps common spellings to canonical slugs. Keys are slugs.
var aliases = map[string]string{
	"sci-fi":                        "science-fiction",
	"scifi":                         "science-fiction",
	"sf":                            "science-fiction",
	"science-fiction-and-fantasy":   "science-fiction",
	"high-fantasy":                  "epic-fantasy",
	"fantasy-romance":               "romantasy",
	"romantic-fantasy":              "romantasy",
	"ya":                            "young-adult",
	"teen":                          "young-adult",
	"teens-young-adult":             "young-adult",
	"childrens":                     "children",
	"children-s":                    "children",
	"kids":                          "children",
	"nonfiction":                    "non-fiction",
	"literature":                    "literary-fiction",
	"literature-and-fiction":        "fiction",
	"classic":                       "classics",
	"mystery-thriller-and-suspense": "mystery",
	"suspense":                      "thriller",
	"biography":                     "biography-memoir",
	"biographies-and-memoirs":       "biography-memoir",
	"memoir":                        "biography-memoir",
	"autobiography":                 "biography-memoir",
	"selfhelp":                      "self-help",
	"personal-development":          "self-help",
	"business":                      "business-finance",
	"money-and-finance":             "business-finance",
	"comedy":                        "humor",
	"comedy-and-humor":              "humor",
	"humour":                        "humor",
	"comics":                        "graphic-novels",
	"graphic-novel":                 "graphic-novels",
	"manga":                         "graphic-novels",
	"religion":                      "religion-spirituality",
	"spirituality":                  "religion-spirituality",
	"politics":                      "politics-social",
}
