package explain

import "strings"

// Topic is a fallback theme with its benefit list.
type Topic struct {
	Key      string
	Name     string // Urdu display name
	Benefits []string
	keywords []string
}

var (
	topicFasting = Topic{
		Key:  "fasting",
		Name: "روزہ",
		Benefits: []string{
			"تزکیہ نفس اور روحانی پاکیزگی",
			"صبر و استقامت میں اضافہ",
			"اللہ کی خوشنودی اور قربت",
			"جسمانی و روحانی صحت",
			"غریبوں اور مسکینوں کی مدد",
		},
		keywords: []string{"fasting", "roza", "rozay", "ramadan", "صوم", "صيام", "روزہ", "روزے"},
	}

	topicPrayer = Topic{
		Key:  "prayer",
		Name: "نماز",
		Benefits: []string{
			"اللہ سے براہ راست تعلق",
			"نفس کی تربیت اور اخلاقی بلندی",
			"برائیوں سے حفاظت",
			"روحانی سکون اور ذہنی اطمینان",
			"روز مرہ کی پریشانیوں سے نجات",
		},
		keywords: []string{"prayer", "namaz", "salah", "salat", "صلوۃ", "صلاة", "نماز"},
	}

	topicPatience = Topic{
		Key:  "patience",
		Name: "صبر",
		Benefits: []string{
			"مشکلات میں ثابت قدمی",
			"اللہ کی رضا و خوشنودی",
			"اندرونی طاقت و ہمت",
			"کامیابی کی کنجی",
			"دنیا و آخرت کی کامیابی",
		},
		keywords: []string{"patience", "sabr", "صبر"},
	}

	topicGeneric = Topic{
		Key:  "generic",
		Name: "اسلامی تعلیمات",
		Benefits: []string{
			"روحانی ترقی و کمال",
			"اخلاقی تربیت و سنوار",
			"معاشرتی انصاف و بہتری",
			"دنیاوی سکون و اطمینان",
			"آخرت کی دائمی کامیابی",
		},
	}
)

// topics are matched in order; the first keyword hit wins.
var topics = []Topic{topicFasting, topicPrayer, topicPatience}

// ClassifyTopic maps a query to a fallback topic by keyword match.
// Queries matching nothing get the generic topic.
func ClassifyTopic(query string) Topic {
	q := strings.ToLower(query)
	for _, t := range topics {
		for _, kw := range t.keywords {
			if strings.Contains(q, kw) {
				return t
			}
		}
	}
	return topicGeneric
}
