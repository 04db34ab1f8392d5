package verse

import "strconv"

// Text is the canonical multilingual record of one verse.
type Text struct {
	QuranID         int64
	JuzID           int
	SurahID         int
	AyahID          int
	Source          string
	Transliteration string
	SurahNameAr     string
	SurahNameUr     string
	SurahNameEn     string
	SurahType       string
	Arabic          string
	Urdu            string
	English         string

	// Placeholder is set when no canonical row was available.
	Placeholder bool
}

// PlaceholderArabic returns the Arabic stand-in text for a verse id.
func PlaceholderArabic(id int64) string { return "آية " + strconv.FormatInt(id, 10) }

// PlaceholderEnglish returns the English stand-in text for a verse id.
func PlaceholderEnglish(id int64) string { return "Verse " + strconv.FormatInt(id, 10) }

// PlaceholderUrdu returns the Urdu stand-in text for a verse id.
func PlaceholderUrdu(id int64) string { return "آیت " + strconv.FormatInt(id, 10) }

// Placeholder synthesizes a record for an id without canonical text.
// Text fields are never empty.
func Placeholder(id int64) Text {
	return Text{
		QuranID:     id,
		Arabic:      PlaceholderArabic(id),
		Urdu:        PlaceholderUrdu(id),
		English:     PlaceholderEnglish(id),
		Placeholder: true,
	}
}

// WithPlaceholders returns t with every blank text field replaced by its stand-in.
// A row whose text columns are NULL still never yields empty text.
func (t Text) WithPlaceholders() Text {
	if t.Arabic == "" {
		t.Arabic = PlaceholderArabic(t.QuranID)
	}
	if t.Urdu == "" {
		t.Urdu = PlaceholderUrdu(t.QuranID)
	}
	if t.English == "" {
		t.English = PlaceholderEnglish(t.QuranID)
	}
	return t
}

// Enriched is a fused candidate joined with its canonical text.
type Enriched struct {
	Text

	PointID        string
	Score          float64
	SyntheticScore bool
	// Origin is the sub-search that produced the candidate (dense or sparse).
	Origin string
}
