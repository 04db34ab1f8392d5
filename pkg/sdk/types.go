package ayat

import (
	"github.com/kailas-cloud/ayat/internal/domain/verse"
	"github.com/kailas-cloud/ayat/internal/usecase/pipeline"
)

// Verse is one retrieved verse with its canonical text.
type Verse struct {
	QuranID         int64
	SurahID         int
	AyahID          int
	JuzID           int
	SurahType       string
	SurahNameAr     string
	SurahNameUr     string
	SurahNameEn     string
	Transliteration string
	Arabic          string
	Urdu            string
	English         string

	Score float64
	// SyntheticScore is set for sparse-only hits ranked without a similarity score.
	SyntheticScore bool
	// Source is the sub-search that found the verse: "dense" or "sparse".
	Source string
	// Placeholder is set when the text store had no row; the text fields hold stand-ins.
	Placeholder bool
}

// Explanation is the grounded answer text.
type Explanation struct {
	Text         string
	GroundingIDs []int64
	// Fallback is set when generation failed and the topic template was used.
	Fallback bool
	Attempts int
}

// Answer is the result of Ask.
type Answer struct {
	Query          string
	ProcessedQuery string
	Verses         []Verse
	Explanation    Explanation
}

func answerFrom(r *pipeline.Response) Answer {
	verses := make([]Verse, len(r.Results))
	for i := range r.Results {
		verses[i] = verseFrom(&r.Results[i])
	}
	return Answer{
		Query:          r.Query,
		ProcessedQuery: r.ProcessedQuery,
		Verses:         verses,
		Explanation: Explanation{
			Text:         r.Explanation.Text(),
			GroundingIDs: r.Explanation.GroundingIDs(),
			Fallback:     r.Explanation.IsFallback(),
			Attempts:     r.Explanation.Attempts(),
		},
	}
}

func verseFrom(e *verse.Enriched) Verse {
	return Verse{
		QuranID:         e.QuranID,
		SurahID:         e.SurahID,
		AyahID:          e.AyahID,
		JuzID:           e.JuzID,
		SurahType:       e.SurahType,
		SurahNameAr:     e.SurahNameAr,
		SurahNameUr:     e.SurahNameUr,
		SurahNameEn:     e.SurahNameEn,
		Transliteration: e.Transliteration,
		Arabic:          e.Arabic,
		Urdu:            e.Urdu,
		English:         e.English,
		Score:           e.Score,
		SyntheticScore:  e.SyntheticScore,
		Source:          e.Origin,
		Placeholder:     e.Placeholder,
	}
}
