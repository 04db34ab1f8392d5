package chi

import (
	"github.com/kailas-cloud/ayat/internal/domain/verse"
	"github.com/kailas-cloud/ayat/internal/usecase/pipeline"
)

// SearchRequest is the POST /search body.
type SearchRequest struct {
	Text string `json:"text"`
	TopK *int   `json:"top_k,omitempty"`
}

// VerseResult is one enriched verse in a search response.
type VerseResult struct {
	ID              string  `json:"id"`
	Score           float64 `json:"score"`
	SyntheticScore  bool    `json:"synthetic_score"`
	Source          string  `json:"source"`
	QuranID         int64   `json:"quran_id"`
	SurahID         int     `json:"surah_id"`
	AyahID          int     `json:"ayah_id"`
	JuzID           int     `json:"juz_id"`
	SurahType       string  `json:"surah_type"`
	ArabicText      string  `json:"arabic_text"`
	EnglishText     string  `json:"english_text"`
	UrduText        string  `json:"urdu_text"`
	SurahNameAr     string  `json:"surah_name_ar"`
	SurahNameUr     string  `json:"surah_name_ur"`
	SurahNameEn     string  `json:"surah_name_en"`
	Transliteration string  `json:"transliteration"`
	Placeholder     bool    `json:"placeholder,omitempty"`
}

// Explanation is the generated (or fallback) explanation in a search response.
type Explanation struct {
	Text         string  `json:"text"`
	GroundingIDs []int64 `json:"grounding_ids"`
	State        string  `json:"state"`
	Attempts     int     `json:"attempts"`
}

// SearchResponse is the 200 body of /search.
type SearchResponse struct {
	Query          string        `json:"query"`
	ProcessedQuery string        `json:"processed_query"`
	TopResults     []VerseResult `json:"top_results"`
	Explanation    Explanation   `json:"explanation"`
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchResponseFrom(resp *pipeline.Response) SearchResponse {
	results := make([]VerseResult, len(resp.Results))
	for i := range resp.Results {
		results[i] = verseResultFrom(&resp.Results[i])
	}
	return SearchResponse{
		Query:          resp.Query,
		ProcessedQuery: resp.ProcessedQuery,
		TopResults:     results,
		Explanation: Explanation{
			Text:         resp.Explanation.Text(),
			GroundingIDs: resp.Explanation.GroundingIDs(),
			State:        string(resp.Explanation.State()),
			Attempts:     resp.Explanation.Attempts(),
		},
	}
}

func verseResultFrom(e *verse.Enriched) VerseResult {
	return VerseResult{
		ID:              e.PointID,
		Score:           e.Score,
		SyntheticScore:  e.SyntheticScore,
		Source:          e.Origin,
		QuranID:         e.QuranID,
		SurahID:         e.SurahID,
		AyahID:          e.AyahID,
		JuzID:           e.JuzID,
		SurahType:       e.SurahType,
		ArabicText:      e.Arabic,
		EnglishText:     e.English,
		UrduText:        e.Urdu,
		SurahNameAr:     e.SurahNameAr,
		SurahNameUr:     e.SurahNameUr,
		SurahNameEn:     e.SurahNameEn,
		Transliteration: e.Transliteration,
		Placeholder:     e.Placeholder,
	}
}
